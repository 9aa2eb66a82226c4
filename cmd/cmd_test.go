package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempStore(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "quill.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "migrate", "createsuperuser", "grant"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestMigrate(t *testing.T) {
	useTempStore(t)

	out, err := run(t, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "Database schema is up to date.")
}

func TestCreateSuperuserAndGrant(t *testing.T) {
	useTempStore(t)

	out, err := run(t, "createsuperuser", "--username", "root", "--email", "root@example.com", "--password", "root-pass-123")
	require.NoError(t, err)
	assert.Contains(t, out, `Superuser "root" created.`)

	_, err = run(t, "createsuperuser", "--username", "root", "--email", "other@example.com", "--password", "root-pass-123")
	assert.Error(t, err, "usernames are unique")

	out, err = run(t, "grant", "--username", "root", "--perm", "publish_post")
	require.NoError(t, err)
	assert.Contains(t, out, "Granted publish_post to root.")

	_, err = run(t, "grant", "--username", "root", "--perm", "fly")
	assert.Error(t, err)

	_, err = run(t, "grant", "--username", "nobody", "--perm", "publish_post")
	assert.Error(t, err)
}
