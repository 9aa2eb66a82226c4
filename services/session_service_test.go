package services

import (
	"context"
	"testing"
	"time"

	"quill/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	db, _ := setup(t)
	alice := newUser(t, db, "alice", models.PermCreateComment)
	sessions := NewSessionService(db, "test-secret", time.Hour)
	ctx := context.Background()

	session, token, err := sessions.Create(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	resolved, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resolved.ID)
	require.NotNil(t, resolved.User)
	assert.Equal(t, "alice", resolved.User.Username)
	assert.True(t, resolved.User.HasPerm(models.PermCreateComment), "permissions are preloaded")

	require.NoError(t, sessions.Delete(ctx, session.ID))
	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	require.NoError(t, sessions.Delete(ctx, session.ID), "deleting twice is fine")
}

func TestSessionRejectsBadTokens(t *testing.T) {
	db, _ := setup(t)
	alice := newUser(t, db, "alice")
	sessions := NewSessionService(db, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := sessions.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, token, err := NewSessionService(db, "other-secret", time.Hour).Create(ctx, alice)
	require.NoError(t, err)
	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionExpiryAndInactiveUsers(t *testing.T) {
	db, _ := setup(t)
	alice := newUser(t, db, "alice")
	sessions := NewSessionService(db, "test-secret", time.Hour)
	ctx := context.Background()

	_, token, err := sessions.Create(ctx, alice)
	require.NoError(t, err)

	sessions.now = func() time.Time { return utcNow().Add(2 * time.Hour) }
	_, err = sessions.Resolve(ctx, token)
	assert.Error(t, err)

	purged, err := sessions.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	sessions.now = utcNow
	_, token, err = sessions.Create(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{ID: alice.ID}).Update("is_active", false).Error)
	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRememberView(t *testing.T) {
	db, _ := setup(t)
	alice := newUser(t, db, "alice")
	sessions := NewSessionService(db, "test-secret", time.Hour)
	ctx := context.Background()

	session, token, err := sessions.Create(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, sessions.RememberView(ctx, session, "one"))
	require.NoError(t, sessions.RememberView(ctx, session, "two"))
	require.NoError(t, sessions.RememberView(ctx, session, "one"))

	resolved, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "one"}, resolved.RecentSlugs())
}
