package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPasswordHashing(t *testing.T) {
	user := &User{Password: "correct horse"}
	require.NoError(t, user.HashPassword())

	assert.NotEqual(t, "correct horse", user.Password)
	assert.True(t, user.CheckPassword("correct horse"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "alice", (&User{Username: "alice"}).DisplayName())
	assert.Equal(t, "Alice Liddell", (&User{Username: "alice", FirstName: "Alice", LastName: "Liddell"}).DisplayName())
	assert.Equal(t, "Alice", (&User{Username: "alice", FirstName: "Alice"}).DisplayName())
}

func TestUserHasPerm(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.HasPerm(PermCreateComment))

	user := &User{IsActive: true, Permissions: []UserPermission{{Codename: PermCreateComment}}}
	assert.True(t, user.HasPerm(PermCreateComment))
	assert.False(t, user.HasPerm(PermPublishPost))

	root := &User{IsActive: true, IsSuperuser: true}
	assert.True(t, root.HasPerm(PermPublishPost))

	root.IsActive = false
	assert.False(t, root.HasPerm(PermPublishPost), "inactive users hold no permissions")
}

func TestPostStatusValid(t *testing.T) {
	assert.True(t, StatusDrafted.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.True(t, StatusArchived.Valid())
	assert.False(t, PostStatus("deleted").Valid())
}

func TestPostDerivedFields(t *testing.T) {
	post := &Post{
		Slug:    "hello-world",
		Content: "  one two\nthree\tfour ",
		User:    User{Username: "alice"},
		Tags:    []Tag{{Name: "go"}, {Name: "web"}},
	}

	assert.Equal(t, 4, post.WordCount())
	assert.Equal(t, []string{"go", "web"}, post.TagNames())
	assert.Equal(t, "/@alice/hello-world/", post.Path())
}

func TestContactShortMessage(t *testing.T) {
	short := &ContactMessage{Message: "hi"}
	assert.Equal(t, "hi", short.ShortMessage())

	long := &ContactMessage{Message: strings.Repeat("é", 80)}
	got := long.ShortMessage()
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 78, len([]rune(got)))

	msg := &ContactMessage{Name: "Bob", Email: "bob@example.com", CreatedAt: time.Date(2024, 5, 1, 13, 4, 0, 0, time.UTC)}
	assert.Equal(t, "Message from Bob (bob@example.com) on 2024-05-01 13:04", msg.String())
}

func TestSessionRecentlyViewed(t *testing.T) {
	s := &Session{}
	assert.Empty(t, s.RecentSlugs())

	for _, slug := range []string{"a", "b", "c", "d", "e", "f"} {
		assert.True(t, s.PushRecent(slug))
	}
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, s.RecentSlugs())

	assert.False(t, s.PushRecent("d"), "already present slugs keep their position")
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, s.RecentSlugs())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: now}).Expired(now))
}
