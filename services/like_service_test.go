package services

import (
	"context"
	"testing"

	"quill/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeScenario(t *testing.T) {
	db, posts := setup(t)
	alice := newUser(t, db, "alice")
	post := newPost(t, posts, alice, "Likeable", models.StatusPublished, "")
	pub := &recordingPublisher{}
	likes := NewLikeService(db, pub, nil)
	ctx := context.Background()

	state, err := likes.Toggle(ctx, post, alice)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: true, LikeCount: 1}, state)

	state, err = likes.Toggle(ctx, post, alice)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, LikeCount: 0}, state)

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, post.Slug, events[0].Topic)
	assert.Equal(t, EventPostLiked, events[0].Type)
}

func TestToggleLikeIsPerUser(t *testing.T) {
	db, posts := setup(t)
	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	post := newPost(t, posts, alice, "Likeable", models.StatusPublished, "")
	likes := NewLikeService(db, nil, nil)
	ctx := context.Background()

	_, err := likes.Toggle(ctx, post, alice)
	require.NoError(t, err)
	state, err := likes.Toggle(ctx, post, bob)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: true, LikeCount: 2}, state)

	state, err = likes.Toggle(ctx, post, alice)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, LikeCount: 1}, state)
}

func TestToggleLikeRemovesExistingRow(t *testing.T) {
	db, posts := setup(t)
	alice := newUser(t, db, "alice")
	post := newPost(t, posts, alice, "Likeable", models.StatusPublished, "")
	likes := NewLikeService(db, nil, nil)

	// A second insert for the same pair is rejected by the unique index.
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, UserID: alice.ID}).Error)
	assert.Error(t, db.Create(&models.Like{PostID: post.ID, UserID: alice.ID}).Error)

	state, err := likes.Toggle(context.Background(), post, alice)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Liked: false, LikeCount: 0}, state)
}

func TestToggleLikeRequiresUser(t *testing.T) {
	db, posts := setup(t)
	alice := newUser(t, db, "alice")
	post := newPost(t, posts, alice, "Likeable", models.StatusPublished, "")

	_, err := NewLikeService(db, nil, nil).Toggle(context.Background(), post, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
