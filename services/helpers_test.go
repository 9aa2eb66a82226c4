package services

import (
	"context"
	"sync"
	"testing"

	"quill/database"
	"quill/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type publishedEvent struct {
	Topic string
	Type  string
	Data  interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(topic, eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Type: eventType, Data: data})
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func newUser(t testing.TB, db *gorm.DB, username string, perms ...string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		IsActive: true,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)
	for _, p := range perms {
		require.NoError(t, db.Create(&models.UserPermission{UserID: user.ID, Codename: p}).Error)
		user.Permissions = append(user.Permissions, models.UserPermission{UserID: user.ID, Codename: p})
	}
	return user
}

func newPost(t testing.TB, svc *PostService, author *models.User, title string, status models.PostStatus, tags string) *models.Post {
	t.Helper()
	post, err := svc.Create(context.Background(), author, &models.CreatePostRequest{
		Title:     title,
		Content:   "Body of " + title,
		Status:    status,
		TagsInput: tags,
	})
	require.NoError(t, err)
	return post
}

func slugsOf(posts []models.Post) []string {
	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

func setup(t testing.TB) (*gorm.DB, *PostService) {
	t.Helper()
	db := database.OpenTest(t)
	return db, NewPostService(db, nil)
}
