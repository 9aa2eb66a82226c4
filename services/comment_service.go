package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"quill/models"
	"quill/observability"

	"gorm.io/gorm"
)

const (
	EventCommentCreated = "comment.created"

	maxCommentLength = 2000
)

type CommentService struct {
	db        *gorm.DB
	posts     *PostService
	publisher Publisher
	metrics   *observability.Metrics
}

func NewCommentService(db *gorm.DB, posts *PostService, publisher Publisher, metrics *observability.Metrics) *CommentService {
	return &CommentService{db: db, posts: posts, publisher: publisher, metrics: metrics}
}

// Create adds a comment by actor on the published post with slug. The
// permission check happens before the post is looked up.
func (s *CommentService) Create(ctx context.Context, actor *models.User, slug string, req *models.CreateCommentRequest) (*models.Comment, *models.Post, error) {
	if !actor.HasPerm(models.PermCreateComment) {
		return nil, nil, ErrPermissionDenied
	}

	post, err := s.posts.FindBySlug(ctx, slug, SlugFilter{Status: models.StatusPublished})
	if err != nil {
		return nil, nil, err
	}

	content := strings.TrimSpace(req.Content)
	switch {
	case content == "":
		return nil, post, NewValidationError("content", "This field is required.")
	case utf8.RuneCountInString(content) > maxCommentLength:
		return nil, post, NewValidationError("content",
			fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", maxCommentLength, utf8.RuneCountInString(content)))
	}

	comment := &models.Comment{PostID: post.ID, UserID: actor.ID, Content: content}
	if err := s.db.WithContext(ctx).Omit("User").Create(comment).Error; err != nil {
		return nil, post, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.User = *actor

	s.metrics.CommentCreated(ctx)
	publish(s.publisher, post.Slug, EventCommentCreated, NewCommentView(comment))
	return comment, post, nil
}
