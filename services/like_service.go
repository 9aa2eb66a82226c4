package services

import (
	"context"
	"errors"
	"fmt"

	"quill/models"
	"quill/observability"

	"gorm.io/gorm"
)

const EventPostLiked = "post.liked"

type LikeService struct {
	db        *gorm.DB
	publisher Publisher
	metrics   *observability.Metrics
}

func NewLikeService(db *gorm.DB, publisher Publisher, metrics *observability.Metrics) *LikeService {
	return &LikeService{db: db, publisher: publisher, metrics: metrics}
}

// LikeState is what a toggle returns to the client.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// Toggle flips user's like on post. Deleting first and inserting otherwise
// keeps the unique (post_id, user_id) index as the arbiter: a concurrent
// insert that loses the race means the like already exists, so the result
// converges to liked.
func (s *LikeService) Toggle(ctx context.Context, post *models.Post, user *models.User) (LikeState, error) {
	if user == nil {
		return LikeState{}, ErrPermissionDenied
	}

	var liked bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", post.ID, user.ID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		if err := tx.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		liked, err = true, nil
	}
	if err != nil {
		return LikeState{}, fmt.Errorf("failed to toggle like on %s: %w", post.Slug, err)
	}

	count, err := s.Count(ctx, post.ID)
	if err != nil {
		return LikeState{}, err
	}

	state := LikeState{Liked: liked, LikeCount: count}
	s.metrics.LikeToggled(ctx, liked)
	publish(s.publisher, post.Slug, EventPostLiked, map[string]interface{}{
		"liked":      state.Liked,
		"like_count": state.LikeCount,
		"username":   user.Username,
	})
	return state, nil
}

func (s *LikeService) Count(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
