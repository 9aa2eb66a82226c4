package models

import "time"

// Like is unique per (post, user); the index is what makes toggling safe
// under concurrent submits.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_like_post_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_post_user;index"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
