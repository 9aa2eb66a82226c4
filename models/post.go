package models

import (
	"strings"
	"time"
)

type PostStatus string

const (
	StatusDrafted   PostStatus = "drafted"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDrafted, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type Post struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	Content   string     `json:"content" gorm:"type:text;not null"`
	Slug      string     `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Status    PostStatus `json:"status" gorm:"size:10;not null;default:drafted;index"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	User      User       `json:"author" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Tags      []Tag      `json:"tags" gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"`
	Likes     []Like     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Comments  []Comment  `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CreatePostRequest struct {
	Title     string     `json:"title" form:"title" binding:"required,max=255"`
	Content   string     `json:"content" form:"content" binding:"required"`
	Status    PostStatus `json:"status" form:"status" binding:"omitempty,oneof=drafted published archived"`
	TagsInput string     `json:"tags_input" form:"tags_input" binding:"max=1000"`
}

type UpdatePostRequest = CreatePostRequest

func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

func (p *Post) WordCount() int {
	return len(strings.Fields(p.Content))
}

func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Path is the canonical detail location, /@username/slug/. User must be loaded.
func (p *Post) Path() string {
	return "/@" + p.User.Username + "/" + p.Slug + "/"
}
