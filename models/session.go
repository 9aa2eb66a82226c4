package models

import (
	"strings"
	"time"
)

const maxRecentlyViewed = 5

type Session struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	User           *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	RecentlyViewed string    `json:"-" gorm:"type:text"`
	ExpiresAt      time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) RecentSlugs() []string {
	if s.RecentlyViewed == "" {
		return nil
	}
	return strings.Split(s.RecentlyViewed, ",")
}

// PushRecent puts slug at the front of the recently viewed list, keeping at
// most five entries. It reports whether the list changed.
func (s *Session) PushRecent(slug string) bool {
	slugs := s.RecentSlugs()
	for _, existing := range slugs {
		if existing == slug {
			return false
		}
	}
	slugs = append([]string{slug}, slugs...)
	if len(slugs) > maxRecentlyViewed {
		slugs = slugs[:maxRecentlyViewed]
	}
	s.RecentlyViewed = strings.Join(slugs, ",")
	return true
}
