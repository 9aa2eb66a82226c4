package models

import "time"

const (
	PermCreateComment = "create_comment"
	PermPublishPost   = "publish_post"
)

// KnownPermissions lists the codenames accepted by the grant command.
var KnownPermissions = []string{PermCreateComment, PermPublishPost}

type UserPermission struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_perm"`
	Codename  string    `json:"codename" gorm:"size:100;not null;uniqueIndex:idx_user_perm"`
	CreatedAt time.Time `json:"created_at"`
}

func IsKnownPermission(codename string) bool {
	for _, p := range KnownPermissions {
		if p == codename {
			return true
		}
	}
	return false
}
