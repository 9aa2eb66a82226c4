package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Username    string           `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email       string           `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Password    string           `json:"-" gorm:"not null"`
	FirstName   string           `json:"first_name" gorm:"size:150"`
	LastName    string           `json:"last_name" gorm:"size:150"`
	Bio         string           `json:"bio" gorm:"type:text"`
	Avatar      string           `json:"avatar,omitempty"`
	IsStaff     bool             `json:"is_staff" gorm:"default:false"`
	IsSuperuser bool             `json:"-" gorm:"default:false"`
	IsActive    bool             `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time        `json:"date_joined"`
	UpdatedAt   time.Time        `json:"-"`
	Posts       []Post           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Permissions []UserPermission `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type CreateUserRequest struct {
	Username        string `json:"username" form:"username" binding:"required,min=3,max=150,username"`
	FirstName       string `json:"first_name" form:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" form:"last_name" binding:"max=150"`
	Email           string `json:"email" form:"email" binding:"required,email,max=254"`
	Password        string `json:"password" form:"password" binding:"required,min=8,max=128"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=150"`
	Password string `json:"password" form:"password" binding:"required,max=150"`
	Next     string `json:"next" form:"next"`
}

// UpdateProfileRequest carries the editable profile fields. The avatar file
// travels separately as a multipart part.
type UpdateProfileRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=150,username"`
	Email    string `json:"email" form:"email" binding:"required,email,max=254"`
	Bio      string `json:"bio" form:"bio" binding:"max=5000"`
}

func (u *User) HashPassword() error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// FullName is empty when neither name part is set.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// HasPerm reports whether the user holds the permission codename. Superusers
// hold every permission; Permissions must be preloaded for everyone else.
func (u *User) HasPerm(codename string) bool {
	if u == nil || !u.IsActive {
		return false
	}
	if u.IsSuperuser {
		return true
	}
	for _, p := range u.Permissions {
		if p.Codename == codename {
			return true
		}
	}
	return false
}
