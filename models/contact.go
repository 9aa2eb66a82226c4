package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type ContactMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:254;not null;index"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

type CreateContactRequest struct {
	Name    string `json:"name" form:"name" binding:"required,max=100"`
	Email   string `json:"email" form:"email" binding:"required,email,max=254"`
	Message string `json:"message" form:"message" binding:"required"`
}

// ShortMessage truncates the message to 75 runes for list views.
func (m *ContactMessage) ShortMessage() string {
	if utf8.RuneCountInString(m.Message) <= 75 {
		return m.Message
	}
	return string([]rune(m.Message)[:75]) + "..."
}

func (m *ContactMessage) String() string {
	return fmt.Sprintf("Message from %s (%s) on %s", m.Name, m.Email, m.CreatedAt.Format("2006-01-02 15:04"))
}
