package services

import (
	"context"
	"fmt"
	"strings"

	"quill/models"
	"quill/observability"

	"gorm.io/gorm"
)

type ContactService struct {
	db      *gorm.DB
	metrics *observability.Metrics
}

func NewContactService(db *gorm.DB, metrics *observability.Metrics) *ContactService {
	return &ContactService{db: db, metrics: metrics}
}

// Create stores an anonymous contact message. Messages are never edited.
func (s *ContactService) Create(ctx context.Context, req *models.CreateContactRequest) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}

	verr := &ValidationError{}
	if msg.Name == "" {
		verr.Add("name", "This field is required.")
	}
	if msg.Message == "" {
		verr.Add("message", "This field is required.")
	}
	if !verr.Empty() {
		return nil, verr
	}

	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}
	s.metrics.ContactCreated(ctx)
	return msg, nil
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.ContactMessage{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact message %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact message %d: %w", id, ErrNotFound)
	}
	return nil
}
