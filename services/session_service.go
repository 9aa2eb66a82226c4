package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quill/models"
	"quill/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService keeps login sessions as rows and hands out signed tokens
// that point at them. Deleting the row revokes the token.
type SessionService struct {
	db     *gorm.DB
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(db *gorm.DB, secret string, ttl time.Duration) *SessionService {
	return &SessionService{db: db, secret: secret, ttl: ttl, now: utcNow}
}

// Timestamps are compared in SQL, so they are always stored in UTC.
func utcNow() time.Time {
	return time.Now().UTC()
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create opens a session for user and returns it with its token. Expired
// sessions of the same user are removed on the way.
func (s *SessionService) Create(ctx context.Context, user *models.User) (*models.Session, string, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	}

	db := s.db.WithContext(ctx)
	if err := db.Where("user_id = ? AND expires_at <= ?", user.ID, now).Delete(&models.Session{}).Error; err != nil {
		return nil, "", fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	if err := db.Omit("User").Create(session).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	token, err := utils.GenerateJWT(user.ID, session.ID, s.secret, s.ttl)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return session, token, nil
}

// Resolve validates token and returns its live session with the user and
// the user's permissions loaded.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, error) {
	claims, err := utils.ValidateJWT(token, s.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	var session models.Session
	err = s.db.WithContext(ctx).
		Preload("User").
		Preload("User.Permissions").
		Where("id = ? AND user_id = ?", claims.SessionID, claims.UserID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(s.now()) || session.User == nil || !session.User.IsActive {
		return nil, ErrInvalidSession
	}
	return &session, nil
}

// Delete ends a session. Deleting a missing session is not an error.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RememberView records slug at the front of the session's recently viewed
// list.
func (s *SessionService) RememberView(ctx context.Context, session *models.Session, slug string) error {
	if !session.PushRecent(slug) {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.Session{ID: session.ID}).
		Update("recently_viewed", session.RecentlyViewed).Error
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired session.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
