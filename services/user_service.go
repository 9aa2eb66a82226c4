package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgUsernameTaken    = "A user with that username already exists."
	msgEmailTaken       = "A user with that email already exists."
	msgPasswordMismatch = "Passwords are not same!"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an active user holding defaultPerms. Password and
// confirmation must match exactly; uniqueness is reported per field.
func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest, defaultPerms []string) (*models.User, error) {
	if req.Password != req.PasswordConfirm {
		return nil, NewValidationError("password_confirm", msgPasswordMismatch)
	}

	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		IsActive:  true,
	}
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uerr := s.uniqueness(tx, user.Username, user.Email, 0); uerr != nil {
			return uerr
		}
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		return grant(tx, user.ID, defaultPerms...)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent signup; name the field that collided.
		if uerr := s.uniqueness(s.db.WithContext(ctx), user.Username, user.Email, 0); uerr != nil {
			err = uerr
		}
	}
	if err != nil {
		return nil, wrapUnlessValidation(err, "failed to register user")
	}

	return s.GetByID(ctx, user.ID)
}

// Authenticate checks credentials. Unknown users, inactive users and wrong
// passwords all produce the same ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Permissions").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Permissions").First(&user, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Permissions").Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user "+username)
	}
	return &user, nil
}

// UpdateProfile applies req to target on behalf of actor. A non-empty avatar
// replaces the stored avatar path.
func (s *UserService) UpdateProfile(ctx context.Context, actor, target *models.User, req *models.UpdateProfileRequest, avatar string) (*models.User, error) {
	if !CanModify(actor, target.ID) {
		return nil, ErrPermissionDenied
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	updates := map[string]interface{}{
		"username": username,
		"email":    email,
		"bio":      req.Bio,
	}
	if avatar != "" {
		updates["avatar"] = avatar
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uerr := s.uniqueness(tx, username, email, target.ID); uerr != nil {
			return uerr
		}
		return tx.Model(&models.User{ID: target.ID}).Updates(updates).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if uerr := s.uniqueness(s.db.WithContext(ctx), username, email, target.ID); uerr != nil {
			err = uerr
		}
	}
	if err != nil {
		return nil, wrapUnlessValidation(err, "failed to update profile")
	}

	return s.GetByID(ctx, target.ID)
}

// CreateSuperuser creates an active staff superuser.
func (s *UserService) CreateSuperuser(ctx context.Context, username, email, password string) (*models.User, error) {
	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    password,
		IsStaff:     true,
		IsSuperuser: true,
		IsActive:    true,
	}
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uerr := s.uniqueness(tx, username, email, 0); uerr != nil {
			return uerr
		}
		return tx.Omit(clause.Associations).Create(user).Error
	})
	if err != nil {
		return nil, wrapUnlessValidation(err, "failed to create superuser")
	}
	return user, nil
}

// GrantPermission gives username the permission codename. Granting twice is
// a no-op.
func (s *UserService) GrantPermission(ctx context.Context, username, codename string) error {
	if !models.IsKnownPermission(codename) {
		return NewValidationError("perm", fmt.Sprintf("Unknown permission %q.", codename))
	}
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return grant(s.db.WithContext(ctx), user.ID, codename)
}

func grant(tx *gorm.DB, userID uint, codenames ...string) error {
	for _, codename := range codenames {
		perm := models.UserPermission{UserID: userID, Codename: codename}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&perm).Error
		if err != nil {
			return fmt.Errorf("failed to grant %s: %w", codename, err)
		}
	}
	return nil
}

// uniqueness returns a *ValidationError naming the taken fields, nil when
// both are free, or the lookup error.
func (s *UserService) uniqueness(tx *gorm.DB, username, email string, excludeID uint) error {
	verr := &ValidationError{}
	for _, f := range []struct{ column, value, msg string }{
		{"username", username, msgUsernameTaken},
		{"email", email, msgEmailTaken},
	} {
		taken, err := s.taken(tx, f.column, f.value, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add(f.column, f.msg)
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func (s *UserService) taken(tx *gorm.DB, column, value string, excludeID uint) (bool, error) {
	q := tx.Model(&models.User{}).Where(column+" = ?", value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", column, err)
	}
	return count > 0, nil
}

func wrapUnlessValidation(err error, msg string) error {
	if _, ok := AsValidation(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
