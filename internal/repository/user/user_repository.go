// File: internal/repository/user/user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/solent-ai/genchat/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email address already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.IsValid(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, r.mapConstraintError(err)
	}
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, errors.New("invalid user ID")
	}
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user.ID == 0 {
		return errors.New("invalid user ID")
	}
	if err := user.IsValid(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return r.mapConstraintError(err)
	}
	return nil
}

func (r *gormUserRepository) handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// mapConstraintError translates a unique-index violation into the matching
// sentinel. The DB index is what actually enforces uniqueness; service
// level pre-checks only make the common case friendlier.
func (r *gormUserRepository) mapConstraintError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "unique") {
		if strings.Contains(msg, "email") {
			return ErrDuplicateEmail
		}
		if strings.Contains(msg, "username") {
			return ErrDuplicateUsername
		}
	}
	return err
}
