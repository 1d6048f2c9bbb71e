// File: internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/solent-ai/genchat/internal/auth"
	"github.com/solent-ai/genchat/internal/domain"
	"github.com/solent-ai/genchat/internal/repository/user"
)

// RegisterInput carries the signup form fields. First and last name are
// optional; everything else is required.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// ProfileUpdateInput carries the editable profile fields.
type ProfileUpdateInput struct {
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// UserService handles registration, login and profile management.
type UserService struct {
	userRepo  user.UserRepository
	jwtSecret []byte
	logger    Logger
}

func NewUserService(userRepo user.UserRepository, jwtSecret string, logger Logger) *UserService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &UserService{userRepo: userRepo, jwtSecret: []byte(jwtSecret), logger: logger}
}

// Register creates a new active account. Email and username collisions
// surface as ErrEmailTaken / ErrUsernameTaken.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	newUser := &domain.User{
		Email:     strings.TrimSpace(strings.ToLower(in.Email)),
		Username:  strings.TrimSpace(in.Username),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		IsActive:  true,
	}
	if err := newUser.IsValid(); err != nil {
		return nil, err
	}
	if err := newUser.SetPassword(in.Password); err != nil {
		return nil, err
	}

	created, err := s.userRepo.Create(ctx, newUser)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, user.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", created.ID)
	return created, nil
}

// Login checks credentials against the stored hash and issues a JWT.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	account, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !account.IsActive {
		return "", nil, ErrAccountDisabled
	}
	if !account.CheckPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(account.ID, s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}
	return token, account, nil
}

// ValidateToken resolves a JWT back to its user ID.
func (s *UserService) ValidateToken(tokenString string) (uint, error) {
	return auth.ValidateToken(tokenString, s.jwtSecret)
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	account, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile edits name, email and avatar. Username and password are
// not editable here.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdateInput) (*domain.User, error) {
	account, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	account.Email = strings.TrimSpace(strings.ToLower(in.Email))
	account.FirstName = strings.TrimSpace(in.FirstName)
	account.LastName = strings.TrimSpace(in.LastName)
	account.AvatarURL = strings.TrimSpace(in.AvatarURL)
	if err := account.IsValid(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, account); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return account, nil
}
