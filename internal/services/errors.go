// File: internal/services/errors.go
package services

import "errors"

// Sentinel errors the HTTP layer maps onto status codes. Handlers do the
// mapping exactly once; services never write status codes themselves.
var (
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrEmailTaken           = errors.New("email address already registered")
	ErrUsernameTaken        = errors.New("username already taken")
)
