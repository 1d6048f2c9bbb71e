// File: internal/domain/user.go
package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account holder. Email is the login identifier; username is a
// required secondary handle. Both are unique at the persistence layer.
type User struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:80;not null"`
	FirstName    string    `json:"first_name" gorm:"size:30"`
	LastName     string    `json:"last_name" gorm:"size:30"`
	AvatarURL    string    `json:"avatar_url" gorm:"size:500"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"date_joined"`
}

// SetPassword hashes and stores the given plain-text password.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a plain-text password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// FullName returns "First Last", falling back to the username when both
// name fields are empty.
func (u *User) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}

func (u *User) IsValid() error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return errors.New("email address is invalid")
	}
	if len(u.Username) < 3 {
		return errors.New("username must be at least 3 characters")
	}
	return nil
}
