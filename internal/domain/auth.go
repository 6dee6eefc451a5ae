package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrTokenInvalid = errors.New("token is invalid or expired")
	ErrUnauthorized = errors.New("unauthorized")
)

// User is a row of the credential store. PasswordHash is a bcrypt hash and
// never leaves the process.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
