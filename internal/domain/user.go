package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid user credentials")
	ErrTokenInvalid       = errors.New("token is invalid or revoked")
	ErrNotVerified        = errors.New("email address is not verified")
)

// Purpose constrains which gate accepts a token.
type Purpose string

const (
	PurposeAuth   Purpose = "auth"
	PurposeTemp   Purpose = "temp"
	PurposeReset  Purpose = "reset"
	PurposeVerify Purpose = "verify"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Verified     bool
	CreatedOn    time.Time
	ModifiedOn   *time.Time // nil until the first mutating update
}

// TokenEntry is one live grant owned by a user. Entries carry no expiry;
// a token stays valid until its entry is revoked.
type TokenEntry struct {
	UserID    string
	Purpose   Purpose
	Token     string
	CreatedOn time.Time
}
