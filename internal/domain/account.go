package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNotOwner        = errors.New("not authorized to access the resource")
	ErrInvalidProvider = errors.New("account type is missing or invalid")
)

// ProviderType identifies a supported cloud-storage provider.
type ProviderType string

const (
	ProviderGoogleDrive ProviderType = "GOOGLE_DRIVE"
	ProviderDropbox     ProviderType = "DROPBOX"
	ProviderOneDrive    ProviderType = "ONE_DRIVE"
)

// Account is a user's link to a storage provider. Key stays nil until the
// authorization-code exchange completes and is never exposed to callers.
type Account struct {
	ID         string
	Name       string
	Type       ProviderType
	OwnerID    string
	Key        *string
	CreatedOn  time.Time
	ModifiedOn *time.Time
}

// Authorized reports whether the provider exchange has completed.
func (a *Account) Authorized() bool {
	return a.Key != nil
}
