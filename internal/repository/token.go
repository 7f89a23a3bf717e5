package repository

import (
	"context"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

// TokenRepository stores live token entries keyed by the token string itself.
type TokenRepository interface {
	Add(ctx context.Context, entry *domain.TokenEntry) error

	// Owner returns the user ID holding a live entry for (token, purpose),
	// or domain.ErrTokenInvalid if no such entry exists.
	Owner(ctx context.Context, token string, purpose domain.Purpose) (string, error)

	// Claim atomically removes the entry for (token, purpose) and returns the
	// owning user ID. A second claim of the same token fails with
	// domain.ErrTokenInvalid, which is what makes single-use tokens single-use.
	Claim(ctx context.Context, token string, purpose domain.Purpose) (string, error)

	DeleteByPurpose(ctx context.Context, userID string, purpose domain.Purpose) error
	DeleteAll(ctx context.Context, userID string) error
	DeleteToken(ctx context.Context, userID, token string) error
}
