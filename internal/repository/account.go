package repository

import (
	"context"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error)

	// SetKey stores the provider credential blob after a completed exchange.
	SetKey(ctx context.Context, id, key string) (*domain.Account, error)

	// CountByName counts the owner's accounts with exactly this name,
	// used to auto-dedup colliding names before insert.
	CountByName(ctx context.Context, ownerID, name string) (int, error)
}
