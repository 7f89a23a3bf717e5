package repository

import (
	"context"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update persists name/password mutations and stamps ModifiedOn.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	MarkVerified(ctx context.Context, id string) (*domain.User, error)
}
