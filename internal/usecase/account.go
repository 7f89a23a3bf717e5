package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/drive"
	"github.com/vineet-ld/masterdrive-api/internal/metrics"
	"github.com/vineet-ld/masterdrive-api/internal/repository"
)

// driveFactory is the subset of drive.Factory the account flows need.
type driveFactory interface {
	For(t domain.ProviderType) (drive.Drive, error)
}

type accountMailer interface {
	SendAccountAdded(ctx context.Context, name, to, provider string)
}

type AccountUsecase struct {
	accounts repository.AccountRepository
	drives   driveFactory
	mailer   accountMailer
}

func NewAccountUsecase(accounts repository.AccountRepository, drives driveFactory, mailer accountMailer) *AccountUsecase {
	return &AccountUsecase{accounts: accounts, drives: drives, mailer: mailer}
}

type CreateAccountInput struct {
	Name string
	Type string
}

// Create registers an intent to link a provider and returns the account in
// its pending state together with the provider's authorization URL. A name
// colliding with another account of the same owner is deduped by suffixing;
// an empty name defaults to "<TYPE>_<millis>".
func (u *AccountUsecase) Create(ctx context.Context, owner *domain.User, input CreateAccountInput) (*domain.Account, string, error) {
	providerType := domain.ProviderType(input.Type)
	d, err := u.drives.For(providerType)
	if err != nil {
		return nil, "", err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = fmt.Sprintf("%s_%d", providerType, time.Now().UnixMilli())
	} else {
		taken, err := u.accounts.CountByName(ctx, owner.ID, name)
		if err != nil {
			return nil, "", err
		}
		if taken > 0 {
			name = fmt.Sprintf("%s_%d", name, time.Now().UnixMilli())
		}
	}

	account, err := u.accounts.Create(ctx, &domain.Account{
		Name:    name,
		Type:    providerType,
		OwnerID: owner.ID,
	})
	if err != nil {
		metrics.AccountLinksTotal.WithLabelValues(string(providerType), "error").Inc()
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	metrics.AccountLinksTotal.WithLabelValues(string(providerType), "pending").Inc()
	u.mailer.SendAccountAdded(ctx, owner.Name, owner.Email, string(providerType))
	return account, d.AuthURL(), nil
}

// Authorize completes the link: the authorization code is exchanged for the
// provider credential blob, which is stored write-once in the account key.
func (u *AccountUsecase) Authorize(ctx context.Context, account *domain.Account, code string) (*domain.Account, error) {
	d, err := u.drives.For(account.Type)
	if err != nil {
		return nil, err
	}

	blob, err := d.Exchange(ctx, code)
	if err != nil {
		metrics.AccountLinksTotal.WithLabelValues(string(account.Type), "error").Inc()
		return nil, fmt.Errorf("authorize account: %w", err)
	}

	authorized, err := u.accounts.SetKey(ctx, account.ID, blob)
	if err != nil {
		return nil, fmt.Errorf("store account key: %w", err)
	}

	metrics.AccountLinksTotal.WithLabelValues(string(account.Type), "authorized").Inc()
	return authorized, nil
}

// List returns the owner's accounts, oldest first.
func (u *AccountUsecase) List(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	accounts, err := u.accounts.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}
