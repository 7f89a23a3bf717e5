package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

const accountColumns = `id, name, type, owner_id, key, created_on, modified_on`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (name, type, owner_id)
		VALUES ($1, $2, $3)
		RETURNING ` + accountColumns

	row := r.pool.QueryRow(ctx, query, account.Name, account.Type, account.OwnerID)
	return scanAccount(row)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *AccountRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_on`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) SetKey(ctx context.Context, id, key string) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET    key = $2, modified_on = NOW()
		WHERE  id = $1
		RETURNING ` + accountColumns

	return scanAccount(r.pool.QueryRow(ctx, query, id, key))
}

func (r *AccountRepository) CountByName(ctx context.Context, ownerID, name string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM accounts WHERE owner_id = $1 AND name = $2`,
		ownerID, name,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.OwnerID, &a.Key, &a.CreatedOn, &a.ModifiedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &a, nil
}
