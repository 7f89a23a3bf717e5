package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

// TokenRepository keeps one row per live token, keyed by the token string.
// Rows are only ever inserted by the ledger and deleted on consumption or
// revocation, so existence of a row is what "still valid" means.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Add(ctx context.Context, entry *domain.TokenEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_tokens (token, user_id, purpose) VALUES ($1, $2, $3)`,
		entry.Token, entry.UserID, entry.Purpose,
	)
	if err != nil {
		return fmt.Errorf("insert token entry: %w", err)
	}
	return nil
}

func (r *TokenRepository) Owner(ctx context.Context, token string, purpose domain.Purpose) (string, error) {
	var userID string
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM user_tokens WHERE token = $1 AND purpose = $2`,
		token, purpose,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrTokenInvalid
		}
		return "", fmt.Errorf("lookup token entry: %w", err)
	}
	return userID, nil
}

// Claim deletes the entry and returns its owner in one statement, so two
// concurrent presentations of the same single-use token can never both win.
func (r *TokenRepository) Claim(ctx context.Context, token string, purpose domain.Purpose) (string, error) {
	var userID string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM user_tokens WHERE token = $1 AND purpose = $2 RETURNING user_id`,
		token, purpose,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrTokenInvalid
		}
		return "", fmt.Errorf("claim token entry: %w", err)
	}
	return userID, nil
}

func (r *TokenRepository) DeleteByPurpose(ctx context.Context, userID string, purpose domain.Purpose) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND purpose = $2`,
		userID, purpose,
	)
	if err != nil {
		return fmt.Errorf("delete token entries: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete token entries: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND token = $2 AND purpose = $3`,
		userID, token, domain.PurposeAuth,
	)
	if err != nil {
		return fmt.Errorf("delete token entry: %w", err)
	}
	return nil
}
