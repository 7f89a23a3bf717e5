package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/metrics"
	"github.com/vineet-ld/masterdrive-api/internal/repository"
)

// Ledger is the authoritative mapping from (user, purpose) to the live token
// strings. Tokens are only minted, looked up, and revoked through it. A token
// counts as valid only when both checks pass: the signature verifies AND a
// live entry for the exact (token, purpose) pair still exists.
type Ledger struct {
	codec  *Codec
	tokens repository.TokenRepository
	users  repository.UserRepository
}

func NewLedger(codec *Codec, tokens repository.TokenRepository, users repository.UserRepository) *Ledger {
	return &Ledger{codec: codec, tokens: tokens, users: users}
}

// Issue mints a token for the user and records its entry. The entry is
// persisted before the token is returned; if persistence fails the token is
// discarded and never reaches the caller.
func (l *Ledger) Issue(ctx context.Context, user *domain.User, purpose domain.Purpose) (string, error) {
	subject := user.ID
	if purpose == domain.PurposeVerify {
		subject = user.Email
	}

	signed, err := l.codec.Issue(subject, purpose)
	if err != nil {
		return "", err
	}

	entry := &domain.TokenEntry{UserID: user.ID, Purpose: purpose, Token: signed}
	if err := l.tokens.Add(ctx, entry); err != nil {
		return "", fmt.Errorf("record token: %w", err)
	}

	metrics.TokensIssuedTotal.WithLabelValues(string(purpose)).Inc()
	return signed, nil
}

// Resolve maps a presented token back to its user without consuming it.
// Returns domain.ErrTokenInvalid when the signature fails, the purpose does
// not match, no live entry exists, or the entry's owner does not match the
// signed subject.
func (l *Ledger) Resolve(ctx context.Context, tokenString string, purpose domain.Purpose) (*domain.User, error) {
	subject, err := l.verifySubject(tokenString, purpose)
	if err != nil {
		return nil, err
	}

	ownerID, err := l.tokens.Owner(ctx, tokenString, purpose)
	if err != nil {
		return nil, err
	}

	return l.ownerMatching(ctx, ownerID, subject, purpose)
}

// Consume atomically claims the presented token and removes every remaining
// entry of the same purpose for its owner. A replayed token fails the claim
// even though its signature still verifies.
func (l *Ledger) Consume(ctx context.Context, tokenString string, purpose domain.Purpose) (*domain.User, error) {
	subject, err := l.verifySubject(tokenString, purpose)
	if err != nil {
		return nil, err
	}

	ownerID, err := l.tokens.Claim(ctx, tokenString, purpose)
	if err != nil {
		return nil, err
	}

	user, err := l.ownerMatching(ctx, ownerID, subject, purpose)
	if err != nil {
		return nil, err
	}

	if err := l.tokens.DeleteByPurpose(ctx, ownerID, purpose); err != nil {
		return nil, fmt.Errorf("consume remaining %s tokens: %w", purpose, err)
	}

	metrics.TokensRevokedTotal.WithLabelValues(string(purpose)).Inc()
	return user, nil
}

// RevokeAll removes every entry of the given purpose for the user.
func (l *Ledger) RevokeAll(ctx context.Context, userID string, purpose domain.Purpose) error {
	if err := l.tokens.DeleteByPurpose(ctx, userID, purpose); err != nil {
		return fmt.Errorf("revoke %s tokens: %w", purpose, err)
	}
	metrics.TokensRevokedTotal.WithLabelValues(string(purpose)).Inc()
	return nil
}

// RevokeEverything removes the user's entries across all purposes. Used when
// a password change must invalidate every outstanding grant.
func (l *Ledger) RevokeEverything(ctx context.Context, userID string) error {
	if err := l.tokens.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}
	metrics.TokensRevokedTotal.WithLabelValues("all").Inc()
	return nil
}

// Revoke removes exactly the one presented entry (single-device logout).
func (l *Ledger) Revoke(ctx context.Context, userID, tokenString string) error {
	if err := l.tokens.DeleteToken(ctx, userID, tokenString); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	metrics.TokensRevokedTotal.WithLabelValues(string(domain.PurposeAuth)).Inc()
	return nil
}

func (l *Ledger) verifySubject(tokenString string, purpose domain.Purpose) (string, error) {
	subject, claimed, err := l.codec.Verify(tokenString)
	if err != nil {
		return "", err
	}
	if claimed != purpose {
		return "", domain.ErrTokenInvalid
	}
	return subject, nil
}

// ownerMatching loads the user for a live entry and checks that the entry
// owner agrees with the signed subject, so one user's token can never
// resolve to another.
func (l *Ledger) ownerMatching(ctx context.Context, ownerID, subject string, purpose domain.Purpose) (*domain.User, error) {
	if purpose == domain.PurposeVerify {
		user, err := l.users.FindByEmail(ctx, subject)
		if err != nil || user.ID != ownerID {
			return nil, domain.ErrTokenInvalid
		}
		return user, nil
	}

	if ownerID != subject {
		return nil, domain.ErrTokenInvalid
	}
	user, err := l.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}
