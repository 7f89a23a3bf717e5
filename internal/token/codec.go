package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vineet-ld/masterdrive-api/internal/domain"
)

// Codec signs and verifies the compact token strings handed out to clients.
// Tokens carry a subject, a purpose, an issue time, and a unique id — no
// expiry claim. A token stays valid until its ledger entry is revoked, which
// is the system's deliberate revocation-only lifetime policy.
type Codec struct {
	key []byte
}

func NewCodec(key []byte) *Codec {
	return &Codec{key: key}
}

type claims struct {
	jwt.RegisteredClaims
	Purpose domain.Purpose `json:"purpose"`
}

// Issue signs a token for the given subject. The subject is a user ID, or
// the user's email for verification tokens. The jti claim makes every mint
// distinct: two tokens for the same (subject, purpose) are different strings,
// which is what lets each device session hold its own ledger entry.
func (c *Codec) Issue(subject string, purpose domain.Purpose) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(time.Now()),
			ID:       uuid.NewString(),
		},
		Purpose: purpose,
	})
	signed, err := t.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify recovers the subject and purpose from a token string. It proves the
// token was produced by this process and not altered; it does not consult the
// ledger — liveness is layered on by Ledger.Resolve.
func (c *Codec) Verify(tokenString string) (string, domain.Purpose, error) {
	if tokenString == "" {
		return "", "", domain.ErrTokenInvalid
	}

	var cl claims
	parsed, err := jwt.ParseWithClaims(tokenString, &cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.key, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", domain.ErrTokenInvalid
	}

	if cl.Subject == "" || cl.Purpose == "" {
		return "", "", domain.ErrTokenInvalid
	}
	return cl.Subject, cl.Purpose, nil
}
