package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/metrics"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/httperr"
)

// accountFinder is the subset of repository.AccountRepository this gate needs.
type accountFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

// AccountOwner runs after Auth. It loads the account from the :id path
// parameter and rejects the request unless the authenticated user owns it.
// Unknown and malformed ids are both reported as not found.
func AccountOwner(accounts accountFinder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.Param("id")
		if _, err := uuid.Parse(accountID); err != nil {
			httperr.Abort(c, logger, domain.ErrAccountNotFound)
			return
		}

		account, err := accounts.FindByID(c.Request.Context(), accountID)
		if err != nil {
			httperr.Abort(c, logger, err)
			return
		}

		if account.OwnerID != CurrentUser(c).ID {
			metrics.GateFailuresTotal.WithLabelValues("account_owner").Inc()
			httperr.Abort(c, logger, domain.ErrNotOwner)
			return
		}

		c.Set(ctxAccountKey, account)
		c.Next()
	}
}

// CurrentAccount returns the account the ownership gate attached.
func CurrentAccount(c *gin.Context) *domain.Account {
	account, _ := c.MustGet(ctxAccountKey).(*domain.Account)
	return account
}
