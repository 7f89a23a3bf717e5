package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/httperr"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/middleware"
	"github.com/vineet-ld/masterdrive-api/internal/usecase"
)

// accountService is the subset of usecase.AccountUsecase the handler needs.
type accountService interface {
	Create(ctx context.Context, owner *domain.User, input usecase.CreateAccountInput) (*domain.Account, string, error)
	Authorize(ctx context.Context, account *domain.Account, code string) (*domain.Account, error)
	List(ctx context.Context, ownerID string) ([]*domain.Account, error)
}

type AccountHandler struct {
	accounts accountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts accountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger.With("component", "account_handler")}
}

// accountResponse never carries the provider key or the owner reference.
type accountResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	CreatedOn  time.Time  `json:"createdOn"`
	ModifiedOn *time.Time `json:"modifiedOn"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:         a.ID,
		Name:       a.Name,
		Type:       string(a.Type),
		CreatedOn:  a.CreatedOn,
		ModifiedOn: a.ModifiedOn,
	}
}

type createAccountRequest struct {
	Name string `json:"name" binding:"omitempty,max=50"`
	Type string `json:"type" binding:"required"`
}

type createAccountResponse struct {
	Account accountResponse `json:"account"`
	AuthURL string          `json:"authUrl"`
}

// POST /account — registers the link intent and hands back the provider's
// authorization URL.
func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.RespondValidation(c, h.logger, err)
		return
	}

	account, authURL, err := h.accounts.Create(c.Request.Context(), middleware.CurrentUser(c), usecase.CreateAccountInput{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, createAccountResponse{
		Account: toAccountResponse(account),
		AuthURL: authURL,
	})
}

type authorizeAccountRequest struct {
	Code string `json:"code" binding:"required"`
}

// PATCH /account/:id — completes the provider authorization. The ownership
// gate already loaded the account and proved the caller owns it.
func (h *AccountHandler) Authorize(c *gin.Context) {
	var req authorizeAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.RespondValidation(c, h.logger, err)
		return
	}

	account, err := h.accounts.Authorize(c.Request.Context(), middleware.CurrentAccount(c), req.Code)
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

// GET /account/:id
func (h *AccountHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, toAccountResponse(middleware.CurrentAccount(c)))
}

// GET /accounts
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	c.JSON(http.StatusOK, out)
}
