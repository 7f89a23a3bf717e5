package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vineet-ld/masterdrive-api/internal/domain"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/httperr"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/middleware"
	"github.com/vineet-ld/masterdrive-api/internal/usecase"
)

// userService is the subset of usecase.UserUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type userService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	VerifyEmail(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User, input usecase.UpdateInput) (*domain.User, string, error)
	Logout(ctx context.Context, userID, authToken string) error
	LogoutAll(ctx context.Context, userID string) error
	InitPasswordReset(ctx context.Context, email string) error
	IssueResetToken(ctx context.Context, user *domain.User) (string, error)
	ApplyPasswordReset(ctx context.Context, user *domain.User, password string) (*domain.User, string, error)
}

type UserHandler struct {
	users  userService
	logger *slog.Logger
}

func NewUserHandler(users userService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("component", "user_handler")}
}

// userResponse never carries the password hash or token entries.
type userResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Verified   bool       `json:"verified"`
	CreatedOn  time.Time  `json:"createdOn"`
	ModifiedOn *time.Time `json:"modifiedOn"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Verified:   u.Verified,
		CreatedOn:  u.CreatedOn,
		ModifiedOn: u.ModifiedOn,
	}
}

type registerRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=25"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// POST /user
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.RespondValidation(c, h.logger, err)
		return
	}

	user, authToken, err := h.users.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}

	c.Header(middleware.HeaderAuth, authToken)
	c.JSON(http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /user/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.RespondValidation(c, h.logger, err)
		return
	}

	user, authToken, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}

	c.Header(middleware.HeaderAuth, authToken)
	c.JSON(http.StatusOK, toUserResponse(user))
}

// PUT /user/verify — behind the verification gate, which already consumed
// the presented token.
func (h *UserHandler) Verify(c *gin.Context) {
	user, err := h.users.VerifyEmail(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// GET /user/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(middleware.CurrentUser(c)))
}

type updateRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=25"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// PUT /user — 304 when nothing effectively changes; a password change
// returns a fresh x-auth and invalidates all previous ones.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.RespondValidation(c, h.logger, err)
		return
	}

	user, authToken, err := h.users.Update(c.Request.Context(), middleware.CurrentUser(c), usecase.UpdateInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrNoChanges) {
			c.Status(http.StatusNotModified)
			return
		}
		httperr.Respond(c, h.logger, err)
		return
	}

	if authToken != "" {
		c.Header(middleware.HeaderAuth, authToken)
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// DELETE /user/logout — revokes only the presented session token.
func (h *UserHandler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.users.Logout(c.Request.Context(), user.ID, middleware.CurrentAuthToken(c)); err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /user/logout/all
func (h *UserHandler) LogoutAll(c *gin.Context) {
	if err := h.users.LogoutAll(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type resetInitRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /user/password/reset/init — emails a one-time code; 202 on success.
func (h *UserHandler) ResetInit(c *gin.Context) {
	var req resetInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.RespondValidation(c, h.logger, err)
		return
	}

	if err := h.users.InitPasswordReset(c.Request.Context(), req.Email); err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// GET /user/password/reset/token — behind the one-time gate; the temp code
// is already consumed, the reset token goes out in the x-reset header.
func (h *UserHandler) ResetToken(c *gin.Context) {
	resetToken, err := h.users.IssueResetToken(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}

	c.Header(middleware.HeaderReset, resetToken)
	c.Status(http.StatusOK)
}

type resetApplyRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// PUT /user/password/reset — behind the reset gate. Changing the password
// revokes every outstanding token and signs the user back in.
func (h *UserHandler) ResetApply(c *gin.Context) {
	var req resetApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.RespondValidation(c, h.logger, err)
		return
	}

	user, authToken, err := h.users.ApplyPasswordReset(c.Request.Context(), middleware.CurrentUser(c), req.Password)
	if err != nil {
		httperr.Respond(c, h.logger, err)
		return
	}

	c.Header(middleware.HeaderAuth, authToken)
	c.JSON(http.StatusOK, toUserResponse(user))
}
