package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vineet-ld/masterdrive-api/internal/repository"
	"github.com/vineet-ld/masterdrive-api/internal/token"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/handler"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, ledger *token.Ledger, accountRepo repository.AccountRepository,
	userHandler *handler.UserHandler, accountHandler *handler.AccountHandler) *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authGate := middleware.Auth(ledger, logger)
	oneTimeGate := middleware.OneTime(ledger, logger)
	resetGate := middleware.Reset(ledger, logger)
	verifyGate := middleware.Verification(ledger, logger)
	ownerGate := middleware.AccountOwner(accountRepo, logger)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is online")
	})

	user := r.Group("/user")
	user.POST("", userHandler.Register)
	user.POST("/login", userHandler.Login)
	user.PUT("/verify", verifyGate, userHandler.Verify)
	user.GET("/me", authGate, userHandler.Me)
	user.PUT("", authGate, userHandler.Update)
	user.DELETE("/logout", authGate, userHandler.Logout)
	user.DELETE("/logout/all", authGate, userHandler.LogoutAll)
	user.POST("/password/reset/init", userHandler.ResetInit)
	user.GET("/password/reset/token", oneTimeGate, userHandler.ResetToken)
	user.PUT("/password/reset", resetGate, userHandler.ResetApply)

	account := r.Group("/account", authGate)
	account.POST("", accountHandler.Create)
	account.PATCH("/:id", ownerGate, accountHandler.Authorize)
	account.GET("/:id", ownerGate, accountHandler.Get)

	r.GET("/accounts", authGate, accountHandler.List)

	return r
}
