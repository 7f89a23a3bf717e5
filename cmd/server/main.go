package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vineet-ld/masterdrive-api/config"
	"github.com/vineet-ld/masterdrive-api/internal/auth"
	"github.com/vineet-ld/masterdrive-api/internal/drive"
	"github.com/vineet-ld/masterdrive-api/internal/email"
	"github.com/vineet-ld/masterdrive-api/internal/health"
	"github.com/vineet-ld/masterdrive-api/internal/infrastructure/postgres"
	ctxlog "github.com/vineet-ld/masterdrive-api/internal/log"
	"github.com/vineet-ld/masterdrive-api/internal/metrics"
	"github.com/vineet-ld/masterdrive-api/internal/token"
	httptransport "github.com/vineet-ld/masterdrive-api/internal/transport/http"
	"github.com/vineet-ld/masterdrive-api/internal/transport/http/handler"
	"github.com/vineet-ld/masterdrive-api/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)

	ledger := token.NewLedger(token.NewCodec([]byte(cfg.JWTSecret)), tokenRepo, userRepo)
	hasher := auth.NewHasher(cfg.BcryptCost)
	mailer := email.NewMailer(
		email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger),
		cfg.FrontendBaseURL,
		logger,
	)
	drives := drive.NewFactory(drive.Config{
		FrontendBaseURL:      cfg.FrontendBaseURL,
		GoogleClientID:       cfg.GoogleDriveClientID,
		GoogleClientSecret:   cfg.GoogleDriveClientSecret,
		DropboxClientID:      cfg.DropboxClientID,
		OneDriveClientID:     cfg.OneDriveClientID,
		OneDriveClientSecret: cfg.OneDriveClientSecret,
	})

	userUsecase := usecase.NewUserUsecase(userRepo, ledger, hasher, mailer)
	userHandler := handler.NewUserHandler(userUsecase, logger)

	accountUsecase := usecase.NewAccountUsecase(accountRepo, drives, mailer)
	accountHandler := handler.NewAccountHandler(accountUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, ledger, accountRepo, userHandler, accountHandler),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
