package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/wa-validator/internal/auth"
	"github.com/octobees/wa-validator/internal/config"
	"github.com/octobees/wa-validator/internal/database"
	"github.com/octobees/wa-validator/internal/handler"
	"github.com/octobees/wa-validator/internal/logger"
	middlewarepkg "github.com/octobees/wa-validator/internal/middleware"
	"github.com/octobees/wa-validator/internal/oracle/carrier"
	"github.com/octobees/wa-validator/internal/oracle/contactsearch"
	"github.com/octobees/wa-validator/internal/repository"
	"github.com/octobees/wa-validator/internal/router"
	"github.com/octobees/wa-validator/internal/service"
	"github.com/octobees/wa-validator/internal/sheets"
)

func main() {
	if err := logger.Bootstrap(); err != nil {
		fmt.Fprintf(os.Stderr, "init bootstrap logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("failed to load config", zap.Error(err))
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		zap.L().Fatal("failed to init logger", zap.Error(err))
	}
	defer func() { _ = zap.L().Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		zap.L().Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		zap.L().Fatal("failed to migrate database", zap.Error(err))
	}

	// The Sheets client refreshes its token with this context for the life of the process.
	store, err := sheets.New(context.Background(), cfg.Sheets)
	if err != nil {
		zap.L().Fatal("failed to init google sheets", zap.Error(err))
	}

	var attempts auth.AttemptStore = auth.NewMemoryAttemptStore()
	if cfg.AttemptStore == "postgres" {
		attempts = repository.NewPGXAttemptStore(pool)
	}

	var lookup carrier.Client
	switch cfg.CarrierLookup {
	case "offline":
		lookup = carrier.NewOfflineClient()
	default:
		lookup = carrier.NewTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, carrier.WithBaseURL(cfg.Twilio.BaseURL))
	}
	search := contactsearch.NewAmplemarketClient(cfg.Amplemarket.APIKey, contactsearch.WithBaseURL(cfg.Amplemarket.BaseURL))

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	usersRepo := repository.NewPGXUsersRepository(pool)

	authService := service.NewAuthService(usersRepo, jwtManager, auth.NewAccountLockout(attempts))
	userService := service.NewUserService(usersRepo)
	customerService := service.NewCustomerService(store)
	validationService := service.NewValidationService(store, lookup)
	importService := service.NewImportService(store, service.NewEnrichmentService(search))

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, auth.NewClientLockout(attempts), cfg.TokenTTL, cfg.CookieSecure),
		Users:      handler.NewUserAdminHandler(userService),
		Customers:  handler.NewCustomersHandler(customerService),
		Validation: handler.NewValidationHandler(validationService),
		Import:     handler.NewImportHandler(importService),
		Search:     handler.NewSearchHandler(search),
		Export:     handler.NewExportHandler(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())
	e.Use(middlewarepkg.SecurityHeaders())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		zap.L().Info("api listening", zap.String("port", cfg.Port), zap.String("carrier_lookup", cfg.CarrierLookup), zap.String("attempt_store", cfg.AttemptStore))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("graceful shutdown failed", zap.Error(err))
	}
}
