package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bivex/receipt-verify/internal/application/command"
	"github.com/bivex/receipt-verify/internal/infrastructure/config"
	"github.com/bivex/receipt-verify/internal/infrastructure/external/appstore"
	"github.com/bivex/receipt-verify/internal/infrastructure/logging"
	app_handler "github.com/bivex/receipt-verify/internal/interfaces/http/handlers"
	app_middleware "github.com/bivex/receipt-verify/internal/interfaces/http/middleware"
	"github.com/bivex/receipt-verify/internal/interfaces/http/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logging.Init(&cfg.Sentry); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Sync()

	// Initialize Sentry if configured
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     cfg.Sentry.Release,
		}); err != nil {
			logging.Logger.Fatal("Failed to initialize Sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	logging.Logger.Info("Starting receipt validation server",
		zap.Int("port", cfg.Server.Port),
		zap.String("bundle_id", cfg.AppStore.BundleID),
		zap.String("environment", cfg.Sentry.Environment),
	)

	// Initialize upstream client and command
	verifier := appstore.NewClient(
		cfg.AppStore.SharedSecret,
		cfg.AppStore.VerifyTimeout,
		logging.WithComponent("appstore-client"),
	)
	validateCmd := command.NewValidateReceiptCommand(
		verifier,
		cfg.AppStore,
		logging.WithComponent("receipt-validator"),
	)

	// Initialize handlers
	receiptHandler := app_handler.NewReceiptHandler(validateCmd, cfg.AppStore.CacheTTL)

	// Setup Gin router
	if cfg.Sentry.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		logging.RequestMiddleware(logging.Logger),
		app_middleware.CORS(),
	)

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		response.Invalid(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		v1.POST("/receipt/verify", receiptHandler.ValidateReceipt)
	}

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	go func() {
		logging.Logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logging.Logger.Info("Server exited")
}
