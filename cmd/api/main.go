package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/radio-transcriber/pkg/validator"

	_ "github.com/johnquangdev/radio-transcriber/docs"
	"github.com/johnquangdev/radio-transcriber/internal/adapter/handler"
	"github.com/johnquangdev/radio-transcriber/internal/app"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
	"github.com/johnquangdev/radio-transcriber/pkg/logger"
)

// @title           Radio Transcriber API
// @version         1.0
// @description     Episode segmentation and speaker attribution for Spanish radio transcripts with an English narrator

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the API key.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	// Initialize dependencies
	zl.Info("🔧 Initializing dependencies...")
	application, err := app.New(context.Background(), cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize pipeline", zap.Error(err))
	}
	defer application.Close()

	transcriptHandler := handler.NewTranscriptHandler(application.Service, cfg.Input.AudioDir, cfg.Input.Extensions, zl)
	zl.Info("✅ Transcript handler initialized successfully")

	// Setup router with handlers
	zl.Info("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, transcriptHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		zl.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("health", fmt.Sprintf("http://%s/health", addr)),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zl.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		zl.Error("❌ Server forced to shutdown", zap.Error(err))
		return
	}

	zl.Info("✅ Server stopped gracefully")
}
