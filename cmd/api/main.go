package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"io.winapps.snapquip/internal/config"
	"io.winapps.snapquip/internal/handlers"
	"io.winapps.snapquip/internal/logging"
	"io.winapps.snapquip/internal/relay"
	"io.winapps.snapquip/internal/server"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	upstream := relay.New(cfg)
	analyzeHandler := handlers.NewAnalyzeHandler(cfg, upstream, logger)

	router := server.NewRouter(cfg, analyzeHandler, logger)
	srv := server.NewHTTPServer(cfg, router)

	// Start server in a goroutine
	go func() {
		credential := upstream.Credential()
		logger.Infow("server starting",
			"addr", srv.Addr,
			"upstream", cfg.BaseURL,
			"api_key_configured", credential.Exists,
			"api_key_format", credential.Format(),
			"propagate_upstream_status", cfg.PropagateUpstreamStatus,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalw("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
