package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.snapquip/internal/config"
	"io.winapps.snapquip/internal/handlers"
	"io.winapps.snapquip/internal/middleware"
)

const (
	AnalyzeImagePath = "/analyze-image"
	HealthPath       = "/health"
)

// NewRouter wires middleware and routes for the relay
func NewRouter(cfg *config.Config, analyzeHandler *handlers.AnalyzeHandler, logger *zap.SugaredLogger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestIDMiddleware(),
		middleware.RequestLoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	router.POST(AnalyzeImagePath, middleware.BodyLimitMiddleware(cfg.MaxBodyBytes), analyzeHandler.AnalyzeImage)
	router.GET(HealthPath, handlers.Health)

	return router
}

// NewHTTPServer wraps the router in an http.Server listening on the configured port
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
