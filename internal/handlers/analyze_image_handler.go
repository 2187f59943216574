package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.snapquip/internal/config"
	analyzemodels "io.winapps.snapquip/internal/models/analyze_image"
	"io.winapps.snapquip/internal/relay"
)

const failedToProcessImage = "Failed to process image"

// Forwarder sends a raw messages payload upstream
type Forwarder interface {
	Forward(ctx context.Context, body []byte) ([]byte, error)
	Credential() relay.CredentialCheck
}

type AnalyzeHandler struct {
	relay             Forwarder
	logger            *zap.SugaredLogger
	propagateUpstream bool
}

// NewAnalyzeHandler creates the handler behind POST /analyze-image
func NewAnalyzeHandler(cfg *config.Config, forwarder Forwarder, logger *zap.SugaredLogger) *AnalyzeHandler {
	return &AnalyzeHandler{
		relay:             forwarder,
		logger:            logger,
		propagateUpstream: cfg.PropagateUpstreamStatus,
	}
}

// AnalyzeImage relays an analysis request to the upstream messages API
func (h *AnalyzeHandler) AnalyzeImage(c *gin.Context) {
	logWithContext(h.logger, c, "info", "received image analysis request")
	logWithContext(h.logger, c, "info", "api key check", h.relay.Credential().Fields()...)

	body, err := c.GetRawData()
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		h.logError(c, err, "failed to read request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.relay.Forward(c.Request.Context(), body)
	if err != nil {
		h.writeUpstreamError(c, err)
		return
	}

	logWithContext(h.logger, c, "info", "received response from upstream", "response_bytes", len(resp))
	c.Data(http.StatusOK, "application/json; charset=utf-8", resp)
}

func (h *AnalyzeHandler) writeUpstreamError(c *gin.Context, err error) {
	var upstreamErr *relay.UpstreamError
	if !errors.As(err, &upstreamErr) {
		upstreamErr = &relay.UpstreamError{Err: err}
	}

	h.logError(c, err, "upstream request failed",
		"error_message", upstreamErr.Err,
		"api_status", upstreamErr.StatusCode,
		"api_status_text", upstreamErr.Status,
		"api_response", string(upstreamErr.Body),
	)

	// Upstream status codes collapse to 500 unless propagation is switched on
	status := http.StatusInternalServerError
	if h.propagateUpstream && upstreamErr.StatusCode >= 400 {
		status = upstreamErr.StatusCode
	}

	c.JSON(status, analyzemodels.ErrorResponse{
		Error:   failedToProcessImage,
		Details: upstreamErr.Details(),
		Message: upstreamErr.Message(),
	})
}
