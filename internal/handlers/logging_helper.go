package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.snapquip/internal/middleware"
)

func requestContextFields(c *gin.Context) []interface{} {
	return []interface{}{
		"request_id", c.GetString(middleware.RequestIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"query", c.Request.URL.RawQuery,
		"client_ip", c.ClientIP(),
	}
}

func logWithContext(logger *zap.SugaredLogger, c *gin.Context, level string, msg string, fields ...interface{}) {
	if logger == nil {
		return
	}
	base := requestContextFields(c)
	all := append(base, fields...)
	switch level {
	case "debug":
		logger.Debugw(msg, all...)
	case "warn":
		logger.Warnw(msg, all...)
	case "error":
		logger.Errorw(msg, all...)
	default:
		logger.Infow(msg, all...)
	}
}

func (h *AnalyzeHandler) logError(c *gin.Context, err error, msg string, fields ...interface{}) {
	if h.logger == nil {
		return
	}
	logWithContext(h.logger, c, "error", msg, append(fields, "error", err)...)
}
