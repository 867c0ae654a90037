package server

import (
	"log/slog"
	"time"

	"github.com/dmorgan81/imageination/internal/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestLogger puts a request-scoped logger into the request context and logs
// each request once it is handled. Health and metrics probes are not logged.
func requestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		logger := base.With("request_id", requestID)
		c.Request = c.Request.WithContext(log.NewContext(c.Request.Context(), logger))

		c.Next()

		if path == "/health" || path == "/metrics" {
			return
		}

		attrs := []any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			logger.Warn("request failed", append(attrs, "errors", c.Errors.String())...)
			return
		}
		logger.Info("request handled", attrs...)
	}
}
