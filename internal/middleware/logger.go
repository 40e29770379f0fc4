package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID     = "X-Request-ID"
	contextKeyRequestID = "request_id"
)

// Logger logs one line per request and tags it with a request id, taken from
// X-Request-ID or generated.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(contextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		if query != "" {
			path = path + "?" + query
		}

		status := c.Writer.Status()
		attrs := []any{
			"requestId", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"clientIp", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", attrs...)
		case status >= 400:
			logger.Warn("HTTP request", attrs...)
		default:
			logger.Info("HTTP request", attrs...)
		}
	}
}

// GetRequestID request id set by Logger
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
