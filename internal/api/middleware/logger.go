package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"ems-mock/internal/logger"
)

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Logger writes a structured access log line per request and reports it to
// rec when rec is not nil. Routes are labelled by their template, not the
// raw path.
func Logger(log logger.Logger, rec RequestRecorder) gin.HandlerFunc {
	if log == nil {
		log = logger.NopLogger{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		log.Infow("request", map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      route,
			"status":     status,
			"latency_ms": float64(elapsed.Microseconds()) / 1000,
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
		})
		if rec != nil {
			rec.ObserveRequest(c.Request.Method, route, status, elapsed)
		}
	}
}
