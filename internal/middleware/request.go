package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
)

const (
	RequestIDHeader  = "X-Request-ID"
	ContextRequestID = "requestID"
)

// RequestID reuses the caller's X-Request-ID or generates one, and
// attaches a request-scoped logger to the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)

		l := logger.FromContext(c.Request.Context()).With().Str("request_id", id).Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()
	}
}

// AccessLog writes one line per request and counts it by route pattern.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.IncHTTPRequest(c.Request.Method, route, strconv.Itoa(status))

		l := zerolog.Ctx(c.Request.Context())
		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}
