// Package context carries request-scoped values from the delivery layer into use cases.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is the HTTP header that carries the request ID.
const HeaderXRequestID = "X-Request-Id"

// echoRequestIDKey is the echo.Context key used by responses and access logs.
const echoRequestIDKey = "request_id"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// RequestID returns the request ID stored on c, or a fresh UUID when none was set.
func RequestID(c echo.Context) string {
	if id, ok := c.Get(echoRequestIDKey).(string); ok && id != "" {
		return id
	}

	return uuid.New().String()
}

// SetRequestID stores the request ID on c.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(echoRequestIDKey, requestID)
}

// Scope returns ctx carrying requestID and a logger tagged with it.
// An empty requestID leaves the base logger untagged.
func Scope(ctx context.Context, requestID string, base *slog.Logger, attrs ...any) context.Context {
	logger := base
	if requestID != "" {
		logger = logger.With(slog.String("request_id", requestID))
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	return context.WithValue(ctx, loggerKey, logger)
}

// RequestIDFromContext returns the request ID scoped onto ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// LoggerOrDefault returns the logger scoped onto ctx, or fallback.
func LoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
