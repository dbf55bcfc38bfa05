// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// UserIDKey is the context key for the Telegram user ID
	UserIDKey contextKey = "user_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and user_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("request_id", requestID)),
		}
	}

	if userID, ok := ctx.Value(UserIDKey).(int64); ok && userID != 0 {
		newLogger = newLogger.WithUserID(userID)
	}

	return newLogger
}

// WithUserID returns a logger with the Telegram user ID attached
func (l *Logger) WithUserID(userID int64) *Logger {
	return &Logger{
		Logger: l.With(slog.Int64("user_id", userID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// Turn logs one handled conversational turn: the user, the session state
// the turn started in, and the state it ended in.
func (l *Logger) Turn(userID int64, fromState, toState string) {
	l.Info("turn_handled",
		slog.Int64("user_id", userID),
		slog.String("from_state", fromState),
		slog.String("to_state", toState),
	)
}

// LookupMiss logs an external product lookup that produced no data.
// Unavailability and a genuine miss drive the same conversational branch,
// so the distinction only surfaces here.
func (l *Logger) LookupMiss(barcode string, unavailable bool) {
	if unavailable {
		l.Warn("lookup_unavailable", slog.String("barcode", barcode))
		return
	}
	l.Info("lookup_miss", slog.String("barcode", barcode))
}

// StoreError logs persistence errors
func (l *Logger) StoreError(operation string, err error) {
	l.Error("store_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
