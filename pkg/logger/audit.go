package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AuditEvent represents a security audit event emitted by the guard
type AuditEvent struct {
	EventType  string // "denied", "lockout", "reset"
	Origin     string
	Account    string // masked before logging
	RetryAfter int
	Metadata   map[string]string
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogGuardEvent logs a rate-limit decision event with a unique event ID.
// Account identifiers are masked; raw emails never reach the log stream.
func (al *AuditLogger) LogGuardEvent(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "rate_limit"),
		slog.String("event_type", event.EventType),
		slog.String("event_id", uuid.New().String()),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Origin != "" {
		attrs = append(attrs, slog.String("origin", event.Origin))
	}
	if event.Account != "" {
		attrs = append(attrs, slog.String("account", SanitizedEmail(event.Account)))
	}
	if event.RetryAfter > 0 {
		attrs = append(attrs, slog.Int("retry_after", event.RetryAfter))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if event.EventType == "denied" || event.EventType == "lockout" {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}
