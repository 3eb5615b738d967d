// Package logger provides structured and security-event logging for the
// estate backend.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// New returns a JSON slog.Logger writing to stdout at the given level.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stdout, level)
}

// NewWithWriter returns a JSON slog.Logger writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// SecurityLogger provides methods for logging security-related events.
// It ensures sensitive data is never logged.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a new SecurityLogger with JSON output.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{
		logger: New(slog.LevelInfo),
	}
}

// NewSecurityLoggerWithHandler creates a SecurityLogger with a custom handler.
func NewSecurityLoggerWithHandler(handler slog.Handler) *SecurityLogger {
	return &SecurityLogger{
		logger: slog.New(handler),
	}
}

// FromLogger wraps an existing slog.Logger. A nil logger yields nil, and
// every method on a nil *SecurityLogger is a no-op.
func FromLogger(l *slog.Logger) *SecurityLogger {
	if l == nil {
		return nil
	}
	return &SecurityLogger{logger: l}
}

// AuthFailure logs a failed dashboard unlock or a rejected token.
// Never logs the submitted password or token.
func (s *SecurityLogger) AuthFailure(ip, path, reason string) {
	if s == nil {
		return
	}
	s.logger.Warn("authentication_failure",
		slog.String("event_type", "auth_failure"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// AuthSuccess logs a dashboard unlock.
func (s *SecurityLogger) AuthSuccess(ip, path string) {
	if s == nil {
		return
	}
	s.logger.Info("dashboard_unlocked",
		slog.String("event_type", "auth_success"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// RateLimitExceeded logs when a client exceeds rate limits.
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	if s == nil {
		return
	}
	s.logger.Warn("rate_limit_exceeded",
		slog.String("event_type", "rate_limit"),
		slog.String("ip", ip),
		slog.String("path", path),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// InvalidOrigin logs a rejected WebSocket connection due to invalid origin.
func (s *SecurityLogger) InvalidOrigin(ip, origin string) {
	if s == nil {
		return
	}
	s.logger.Warn("invalid_origin",
		slog.String("event_type", "invalid_origin"),
		slog.String("ip", ip),
		slog.String("origin", origin),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// RejectedMail logs an intake email refused at RCPT or DATA.
func (s *SecurityLogger) RejectedMail(remoteAddr, from, reason string) {
	if s == nil {
		return
	}
	s.logger.Warn("rejected_mail",
		slog.String("event_type", "rejected_mail"),
		slog.String("remote_addr", remoteAddr),
		slog.String("from", from),
		slog.String("reason", reason),
		slog.Time("timestamp", time.Now().UTC()),
	)
}

// SecurityEvent logs a generic security event.
func (s *SecurityLogger) SecurityEvent(eventType, ip string, details map[string]string) {
	if s == nil {
		return
	}
	attrs := []any{
		slog.String("event_type", eventType),
		slog.String("ip", ip),
		slog.Time("timestamp", time.Now().UTC()),
	}

	for k, v := range details {
		if isSensitiveKey(k) {
			continue
		}
		attrs = append(attrs, slog.String(k, v))
	}

	s.logger.Warn("security_event", attrs...)
}

// GetLogger returns the underlying slog.Logger for use with middleware.
func (s *SecurityLogger) GetLogger() *slog.Logger {
	if s == nil {
		return nil
	}
	return s.logger
}

// isSensitiveKey checks if a key might contain sensitive data.
func isSensitiveKey(key string) bool {
	sensitiveKeys := map[string]bool{
		"password":      true,
		"token":         true,
		"secret":        true,
		"authorization": true,
		"auth":          true,
		"credential":    true,
		"credentials":   true,
		"session":       true,
		"cookie":        true,
	}
	return sensitiveKeys[key]
}
