// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for AleutianRAG components.
//
// The package wraps Go's standard slog with the gateway's configuration
// vocabulary: log levels named DEBUG/INFO/WARNING/ERROR/CRITICAL and output
// formats json or text, both taken from the RAG_ environment settings.
//
// # Basic Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:   "INFO",
//	    Format:  "json",
//	    Service: "gateway",
//	})
//	logger.Info("starting server", "port", 8000)
//
// Request-scoped loggers carry the correlation ID explicitly rather than
// through ambient state:
//
//	reqLogger := logger.With("correlation_id", correlationID)
//	reqLogger.Info("request completed", "status", 200)
//
// # Thread Safety
//
// Logger is safe for concurrent use; the underlying slog.Logger is
// thread-safe and Logger itself holds no mutable state.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures a Logger.
//
// Level and Format use the gateway settings vocabulary so that a Settings
// value can be handed to New without translation. A zero-value Config
// produces an INFO-level text logger on stderr.
type Config struct {
	// Level is the minimum severity: DEBUG, INFO, WARNING, ERROR or
	// CRITICAL (case-insensitive). CRITICAL maps onto slog's Error level;
	// slog has no separate fatal severity.
	Level string

	// Format is "json" or "text".
	Format string

	// Service is attached to every record as the "service" attribute.
	Service string

	// Writer overrides the output destination. Defaults to os.Stderr.
	// Tests point this at a buffer.
	Writer io.Writer
}

// Logger wraps slog.Logger with the gateway's level vocabulary.
type Logger struct {
	slog *slog.Logger
}

// New creates a Logger from the given configuration.
//
// # Outputs
//
//   - *Logger: Ready-to-use logger.
//   - error: Non-nil if Level or Format is not a recognized value. The
//     settings layer validates the same values at load time, so this error
//     indicates a programming mistake rather than user input.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(firstNonEmpty(cfg.Format, "text")) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q: must be json or text", cfg.Format)
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	return &Logger{slog: slog.New(handler)}, nil
}

// Default returns an INFO-level text logger on stderr.
func Default() *Logger {
	l, _ := New(Config{Level: "INFO", Format: "text", Service: "aleutianrag"})
	return l
}

// Debug logs at Debug level with key-value attributes.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }

// Info logs at Info level with key-value attributes.
func (l *Logger) Info(msg string, args ...any) { l.slog.Info(msg, args...) }

// Warn logs at Warn level with key-value attributes.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Warn(msg, args...) }

// Error logs at Error level with key-value attributes.
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// With returns a child logger carrying additional attributes.
//
// Used to build request-scoped loggers that include the correlation ID in
// every record. The parent logger is not modified.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog exposes the underlying slog.Logger for libraries that require it.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// parseLevel maps the gateway level names onto slog levels.
func parseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(firstNonEmpty(level, "INFO")) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of DEBUG, INFO, WARNING, ERROR, CRITICAL", level)
	}
}

func firstNonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
