// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging builds structured slog loggers for ShipGate components.
//
// # Description
//
// Two destinations are supported:
//
//   - Default: stderr output for CLI compatibility (follows Unix conventions)
//   - Optional: file logging with automatic directory creation
//
// Components take a *slog.Logger by injection; this package only
// constructs them.
//
// # Basic Usage
//
// For simple CLI usage with stderr output:
//
//	logger, closer := logging.New(logging.Config{Service: "shipgate"})
//	defer closer()
//	logger.Info("scan started", "source_path", path)
//
// File logging writes JSON entries to "{service}_{date}.log" in LogDir.
//
// # Thread Safety
//
// The returned *slog.Logger is safe for concurrent use.
//
// # Security Considerations
//
// This package does NOT automatically redact sensitive data. Callers
// must ensure detected secret values are never logged:
//
//	// BAD: logs the matched credential
//	logger.Info("secret found", "value", match)
//
//	// GOOD: log location only
//	logger.Info("secret found", "file", path, "line", line)
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config configures logger construction.
//
// A zero-value Config creates a logger that writes Info+ messages to
// stderr in text format.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo.
	Level slog.Level

	// LogDir enables file logging to the specified directory.
	//
	// When set, logs are written to both stderr and a file named
	// "{Service}_{YYYY-MM-DD}.log" in JSON format. The directory is
	// created with 0750 permissions if it does not exist. Supports ~
	// for home directory expansion.
	//
	// Default: "" (file logging disabled)
	LogDir string

	// Service is included in every entry as the "service" attribute.
	// Default: "" (no service attribute)
	Service string

	// JSON switches stderr output to JSON. File logs are always JSON
	// regardless of this setting.
	JSON bool

	// Quiet disables stderr output. Logs then go only to the file, if
	// LogDir is set.
	Quiet bool
}

// New builds a logger from config.
//
// # Inputs
//
//   - config: Destinations, level, and service attribute.
//
// # Outputs
//
//   - *slog.Logger: Ready to use.
//   - func() error: Closer that syncs and closes the log file. Always
//     non-nil; a no-op when file logging is disabled.
func New(config Config) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: config.Level}

	var handlers []slog.Handler
	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	closer := func() error { return nil }
	if config.LogDir != "" {
		if file, err := openLogFile(config.LogDir, config.Service); err == nil {
			handlers = append(handlers, slog.NewJSONHandler(file, opts))
			closer = func() error {
				if err := file.Sync(); err != nil {
					return fmt.Errorf("sync log file: %w", err)
				}
				return file.Close()
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		// Quiet with no file still needs a valid handler.
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(127)})
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	return slog.New(handler), closer
}

// openLogFile creates the log directory and opens the day's log file in
// append mode.
func openLogFile(dir, service string) (*os.File, error) {
	dir = expandPath(dir)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	if service == "" {
		service = "shipgate"
	}
	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
}

// multiHandler fans out log records to multiple slog handlers. This
// enables simultaneous stderr text and file JSON output.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// CaptureHandler records every log entry it receives. It exists for
// tests that assert on emitted log events.
//
//	handler := logging.NewCaptureHandler()
//	logger := slog.New(handler)
//	component.DoWork(logger)
//	entries := handler.Entries()
type CaptureHandler struct {
	mu      sync.Mutex
	attrs   []slog.Attr
	entries []CapturedEntry
	parent  *CaptureHandler
}

// CapturedEntry is one recorded log event.
type CapturedEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// NewCaptureHandler creates an empty CaptureHandler.
func NewCaptureHandler() *CaptureHandler {
	return &CaptureHandler{}
}

func (h *CaptureHandler) root() *CaptureHandler {
	if h.parent != nil {
		return h.parent.root()
	}
	return h
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	entry := CapturedEntry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any),
	}
	for _, attr := range h.attrs {
		entry.Attrs[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry.Attrs[attr.Key] = attr.Value.Any()
		return true
	})

	root := h.root()
	root.mu.Lock()
	root.entries = append(root.entries, entry)
	root.mu.Unlock()
	return nil
}

func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	combined = append(combined, attrs...)
	return &CaptureHandler{attrs: combined, parent: h.root()}
}

func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Entries returns a copy of all recorded entries.
func (h *CaptureHandler) Entries() []CapturedEntry {
	root := h.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := make([]CapturedEntry, len(root.entries))
	copy(out, root.entries)
	return out
}
