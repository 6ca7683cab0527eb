// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_DefaultConfig(t *testing.T) {
	logger, closer := New(Config{})
	if logger == nil {
		t.Fatal("New returned nil logger")
	}
	if closer == nil {
		t.Fatal("New returned nil closer")
	}
	if err := closer(); err != nil {
		t.Errorf("closer() error = %v", err)
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger, closer := New(Config{
		LogDir:  dir,
		Service: "scantest",
		Quiet:   true,
	})

	logger.Info("pipeline started", "pipeline_id", "run-1")
	if err := closer(); err != nil {
		t.Fatalf("closer() error = %v", err)
	}

	name := fmt.Sprintf("scantest_%s.log", time.Now().Format("2006-01-02"))
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	line := strings.TrimSpace(string(raw))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log entry is not JSON: %v\n%s", err, line)
	}
	if entry["msg"] != "pipeline started" {
		t.Errorf("msg = %v, want %q", entry["msg"], "pipeline started")
	}
	if entry["service"] != "scantest" {
		t.Errorf("service = %v, want %q", entry["service"], "scantest")
	}
	if entry["pipeline_id"] != "run-1" {
		t.Errorf("pipeline_id = %v, want %q", entry["pipeline_id"], "run-1")
	}
}

func TestNew_FileLoggingCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	logger, closer := New(Config{LogDir: dir, Quiet: true})
	logger.Info("hello")
	if err := closer(); err != nil {
		t.Fatalf("closer() error = %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("log directory was not created: %v", err)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	logger, closer := New(Config{
		LogDir: dir,
		Level:  slog.LevelWarn,
		Quiet:  true,
	})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	if err := closer(); err != nil {
		t.Fatalf("closer() error = %v", err)
	}

	name := fmt.Sprintf("shipgate_%s.log", time.Now().Format("2006-01-02"))
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(raw)
	if strings.Contains(content, "dropped") {
		t.Errorf("below-level entries were written:\n%s", content)
	}
	if !strings.Contains(content, "kept") {
		t.Errorf("warn entry missing:\n%s", content)
	}
}

func TestNew_QuietWithoutFile(t *testing.T) {
	logger, closer := New(Config{Quiet: true})
	// Must not panic and must swallow everything.
	logger.Error("nobody hears this")
	if err := closer(); err != nil {
		t.Errorf("closer() error = %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("quiet logger without file should be disabled at all levels")
	}
}

func TestMultiHandler_FanOut(t *testing.T) {
	a := NewCaptureHandler()
	b := NewCaptureHandler()
	logger := slog.New(&multiHandler{handlers: []slog.Handler{a, b}})

	logger.Info("fan out", "k", "v")

	for i, h := range []*CaptureHandler{a, b} {
		entries := h.Entries()
		if len(entries) != 1 {
			t.Fatalf("handler %d recorded %d entries, want 1", i, len(entries))
		}
		if entries[0].Message != "fan out" {
			t.Errorf("handler %d message = %q", i, entries[0].Message)
		}
		if entries[0].Attrs["k"] != "v" {
			t.Errorf("handler %d attrs = %v", i, entries[0].Attrs)
		}
	}
}

func TestCaptureHandler_WithAttrs(t *testing.T) {
	capture := NewCaptureHandler()
	logger := slog.New(capture).With("component", "scanner")

	logger.Warn("slow walk", "files", 10)

	entries := capture.Entries()
	if len(entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Level != slog.LevelWarn {
		t.Errorf("level = %v, want warn", e.Level)
	}
	if e.Attrs["component"] != "scanner" {
		t.Errorf("component attr missing: %v", e.Attrs)
	}
	if e.Attrs["files"] != int64(10) {
		t.Errorf("files attr = %v (%T)", e.Attrs["files"], e.Attrs["files"])
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tilde", "~/logs", filepath.Join(home, "logs")},
		{"no tilde", "/var/log", "/var/log"},
		{"relative", "logs", "logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
