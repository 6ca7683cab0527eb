// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ShipGate/pkg/logging"
	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// =============================================================================
// EXIT CODES
// =============================================================================

// Exit codes shared by all commands.
const (
	// ExitPassed means the run completed and every blocking check held.
	ExitPassed = 0

	// ExitBlocked means the run completed but a blocking policy failed
	// (gate failure, findings at or above a fail-on threshold, timeout).
	ExitBlocked = 1

	// ExitError means the command could not run (bad input, internal
	// fault).
	ExitError = 2
)

// =============================================================================
// ROOT COMMAND
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "shipgate",
	Short: "Security scanning and deployment gating for source trees",
	Long: `ShipGate scans a source tree for vulnerabilities and secrets,
scores the findings, and evaluates deployment gates against the result.

It also generates CI workflow documents that run the same pipeline on
GitHub Actions or Azure DevOps.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false,
		"Suppress log output (results still printed)")
}

// =============================================================================
// SHARED FLAGS AND HELPERS
// =============================================================================

var (
	logLevelFlag string
	quietFlag    bool
)

// newLogger builds the CLI logger from persistent flags and the
// SHIPGATE_LOG_DIR / SHIPGATE_LOG_JSON environment variables.
func newLogger() (*slog.Logger, func() error) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevelFlag) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return logging.New(logging.Config{
		Level:   level,
		LogDir:  os.Getenv("SHIPGATE_LOG_DIR"),
		Service: "shipgate",
		JSON:    os.Getenv("SHIPGATE_LOG_JSON") == "true",
		Quiet:   quietFlag,
	})
}

// parseScanTypes converts a comma-separated flag value into scan types.
func parseScanTypes(raw string) ([]datatypes.ScanType, error) {
	var types []datatypes.ScanType
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		st := datatypes.ScanType(part)
		if !st.Valid() {
			return nil, fmt.Errorf("unknown scan type %q (valid: SAST, SECRETS, DEPENDENCY)", part)
		}
		types = append(types, st)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no scan types given")
	}
	return types, nil
}

// parseEnvironment converts the --environment flag value.
func parseEnvironment(raw string) (datatypes.Environment, error) {
	env := datatypes.Environment(strings.ToUpper(strings.TrimSpace(raw)))
	if !env.Valid() {
		return "", fmt.Errorf("unknown environment %q (valid: DEVELOPMENT, STAGING, PRODUCTION)", raw)
	}
	return env, nil
}
