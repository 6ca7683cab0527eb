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
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ShipGate/pkg/validation"
	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/scanner"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	scanTypesFlag      string
	scanMaxDuration    int
	scanParallel       bool
	scanFailOnCritical bool
	scanFailOnHigh     bool
	scanJSON           bool
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a source tree for vulnerabilities and secrets",
	Long: `Run the configured detectors over a source tree and print the
aggregated report: per-severity counts, risk score, and every finding.

Examples:
  shipgate scan
  shipgate scan ./src --scan-types SAST
  shipgate scan --fail-on-critical --json

Exit Codes:
  0 = Scan completed, no findings at a fail-on threshold
  1 = Findings at a fail-on threshold (or scan timed out)
  2 = Error (invalid path, scan failure)`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanTypesFlag, "scan-types", "SAST,SECRETS",
		"Comma-separated scan types: SAST, SECRETS, DEPENDENCY")
	scanCmd.Flags().IntVar(&scanMaxDuration, "max-duration", 10,
		"Aggregate scan budget in minutes")
	scanCmd.Flags().BoolVar(&scanParallel, "parallel", true,
		"Run scan types concurrently")
	scanCmd.Flags().BoolVar(&scanFailOnCritical, "fail-on-critical", false,
		"Exit non-zero when a CRITICAL finding is present")
	scanCmd.Flags().BoolVar(&scanFailOnHigh, "fail-on-high", false,
		"Exit non-zero when a HIGH finding is present")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false,
		"Output as JSON")

	rootCmd.AddCommand(scanCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runScan(cmd *cobra.Command, args []string) {
	logger, closeLogs := newLogger()
	defer closeLogs()

	sourcePath := "."
	if len(args) > 0 {
		sourcePath = args[0]
	}
	if err := validation.ValidateSourcePath(sourcePath); err != nil {
		outputError(scanJSON, "Invalid source path", err)
		os.Exit(ExitError)
	}

	scanTypes, err := parseScanTypes(scanTypesFlag)
	if err != nil {
		outputError(scanJSON, "Invalid scan types", err)
		os.Exit(ExitError)
	}

	registry, err := scanner.DefaultRegistry()
	if err != nil {
		outputError(scanJSON, "Failed to load detectors", err)
		os.Exit(ExitError)
	}
	sc, err := scanner.NewScanner(registry, logger)
	if err != nil {
		outputError(scanJSON, "Failed to build scanner", err)
		os.Exit(ExitError)
	}

	config := datatypes.ScanConfiguration{
		EnabledScanTypes:       scanTypes,
		MaxScanDurationMinutes: scanMaxDuration,
		ParallelScans:          scanParallel,
		FailOnCritical:         scanFailOnCritical,
		FailOnHigh:             scanFailOnHigh,
	}

	results, err := sc.Scan(context.Background(), sourcePath, scanTypes, config)
	if err != nil {
		outputError(scanJSON, "Scan failed", err)
		os.Exit(ExitError)
	}

	report := scanner.GenerateReport(results, nil, datatypes.EnvDevelopment)
	if scanJSON {
		outputJSON(report)
	} else {
		outputReportText(report)
	}

	os.Exit(scanExitCode(results, report, config))
}

// scanExitCode maps scan outcome to the documented exit codes.
func scanExitCode(
	results map[datatypes.ScanType]datatypes.ScanResult,
	report scanner.Report,
	config datatypes.ScanConfiguration,
) int {
	for _, sr := range results {
		if sr.Status == datatypes.ScanStatusTimeout {
			return ExitBlocked
		}
	}
	if config.FailOnCritical && report.Summary.BySeverity[datatypes.SeverityCritical] > 0 {
		return ExitBlocked
	}
	if config.FailOnHigh && report.Summary.BySeverity[datatypes.SeverityHigh] > 0 {
		return ExitBlocked
	}
	return ExitPassed
}
