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
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/scanner"
)

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(ExitError)
	}
}

// outputError writes an error, as JSON when requested.
func outputError(jsonOut bool, msg string, err error) {
	if jsonOut {
		outputJSON(map[string]any{
			"success": false,
			"error":   fmt.Sprintf("%s: %v", msg, err),
		})
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}

// outputReportText prints a human-readable scan report.
func outputReportText(report scanner.Report) {
	fmt.Println("Scan Results")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Printf("Findings: %d\n", report.Summary.Total)
	fmt.Printf("Risk score: %.0f (%s)\n", report.RiskAssessment.Score, report.RiskAssessment.Level)
	fmt.Printf("Recommendation: %s - %s\n",
		report.RiskAssessment.Recommendation.Decision,
		report.RiskAssessment.Recommendation.Reason)
	fmt.Println()

	if report.Summary.Total == 0 {
		fmt.Println("No findings.")
		return
	}

	for _, sev := range datatypes.Severities() {
		if count := report.Summary.BySeverity[sev]; count > 0 {
			fmt.Printf("  %-8s %d\n", sev, count)
		}
	}
	fmt.Println()

	for _, v := range report.Vulnerabilities {
		fmt.Printf("%-8s  %s:%d\n", v.Severity, v.FilePath, v.LineNumber)
		fmt.Printf("          %s\n", v.Title)
		fmt.Printf("          Rule: %s\n", v.RuleID)
		if v.Remediation != "" {
			fmt.Printf("          Fix: %s\n", v.Remediation)
		}
		fmt.Println()
	}
}

// outputPipelineText prints a human-readable pipeline result.
func outputPipelineText(result *datatypes.PipelineResult) {
	fmt.Println("Pipeline Result")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	fmt.Printf("Pipeline: %s\n", result.PipelineID)
	fmt.Printf("Status: %s\n", result.OverallStatus)
	fmt.Printf("Duration: %.2fs\n", result.DurationSeconds)
	fmt.Printf("Risk score: %.0f (%s)\n", result.RiskAssessment.Score, result.RiskAssessment.Level)
	fmt.Printf("Recommendation: %s - %s\n",
		result.RiskAssessment.Recommendation.Decision,
		result.RiskAssessment.Recommendation.Reason)
	fmt.Println()

	fmt.Println("Gates:")
	for _, name := range sortedGateNames(result.GateResults) {
		gr := result.GateResults[name]
		verdict := "PASS"
		if !gr.Passed {
			verdict = "FAIL"
		}
		fmt.Printf("  %-4s  %s (%s): %s\n", verdict, gr.GateName, gr.Severity, gr.Details)
	}
	fmt.Println()

	if result.BaselineDelta != nil {
		fmt.Printf("Baseline: %d new, %d resolved\n",
			len(result.BaselineDelta.NewFindings),
			len(result.BaselineDelta.ResolvedFindings))
		fmt.Println()
	}

	for _, artifact := range result.Artifacts {
		fmt.Printf("Artifact: %s (%s)\n", artifact.Path, artifact.Kind)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}
	for _, errMsg := range result.Errors {
		fmt.Printf("Error: %s\n", errMsg)
	}
}

// sortedGateNames returns gate names in a stable order for display.
func sortedGateNames(results map[string]datatypes.GateResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
