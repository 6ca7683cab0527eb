// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the wire vocabulary shared by the scanner,
// risk engine, gate evaluator, and pipeline orchestrator.
//
// # Description
//
// Every type here is a plain value object. Detectors produce Vulnerability
// values and never mutate them afterwards; configuration objects are
// supplied by the caller and treated as read-only by every component.
//
// # Thread Safety
//
// All types are immutable after construction and safe to share across
// goroutines without synchronization.
package datatypes

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies how dangerous a finding is.
//
// Severity is a closed, totally ordered enum. All aggregation (risk
// scoring, gate thresholds, report ordering) uses the fixed ordering
// CRITICAL > HIGH > MEDIUM > LOW > INFO.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// severityOrder maps each severity to its rank. Higher is more severe.
var severityOrder = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Order returns the numeric rank of this severity (INFO=0 .. CRITICAL=4).
// Unknown severities rank below INFO.
func (s Severity) Order() int {
	if o, ok := severityOrder[s]; ok {
		return o
	}
	return -1
}

// Exceeds returns true if this severity is strictly more severe than other.
func (s Severity) Exceeds(other Severity) bool {
	return s.Order() > other.Order()
}

// Valid returns true if s is one of the five known severities.
func (s Severity) Valid() bool {
	_, ok := severityOrder[s]
	return ok
}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", raw)
	}
	return s, nil
}

// Severities lists all severities from most to least severe.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// ScanType identifies a scan category handled by one detector family.
type ScanType string

const (
	// ScanTypeSAST is pattern-based static analysis of source text.
	ScanTypeSAST ScanType = "SAST"

	// ScanTypeSecrets is credential-pattern and entropy based detection.
	ScanTypeSecrets ScanType = "SECRETS"

	// ScanTypeDependency is third-party dependency vulnerability lookup.
	// It requires an external advisory source; without one the scan type
	// degrades to an ERROR result.
	ScanTypeDependency ScanType = "DEPENDENCY"
)

// Valid reports whether s is a known scan type.
func (s ScanType) Valid() bool {
	switch s {
	case ScanTypeSAST, ScanTypeSecrets, ScanTypeDependency:
		return true
	default:
		return false
	}
}

// SortScanTypes returns the types sorted lexicographically. This is the
// stable order used for sequential scan execution.
func SortScanTypes(types []ScanType) []ScanType {
	out := make([]ScanType, len(types))
	copy(out, types)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Vulnerability is a single finding produced by a detector.
//
// A Vulnerability is immutable once emitted. Its ID is deterministic
// (rule, file, line) so that baseline comparison can match findings
// across runs by identity.
type Vulnerability struct {
	// ID is the stable identity: "<rule-id>:<file-path>:<line>".
	ID string `json:"id"`

	// RuleID names the rule that produced the finding.
	RuleID string `json:"rule_id"`

	// Title is a short human-readable summary.
	Title string `json:"title"`

	// Description explains what was matched and why it matters.
	Description string `json:"description"`

	// Severity is one of the five fixed severities.
	Severity Severity `json:"severity"`

	// Category is the rule family, e.g. "command_injection" or "secret".
	Category string `json:"category"`

	// FilePath is the path of the matched file, relative to the scan root.
	FilePath string `json:"file_path"`

	// LineNumber is the 1-based line of the match.
	LineNumber int `json:"line_number"`

	// Remediation is advisory text on how to fix the finding.
	Remediation string `json:"remediation"`

	// Confidence is a heuristic score in [0,1]. Secret candidates below
	// the detector's confidence floor are suppressed before emission.
	Confidence float64 `json:"confidence"`
}

// FindingID builds the stable identity for a finding.
func FindingID(ruleID, filePath string, line int) string {
	return fmt.Sprintf("%s:%s:%d", ruleID, filePath, line)
}

// ScanStatus is the terminal state of a single scan type's execution.
type ScanStatus string

const (
	// ScanStatusCompleted means the detector finished within the budget.
	ScanStatusCompleted ScanStatus = "COMPLETED"

	// ScanStatusTimeout means the aggregate deadline cut the scan off;
	// the result holds whatever findings had been collected.
	ScanStatusTimeout ScanStatus = "TIMEOUT"

	// ScanStatusError means the scan type could not run or failed fatally.
	ScanStatusError ScanStatus = "ERROR"
)

// ScanResult is the outcome of one scan type in one run.
//
// Results are produced exactly once per scan type per run and never
// merged across runs. Errors holds non-fatal per-file problems; a fatal
// problem is reflected in Status instead.
type ScanResult struct {
	ScanType        ScanType        `json:"scan_type"`
	Status          ScanStatus      `json:"status"`
	DurationSeconds float64         `json:"duration_seconds"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Errors          []string        `json:"errors,omitempty"`
}

// SeverityCounts tallies findings per severity.
type SeverityCounts map[Severity]int

// CountBySeverity tallies a finding list by severity.
func CountBySeverity(vulns []Vulnerability) SeverityCounts {
	counts := make(SeverityCounts, len(severityOrder))
	for _, sev := range Severities() {
		counts[sev] = 0
	}
	for _, v := range vulns {
		counts[v.Severity]++
	}
	return counts
}

// SortVulnerabilities orders findings by severity (descending), then file
// path, then line number. This ordering is a contract: callers display
// "top N" findings straight off the sorted slice.
func SortVulnerabilities(vulns []Vulnerability) {
	sort.SliceStable(vulns, func(i, j int) bool {
		if vulns[i].Severity != vulns[j].Severity {
			return vulns[i].Severity.Order() > vulns[j].Severity.Order()
		}
		if vulns[i].FilePath != vulns[j].FilePath {
			return vulns[i].FilePath < vulns[j].FilePath
		}
		return vulns[i].LineNumber < vulns[j].LineNumber
	})
}
