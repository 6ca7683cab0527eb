// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gates

import (
	"fmt"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// Default gate names.
const (
	GateNoCritical       = "no-critical-vulnerabilities"
	GateNoHigh           = "no-high-vulnerabilities"
	GateNoSecrets        = "no-secrets"
	GateMaxRiskScore     = "max-risk-score"
	GateScanCompleteness = "scan-completeness"
)

// DefaultMaxRiskScore is the advisory ceiling for the risk-score gate.
const DefaultMaxRiskScore = 70.0

// Input is the read-only view a predicate evaluates against.
type Input struct {
	ScanResults    map[datatypes.ScanType]datatypes.ScanResult
	RiskAssessment datatypes.RiskAssessment
}

// Predicate decides one gate. It must be a pure function of its input:
// identical inputs always yield the identical (passed, details) pair.
type Predicate func(in Input) (passed bool, details string)

// SecurityGate is a named policy rule with a consequence severity.
type SecurityGate struct {
	// Name identifies the gate in results; must be unique per run.
	Name string

	// Severity decides whether a failure flips the pipeline to FAILED
	// (blocking) or is merely recorded (advisory).
	Severity datatypes.GateSeverity

	// Predicate is the gate's pass/fail rule.
	Predicate Predicate
}

// DefaultGates returns the built-in gate set for a scan configuration:
//
//   - no-critical-vulnerabilities: blocking iff FailOnCritical.
//   - no-high-vulnerabilities: blocking iff FailOnHigh.
//   - no-secrets: blocking; zero findings in the SECRETS result.
//   - max-risk-score: advisory; risk score at most DefaultMaxRiskScore.
//   - scan-completeness: advisory; every scan type COMPLETED.
func DefaultGates(config datatypes.ScanConfiguration) []SecurityGate {
	return []SecurityGate{
		{
			Name:      GateNoCritical,
			Severity:  blockingIf(config.FailOnCritical),
			Predicate: NoFindingsAtOrAbove(datatypes.SeverityCritical),
		},
		{
			Name:      GateNoHigh,
			Severity:  blockingIf(config.FailOnHigh),
			Predicate: NoFindingsAtOrAbove(datatypes.SeverityHigh),
		},
		{
			Name:      GateNoSecrets,
			Severity:  datatypes.GateBlocking,
			Predicate: NoFindingsOfType(datatypes.ScanTypeSecrets),
		},
		{
			Name:      GateMaxRiskScore,
			Severity:  datatypes.GateAdvisory,
			Predicate: RiskScoreAtMost(DefaultMaxRiskScore),
		},
		{
			Name:      GateScanCompleteness,
			Severity:  datatypes.GateAdvisory,
			Predicate: AllScansCompleted(),
		},
	}
}

func blockingIf(blocking bool) datatypes.GateSeverity {
	if blocking {
		return datatypes.GateBlocking
	}
	return datatypes.GateAdvisory
}

// NoFindingsAtOrAbove passes when no finding is at least floor severe.
func NoFindingsAtOrAbove(floor datatypes.Severity) Predicate {
	return func(in Input) (bool, string) {
		count := 0
		for sev, n := range in.RiskAssessment.SeverityBreakdown {
			if sev.Order() >= floor.Order() {
				count += n
			}
		}
		if count > 0 {
			return false, fmt.Sprintf("%d finding(s) at severity %s or above", count, floor)
		}
		return true, fmt.Sprintf("no findings at severity %s or above", floor)
	}
}

// NoFindingsOfType passes when the given scan type produced zero
// findings. A missing or errored result evaluates over partial data:
// the findings it did produce still count.
func NoFindingsOfType(st datatypes.ScanType) Predicate {
	return func(in Input) (bool, string) {
		result, ok := in.ScanResults[st]
		if !ok {
			return true, fmt.Sprintf("scan type %s not requested", st)
		}
		if n := len(result.Vulnerabilities); n > 0 {
			return false, fmt.Sprintf("%d %s finding(s)", n, st)
		}
		if result.Status != datatypes.ScanStatusCompleted {
			return true, fmt.Sprintf("no %s findings (scan status %s, partial data)", st, result.Status)
		}
		return true, fmt.Sprintf("no %s findings", st)
	}
}

// RiskScoreAtMost passes when the risk score does not exceed max.
func RiskScoreAtMost(max float64) Predicate {
	return func(in Input) (bool, string) {
		score := in.RiskAssessment.Score
		if score > max {
			return false, fmt.Sprintf("risk score %.1f exceeds ceiling %.1f", score, max)
		}
		return true, fmt.Sprintf("risk score %.1f within ceiling %.1f", score, max)
	}
}

// AllScansCompleted passes when every requested scan type finished
// with status COMPLETED.
func AllScansCompleted() Predicate {
	return func(in Input) (bool, string) {
		incomplete := 0
		for _, result := range in.ScanResults {
			if result.Status != datatypes.ScanStatusCompleted {
				incomplete++
			}
		}
		if incomplete > 0 {
			return false, fmt.Sprintf("%d scan type(s) did not complete", incomplete)
		}
		return true, "all scan types completed"
	}
}
