// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gates evaluates named pass/fail policy rules against scan
// results and a risk assessment.
//
// # Description
//
// Each gate's predicate is evaluated independently; gates are never
// chained and one gate's outcome cannot short-circuit another's. The
// result map always carries one entry per configured gate, even when a
// scan ended in ERROR or TIMEOUT - the predicate then evaluates over
// the partial data rather than being omitted.
package gates

import (
	"fmt"
	"log/slog"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// Evaluator runs gate predicates.
//
// # Thread Safety
//
// Evaluator is stateless apart from its logger and safe for concurrent
// use.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil logger falls back to
// slog.Default().
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Evaluate runs every gate against the scan results and assessment.
//
// # Inputs
//
//   - gateSet: Gates to evaluate. Names must be unique.
//   - scanResults: One result per scan type (possibly partial).
//   - assessment: Risk assessment for the same run.
//
// # Outputs
//
//   - map[string]datatypes.GateResult: Exactly one entry per gate.
//   - error: Non-nil on a duplicate gate name or a nil predicate.
func (e *Evaluator) Evaluate(
	gateSet []SecurityGate,
	scanResults map[datatypes.ScanType]datatypes.ScanResult,
	assessment datatypes.RiskAssessment,
) (map[string]datatypes.GateResult, error) {
	results := make(map[string]datatypes.GateResult, len(gateSet))
	in := Input{ScanResults: scanResults, RiskAssessment: assessment}

	for _, gate := range gateSet {
		if gate.Predicate == nil {
			return nil, fmt.Errorf("gate %q has no predicate", gate.Name)
		}
		if _, dup := results[gate.Name]; dup {
			return nil, fmt.Errorf("duplicate gate name %q", gate.Name)
		}

		passed, details := gate.Predicate(in)
		results[gate.Name] = datatypes.GateResult{
			GateName: gate.Name,
			Passed:   passed,
			Severity: gate.Severity,
			Details:  details,
		}

		if !passed {
			e.logger.Warn("gate failed",
				slog.String("gate", gate.Name),
				slog.String("severity", string(gate.Severity)),
				slog.String("details", details),
			)
		}
	}

	return results, nil
}

// AnyBlockingFailure reports whether any blocking gate failed.
func AnyBlockingFailure(results map[string]datatypes.GateResult) bool {
	for _, r := range results {
		if !r.Passed && r.Severity == datatypes.GateBlocking {
			return true
		}
	}
	return false
}
