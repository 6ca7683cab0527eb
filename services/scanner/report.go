// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import (
	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/risk"
)

// Summary is the per-severity tally of a whole run.
type Summary struct {
	Total      int                        `json:"total"`
	BySeverity datatypes.SeverityCounts   `json:"by_severity"`
	ByScanType map[datatypes.ScanType]int `json:"by_scan_type"`
}

// Report is the flattened view over all scan results.
//
// Vulnerabilities are ordered by severity (descending), then file path,
// then line number. Callers rely on that ordering to display top-N
// findings, so it is part of the contract.
type Report struct {
	Summary         Summary                   `json:"summary"`
	RiskAssessment  datatypes.RiskAssessment  `json:"risk_assessment"`
	Vulnerabilities []datatypes.Vulnerability `json:"vulnerabilities"`
}

// GenerateReport flattens scan results into a Report.
//
// # Inputs
//
//   - results: One ScanResult per scan type.
//   - engine: Risk engine. If nil, a default engine is used.
//   - env: Deployment target for the embedded recommendation.
//
// # Outputs
//
//   - Report: Summary, risk assessment, and the sorted finding list.
func GenerateReport(
	results map[datatypes.ScanType]datatypes.ScanResult,
	engine *risk.Engine,
	env datatypes.Environment,
) Report {
	if engine == nil {
		engine = risk.NewEngine(risk.Options{})
	}

	var all []datatypes.Vulnerability
	byType := make(map[datatypes.ScanType]int, len(results))
	for st, result := range results {
		all = append(all, result.Vulnerabilities...)
		byType[st] = len(result.Vulnerabilities)
	}
	datatypes.SortVulnerabilities(all)
	if all == nil {
		all = []datatypes.Vulnerability{}
	}

	return Report{
		Summary: Summary{
			Total:      len(all),
			BySeverity: datatypes.CountBySeverity(all),
			ByScanType: byType,
		},
		RiskAssessment:  engine.Assess(all, env),
		Vulnerabilities: all,
	}
}
