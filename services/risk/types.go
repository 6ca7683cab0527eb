// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package risk

import "github.com/AleutianAI/ShipGate/services/datatypes"

// RiskAlgorithmVersion is the version of the risk scoring algorithm.
// Increment when making changes that affect risk calculations.
const RiskAlgorithmVersion = "1.0"

// Per-occurrence severity weights. The ordering CRITICAL > HIGH >
// MEDIUM > LOW > INFO is what guarantees a single CRITICAL outweighs
// any one lower-severity finding; INFO never raises the score.
const (
	WeightCritical = 25.0
	WeightHigh     = 10.0
	WeightMedium   = 3.0
	WeightLow      = 1.0
	WeightInfo     = 0.0
)

// MaxScore is the clamp ceiling for the risk score.
const MaxScore = 100.0

// Risk level thresholds over the clamped score.
const (
	ThresholdCritical = 80.0
	ThresholdHigh     = 50.0
	ThresholdMedium   = 20.0
)

// severityWeights maps each severity to its per-occurrence weight.
var severityWeights = map[datatypes.Severity]float64{
	datatypes.SeverityCritical: WeightCritical,
	datatypes.SeverityHigh:     WeightHigh,
	datatypes.SeverityMedium:   WeightMedium,
	datatypes.SeverityLow:      WeightLow,
	datatypes.SeverityInfo:     WeightInfo,
}

// Recommendation reason templates per decision.
var reasonTexts = map[datatypes.DeploymentDecision]string{
	datatypes.DeployApprove: "Risk within acceptable bounds for the target environment",
	datatypes.DeployWarn:    "Elevated risk; deployment allowed with review recommended",
	datatypes.DeployBlock:   "Unresolved high-severity findings block deployment",
}

// Options tune recommendation behavior. The zero value matches the
// default gate policy.
type Options struct {
	// StrictEnforcement keeps a would-be BLOCK as BLOCK even outside
	// PRODUCTION. Without it, non-production environments downgrade a
	// block to a warning.
	StrictEnforcement bool
}
