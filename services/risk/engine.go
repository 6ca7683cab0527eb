// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package risk reduces a finding set to a severity breakdown, a 0-100
// risk score, a risk level, and a deployment recommendation.
//
// # Scoring
//
// score = min(100, sum over severities of weight * count), with fixed
// weights 25/10/3/1/0 for CRITICAL/HIGH/MEDIUM/LOW/INFO. The score is
// monotonically non-decreasing in every severity count and exactly 0
// for an empty finding set. Levels are fixed buckets over the score:
// >=80 CRITICAL, >=50 HIGH, >=20 MEDIUM, >0 LOW, =0 NONE.
package risk

import (
	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// Engine computes risk assessments.
//
// # Thread Safety
//
// Engine is stateless and safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Assess reduces a finding set to a RiskAssessment.
//
// The recommendation embedded in the returned assessment is computed
// for env; PRODUCTION blocks on any unresolved CRITICAL or HIGH finding
// regardless of gate leniency, while non-production downgrades a block
// to a warning unless strict enforcement is configured.
//
// # Inputs
//
//   - vulns: Findings from all scan types. May be empty or nil.
//   - env: Deployment target for the recommendation.
//
// # Outputs
//
//   - datatypes.RiskAssessment: Deterministic function of the inputs.
func (e *Engine) Assess(vulns []datatypes.Vulnerability, env datatypes.Environment) datatypes.RiskAssessment {
	breakdown := datatypes.CountBySeverity(vulns)
	score := Score(breakdown)
	level := Level(score)

	return datatypes.RiskAssessment{
		Score:                score,
		Level:                level,
		SeverityBreakdown:    breakdown,
		TotalVulnerabilities: len(vulns),
		Recommendation:       e.Recommend(level, breakdown, env),
	}
}

// Score computes the clamped weighted score for a severity breakdown.
func Score(breakdown datatypes.SeverityCounts) float64 {
	score := 0.0
	for sev, count := range breakdown {
		score += severityWeights[sev] * float64(count)
	}
	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// Level buckets a score into a risk level.
func Level(score float64) datatypes.RiskLevel {
	switch {
	case score >= ThresholdCritical:
		return datatypes.RiskCritical
	case score >= ThresholdHigh:
		return datatypes.RiskHigh
	case score >= ThresholdMedium:
		return datatypes.RiskMedium
	case score > 0:
		return datatypes.RiskLow
	default:
		return datatypes.RiskNone
	}
}

// Recommend combines a risk level with the target environment.
//
// Decision table:
//
//   - any CRITICAL/HIGH finding, or level >= HIGH: BLOCK in PRODUCTION;
//     WARN elsewhere unless StrictEnforcement keeps it BLOCK.
//   - level MEDIUM: WARN everywhere.
//   - level LOW or NONE: APPROVE.
func (e *Engine) Recommend(
	level datatypes.RiskLevel,
	breakdown datatypes.SeverityCounts,
	env datatypes.Environment,
) datatypes.DeploymentRecommendation {
	hasBlocker := breakdown[datatypes.SeverityCritical] > 0 ||
		breakdown[datatypes.SeverityHigh] > 0 ||
		level.Order() >= datatypes.RiskHigh.Order()

	switch {
	case hasBlocker && (env == datatypes.EnvProduction || e.opts.StrictEnforcement):
		return datatypes.DeploymentRecommendation{
			Decision: datatypes.DeployBlock,
			Reason:   reasonTexts[datatypes.DeployBlock],
		}
	case hasBlocker:
		return datatypes.DeploymentRecommendation{
			Decision: datatypes.DeployWarn,
			Reason:   reasonTexts[datatypes.DeployWarn],
		}
	case level == datatypes.RiskMedium:
		return datatypes.DeploymentRecommendation{
			Decision: datatypes.DeployWarn,
			Reason:   reasonTexts[datatypes.DeployWarn],
		}
	default:
		return datatypes.DeploymentRecommendation{
			Decision: datatypes.DeployApprove,
			Reason:   reasonTexts[datatypes.DeployApprove],
		}
	}
}
