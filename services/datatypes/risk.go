// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "strings"

// RiskLevel is a deterministic bucketing of the 0-100 risk score.
type RiskLevel string

const (
	RiskNone     RiskLevel = "NONE"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// riskOrder ranks risk levels for threshold comparison.
var riskOrder = map[RiskLevel]int{
	RiskNone:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Order returns the numeric rank of this risk level.
func (r RiskLevel) Order() int {
	return riskOrder[r]
}

// Exceeds returns true if this risk level exceeds the threshold.
func (r RiskLevel) Exceeds(threshold RiskLevel) bool {
	return riskOrder[r] > riskOrder[threshold]
}

// ParseRiskLevel parses a case-insensitive risk level name. Unknown
// values parse as RiskHigh, the conservative default.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return RiskNone
	case "low":
		return RiskLow
	case "medium":
		return RiskMedium
	case "high":
		return RiskHigh
	case "critical":
		return RiskCritical
	default:
		return RiskHigh
	}
}

// Environment is the deployment target of the pipeline run.
type Environment string

const (
	EnvDevelopment Environment = "DEVELOPMENT"
	EnvStaging     Environment = "STAGING"
	EnvProduction  Environment = "PRODUCTION"
)

// Valid returns true for one of the three known environments.
func (e Environment) Valid() bool {
	switch e {
	case EnvDevelopment, EnvStaging, EnvProduction:
		return true
	}
	return false
}

// DeploymentDecision is the recommendation output of risk assessment.
type DeploymentDecision string

const (
	DeployApprove DeploymentDecision = "APPROVE"
	DeployWarn    DeploymentDecision = "WARN"
	DeployBlock   DeploymentDecision = "BLOCK"
)

// DeploymentRecommendation pairs a decision with its reason.
type DeploymentRecommendation struct {
	Decision DeploymentDecision `json:"decision"`
	Reason   string             `json:"reason"`
}

// RiskAssessment is the reduction of a finding set to a risk picture.
//
// Score is clamped to [0,100] and is a pure function of the severity
// breakdown; Level is a pure function of Score. Recommendation folds in
// the target environment and the gate policy's strictness.
type RiskAssessment struct {
	Score                float64                  `json:"risk_score"`
	Level                RiskLevel                `json:"risk_level"`
	SeverityBreakdown    SeverityCounts           `json:"severity_breakdown"`
	TotalVulnerabilities int                      `json:"total_vulnerabilities"`
	Recommendation       DeploymentRecommendation `json:"deployment_recommendation"`
}
