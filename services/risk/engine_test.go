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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

func vulnsOf(counts map[datatypes.Severity]int) []datatypes.Vulnerability {
	var out []datatypes.Vulnerability
	for sev, n := range counts {
		for i := 0; i < n; i++ {
			out = append(out, datatypes.Vulnerability{Severity: sev})
		}
	}
	return out
}

// TestScore_EmptyIsZero verifies score(empty) = 0 exactly.
func TestScore_EmptyIsZero(t *testing.T) {
	engine := NewEngine(Options{})
	assessment := engine.Assess(nil, datatypes.EnvDevelopment)

	assert.Equal(t, 0.0, assessment.Score)
	assert.Equal(t, datatypes.RiskNone, assessment.Level)
	assert.Equal(t, 0, assessment.TotalVulnerabilities)
	assert.Equal(t, datatypes.DeployApprove, assessment.Recommendation.Decision)
}

// TestScore_Weights verifies the fixed per-severity weights.
func TestScore_Weights(t *testing.T) {
	tests := []struct {
		name   string
		counts map[datatypes.Severity]int
		want   float64
	}{
		{"one critical", map[datatypes.Severity]int{datatypes.SeverityCritical: 1}, 25},
		{"one high", map[datatypes.Severity]int{datatypes.SeverityHigh: 1}, 10},
		{"one medium", map[datatypes.Severity]int{datatypes.SeverityMedium: 1}, 3},
		{"one low", map[datatypes.Severity]int{datatypes.SeverityLow: 1}, 1},
		{"info is free", map[datatypes.Severity]int{datatypes.SeverityInfo: 50}, 0},
		{"mixed", map[datatypes.Severity]int{
			datatypes.SeverityCritical: 1,
			datatypes.SeverityHigh:     2,
			datatypes.SeverityMedium:   3,
			datatypes.SeverityLow:      4,
		}, 25 + 20 + 9 + 4},
		{"clamped at 100", map[datatypes.Severity]int{datatypes.SeverityCritical: 20}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(datatypes.CountBySeverity(vulnsOf(tt.counts)))
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestScore_Monotonic verifies adding a finding of any severity never
// lowers the score.
func TestScore_Monotonic(t *testing.T) {
	base := map[datatypes.Severity]int{
		datatypes.SeverityHigh: 2,
		datatypes.SeverityLow:  5,
	}
	baseScore := Score(datatypes.CountBySeverity(vulnsOf(base)))

	for _, sev := range datatypes.Severities() {
		bumped := map[datatypes.Severity]int{
			datatypes.SeverityHigh: 2,
			datatypes.SeverityLow:  5,
		}
		bumped[sev]++
		got := Score(datatypes.CountBySeverity(vulnsOf(bumped)))
		assert.GreaterOrEqual(t, got, baseScore, "adding a %s finding lowered the score", sev)
	}
}

// TestScore_CriticalDominatesLowAndInfo verifies a single CRITICAL
// outweighs any number of LOW/INFO findings through weight ordering.
func TestScore_CriticalDominatesLowAndInfo(t *testing.T) {
	critical := Score(datatypes.CountBySeverity(vulnsOf(
		map[datatypes.Severity]int{datatypes.SeverityCritical: 1},
	)))

	noise := Score(datatypes.CountBySeverity(vulnsOf(
		map[datatypes.Severity]int{
			datatypes.SeverityLow:  10,
			datatypes.SeverityInfo: 500,
		},
	)))

	assert.Greater(t, critical, noise)
}

// TestLevel_Buckets verifies the fixed score thresholds.
func TestLevel_Buckets(t *testing.T) {
	tests := []struct {
		score float64
		want  datatypes.RiskLevel
	}{
		{0, datatypes.RiskNone},
		{0.5, datatypes.RiskLow},
		{19.9, datatypes.RiskLow},
		{20, datatypes.RiskMedium},
		{49.9, datatypes.RiskMedium},
		{50, datatypes.RiskHigh},
		{79.9, datatypes.RiskHigh},
		{80, datatypes.RiskCritical},
		{100, datatypes.RiskCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.score), "score %.1f", tt.score)
	}
}

// TestRecommend_Matrix verifies the environment/strictness decision
// table.
func TestRecommend_Matrix(t *testing.T) {
	oneCritical := map[datatypes.Severity]int{datatypes.SeverityCritical: 1}
	mediumOnly := map[datatypes.Severity]int{datatypes.SeverityMedium: 7}

	tests := []struct {
		name   string
		counts map[datatypes.Severity]int
		env    datatypes.Environment
		strict bool
		want   datatypes.DeploymentDecision
	}{
		{"critical in production blocks", oneCritical, datatypes.EnvProduction, false, datatypes.DeployBlock},
		{"critical in staging warns", oneCritical, datatypes.EnvStaging, false, datatypes.DeployWarn},
		{"critical in development warns", oneCritical, datatypes.EnvDevelopment, false, datatypes.DeployWarn},
		{"strict keeps the block outside production", oneCritical, datatypes.EnvDevelopment, true, datatypes.DeployBlock},
		{"high in production blocks", map[datatypes.Severity]int{datatypes.SeverityHigh: 1}, datatypes.EnvProduction, false, datatypes.DeployBlock},
		{"medium warns everywhere", mediumOnly, datatypes.EnvProduction, false, datatypes.DeployWarn},
		{"low approves", map[datatypes.Severity]int{datatypes.SeverityLow: 3}, datatypes.EnvProduction, false, datatypes.DeployApprove},
		{"clean approves", nil, datatypes.EnvProduction, false, datatypes.DeployApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(Options{StrictEnforcement: tt.strict})
			assessment := engine.Assess(vulnsOf(tt.counts), tt.env)
			assert.Equal(t, tt.want, assessment.Recommendation.Decision)
			assert.NotEmpty(t, assessment.Recommendation.Reason)
		})
	}
}

// TestAssess_Deterministic verifies identical input yields identical
// assessments.
func TestAssess_Deterministic(t *testing.T) {
	engine := NewEngine(Options{})
	vulns := vulnsOf(map[datatypes.Severity]int{
		datatypes.SeverityCritical: 1,
		datatypes.SeverityMedium:   2,
	})

	first := engine.Assess(vulns, datatypes.EnvStaging)
	second := engine.Assess(vulns, datatypes.EnvStaging)
	require.Equal(t, first, second)
}
