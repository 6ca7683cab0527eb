// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/scanner"
)

// stubDetector returns scripted findings for one scan type.
type stubDetector struct {
	scanType datatypes.ScanType
	findings []datatypes.Vulnerability
	fileErrs []string
	err      error
}

func (d *stubDetector) ScanType() datatypes.ScanType { return d.scanType }

func (d *stubDetector) Detect(_ context.Context, _ string) ([]datatypes.Vulnerability, []string, error) {
	return d.findings, d.fileErrs, d.err
}

func newTestOrchestrator(t *testing.T, detectors ...scanner.Detector) *Orchestrator {
	t.Helper()
	registry := scanner.NewRegistry()
	for _, d := range detectors {
		registry.Register(d)
	}
	sc, err := scanner.NewScanner(registry, nil)
	require.NoError(t, err)
	o, err := NewOrchestrator(sc, nil)
	require.NoError(t, err)
	return o
}

func testContext(env datatypes.Environment) datatypes.PipelineContext {
	return datatypes.PipelineContext{
		PipelineID:  uuid.NewString(),
		Environment: env,
		TriggeredBy: "test",
		Timestamp:   time.Now().UTC(),
	}
}

func testConfiguration(types ...datatypes.ScanType) Configuration {
	return Configuration{
		Scan: datatypes.ScanConfiguration{
			EnabledScanTypes:       types,
			MaxScanDurationMinutes: 10,
			FailOnCritical:         true,
		},
	}
}

func criticalSecretFinding() datatypes.Vulnerability {
	return datatypes.Vulnerability{
		ID:          datatypes.FindingID("SECRET-AWS-001", "config.py", 3),
		RuleID:      "SECRET-AWS-001",
		Title:       "AWS access key ID",
		Severity:    datatypes.SeverityCritical,
		Category:    "secret",
		FilePath:    "config.py",
		LineNumber:  3,
		Confidence:  0.95,
		Remediation: "Rotate the key and move it to a secret manager.",
	}
}

// TestExecute_CleanProjectPasses verifies a run with no findings
// terminates in PASSED with zero risk and an APPROVE recommendation.
func TestExecute_CleanProjectPasses(t *testing.T) {
	o := newTestOrchestrator(t,
		&stubDetector{scanType: datatypes.ScanTypeSAST},
		&stubDetector{scanType: datatypes.ScanTypeSecrets},
	)

	result, err := o.Execute(context.Background(), t.TempDir(),
		testContext(datatypes.EnvProduction),
		testConfiguration(datatypes.ScanTypeSAST, datatypes.ScanTypeSecrets),
	)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, datatypes.PipelinePassed, result.OverallStatus)
	assert.Zero(t, result.RiskAssessment.Score)
	assert.Equal(t, datatypes.RiskNone, result.RiskAssessment.Level)
	assert.Equal(t, datatypes.DeployApprove, result.RiskAssessment.Recommendation.Decision)
	assert.Equal(t, result.GatesStatus.Total, result.GatesStatus.Passed)
	assert.Zero(t, result.GatesStatus.Failed)
	assert.Len(t, result.ScanResults, 2)
}

// TestExecute_CriticalFindingFailsInProduction verifies a critical
// secret finding fails the run and blocks deployment to production.
func TestExecute_CriticalFindingFailsInProduction(t *testing.T) {
	o := newTestOrchestrator(t,
		&stubDetector{scanType: datatypes.ScanTypeSecrets, findings: []datatypes.Vulnerability{criticalSecretFinding()}},
	)

	result, err := o.Execute(context.Background(), t.TempDir(),
		testContext(datatypes.EnvProduction),
		testConfiguration(datatypes.ScanTypeSecrets),
	)
	require.NoError(t, err)

	assert.Equal(t, datatypes.PipelineFailed, result.OverallStatus)
	assert.Equal(t, datatypes.DeployBlock, result.RiskAssessment.Recommendation.Decision)
	assert.Positive(t, result.GatesStatus.Failed)
	assert.False(t, result.GateResults["no-secrets"].Passed)
	assert.InDelta(t, 25.0, result.RiskAssessment.Score, 0.001)
}

// TestExecute_TimeoutStatus verifies a timed-out scan type yields
// TIMEOUT while its partial findings are kept.
func TestExecute_TimeoutStatus(t *testing.T) {
	o := newTestOrchestrator(t,
		&stubDetector{scanType: datatypes.ScanTypeSAST, err: context.DeadlineExceeded},
	)

	config := testConfiguration(datatypes.ScanTypeSAST)
	config.Scan.FailOnCritical = false

	result, err := o.Execute(context.Background(), t.TempDir(),
		testContext(datatypes.EnvDevelopment), config,
	)
	require.NoError(t, err)

	assert.Equal(t, datatypes.PipelineTimeout, result.OverallStatus)
	assert.Equal(t, datatypes.ScanStatusTimeout, result.ScanResults[datatypes.ScanTypeSAST].Status)
}

// TestExecute_BlockingGateOutranksTimeout verifies a blocking gate
// failing on partial data takes precedence over the timeout status.
func TestExecute_BlockingGateOutranksTimeout(t *testing.T) {
	o := newTestOrchestrator(t,
		&stubDetector{
			scanType: datatypes.ScanTypeSecrets,
			findings: []datatypes.Vulnerability{criticalSecretFinding()},
			err:      context.DeadlineExceeded,
		},
	)

	result, err := o.Execute(context.Background(), t.TempDir(),
		testContext(datatypes.EnvProduction),
		testConfiguration(datatypes.ScanTypeSecrets),
	)
	require.NoError(t, err)

	assert.Equal(t, datatypes.PipelineFailed, result.OverallStatus)
	assert.Equal(t, datatypes.ScanStatusTimeout, result.ScanResults[datatypes.ScanTypeSecrets].Status)
}

// TestExecute_MissingDetectorYieldsError verifies a scan type with no
// registered detector lands the run in ERROR, not a returned error.
func TestExecute_MissingDetectorYieldsError(t *testing.T) {
	o := newTestOrchestrator(t,
		&stubDetector{scanType: datatypes.ScanTypeSAST},
	)

	config := testConfiguration(datatypes.ScanTypeSAST, datatypes.ScanTypeDependency)
	config.Scan.FailOnCritical = false

	result, err := o.Execute(context.Background(), t.TempDir(),
		testContext(datatypes.EnvDevelopment), config,
	)
	require.NoError(t, err)

	assert.Equal(t, datatypes.PipelineError, result.OverallStatus)
	assert.Equal(t, datatypes.ScanStatusError, result.ScanResults[datatypes.ScanTypeDependency].Status)
	assert.Equal(t, datatypes.ScanStatusCompleted, result.ScanResults[datatypes.ScanTypeSAST].Status)
}

// TestExecute_UnreadableSourceYieldsErrorResult verifies an unreadable
// source path terminates in ERROR with a well-formed result.
func TestExecute_UnreadableSourceYieldsErrorResult(t *testing.T) {
	o := newTestOrchestrator(t, &stubDetector{scanType: datatypes.ScanTypeSAST})

	result, err := o.Execute(context.Background(), "/nonexistent/source/tree",
		testContext(datatypes.EnvDevelopment),
		testConfiguration(datatypes.ScanTypeSAST),
	)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, datatypes.PipelineError, result.OverallStatus)
	assert.NotEmpty(t, result.Errors)
}

// TestExecute_RejectsInvalidInput verifies configuration and context
// failures reject the call before any stage runs.
func TestExecute_RejectsInvalidInput(t *testing.T) {
	o := newTestOrchestrator(t, &stubDetector{scanType: datatypes.ScanTypeSAST})

	t.Run("nil context", func(t *testing.T) {
		//nolint:staticcheck // nil ctx rejection is the behavior under test
		result, err := o.Execute(nil, t.TempDir(),
			testContext(datatypes.EnvDevelopment),
			testConfiguration(datatypes.ScanTypeSAST),
		)
		require.ErrorIs(t, err, ErrNilContext)
		assert.Nil(t, result)
	})

	t.Run("no scan types", func(t *testing.T) {
		result, err := o.Execute(context.Background(), t.TempDir(),
			testContext(datatypes.EnvDevelopment), testConfiguration(),
		)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Nil(t, result)
	})

	t.Run("missing pipeline id", func(t *testing.T) {
		pctx := testContext(datatypes.EnvDevelopment)
		pctx.PipelineID = ""
		result, err := o.Execute(context.Background(), t.TempDir(),
			pctx, testConfiguration(datatypes.ScanTypeSAST),
		)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Nil(t, result)
	})

	t.Run("reports without output dir", func(t *testing.T) {
		config := testConfiguration(datatypes.ScanTypeSAST)
		config.GenerateReports = true
		result, err := o.Execute(context.Background(), t.TempDir(),
			testContext(datatypes.EnvDevelopment), config,
		)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Nil(t, result)
	})

	t.Run("baseline comparison without snapshot", func(t *testing.T) {
		config := testConfiguration(datatypes.ScanTypeSAST)
		config.BaselineComparison = true
		result, err := o.Execute(context.Background(), t.TempDir(),
			testContext(datatypes.EnvDevelopment), config,
		)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Nil(t, result)
	})
}

// TestExecute_BaselineDelta verifies the run records new and resolved
// findings against the supplied baseline.
func TestExecute_BaselineDelta(t *testing.T) {
	resolved := datatypes.Vulnerability{
		ID:       datatypes.FindingID("SAST-SQL-001", "db.py", 12),
		RuleID:   "SAST-SQL-001",
		Severity: datatypes.SeverityHigh,
		FilePath: "db.py",
	}
	current := criticalSecretFinding()

	o := newTestOrchestrator(t,
		&stubDetector{scanType: datatypes.ScanTypeSecrets, findings: []datatypes.Vulnerability{current}},
	)

	config := testConfiguration(datatypes.ScanTypeSecrets)
	config.BaselineComparison = true
	config.Baseline = &Baseline{
		PipelineID: "previous-run",
		Findings:   []datatypes.Vulnerability{resolved},
	}

	result, err := o.Execute(context.Background(), t.TempDir(),
		testContext(datatypes.EnvStaging), config,
	)
	require.NoError(t, err)
	require.NotNil(t, result.BaselineDelta)

	require.Len(t, result.BaselineDelta.NewFindings, 1)
	assert.Equal(t, current.ID, result.BaselineDelta.NewFindings[0].ID)
	require.Len(t, result.BaselineDelta.ResolvedFindings, 1)
	assert.Equal(t, resolved.ID, result.BaselineDelta.ResolvedFindings[0].ID)
}

// TestExecute_WritesArtifacts verifies REPORTING writes the JSON report
// and markdown summary into the output directory.
func TestExecute_WritesArtifacts(t *testing.T) {
	o := newTestOrchestrator(t, &stubDetector{scanType: datatypes.ScanTypeSAST})

	outputDir := t.TempDir()
	config := testConfiguration(datatypes.ScanTypeSAST)
	config.GenerateReports = true
	config.OutputDir = outputDir

	result, err := o.Execute(context.Background(), t.TempDir(),
		testContext(datatypes.EnvDevelopment), config,
	)
	require.NoError(t, err)

	require.Len(t, result.Artifacts, 2)
	kinds := make(map[string]bool, len(result.Artifacts))
	for _, a := range result.Artifacts {
		kinds[a.Kind] = true
		info, statErr := os.Stat(a.Path)
		require.NoError(t, statErr, "artifact %s should exist", a.Path)
		assert.Positive(t, info.Size())
	}
	assert.True(t, kinds["report-json"])
	assert.True(t, kinds["summary-markdown"])
	assert.Empty(t, result.Warnings)
}

// TestNewOrchestrator_NilScanner verifies construction fails without a
// scanner.
func TestNewOrchestrator_NilScanner(t *testing.T) {
	o, err := NewOrchestrator(nil, nil)
	require.Error(t, err)
	assert.Nil(t, o)
}
