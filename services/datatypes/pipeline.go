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

import (
	"fmt"
	"time"
)

// PipelineStage is a state of the orchestrator's state machine.
type PipelineStage string

const (
	StageInit           PipelineStage = "INIT"
	StageScanning       PipelineStage = "SCANNING"
	StageRiskAssessment PipelineStage = "RISK_ASSESSMENT"
	StageGateEvaluation PipelineStage = "GATE_EVALUATION"
	StageReporting      PipelineStage = "REPORTING"
)

// PipelineStatus is the terminal status of a pipeline run.
type PipelineStatus string

const (
	PipelinePassed  PipelineStatus = "PASSED"
	PipelineFailed  PipelineStatus = "FAILED"
	PipelineError   PipelineStatus = "ERROR"
	PipelineTimeout PipelineStatus = "TIMEOUT"
)

// PipelineContext identifies and describes one pipeline run. It is
// supplied by the caller and opaque to the core except Environment,
// which shapes the deployment recommendation.
type PipelineContext struct {
	PipelineID    string            `json:"pipeline_id" validate:"required"`
	CommitSHA     string            `json:"commit_sha"`
	BranchName    string            `json:"branch_name"`
	RepositoryURL string            `json:"repository_url"`
	Environment   Environment       `json:"environment" validate:"required"`
	TriggeredBy   string            `json:"triggered_by"`
	Timestamp     time.Time         `json:"timestamp"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Validate checks the context. The environment must be one of the three
// known targets; an unknown environment would silently weaken the
// production blocking rule.
func (c PipelineContext) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid pipeline context: %w", err)
	}
	if !c.Environment.Valid() {
		return fmt.Errorf("invalid pipeline context: unknown environment %q", c.Environment)
	}
	return nil
}

// GateSeverity distinguishes blocking gates from advisory ones.
type GateSeverity string

const (
	// GateBlocking gates flip the pipeline to FAILED when they fail.
	GateBlocking GateSeverity = "BLOCKING"

	// GateAdvisory gates are recorded but never change overall status.
	GateAdvisory GateSeverity = "ADVISORY"
)

// GateResult is the outcome of evaluating one gate. It is a
// deterministic function of the scan results and the gate's predicate.
type GateResult struct {
	GateName string       `json:"gate_name"`
	Passed   bool         `json:"passed"`
	Severity GateSeverity `json:"severity"`
	Details  string       `json:"details"`
}

// GatesStatus is a pure tally over a GateResult map.
type GatesStatus struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// TallyGates computes the aggregate gate status with no exclusions.
func TallyGates(results map[string]GateResult) GatesStatus {
	status := GatesStatus{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			status.Passed++
		} else {
			status.Failed++
		}
	}
	return status
}

// Artifact is a generated report location recorded on the result.
type Artifact struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// BaselineDelta is the identity diff between the current finding set and
// a previously captured baseline.
type BaselineDelta struct {
	NewFindings      []Vulnerability `json:"new_findings"`
	ResolvedFindings []Vulnerability `json:"resolved_findings"`
}

// PipelineResult is the single output of an orchestrated run. It is
// built once and immutable after construction; execute() returns it even
// when the run terminates in ERROR or TIMEOUT.
type PipelineResult struct {
	PipelineID      string                  `json:"pipeline_id"`
	OverallStatus   PipelineStatus          `json:"overall_status"`
	DurationSeconds float64                 `json:"duration_seconds"`
	ScanResults     map[ScanType]ScanResult `json:"scan_results"`
	RiskAssessment  RiskAssessment          `json:"risk_assessment"`
	GateResults     map[string]GateResult   `json:"gate_results"`
	GatesStatus     GatesStatus             `json:"gates_status"`
	Artifacts       []Artifact              `json:"artifacts,omitempty"`
	BaselineDelta   *BaselineDelta          `json:"baseline_delta,omitempty"`
	Warnings        []string                `json:"warnings,omitempty"`
	Errors          []string                `json:"errors,omitempty"`
}
