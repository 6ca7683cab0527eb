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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// Baseline is a captured finding set from a prior run. It is the only
// historical state the pipeline consumes, and it is supplied by the
// caller rather than persisted by the core.
type Baseline struct {
	PipelineID string                    `json:"pipeline_id"`
	CapturedAt time.Time                 `json:"captured_at"`
	Findings   []datatypes.Vulnerability `json:"findings"`
}

// NewBaseline captures the findings of a completed run.
func NewBaseline(result *datatypes.PipelineResult) Baseline {
	var findings []datatypes.Vulnerability
	for _, sr := range result.ScanResults {
		findings = append(findings, sr.Vulnerabilities...)
	}
	datatypes.SortVulnerabilities(findings)
	return Baseline{
		PipelineID: result.PipelineID,
		CapturedAt: time.Now().UTC(),
		Findings:   findings,
	}
}

// LoadBaseline reads a baseline snapshot from a JSON file.
func LoadBaseline(path string) (*Baseline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaselineUnreadable, err)
	}
	var b Baseline
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaselineUnreadable, err)
	}
	return &b, nil
}

// Save writes the baseline snapshot to a JSON file.
func (b Baseline) Save(path string) error {
	raw, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0640)
}

// Diff computes the identity delta between current findings and the
// baseline: findings whose ID is absent from the baseline are new,
// baseline findings absent from the current set are resolved.
func (b *Baseline) Diff(current []datatypes.Vulnerability) datatypes.BaselineDelta {
	baselineIDs := make(map[string]bool, len(b.Findings))
	for _, f := range b.Findings {
		baselineIDs[f.ID] = true
	}
	currentIDs := make(map[string]bool, len(current))
	for _, f := range current {
		currentIDs[f.ID] = true
	}

	delta := datatypes.BaselineDelta{
		NewFindings:      []datatypes.Vulnerability{},
		ResolvedFindings: []datatypes.Vulnerability{},
	}
	for _, f := range current {
		if !baselineIDs[f.ID] {
			delta.NewFindings = append(delta.NewFindings, f)
		}
	}
	for _, f := range b.Findings {
		if !currentIDs[f.ID] {
			delta.ResolvedFindings = append(delta.ResolvedFindings, f)
		}
	}
	datatypes.SortVulnerabilities(delta.NewFindings)
	datatypes.SortVulnerabilities(delta.ResolvedFindings)
	return delta
}
