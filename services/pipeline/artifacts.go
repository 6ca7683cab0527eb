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
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/scanner"
)

// artifactWriter serializes run reports into the output directory.
// Write failures are surfaced as warnings by the orchestrator, never as
// a status escalation.
type artifactWriter struct {
	outputDir string
}

// writeJSONReport writes the full report as JSON and returns its
// artifact record.
func (w artifactWriter) writeJSONReport(pipelineID string, report scanner.Report) (datatypes.Artifact, error) {
	name := fmt.Sprintf("shipgate-report-%s.json", pipelineID)
	path := filepath.Join(w.outputDir, name)
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return datatypes.Artifact{}, err
	}
	if err := w.write(path, raw); err != nil {
		return datatypes.Artifact{}, err
	}
	return datatypes.Artifact{ID: uuid.NewString(), Kind: "report-json", Path: path}, nil
}

// writeMarkdownSummary writes a human-readable summary and returns its
// artifact record.
func (w artifactWriter) writeMarkdownSummary(pipelineID string, report scanner.Report) (datatypes.Artifact, error) {
	name := fmt.Sprintf("shipgate-summary-%s.md", pipelineID)
	path := filepath.Join(w.outputDir, name)
	if err := w.write(path, []byte(renderMarkdown(pipelineID, report))); err != nil {
		return datatypes.Artifact{}, err
	}
	return datatypes.Artifact{ID: uuid.NewString(), Kind: "summary-markdown", Path: path}, nil
}

// writeBaselineDelta writes the finding delta as JSON.
func (w artifactWriter) writeBaselineDelta(pipelineID string, delta datatypes.BaselineDelta) (datatypes.Artifact, error) {
	name := fmt.Sprintf("shipgate-delta-%s.json", pipelineID)
	path := filepath.Join(w.outputDir, name)
	raw, err := json.MarshalIndent(delta, "", "  ")
	if err != nil {
		return datatypes.Artifact{}, err
	}
	if err := w.write(path, raw); err != nil {
		return datatypes.Artifact{}, err
	}
	return datatypes.Artifact{ID: uuid.NewString(), Kind: "baseline-delta", Path: path}, nil
}

func (w artifactWriter) write(path string, raw []byte) error {
	if err := os.MkdirAll(w.outputDir, 0750); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0640)
}

// renderMarkdown builds the summary document. Deterministic for a given
// report; no timestamps are embedded.
func renderMarkdown(pipelineID string, report scanner.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Security Scan Summary\n\n")
	fmt.Fprintf(&b, "Pipeline: `%s`\n\n", pipelineID)
	fmt.Fprintf(&b, "Risk score: **%.1f** (%s)\n\n", report.RiskAssessment.Score, report.RiskAssessment.Level)
	fmt.Fprintf(&b, "Deployment recommendation: **%s** - %s\n\n",
		report.RiskAssessment.Recommendation.Decision,
		report.RiskAssessment.Recommendation.Reason,
	)

	fmt.Fprintf(&b, "## Findings by severity\n\n")
	fmt.Fprintf(&b, "| Severity | Count |\n|---|---|\n")
	for _, sev := range datatypes.Severities() {
		fmt.Fprintf(&b, "| %s | %d |\n", sev, report.Summary.BySeverity[sev])
	}
	fmt.Fprintf(&b, "| Total | %d |\n", report.Summary.Total)

	if len(report.Vulnerabilities) > 0 {
		fmt.Fprintf(&b, "\n## Top findings\n\n")
		top := report.Vulnerabilities
		if len(top) > 10 {
			top = top[:10]
		}
		for _, v := range top {
			fmt.Fprintf(&b, "- **%s** %s (`%s:%d`)\n", v.Severity, v.Title, v.FilePath, v.LineNumber)
		}
	}
	return b.String()
}
