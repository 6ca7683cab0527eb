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
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/scanner/rules"
)

// SASTDetector matches the embedded static-analysis rule catalogue
// against every line of every readable source file.
//
// # Thread Safety
//
// Safe for concurrent use; the compiled catalogue is read-only after
// construction.
type SASTDetector struct {
	catalogue *RuleCatalogue
}

// NewSASTDetector loads the embedded SAST catalogue.
func NewSASTDetector() (*SASTDetector, error) {
	cat, err := LoadCatalogue(rules.SASTRules)
	if err != nil {
		return nil, err
	}
	return &SASTDetector{catalogue: cat}, nil
}

// ScanType implements Detector.
func (d *SASTDetector) ScanType() datatypes.ScanType {
	return datatypes.ScanTypeSAST
}

// RuleCount returns the number of loaded rules.
func (d *SASTDetector) RuleCount() int {
	return len(d.catalogue.Rules)
}

// Detect implements Detector.
//
// Every rule is checked against every line; one line can yield findings
// from several rules. Findings carry the rule's severity, category, and
// remediation text, with confidence fixed at 1.0 (SAST rules have no
// entropy heuristic).
func (d *SASTDetector) Detect(ctx context.Context, sourcePath string) ([]datatypes.Vulnerability, []string, error) {
	var findings []datatypes.Vulnerability

	errs, err := walkSourceTree(ctx, sourcePath, func(f sourceFile) error {
		for lineIdx, line := range f.lines {
			for i := range d.catalogue.Rules {
				rule := &d.catalogue.Rules[i]
				if !rule.Compiled().MatchString(line) {
					continue
				}
				findings = append(findings, datatypes.Vulnerability{
					ID:          datatypes.FindingID(rule.ID, f.relPath, lineIdx+1),
					RuleID:      rule.ID,
					Title:       rule.Title,
					Description: describeMatch(rule, line),
					Severity:    rule.Severity,
					Category:    rule.Category,
					FilePath:    f.relPath,
					LineNumber:  lineIdx + 1,
					Remediation: strings.TrimSpace(rule.Remediation),
					Confidence:  1.0,
				})
			}
		}
		return nil
	})
	if err != nil {
		return findings, errs, err
	}
	return findings, errs, nil
}

func describeMatch(rule *Rule, line string) string {
	snippet := strings.TrimSpace(line)
	if len(snippet) > 120 {
		snippet = snippet[:120] + "..."
	}
	desc := strings.TrimSpace(rule.Description)
	return fmt.Sprintf("%s Matched: %s", desc, snippet)
}
