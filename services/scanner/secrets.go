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
	"math"
	"strings"

	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/scanner/rules"
)

// ConfidenceFloor is the minimum confidence a secret candidate needs to
// be emitted. Candidates below the floor are suppressed as likely
// placeholders ("xxxx", "changeme", repeated characters).
const ConfidenceFloor = 0.5

// entropyNormalizer scales Shannon entropy (bits per character) into
// [0,1]. Random alphanumeric tokens sit near 4-5 bits/char, so 4.0 maps
// a genuinely random key to full confidence.
const entropyNormalizer = 4.0

// SecretDetector matches the embedded credential-pattern catalogue and
// scores candidates by character entropy to suppress low-confidence
// matches.
//
// # Thread Safety
//
// Safe for concurrent use; the compiled catalogue is read-only after
// construction.
type SecretDetector struct {
	catalogue *RuleCatalogue
}

// NewSecretDetector loads the embedded secret catalogue.
func NewSecretDetector() (*SecretDetector, error) {
	cat, err := LoadCatalogue(rules.SecretRules)
	if err != nil {
		return nil, err
	}
	return &SecretDetector{catalogue: cat}, nil
}

// ScanType implements Detector.
func (d *SecretDetector) ScanType() datatypes.ScanType {
	return datatypes.ScanTypeSecrets
}

// RuleCount returns the number of loaded rules.
func (d *SecretDetector) RuleCount() int {
	return len(d.catalogue.Rules)
}

// Detect implements Detector.
//
// For each rule match the candidate token (the rule's entropy capture
// group, or the whole match) is scored:
//
//	confidence = specificity * min(1, entropy/entropyNormalizer)
//
// and suppressed below ConfidenceFloor. Matched secret values are never
// echoed into the finding; the description names the pattern only.
func (d *SecretDetector) Detect(ctx context.Context, sourcePath string) ([]datatypes.Vulnerability, []string, error) {
	var findings []datatypes.Vulnerability

	errs, err := walkSourceTree(ctx, sourcePath, func(f sourceFile) error {
		for lineIdx, line := range f.lines {
			for i := range d.catalogue.Rules {
				rule := &d.catalogue.Rules[i]
				groups := rule.Compiled().FindStringSubmatch(line)
				if groups == nil {
					continue
				}
				candidate := groups[0]
				if rule.EntropyGroup > 0 && rule.EntropyGroup < len(groups) {
					candidate = groups[rule.EntropyGroup]
				}
				confidence := scoreCandidate(rule, candidate)
				if confidence < ConfidenceFloor {
					continue
				}
				findings = append(findings, datatypes.Vulnerability{
					ID:          datatypes.FindingID(rule.ID, f.relPath, lineIdx+1),
					RuleID:      rule.ID,
					Title:       rule.Title,
					Description: fmt.Sprintf("%s detected (candidate length %d).", rule.Title, len(candidate)),
					Severity:    rule.Severity,
					Category:    rule.Category,
					FilePath:    f.relPath,
					LineNumber:  lineIdx + 1,
					Remediation: strings.TrimSpace(rule.Remediation),
					Confidence:  confidence,
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

func scoreCandidate(rule *Rule, candidate string) float64 {
	specificity := rule.Specificity
	if specificity <= 0 {
		specificity = 0.5
	}
	norm := shannonEntropy(candidate) / entropyNormalizer
	if norm > 1 {
		norm = 1
	}
	return specificity * norm
}

// shannonEntropy returns the bits-per-character entropy of s.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}
