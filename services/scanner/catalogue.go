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
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// RuleCatalogue is a parsed, compiled rule file.
type RuleCatalogue struct {
	Catalogue string `yaml:"catalogue"`
	Version   string `yaml:"version"`
	Rules     []Rule `yaml:"rules"`
}

// Rule is one detection rule. SAST rules leave Specificity at zero;
// secret rules use it together with EntropyGroup for confidence scoring.
type Rule struct {
	ID           string             `yaml:"id"`
	Title        string             `yaml:"title"`
	Category     string             `yaml:"category"`
	Severity     datatypes.Severity `yaml:"severity"`
	Regex        string             `yaml:"regex"`
	Description  string             `yaml:"description"`
	Remediation  string             `yaml:"remediation"`
	Specificity  float64            `yaml:"specificity"`
	EntropyGroup int                `yaml:"entropy_group"`

	compiled *regexp.Regexp
}

// Compiled returns the compiled pattern. Only valid after LoadCatalogue.
func (r *Rule) Compiled() *regexp.Regexp {
	return r.compiled
}

// LoadCatalogue parses a rule file and compiles every pattern.
//
// # Inputs
//
//   - raw: YAML bytes, normally one of the embedded catalogues in the
//     rules package.
//
// # Outputs
//
//   - *RuleCatalogue: Catalogue with all regexes compiled.
//   - error: Wraps ErrRuleCatalogue on malformed YAML, bad severity, or
//     an uncompilable regex.
func LoadCatalogue(raw []byte) (*RuleCatalogue, error) {
	var cat RuleCatalogue
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrRuleCatalogue, err)
	}
	if len(cat.Rules) == 0 {
		return nil, fmt.Errorf("%w: catalogue %q has no rules", ErrRuleCatalogue, cat.Catalogue)
	}
	for i := range cat.Rules {
		rule := &cat.Rules[i]
		if !rule.Severity.Valid() {
			return nil, fmt.Errorf("%w: rule %s: unknown severity %q", ErrRuleCatalogue, rule.ID, rule.Severity)
		}
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %s: compile %q: %v", ErrRuleCatalogue, rule.ID, rule.Regex, err)
		}
		rule.compiled = re
	}
	return &cat, nil
}
