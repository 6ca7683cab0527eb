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

	"github.com/go-playground/validator/v10"
)

// configValidate is the validator instance for configuration datatypes.
// Initialized once; validator.Validate is safe for concurrent use.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

// ScanConfiguration controls a scanner invocation.
//
// The scanner never mutates the configuration. Duplicate entries in
// EnabledScanTypes are rejected by Validate rather than silently merged.
//
// Uses go-playground/validator:
//   - EnabledScanTypes: at least one entry, each non-empty
//   - MaxScanDurationMinutes: strictly positive
type ScanConfiguration struct {
	// EnabledScanTypes is the set of scan categories to run. Order is
	// irrelevant; sequential execution sorts them for stability.
	EnabledScanTypes []ScanType `json:"enabled_scan_types" yaml:"enabled_scan_types" validate:"required,min=1,dive,required"`

	// MaxScanDurationMinutes is the aggregate wall-clock budget for all
	// scan types together.
	MaxScanDurationMinutes int `json:"max_scan_duration_minutes" yaml:"max_scan_duration_minutes" validate:"required,gt=0"`

	// ParallelScans runs scan types as independent concurrent tasks.
	ParallelScans bool `json:"parallel_scans" yaml:"parallel_scans"`

	// FailOnCritical makes the no-critical gate blocking.
	FailOnCritical bool `json:"fail_on_critical" yaml:"fail_on_critical"`

	// FailOnHigh makes the no-high gate blocking.
	FailOnHigh bool `json:"fail_on_high" yaml:"fail_on_high"`
}

// DefaultScanConfiguration returns a configuration with sensible defaults:
// SAST and secret scanning, 10 minute budget, parallel execution, and
// blocking on CRITICAL findings.
func DefaultScanConfiguration() ScanConfiguration {
	return ScanConfiguration{
		EnabledScanTypes:       []ScanType{ScanTypeSAST, ScanTypeSecrets},
		MaxScanDurationMinutes: 10,
		ParallelScans:          true,
		FailOnCritical:         true,
		FailOnHigh:             false,
	}
}

// Validate checks the configuration.
//
// # Outputs
//
//   - error: Non-nil if struct tags fail or a scan type is duplicated.
func (c ScanConfiguration) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid scan configuration: %w", err)
	}
	seen := make(map[ScanType]bool, len(c.EnabledScanTypes))
	for _, st := range c.EnabledScanTypes {
		if !st.Valid() {
			return fmt.Errorf("invalid scan configuration: unknown scan type %q", st)
		}
		if seen[st] {
			return fmt.Errorf("invalid scan configuration: duplicate scan type %q", st)
		}
		seen[st] = true
	}
	return nil
}
