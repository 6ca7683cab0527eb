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
	"fmt"

	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/gates"
)

// Configuration drives one orchestrated run.
//
// The orchestrator treats it as read-only. Gates defaults to
// gates.DefaultGates(Scan) when empty.
type Configuration struct {
	// Scan is the scanner configuration for the run.
	Scan datatypes.ScanConfiguration `json:"scan" yaml:"scan"`

	// Gates overrides the default gate set. Optional.
	Gates []gates.SecurityGate `json:"-" yaml:"-"`

	// StrictEnforcement keeps deployment blocks outside PRODUCTION.
	StrictEnforcement bool `json:"strict_enforcement" yaml:"strict_enforcement"`

	// GenerateReports writes report artifacts during REPORTING.
	GenerateReports bool `json:"generate_reports" yaml:"generate_reports"`

	// OutputDir receives report artifacts. Required when
	// GenerateReports is set.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// BaselineComparison enables the finding delta against Baseline.
	BaselineComparison bool `json:"baseline_comparison" yaml:"baseline_comparison"`

	// Baseline is the prior finding snapshot to diff against. Required
	// when BaselineComparison is set.
	Baseline *Baseline `json:"-" yaml:"-"`
}

// Validate checks the configuration. Called during INIT; a failure here
// is the configuration-error class that rejects the call outright.
func (c Configuration) Validate() error {
	if err := c.Scan.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if c.GenerateReports && c.OutputDir == "" {
		return fmt.Errorf("%w: generate_reports requires output_dir", ErrInvalidConfiguration)
	}
	if c.BaselineComparison && c.Baseline == nil {
		return fmt.Errorf("%w: baseline_comparison requires a baseline snapshot", ErrInvalidConfiguration)
	}
	return nil
}

// gateSet resolves the effective gates for the run.
func (c Configuration) gateSet() []gates.SecurityGate {
	if len(c.Gates) > 0 {
		return c.Gates
	}
	return gates.DefaultGates(c.Scan)
}
