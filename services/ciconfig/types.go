// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ciconfig renders CI workflow documents that invoke the
// scanning pipeline on an external CI platform.
//
// Generation is pure: the same PipelineConfig always produces the same
// bytes, with no timestamps or random identifiers embedded.
package ciconfig

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/ShipGate/pkg/validation"
	"github.com/AleutianAI/ShipGate/services/datatypes"
)

var (
	// ErrUnsupportedPlatform indicates no adapter is registered for the
	// requested platform.
	ErrUnsupportedPlatform = errors.New("unsupported CI platform")

	// ErrInvalidPipelineConfig indicates the PipelineConfig failed
	// validation.
	ErrInvalidPipelineConfig = errors.New("invalid pipeline config")
)

// Platform identifies a CI platform an adapter can target.
type Platform string

const (
	PlatformGitHubActions Platform = "GITHUB_ACTIONS"
	PlatformAzureDevOps   Platform = "AZURE_DEVOPS"
)

// Platforms returns all supported platforms in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformAzureDevOps, PlatformGitHubActions}
}

// ParsePlatform converts a string into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformGitHubActions:
		return PlatformGitHubActions, nil
	case PlatformAzureDevOps:
		return PlatformAzureDevOps, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
	}
}

var configValidate = validator.New(validator.WithRequiredStructEnabled())

// PipelineConfig describes the scan/gate policy a generated workflow
// should enforce. Pure input; never persisted.
type PipelineConfig struct {
	// Platform selects the target CI platform.
	Platform Platform `json:"platform" validate:"required"`

	// ProjectName is templated into the workflow document. Validated
	// against injection before rendering.
	ProjectName string `json:"project_name" validate:"required"`

	// ScanTypes are the scan types the workflow should run. Defaults to
	// SAST and SECRETS when empty.
	ScanTypes []datatypes.ScanType `json:"scan_types,omitempty"`

	// MaxScanDurationMinutes bounds the scan step. Defaults to 10.
	MaxScanDurationMinutes int `json:"max_scan_duration_minutes,omitempty" validate:"omitempty,gt=0"`

	// FailOnCritical fails the workflow when a CRITICAL finding is
	// present.
	FailOnCritical bool `json:"fail_on_critical"`

	// FailOnHigh fails the workflow when a HIGH finding is present.
	FailOnHigh bool `json:"fail_on_high"`

	// Environment is the deployment target the workflow gates.
	// Defaults to DEVELOPMENT when empty.
	Environment datatypes.Environment `json:"environment,omitempty"`
}

// Validate checks structural validity, platform support, and that the
// project name is safe to template into a workflow document.
func (c PipelineConfig) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPipelineConfig, err)
	}
	if _, err := ParsePlatform(string(c.Platform)); err != nil {
		return err
	}
	if err := validation.ValidateProjectName(c.ProjectName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPipelineConfig, err)
	}
	for _, st := range c.ScanTypes {
		if !st.Valid() {
			return fmt.Errorf("%w: unknown scan type %q", ErrInvalidPipelineConfig, st)
		}
	}
	if c.Environment != "" && !c.Environment.Valid() {
		return fmt.Errorf("%w: unknown environment %q", ErrInvalidPipelineConfig, c.Environment)
	}
	return nil
}

// scanTypes returns the effective scan types in a stable order.
func (c PipelineConfig) scanTypes() []datatypes.ScanType {
	types := c.ScanTypes
	if len(types) == 0 {
		types = []datatypes.ScanType{datatypes.ScanTypeSAST, datatypes.ScanTypeSecrets}
	}
	return datatypes.SortScanTypes(types)
}

// scanBudgetMinutes returns the effective scan budget.
func (c PipelineConfig) scanBudgetMinutes() int {
	if c.MaxScanDurationMinutes > 0 {
		return c.MaxScanDurationMinutes
	}
	return 10
}
