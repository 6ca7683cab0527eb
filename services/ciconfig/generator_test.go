// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ciconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

func validConfig(platform Platform) PipelineConfig {
	return PipelineConfig{
		Platform:       platform,
		ProjectName:    "payments-api",
		FailOnCritical: true,
		Environment:    datatypes.EnvProduction,
	}
}

// TestGenerate_GitHubActions verifies the rendered workflow is valid
// YAML carrying the project name and the pipeline invocation.
func TestGenerate_GitHubActions(t *testing.T) {
	doc, err := DefaultGenerator().Generate(validConfig(PlatformGitHubActions))
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(doc), &parsed), "output must be parseable YAML")

	assert.Contains(t, doc, "payments-api security scan")
	assert.Contains(t, doc, "actions/checkout@v4")
	assert.Contains(t, doc, "shipgate pipeline --source .")
	assert.Contains(t, doc, "--environment PRODUCTION")
	assert.Contains(t, doc, "--scan-types SAST,SECRETS")
	assert.Contains(t, doc, "--fail-on-critical")
	assert.NotContains(t, doc, "--fail-on-high")
	assert.NotContains(t, doc, "continue-on-error",
		"a fail-on flag makes the scan step blocking")
}

// TestGenerate_AzureDevOps verifies the Azure pipeline document parses
// and runs the scan against the checked-out sources.
func TestGenerate_AzureDevOps(t *testing.T) {
	doc, err := DefaultGenerator().Generate(validConfig(PlatformAzureDevOps))
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(doc), &parsed))

	assert.Contains(t, doc, "$(Build.SourcesDirectory)")
	assert.Contains(t, doc, "ubuntu-latest")
	assert.Contains(t, doc, "--fail-on-critical")
}

// TestGenerate_AdvisoryWhenNoFailFlags verifies the scan step tolerates
// findings when neither fail-on flag is set.
func TestGenerate_AdvisoryWhenNoFailFlags(t *testing.T) {
	config := validConfig(PlatformGitHubActions)
	config.FailOnCritical = false

	doc, err := DefaultGenerator().Generate(config)
	require.NoError(t, err)

	assert.Contains(t, doc, "continue-on-error: true")
	assert.NotContains(t, doc, "--fail-on-critical")
}

// TestGenerate_Deterministic verifies identical configs render
// byte-identical documents.
func TestGenerate_Deterministic(t *testing.T) {
	config := validConfig(PlatformGitHubActions)
	config.ScanTypes = []datatypes.ScanType{datatypes.ScanTypeSecrets, datatypes.ScanTypeSAST}

	g := DefaultGenerator()
	first, err := g.Generate(config)
	require.NoError(t, err)
	second, err := g.Generate(config)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "SAST,SECRETS", "scan types render in sorted order")
}

// TestGenerate_UnsupportedPlatform verifies an unregistered platform
// maps to ErrUnsupportedPlatform.
func TestGenerate_UnsupportedPlatform(t *testing.T) {
	config := validConfig("JENKINS")
	_, err := DefaultGenerator().Generate(config)
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
}

// TestGenerate_RejectsInvalidConfig verifies validation runs before any
// adapter is consulted.
func TestGenerate_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{
			name:   "empty project name",
			mutate: func(c *PipelineConfig) { c.ProjectName = "" },
		},
		{
			name:   "template injection in project name",
			mutate: func(c *PipelineConfig) { c.ProjectName = "x${{ secrets.TOKEN }}" },
		},
		{
			name:   "newline in project name",
			mutate: func(c *PipelineConfig) { c.ProjectName = "evil\n  run: rm -rf /" },
		},
		{
			name:   "unknown scan type",
			mutate: func(c *PipelineConfig) { c.ScanTypes = []datatypes.ScanType{"DAST"} },
		},
		{
			name:   "negative duration",
			mutate: func(c *PipelineConfig) { c.MaxScanDurationMinutes = -1 },
		},
		{
			name:   "unknown environment",
			mutate: func(c *PipelineConfig) { c.Environment = "QA" },
		},
	}

	g := DefaultGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig(PlatformGitHubActions)
			tt.mutate(&config)
			_, err := g.Generate(config)
			require.ErrorIs(t, err, ErrInvalidPipelineConfig)
		})
	}
}

// TestRegister verifies duplicate and nil adapter registration fail.
func TestRegister(t *testing.T) {
	g := NewGenerator()
	require.NoError(t, g.Register(GitHubActionsAdapter{}))

	err := g.Register(GitHubActionsAdapter{})
	require.Error(t, err, "duplicate platform registration")

	err = g.Register(nil)
	require.Error(t, err)
}

// TestSupported verifies the default generator reports both platforms
// in sorted order.
func TestSupported(t *testing.T) {
	supported := DefaultGenerator().Supported()
	assert.Equal(t, []Platform{PlatformAzureDevOps, PlatformGitHubActions}, supported)
}
