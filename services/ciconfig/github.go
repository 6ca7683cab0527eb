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
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// GitHub Actions workflow schema, reduced to the fields we emit.
// Rendering goes through yaml.Marshal of these structs so the output is
// always syntactically valid YAML.
type ghWorkflow struct {
	Name string           `yaml:"name"`
	On   ghTriggers       `yaml:"on"`
	Jobs map[string]ghJob `yaml:"jobs"`
}

type ghTriggers struct {
	Push        ghBranchFilter `yaml:"push"`
	PullRequest struct{}       `yaml:"pull_request"`
}

type ghBranchFilter struct {
	Branches []string `yaml:"branches"`
}

type ghJob struct {
	RunsOn         string   `yaml:"runs-on"`
	TimeoutMinutes int      `yaml:"timeout-minutes"`
	Steps          []ghStep `yaml:"steps"`
}

type ghStep struct {
	Name            string            `yaml:"name"`
	Uses            string            `yaml:"uses,omitempty"`
	With            map[string]string `yaml:"with,omitempty"`
	Run             string            `yaml:"run,omitempty"`
	ContinueOnError bool              `yaml:"continue-on-error,omitempty"`
}

// GitHubActionsAdapter renders GitHub Actions workflows.
type GitHubActionsAdapter struct{}

// Platform returns PlatformGitHubActions.
func (GitHubActionsAdapter) Platform() Platform { return PlatformGitHubActions }

// Render produces a workflow that installs the CLI and runs the
// pipeline with the configured policy. The scan step fails the workflow
// only when a fail-on flag is set; otherwise findings are advisory.
func (GitHubActionsAdapter) Render(config PipelineConfig) (string, error) {
	workflow := ghWorkflow{
		Name: config.ProjectName + " security scan",
		On: ghTriggers{
			Push: ghBranchFilter{Branches: []string{"main"}},
		},
		Jobs: map[string]ghJob{
			"security-scan": {
				RunsOn: "ubuntu-latest",
				// Leave headroom over the scan budget for setup steps.
				TimeoutMinutes: config.scanBudgetMinutes() + 5,
				Steps: []ghStep{
					{
						Name: "Checkout",
						Uses: "actions/checkout@v4",
					},
					{
						Name: "Set up Go",
						Uses: "actions/setup-go@v5",
						With: map[string]string{"go-version": "1.25"},
					},
					{
						Name: "Install ShipGate",
						Run:  "go install github.com/AleutianAI/ShipGate/cmd/shipgate@latest",
					},
					{
						Name:            "Run security pipeline",
						Run:             pipelineCommand(config, "."),
						ContinueOnError: !config.FailOnCritical && !config.FailOnHigh,
					},
				},
			},
		},
	}

	raw, err := yaml.Marshal(workflow)
	if err != nil {
		return "", fmt.Errorf("render github actions workflow: %w", err)
	}
	return string(raw), nil
}

// pipelineCommand builds the shipgate invocation shared by all
// adapters. Flags are emitted in a fixed order.
func pipelineCommand(config PipelineConfig, sourcePath string) string {
	env := config.Environment
	if env == "" {
		env = datatypes.EnvDevelopment
	}

	names := make([]string, 0, len(config.scanTypes()))
	for _, st := range config.scanTypes() {
		names = append(names, string(st))
	}

	parts := []string{
		"shipgate", "pipeline",
		"--source", sourcePath,
		"--environment", string(env),
		"--scan-types", strings.Join(names, ","),
		fmt.Sprintf("--max-duration=%d", config.scanBudgetMinutes()),
	}
	if config.FailOnCritical {
		parts = append(parts, "--fail-on-critical")
	}
	if config.FailOnHigh {
		parts = append(parts, "--fail-on-high")
	}
	return strings.Join(parts, " ")
}
