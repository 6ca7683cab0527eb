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

	"gopkg.in/yaml.v3"
)

// Azure DevOps pipeline schema, reduced to the fields we emit.
type azPipeline struct {
	Trigger azTrigger `yaml:"trigger"`
	Pool    azPool    `yaml:"pool"`
	Jobs    []azJob   `yaml:"jobs"`
}

type azTrigger struct {
	Branches azBranchInclude `yaml:"branches"`
}

type azBranchInclude struct {
	Include []string `yaml:"include"`
}

type azPool struct {
	VMImage string `yaml:"vmImage"`
}

type azJob struct {
	Job              string   `yaml:"job"`
	DisplayName      string   `yaml:"displayName"`
	TimeoutInMinutes int      `yaml:"timeoutInMinutes"`
	Steps            []azStep `yaml:"steps"`
}

type azStep struct {
	Task            string            `yaml:"task,omitempty"`
	Inputs          map[string]string `yaml:"inputs,omitempty"`
	Script          string            `yaml:"script,omitempty"`
	DisplayName     string            `yaml:"displayName,omitempty"`
	ContinueOnError bool              `yaml:"continueOnError,omitempty"`
}

// AzureDevOpsAdapter renders Azure DevOps pipeline definitions.
type AzureDevOpsAdapter struct{}

// Platform returns PlatformAzureDevOps.
func (AzureDevOpsAdapter) Platform() Platform { return PlatformAzureDevOps }

// Render produces a pipeline that installs the CLI and runs the scan
// with the configured policy. Failure behavior mirrors the GitHub
// adapter: the scan step breaks the build only when a fail-on flag is
// set.
func (AzureDevOpsAdapter) Render(config PipelineConfig) (string, error) {
	pipeline := azPipeline{
		Trigger: azTrigger{
			Branches: azBranchInclude{Include: []string{"main"}},
		},
		Pool: azPool{VMImage: "ubuntu-latest"},
		Jobs: []azJob{
			{
				Job:              "SecurityScan",
				DisplayName:      config.ProjectName + " security scan",
				TimeoutInMinutes: config.scanBudgetMinutes() + 5,
				Steps: []azStep{
					{
						Task:        "GoTool@0",
						Inputs:      map[string]string{"version": "1.25"},
						DisplayName: "Set up Go",
					},
					{
						Script:      "go install github.com/AleutianAI/ShipGate/cmd/shipgate@latest",
						DisplayName: "Install ShipGate",
					},
					{
						Script:          pipelineCommand(config, "$(Build.SourcesDirectory)"),
						DisplayName:     "Run security pipeline",
						ContinueOnError: !config.FailOnCritical && !config.FailOnHigh,
					},
				},
			},
		},
	}

	raw, err := yaml.Marshal(pipeline)
	if err != nil {
		return "", fmt.Errorf("render azure devops pipeline: %w", err)
	}
	return string(raw), nil
}
