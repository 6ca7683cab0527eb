// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ShipGate/services/ciconfig"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	ciPlatform       string
	ciProject        string
	ciScanTypes      string
	ciMaxDuration    int
	ciFailOnCritical bool
	ciFailOnHigh     bool
	ciOutput         string
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var ciCmd = &cobra.Command{
	Use:   "ci",
	Short: "CI platform integration",
}

var ciGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a CI workflow that runs this pipeline",
	Long: `Render a workflow document for a CI platform. The workflow
installs the CLI and runs the pipeline with the given scan and gate
policy. Generation is deterministic: identical flags produce identical
output.

Examples:
  shipgate ci generate --platform GITHUB_ACTIONS --project myservice
  shipgate ci generate --platform AZURE_DEVOPS --project myservice --fail-on-critical --output azure-pipelines.yml

Exit Codes:
  0 = Workflow generated
  2 = Error (unknown platform, invalid project name)`,
	Run: runCIGenerate,
}

func init() {
	ciGenerateCmd.Flags().StringVar(&ciPlatform, "platform", string(ciconfig.PlatformGitHubActions),
		"Target platform: GITHUB_ACTIONS, AZURE_DEVOPS")
	ciGenerateCmd.Flags().StringVar(&ciProject, "project", "",
		"Project name templated into the workflow (required)")
	ciGenerateCmd.Flags().StringVar(&ciScanTypes, "scan-types", "SAST,SECRETS",
		"Comma-separated scan types: SAST, SECRETS, DEPENDENCY")
	ciGenerateCmd.Flags().IntVar(&ciMaxDuration, "max-duration", 10,
		"Aggregate scan budget in minutes")
	ciGenerateCmd.Flags().BoolVar(&ciFailOnCritical, "fail-on-critical", true,
		"Fail the workflow on CRITICAL findings")
	ciGenerateCmd.Flags().BoolVar(&ciFailOnHigh, "fail-on-high", false,
		"Fail the workflow on HIGH findings")
	ciGenerateCmd.Flags().StringVar(&ciOutput, "output", "",
		"Write the workflow to this file instead of stdout")
	_ = ciGenerateCmd.MarkFlagRequired("project")

	ciCmd.AddCommand(ciGenerateCmd)
	rootCmd.AddCommand(ciCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runCIGenerate(cmd *cobra.Command, args []string) {
	platform, err := ciconfig.ParsePlatform(strings.ToUpper(strings.TrimSpace(ciPlatform)))
	if err != nil {
		outputError(false, "Invalid platform", err)
		os.Exit(ExitError)
	}

	scanTypes, err := parseScanTypes(ciScanTypes)
	if err != nil {
		outputError(false, "Invalid scan types", err)
		os.Exit(ExitError)
	}

	config := ciconfig.PipelineConfig{
		Platform:               platform,
		ProjectName:            ciProject,
		ScanTypes:              scanTypes,
		MaxScanDurationMinutes: ciMaxDuration,
		FailOnCritical:         ciFailOnCritical,
		FailOnHigh:             ciFailOnHigh,
	}

	document, err := ciconfig.DefaultGenerator().Generate(config)
	if err != nil {
		outputError(false, "Failed to generate workflow", err)
		os.Exit(ExitError)
	}

	if ciOutput == "" {
		fmt.Print(document)
		return
	}
	if err := os.WriteFile(ciOutput, []byte(document), 0644); err != nil {
		outputError(false, "Failed to write workflow", err)
		os.Exit(ExitError)
	}
	fmt.Printf("Wrote %s workflow to %s\n", platform, ciOutput)
}
