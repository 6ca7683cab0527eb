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
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/ShipGate/pkg/validation"
	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/pipeline"
	"github.com/AleutianAI/ShipGate/services/scanner"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	pipelineSource         string
	pipelineEnvironment    string
	pipelineScanTypes      string
	pipelineMaxDuration    int
	pipelineParallel       bool
	pipelineFailOnCritical bool
	pipelineFailOnHigh     bool
	pipelineStrict         bool
	pipelineReports        bool
	pipelineOutputDir      string
	pipelineBaseline       string
	pipelineSaveBaseline   string
	pipelineCommitSHA      string
	pipelineBranch         string
	pipelineRepoURL        string
	pipelineTriggeredBy    string
	pipelineJSON           bool
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full scan, risk, and gate pipeline",
	Long: `Run the end-to-end pipeline: scan the source tree, score the
findings, evaluate deployment gates, and optionally write report
artifacts and a baseline comparison.

Examples:
  shipgate pipeline --source . --environment DEVELOPMENT
  shipgate pipeline --source . --environment PRODUCTION --fail-on-critical --reports --output-dir ./reports
  shipgate pipeline --source . --environment STAGING --baseline baseline.json

Exit Codes:
  0 = PASSED
  1 = FAILED or TIMEOUT
  2 = ERROR (invalid configuration, internal fault)`,
	Run: runPipeline,
}

func init() {
	pipelineCmd.Flags().StringVar(&pipelineSource, "source", ".",
		"Source tree to scan")
	pipelineCmd.Flags().StringVar(&pipelineEnvironment, "environment", "DEVELOPMENT",
		"Deployment target: DEVELOPMENT, STAGING, PRODUCTION")
	pipelineCmd.Flags().StringVar(&pipelineScanTypes, "scan-types", "SAST,SECRETS",
		"Comma-separated scan types: SAST, SECRETS, DEPENDENCY")
	pipelineCmd.Flags().IntVar(&pipelineMaxDuration, "max-duration", 10,
		"Aggregate scan budget in minutes")
	pipelineCmd.Flags().BoolVar(&pipelineParallel, "parallel", true,
		"Run scan types concurrently")
	pipelineCmd.Flags().BoolVar(&pipelineFailOnCritical, "fail-on-critical", true,
		"Make the no-critical gate blocking")
	pipelineCmd.Flags().BoolVar(&pipelineFailOnHigh, "fail-on-high", false,
		"Make the no-high gate blocking")
	pipelineCmd.Flags().BoolVar(&pipelineStrict, "strict", false,
		"Strict enforcement: block instead of warn outside production")
	pipelineCmd.Flags().BoolVar(&pipelineReports, "reports", false,
		"Write JSON and Markdown report artifacts")
	pipelineCmd.Flags().StringVar(&pipelineOutputDir, "output-dir", "",
		"Directory for report artifacts (required with --reports)")
	pipelineCmd.Flags().StringVar(&pipelineBaseline, "baseline", "",
		"Baseline snapshot to diff new/resolved findings against")
	pipelineCmd.Flags().StringVar(&pipelineSaveBaseline, "save-baseline", "",
		"Write this run's findings as a baseline snapshot")
	pipelineCmd.Flags().StringVar(&pipelineCommitSHA, "commit", "",
		"Commit SHA recorded in the run context")
	pipelineCmd.Flags().StringVar(&pipelineBranch, "branch", "",
		"Branch name recorded in the run context")
	pipelineCmd.Flags().StringVar(&pipelineRepoURL, "repository", "",
		"Repository URL recorded in the run context")
	pipelineCmd.Flags().StringVar(&pipelineTriggeredBy, "triggered-by", "cli",
		"Actor recorded in the run context")
	pipelineCmd.Flags().BoolVar(&pipelineJSON, "json", false,
		"Output as JSON")

	rootCmd.AddCommand(pipelineCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runPipeline(cmd *cobra.Command, args []string) {
	logger, closeLogs := newLogger()
	defer closeLogs()

	if err := validation.ValidateSourcePath(pipelineSource); err != nil {
		outputError(pipelineJSON, "Invalid source path", err)
		os.Exit(ExitError)
	}

	env, err := parseEnvironment(pipelineEnvironment)
	if err != nil {
		outputError(pipelineJSON, "Invalid environment", err)
		os.Exit(ExitError)
	}

	scanTypes, err := parseScanTypes(pipelineScanTypes)
	if err != nil {
		outputError(pipelineJSON, "Invalid scan types", err)
		os.Exit(ExitError)
	}

	config := pipeline.Configuration{
		Scan: datatypes.ScanConfiguration{
			EnabledScanTypes:       scanTypes,
			MaxScanDurationMinutes: pipelineMaxDuration,
			ParallelScans:          pipelineParallel,
			FailOnCritical:         pipelineFailOnCritical,
			FailOnHigh:             pipelineFailOnHigh,
		},
		StrictEnforcement: pipelineStrict,
		GenerateReports:   pipelineReports,
		OutputDir:         pipelineOutputDir,
	}

	if pipelineBaseline != "" {
		baseline, err := pipeline.LoadBaseline(pipelineBaseline)
		if err != nil {
			outputError(pipelineJSON, "Failed to load baseline", err)
			os.Exit(ExitError)
		}
		config.BaselineComparison = true
		config.Baseline = baseline
	}

	registry, err := scanner.DefaultRegistry()
	if err != nil {
		outputError(pipelineJSON, "Failed to load detectors", err)
		os.Exit(ExitError)
	}
	sc, err := scanner.NewScanner(registry, logger)
	if err != nil {
		outputError(pipelineJSON, "Failed to build scanner", err)
		os.Exit(ExitError)
	}
	orchestrator, err := pipeline.NewOrchestrator(sc, logger)
	if err != nil {
		outputError(pipelineJSON, "Failed to build orchestrator", err)
		os.Exit(ExitError)
	}

	pctx := datatypes.PipelineContext{
		PipelineID:    uuid.NewString(),
		CommitSHA:     pipelineCommitSHA,
		BranchName:    pipelineBranch,
		RepositoryURL: pipelineRepoURL,
		Environment:   env,
		TriggeredBy:   pipelineTriggeredBy,
		Timestamp:     time.Now().UTC(),
	}

	result, err := orchestrator.Execute(context.Background(), pipelineSource, pctx, config)
	if err != nil {
		outputError(pipelineJSON, "Pipeline rejected", err)
		os.Exit(ExitError)
	}

	if pipelineSaveBaseline != "" {
		baseline := pipeline.NewBaseline(result)
		if err := baseline.Save(pipelineSaveBaseline); err != nil {
			outputError(pipelineJSON, "Failed to save baseline", err)
			os.Exit(ExitError)
		}
	}

	if pipelineJSON {
		outputJSON(result)
	} else {
		outputPipelineText(result)
	}

	switch result.OverallStatus {
	case datatypes.PipelinePassed:
		os.Exit(ExitPassed)
	case datatypes.PipelineFailed, datatypes.PipelineTimeout:
		os.Exit(ExitBlocked)
	default:
		os.Exit(ExitError)
	}
}
