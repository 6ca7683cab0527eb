// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline drives an end-to-end scan-and-gate run.
//
// # Description
//
// The orchestrator runs the state machine INIT -> SCANNING ->
// RISK_ASSESSMENT -> GATE_EVALUATION -> REPORTING and finalizes into
// PASSED, FAILED, ERROR, or TIMEOUT. Only configuration errors reject
// the call; every later fault is captured into the returned
// PipelineResult so callers always get a well-formed result.
//
// # Thread Safety
//
// Orchestrator is safe for concurrent use. Concurrent Execute calls
// share no mutable state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/ShipGate/services/datatypes"
	"github.com/AleutianAI/ShipGate/services/gates"
	"github.com/AleutianAI/ShipGate/services/risk"
	"github.com/AleutianAI/ShipGate/services/scanner"
)

var (
	tracer = otel.Tracer("shipgate.pipeline")
	meter  = otel.Meter("shipgate.pipeline")
)

// Orchestrator wires the scanner, risk engine, and gate evaluator into
// one synchronous run.
type Orchestrator struct {
	scanner   *scanner.Scanner
	evaluator *gates.Evaluator
	logger    *slog.Logger

	// Metrics (initialized lazily)
	metricsOnce     sync.Once
	pipelineLatency metric.Float64Histogram
	pipelineRuns    metric.Int64Counter
	stageLatency    metric.Float64Histogram
}

// NewOrchestrator creates an Orchestrator.
//
// # Inputs
//
//   - sc: Scanner to drive. Must not be nil.
//   - logger: Logger for lifecycle events. If nil, uses slog.Default().
//
// # Outputs
//
//   - *Orchestrator: The configured orchestrator.
//   - error: Non-nil if sc is nil.
func NewOrchestrator(sc *scanner.Scanner, logger *slog.Logger) (*Orchestrator, error) {
	if sc == nil {
		return nil, fmt.Errorf("scanner must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		scanner:   sc,
		evaluator: gates.NewEvaluator(logger),
		logger:    logger,
	}, nil
}

// initMetrics lazily initializes metrics. Logs failures and continues;
// missing metrics degrade observability, never execution.
func (o *Orchestrator) initMetrics() {
	o.metricsOnce.Do(func() {
		var initErrors []string

		var err error
		o.pipelineLatency, err = meter.Float64Histogram("pipeline_duration_seconds",
			metric.WithDescription("Total pipeline execution time"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "pipeline_latency: "+err.Error())
		}

		o.pipelineRuns, err = meter.Int64Counter("pipeline_runs_total",
			metric.WithDescription("Pipeline runs by terminal status"),
		)
		if err != nil {
			initErrors = append(initErrors, "pipeline_runs: "+err.Error())
		}

		o.stageLatency, err = meter.Float64Histogram("pipeline_stage_duration_seconds",
			metric.WithDescription("Time spent in each pipeline stage"),
			metric.WithUnit("s"),
		)
		if err != nil {
			initErrors = append(initErrors, "stage_latency: "+err.Error())
		}

		if len(initErrors) > 0 {
			o.logger.Error("failed to initialize some pipeline metrics (observability degraded)",
				slog.Int("failed_count", len(initErrors)),
				slog.Any("errors", initErrors),
			)
		}
	})
}

// Execute runs the full pipeline on sourcePath.
//
// # Description
//
// Execute is synchronous: it returns only after every stage completed
// or the run terminated into ERROR/TIMEOUT. The returned error is
// non-nil only for configuration or context validation failures; every
// other fault is folded into the PipelineResult.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//   - sourcePath: Root of the source tree to scan.
//   - pctx: Run identity and provenance. Must validate.
//   - config: Pipeline configuration. Must validate.
//
// # Outputs
//
//   - *datatypes.PipelineResult: Always well-formed when error is nil.
//   - error: Non-nil only for invalid configuration/context/ctx.
func (o *Orchestrator) Execute(
	ctx context.Context,
	sourcePath string,
	pctx datatypes.PipelineContext,
	config Configuration,
) (result *datatypes.PipelineResult, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	// INIT: fail fast, no partial result side effects.
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := pctx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	o.initMetrics()

	ctx, span := tracer.Start(ctx, "pipeline.Execute",
		trace.WithAttributes(
			attribute.String("pipeline.id", pctx.PipelineID),
			attribute.String("pipeline.environment", string(pctx.Environment)),
			attribute.Bool("pipeline.parallel_scans", config.Scan.ParallelScans),
		),
	)
	defer span.End()

	start := time.Now()
	result = &datatypes.PipelineResult{
		PipelineID:  pctx.PipelineID,
		ScanResults: map[datatypes.ScanType]datatypes.ScanResult{},
		GateResults: map[string]datatypes.GateResult{},
	}

	// Anything past INIT must come back as a result, not a fault.
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panicked",
				slog.String("pipeline_id", pctx.PipelineID),
				slog.Any("panic", r),
			)
			result.OverallStatus = datatypes.PipelineError
			result.Errors = append(result.Errors, fmt.Sprintf("internal fault: %v", r))
			result.DurationSeconds = time.Since(start).Seconds()
			err = nil
		}
	}()

	o.logger.Info("pipeline started",
		slog.String("pipeline_id", pctx.PipelineID),
		slog.String("environment", string(pctx.Environment)),
		slog.String("source_path", sourcePath),
	)

	// SCANNING
	scanErr := o.runStage(ctx, datatypes.StageScanning, func() error {
		results, err := o.scanner.Scan(ctx, sourcePath, config.Scan.EnabledScanTypes, config.Scan)
		if err != nil {
			return err
		}
		result.ScanResults = results
		return nil
	})
	if scanErr != nil {
		// Scanner rejects only invalid input; after INIT validation the
		// usual cause is an unreadable source path.
		result.OverallStatus = datatypes.PipelineError
		result.Errors = append(result.Errors, scanErr.Error())
		result.DurationSeconds = time.Since(start).Seconds()
		o.finish(ctx, span, result)
		return result, nil
	}

	// RISK_ASSESSMENT
	engine := risk.NewEngine(risk.Options{StrictEnforcement: config.StrictEnforcement})
	var report scanner.Report
	_ = o.runStage(ctx, datatypes.StageRiskAssessment, func() error {
		report = scanner.GenerateReport(result.ScanResults, engine, pctx.Environment)
		result.RiskAssessment = report.RiskAssessment
		return nil
	})

	// GATE_EVALUATION
	gateSet := config.gateSet()
	gateErr := o.runStage(ctx, datatypes.StageGateEvaluation, func() error {
		gateResults, err := o.evaluator.Evaluate(gateSet, result.ScanResults, result.RiskAssessment)
		if err != nil {
			return err
		}
		result.GateResults = gateResults
		result.GatesStatus = datatypes.TallyGates(gateResults)
		return nil
	})
	if gateErr != nil {
		result.OverallStatus = datatypes.PipelineError
		result.Errors = append(result.Errors, gateErr.Error())
		result.DurationSeconds = time.Since(start).Seconds()
		o.finish(ctx, span, result)
		return result, nil
	}

	// REPORTING
	_ = o.runStage(ctx, datatypes.StageReporting, func() error {
		o.report(pctx, config, report, result)
		return nil
	})

	result.OverallStatus = o.finalStatus(result)
	result.DurationSeconds = time.Since(start).Seconds()
	o.finish(ctx, span, result)
	return result, nil
}

// runStage times one stage and records its latency metric.
func (o *Orchestrator) runStage(ctx context.Context, stage datatypes.PipelineStage, fn func() error) error {
	ctx, span := tracer.Start(ctx, "pipeline."+string(stage))
	defer span.End()

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	if o.stageLatency != nil {
		o.stageLatency.Record(ctx, duration.Seconds(),
			metric.WithAttributes(attribute.String("stage", string(stage))),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")

	o.logger.Debug("stage completed",
		slog.String("stage", string(stage)),
		slog.Duration("duration", duration),
	)
	return nil
}

// report produces artifacts and the baseline delta. Failures here are
// warnings by contract, never a status escalation.
func (o *Orchestrator) report(
	pctx datatypes.PipelineContext,
	config Configuration,
	report scanner.Report,
	result *datatypes.PipelineResult,
) {
	if config.BaselineComparison && config.Baseline != nil {
		delta := config.Baseline.Diff(report.Vulnerabilities)
		result.BaselineDelta = &delta
	}

	if !config.GenerateReports {
		return
	}

	writer := artifactWriter{outputDir: config.OutputDir}

	if artifact, err := writer.writeJSONReport(pctx.PipelineID, report); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("json report: %v", err))
	} else {
		result.Artifacts = append(result.Artifacts, artifact)
	}

	if artifact, err := writer.writeMarkdownSummary(pctx.PipelineID, report); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("markdown summary: %v", err))
	} else {
		result.Artifacts = append(result.Artifacts, artifact)
	}

	if result.BaselineDelta != nil {
		if artifact, err := writer.writeBaselineDelta(pctx.PipelineID, *result.BaselineDelta); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("baseline delta: %v", err))
		} else {
			result.Artifacts = append(result.Artifacts, artifact)
		}
	}
}

// finalStatus derives the terminal status.
//
// Precedence: FAILED (a blocking gate failed) > TIMEOUT (any scan type
// incomplete at the deadline) > ERROR (a scan type never produced
// usable data) > PASSED. Internal faults are handled separately and
// always yield ERROR.
func (o *Orchestrator) finalStatus(result *datatypes.PipelineResult) datatypes.PipelineStatus {
	status := datatypes.PipelinePassed
	for _, sr := range result.ScanResults {
		if sr.Status == datatypes.ScanStatusError {
			status = datatypes.PipelineError
		}
	}
	for _, sr := range result.ScanResults {
		if sr.Status == datatypes.ScanStatusTimeout {
			status = datatypes.PipelineTimeout
		}
	}
	if gates.AnyBlockingFailure(result.GateResults) {
		status = datatypes.PipelineFailed
	}
	return status
}

// finish records terminal metrics and logs the outcome.
func (o *Orchestrator) finish(ctx context.Context, span trace.Span, result *datatypes.PipelineResult) {
	if o.pipelineLatency != nil {
		o.pipelineLatency.Record(ctx, result.DurationSeconds)
	}
	if o.pipelineRuns != nil {
		o.pipelineRuns.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", string(result.OverallStatus))),
		)
	}

	if result.OverallStatus == datatypes.PipelinePassed {
		span.SetStatus(codes.Ok, "")
		o.logger.Info("pipeline completed",
			slog.String("pipeline_id", result.PipelineID),
			slog.String("status", string(result.OverallStatus)),
			slog.Float64("risk_score", result.RiskAssessment.Score),
			slog.Float64("duration_seconds", result.DurationSeconds),
		)
		return
	}

	span.SetStatus(codes.Error, string(result.OverallStatus))
	o.logger.Warn("pipeline did not pass",
		slog.String("pipeline_id", result.PipelineID),
		slog.String("status", string(result.OverallStatus)),
		slog.Int("failed_gates", result.GatesStatus.Failed),
		slog.Float64("risk_score", result.RiskAssessment.Score),
	)
}
