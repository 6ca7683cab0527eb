// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scanner runs pluggable static-analysis detectors over a
// source tree.
//
// # Description
//
// The scanner looks up one detector per requested scan type in a
// Registry and executes them either sequentially (stable lexicographic
// order) or as independent concurrent tasks, bounded by the aggregate
// wall-clock budget in the scan configuration. Failure of one scan type
// never aborts its siblings; a type whose detector errors or is cut off
// by the deadline still produces a ScanResult.
//
// # Thread Safety
//
// Scanner is safe for concurrent use. Two Scan calls share no mutable
// state; detectors write only to their own result objects, so results
// are merged at a single join point without locking.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// Scanner executes registered detectors under a scan configuration.
type Scanner struct {
	registry *Registry
	logger   *slog.Logger
}

// NewScanner creates a Scanner.
//
// # Inputs
//
//   - registry: Detector registry. Must not be nil.
//   - logger: Logger for scan lifecycle events. If nil, uses slog.Default().
//
// # Outputs
//
//   - *Scanner: The configured scanner.
//   - error: Non-nil if registry is nil.
func NewScanner(registry *Registry, logger *slog.Logger) (*Scanner, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: registry must not be nil", ErrInvalidInput)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{registry: registry, logger: logger}, nil
}

// Scan runs every requested scan type over sourcePath.
//
// # Description
//
// The aggregate budget (config.MaxScanDurationMinutes) is set as a
// deadline at entry. A detector still running at the deadline is
// cancelled cooperatively; its result is finalized with status TIMEOUT
// and whatever findings it had accumulated. Scan types that finished
// before the deadline keep COMPLETED regardless of their siblings.
//
// A scan type with no registered detector yields a result with status
// ERROR and a descriptive error, without affecting other types.
//
// # Inputs
//
//   - ctx: Context for cancellation. Must not be nil.
//   - sourcePath: Root of the tree to scan. Must exist.
//   - scanTypes: Requested categories. Must be non-empty.
//   - config: Scan configuration. Must validate.
//
// # Outputs
//
//   - map[ScanType]ScanResult: Exactly one entry per requested type.
//   - error: Non-nil only for invalid input; detector failures are
//     reported inside the per-type results.
func (s *Scanner) Scan(
	ctx context.Context,
	sourcePath string,
	scanTypes []datatypes.ScanType,
	config datatypes.ScanConfiguration,
) (map[datatypes.ScanType]datatypes.ScanResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	if len(scanTypes) == 0 {
		return nil, fmt.Errorf("%w: no scan types requested", ErrInvalidInput)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if info, err := os.Stat(sourcePath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourcePath, sourcePath)
	}

	if err := initMetrics(); err != nil {
		s.logger.Warn("scanner metrics unavailable", slog.String("error", err.Error()))
	}

	ctx, span := tracer.Start(ctx, "scanner.Scan",
		trace.WithAttributes(
			attribute.String("scan.source_path", sourcePath),
			attribute.Int("scan.types", len(scanTypes)),
			attribute.Bool("scan.parallel", config.ParallelScans),
		),
	)
	defer span.End()

	budget := time.Duration(config.MaxScanDurationMinutes) * time.Minute
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	ordered := datatypes.SortScanTypes(scanTypes)

	s.logger.Info("scan started",
		slog.String("source_path", sourcePath),
		slog.Int("scan_types", len(ordered)),
		slog.Bool("parallel", config.ParallelScans),
		slog.Duration("budget", budget),
	)

	results := make(map[datatypes.ScanType]datatypes.ScanResult, len(ordered))

	if config.ParallelScans {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(len(ordered))
		for _, st := range ordered {
			st := st
			g.Go(func() error {
				result := s.runOne(gctx, st, sourcePath)
				mu.Lock()
				results[st] = result
				mu.Unlock()
				return nil
			})
		}
		// Detector faults are folded into per-type results; the group
		// only joins the tasks.
		_ = g.Wait()
	} else {
		for _, st := range ordered {
			results[st] = s.runOne(ctx, st, sourcePath)
		}
	}

	span.SetStatus(codes.Ok, "")
	s.logger.Info("scan finished", slog.Int("results", len(results)))
	return results, nil
}

// runOne executes a single scan type and always returns a ScanResult.
func (s *Scanner) runOne(ctx context.Context, st datatypes.ScanType, sourcePath string) datatypes.ScanResult {
	ctx, span := tracer.Start(ctx, "scanner.runOne",
		trace.WithAttributes(attribute.String("scan.type", string(st))),
	)
	defer span.End()

	start := time.Now()
	result := datatypes.ScanResult{
		ScanType:        st,
		Status:          datatypes.ScanStatusCompleted,
		Vulnerabilities: []datatypes.Vulnerability{},
	}

	detector, ok := s.registry.Lookup(st)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrNoDetector, st)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result.Status = datatypes.ScanStatusError
		result.Errors = append(result.Errors, err.Error())
		result.DurationSeconds = time.Since(start).Seconds()
		s.recordScan(ctx, st, result)
		return result
	}

	findings, fileErrs, err := detector.Detect(ctx, sourcePath)
	result.Vulnerabilities = findings
	result.Errors = append(result.Errors, fileErrs...)
	result.DurationSeconds = time.Since(start).Seconds()

	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		// Deadline hit mid-walk: keep the partial findings.
		result.Status = datatypes.ScanStatusTimeout
		result.Errors = append(result.Errors, fmt.Sprintf("scan cut off by deadline after %.1fs", result.DurationSeconds))
		span.SetStatus(codes.Error, "timeout")
		s.logger.Warn("scan type timed out",
			slog.String("scan_type", string(st)),
			slog.Int("partial_findings", len(findings)),
		)
	default:
		result.Status = datatypes.ScanStatusError
		result.Errors = append(result.Errors, err.Error())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("scan type failed",
			slog.String("scan_type", string(st)),
			slog.String("error", err.Error()),
		)
	}

	s.recordScan(ctx, st, result)
	return result
}

func (s *Scanner) recordScan(ctx context.Context, st datatypes.ScanType, result datatypes.ScanResult) {
	if scanLatency != nil {
		scanLatency.Record(ctx, result.DurationSeconds,
			metric.WithAttributes(attribute.String("scan_type", string(st))),
		)
	}
	if scansTotal != nil {
		scansTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("scan_type", string(st)),
				attribute.String("status", string(result.Status)),
			),
		)
	}
	if findingsPerScan != nil {
		findingsPerScan.Record(ctx, int64(len(result.Vulnerabilities)),
			metric.WithAttributes(attribute.String("scan_type", string(st))),
		)
	}
	if findingsBySeverity != nil {
		for sev, count := range datatypes.CountBySeverity(result.Vulnerabilities) {
			if count == 0 {
				continue
			}
			findingsBySeverity.Add(ctx, int64(count),
				metric.WithAttributes(attribute.String("severity", string(sev))),
			)
		}
	}
}
