// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for scan operations.
var (
	tracer = otel.Tracer("shipgate.scanner")
	meter  = otel.Meter("shipgate.scanner")
)

// Metrics for scan operations.
var (
	scanLatency        metric.Float64Histogram
	scansTotal         metric.Int64Counter
	findingsPerScan    metric.Int64Histogram
	findingsBySeverity metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		scanLatency, err = meter.Float64Histogram(
			"scanner_scan_duration_seconds",
			metric.WithDescription("Duration of one scan type's execution"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		scansTotal, err = meter.Int64Counter(
			"scanner_scans_total",
			metric.WithDescription("Total number of scan-type executions by status"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		findingsPerScan, err = meter.Int64Histogram(
			"scanner_findings",
			metric.WithDescription("Number of findings per scan-type execution"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		findingsBySeverity, err = meter.Int64Counter(
			"scanner_findings_by_severity_total",
			metric.WithDescription("Total findings by severity"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}
