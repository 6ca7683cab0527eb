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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// fakeDetector is a scripted Detector for exercising the scanner's
// status mapping without real file walks.
type fakeDetector struct {
	scanType datatypes.ScanType
	findings []datatypes.Vulnerability
	fileErrs []string
	err      error
}

func (d *fakeDetector) ScanType() datatypes.ScanType { return d.scanType }

func (d *fakeDetector) Detect(ctx context.Context, sourcePath string) ([]datatypes.Vulnerability, []string, error) {
	return d.findings, d.fileErrs, d.err
}

func testConfig(types ...datatypes.ScanType) datatypes.ScanConfiguration {
	return datatypes.ScanConfiguration{
		EnabledScanTypes:       types,
		MaxScanDurationMinutes: 10,
		ParallelScans:          false,
	}
}

// TestScan_ResultPerRequestedType verifies exactly one result per
// requested scan type.
func TestScan_ResultPerRequestedType(t *testing.T) {
	root := writeTestTree(t, map[string]string{"main.py": "print('ok')\n"})

	registry, err := DefaultRegistry()
	require.NoError(t, err)
	sc, err := NewScanner(registry, nil)
	require.NoError(t, err)

	types := []datatypes.ScanType{datatypes.ScanTypeSAST, datatypes.ScanTypeSecrets}
	results, err := sc.Scan(context.Background(), root, types, testConfig(types...))
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, st := range types {
		result, ok := results[st]
		require.True(t, ok, "missing result for %s", st)
		assert.Equal(t, datatypes.ScanStatusCompleted, result.Status)
		assert.Empty(t, result.Vulnerabilities)
	}
}

// TestScan_NoDetectorIsolation verifies a scan type without a detector
// degrades to ERROR without affecting siblings.
func TestScan_NoDetectorIsolation(t *testing.T) {
	root := writeTestTree(t, map[string]string{"main.py": "print('ok')\n"})

	registry, err := DefaultRegistry()
	require.NoError(t, err)
	sc, err := NewScanner(registry, nil)
	require.NoError(t, err)

	types := []datatypes.ScanType{datatypes.ScanTypeSAST, datatypes.ScanTypeDependency}
	results, err := sc.Scan(context.Background(), root, types, testConfig(types...))
	require.NoError(t, err)

	dep := results[datatypes.ScanTypeDependency]
	assert.Equal(t, datatypes.ScanStatusError, dep.Status)
	require.NotEmpty(t, dep.Errors)
	assert.Contains(t, dep.Errors[0], "DEPENDENCY")

	sast := results[datatypes.ScanTypeSAST]
	assert.Equal(t, datatypes.ScanStatusCompleted, sast.Status)
}

// TestScan_TimeoutKeepsPartialFindings verifies a deadline-cut detector
// finalizes as TIMEOUT with the findings it had accumulated.
func TestScan_TimeoutKeepsPartialFindings(t *testing.T) {
	root := writeTestTree(t, map[string]string{"main.py": "print('ok')\n"})

	partial := []datatypes.Vulnerability{{
		ID:       "SAST-CMD-001:app.py:3",
		RuleID:   "SAST-CMD-001",
		Severity: datatypes.SeverityHigh,
	}}
	registry := NewRegistry()
	registry.Register(&fakeDetector{
		scanType: datatypes.ScanTypeSAST,
		findings: partial,
		err:      context.DeadlineExceeded,
	})

	sc, err := NewScanner(registry, nil)
	require.NoError(t, err)

	types := []datatypes.ScanType{datatypes.ScanTypeSAST}
	results, err := sc.Scan(context.Background(), root, types, testConfig(types...))
	require.NoError(t, err)

	result := results[datatypes.ScanTypeSAST]
	assert.Equal(t, datatypes.ScanStatusTimeout, result.Status)
	assert.Equal(t, partial, result.Vulnerabilities)
	require.NotEmpty(t, result.Errors)
}

// TestScan_DetectorFaultIsolation verifies a failing detector yields
// ERROR for its own type only.
func TestScan_DetectorFaultIsolation(t *testing.T) {
	root := writeTestTree(t, map[string]string{"main.py": "print('ok')\n"})

	registry := NewRegistry()
	registry.Register(&fakeDetector{
		scanType: datatypes.ScanTypeSAST,
		err:      errors.New("rule engine exploded"),
	})
	registry.Register(&fakeDetector{scanType: datatypes.ScanTypeSecrets})

	sc, err := NewScanner(registry, nil)
	require.NoError(t, err)

	types := []datatypes.ScanType{datatypes.ScanTypeSAST, datatypes.ScanTypeSecrets}
	config := testConfig(types...)
	config.ParallelScans = true
	results, err := sc.Scan(context.Background(), root, types, config)
	require.NoError(t, err)

	assert.Equal(t, datatypes.ScanStatusError, results[datatypes.ScanTypeSAST].Status)
	assert.Equal(t, datatypes.ScanStatusCompleted, results[datatypes.ScanTypeSecrets].Status)
}

// TestScan_ParallelMatchesSequential verifies both execution modes see
// the same findings.
func TestScan_ParallelMatchesSequential(t *testing.T) {
	root := writeTestTree(t, map[string]string{
		"app.py":    "subprocess.run(f\"ls {user_input}\", shell=True)\n",
		"config.py": "API_SECRET = \"sk-1234567890abcdef\"\n",
	})

	registry, err := DefaultRegistry()
	require.NoError(t, err)
	sc, err := NewScanner(registry, nil)
	require.NoError(t, err)

	types := []datatypes.ScanType{datatypes.ScanTypeSAST, datatypes.ScanTypeSecrets}

	sequential := testConfig(types...)
	seqResults, err := sc.Scan(context.Background(), root, types, sequential)
	require.NoError(t, err)

	parallel := sequential
	parallel.ParallelScans = true
	parResults, err := sc.Scan(context.Background(), root, types, parallel)
	require.NoError(t, err)

	for _, st := range types {
		assert.Equal(t, seqResults[st].Status, parResults[st].Status)
		assert.ElementsMatch(t, seqResults[st].Vulnerabilities, parResults[st].Vulnerabilities)
	}
}

// TestScan_InvalidInput verifies fail-fast rejection paths.
func TestScan_InvalidInput(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)
	sc, err := NewScanner(registry, nil)
	require.NoError(t, err)

	types := []datatypes.ScanType{datatypes.ScanTypeSAST}

	_, err = sc.Scan(context.Background(), "/definitely/not/a/path", types, testConfig(types...))
	assert.ErrorIs(t, err, ErrSourcePath)

	root := writeTestTree(t, map[string]string{"a.py": "x = 1\n"})
	_, err = sc.Scan(context.Background(), root, nil, testConfig(types...))
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad := testConfig(types...)
	bad.MaxScanDurationMinutes = 0
	_, err = sc.Scan(context.Background(), root, types, bad)
	assert.Error(t, err)
}

// TestNewScanner_NilRegistry verifies construction rejects nil.
func TestNewScanner_NilRegistry(t *testing.T) {
	_, err := NewScanner(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
