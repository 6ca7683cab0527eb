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
	"fmt"
	"sort"
	"sync"

	"github.com/AleutianAI/ShipGate/services/datatypes"
)

// Detector is one scan-category capability.
//
// # Description
//
// A Detector is a pure function of (source tree, rule set): it holds no
// mutable state after construction, so detectors for different scan
// types run concurrently without synchronization. Findings for files it
// cannot read go into FileResult.Errors rather than aborting the walk.
//
// Implementations must honor ctx cancellation between files so the
// orchestrator's aggregate deadline can cut a scan off cooperatively.
type Detector interface {
	// ScanType returns the category this detector serves.
	ScanType() datatypes.ScanType

	// Detect walks the source tree rooted at sourcePath and returns
	// findings plus any non-fatal per-file errors. On ctx expiry it
	// returns the findings accumulated so far together with ctx.Err().
	Detect(ctx context.Context, sourcePath string) ([]datatypes.Vulnerability, []string, error)
}

// Registry maps scan types to detectors.
//
// # Description
//
// The registry replaces conditional dispatch over scan categories: new
// categories are added by registration, not by modifying the scanner.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Registration normally happens at
// startup, lookups happen during scans.
type Registry struct {
	mu        sync.RWMutex
	detectors map[datatypes.ScanType]Detector
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{detectors: make(map[datatypes.ScanType]Detector)}
}

// DefaultRegistry builds a registry with the built-in detectors (SAST
// and secret detection) loaded from the embedded catalogues.
//
// # Outputs
//
//   - *Registry: Registry with built-ins registered.
//   - error: Non-nil if an embedded catalogue fails to load; that is a
//     build defect, not a runtime condition.
func DefaultRegistry() (*Registry, error) {
	sast, err := NewSASTDetector()
	if err != nil {
		return nil, fmt.Errorf("sast detector: %w", err)
	}
	secrets, err := NewSecretDetector()
	if err != nil {
		return nil, fmt.Errorf("secret detector: %w", err)
	}

	reg := NewRegistry()
	reg.Register(sast)
	reg.Register(secrets)
	return reg, nil
}

// Register adds or replaces the detector for its scan type.
func (r *Registry) Register(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detectors[d.ScanType()] = d
}

// Lookup returns the detector for a scan type.
func (r *Registry) Lookup(st datatypes.ScanType) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.detectors[st]
	return d, ok
}

// ScanTypes returns the registered scan types in sorted order.
func (r *Registry) ScanTypes() []datatypes.ScanType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]datatypes.ScanType, 0, len(r.detectors))
	for st := range r.detectors {
		types = append(types, st)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
