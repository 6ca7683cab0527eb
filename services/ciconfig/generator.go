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
	"sort"
	"sync"
)

// Adapter renders a workflow document for one CI platform.
//
// Adapters are stateless. Render must be deterministic: identical input
// produces identical bytes.
type Adapter interface {
	// Platform returns the platform this adapter targets.
	Platform() Platform

	// Render produces the workflow document. The config has already
	// passed Validate.
	Render(config PipelineConfig) (string, error)
}

// Generator maps platforms to adapters. New platforms are added by
// registration, not by modifying existing adapters.
type Generator struct {
	mu       sync.RWMutex
	adapters map[Platform]Adapter
}

// NewGenerator creates an empty Generator.
func NewGenerator() *Generator {
	return &Generator{adapters: make(map[Platform]Adapter)}
}

// DefaultGenerator returns a Generator with all built-in adapters
// registered.
func DefaultGenerator() *Generator {
	g := NewGenerator()
	g.MustRegister(GitHubActionsAdapter{})
	g.MustRegister(AzureDevOpsAdapter{})
	return g
}

// Register adds an adapter. Registering a platform twice is an error.
func (g *Generator) Register(a Adapter) error {
	if a == nil {
		return fmt.Errorf("adapter must not be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	platform := a.Platform()
	if _, exists := g.adapters[platform]; exists {
		return fmt.Errorf("adapter already registered for platform %s", platform)
	}
	g.adapters[platform] = a
	return nil
}

// MustRegister is Register that panics on error. For wiring built-in
// adapters at construction time.
func (g *Generator) MustRegister(a Adapter) {
	if err := g.Register(a); err != nil {
		panic(err)
	}
}

// Supported returns the registered platforms in a stable order.
func (g *Generator) Supported() []Platform {
	g.mu.RLock()
	defer g.mu.RUnlock()

	platforms := make([]Platform, 0, len(g.adapters))
	for p := range g.adapters {
		platforms = append(platforms, p)
	}
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

// Generate validates config and renders the workflow document for its
// platform.
//
// # Inputs
//
//   - config: The policy to encode. Must validate.
//
// # Outputs
//
//   - string: The workflow document, valid syntax for the platform.
//   - error: Non-nil on invalid config or unregistered platform.
func (g *Generator) Generate(config PipelineConfig) (string, error) {
	if err := config.Validate(); err != nil {
		return "", err
	}

	g.mu.RLock()
	adapter, ok := g.adapters[config.Platform]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, config.Platform)
	}

	return adapter.Render(config)
}
