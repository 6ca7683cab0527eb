// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that end up in
// file paths or generated CI workflow documents. Using these validators
// prevents injection attacks (template injection, path traversal).
package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// projectNamePattern matches valid project names for generated CI configs.
// Allows: letters, digits, dots, hyphens, underscores. Must start with an
// alphanumeric. Max length: 64 characters.
var projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateProjectName validates a project name before it is templated into
// a CI workflow document.
//
// Valid names:
//   - 1-64 characters
//   - Letters and digits
//   - Dots (.), hyphens (-), underscores (_)
//
// Names containing YAML or template metacharacters ({{, ${, quotes,
// newlines) are rejected rather than escaped.
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateProjectName(name); err != nil {
//	    return "", fmt.Errorf("invalid project name: %w", err)
//	}
//	// Safe to embed in a workflow document
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("invalid project name: %q (must be 1-64 alphanumeric chars, dots, hyphens, or underscores)", name)
	}

	return nil
}

// SanitizeProjectName normalizes and validates a project name.
// Returns the trimmed name if valid, or an error if invalid.
func SanitizeProjectName(name string) (string, error) {
	normalized := strings.TrimSpace(name)
	if err := ValidateProjectName(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ValidateSourcePath validates a scan target path.
//
// The path must be non-empty, must not contain NUL bytes, and after
// cleaning must not escape upward via a leading "..". Absolute paths are
// allowed; the scanner itself verifies the path is a readable directory.
//
// Returns an error if the path is invalid.
func ValidateSourcePath(path string) error {
	if path == "" {
		return fmt.Errorf("source path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("source path contains NUL byte")
	}

	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("source path escapes the working directory: %q", path)
	}

	return nil
}
