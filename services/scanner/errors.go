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

import "errors"

// Sentinel errors for the scanner package.
var (
	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDetector indicates a scan type with no registered detector.
	ErrNoDetector = errors.New("no detector registered for scan type")

	// ErrSourcePath indicates the source path cannot be scanned.
	ErrSourcePath = errors.New("source path not readable")

	// ErrRuleCatalogue indicates the embedded rule catalogue is malformed.
	ErrRuleCatalogue = errors.New("rule catalogue invalid")
)
