// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import "errors"

// Sentinel errors for the pipeline package.
var (
	// ErrNilContext indicates a nil context.Context was passed.
	ErrNilContext = errors.New("nil context")

	// ErrInvalidConfiguration indicates the pipeline configuration
	// failed validation. This is the only error Execute returns to the
	// caller; everything after INIT lands in the PipelineResult.
	ErrInvalidConfiguration = errors.New("invalid pipeline configuration")

	// ErrBaselineUnreadable indicates a baseline snapshot could not be
	// parsed.
	ErrBaselineUnreadable = errors.New("baseline snapshot unreadable")
)
