// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
This file serves as the bridge between the build system and the runtime logic. It utilizes the Go
embed package to bake the detection rule catalogues directly into the compiled binary. This ensures
that the rules a given ShipGate binary enforces are immutable at runtime and travel with the
executable.
*/

package rules

import (
	_ "embed"
)

// SASTRules holds the raw byte content of the 'sast_rules.yaml' file.
//
// This variable is populated at compile-time using the Go 'embed' directive. By baking the
// YAML directly into the binary, we ensure that the static-analysis rules cannot be tampered
// with on the host filesystem without recompiling the application. Operators can verify the
// catalogue with `shipgate rules verify`, which prints its SHA-256 fingerprint.
//
//go:embed sast_rules.yaml
var SASTRules []byte

// SecretRules holds the raw byte content of the 'secret_rules.yaml' file.
//
// Same guarantees as SASTRules. The secret catalogue additionally carries per-pattern
// specificity factors and capture-group indexes used for entropy-based confidence scoring.
//
//go:embed secret_rules.yaml
var SecretRules []byte
