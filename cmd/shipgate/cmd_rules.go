// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/ShipGate/services/scanner"
	"github.com/AleutianAI/ShipGate/services/scanner/rules"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the embedded detection rule catalogues",
}

var rulesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the embedded rule catalogues load and compile",
	Long: `Load every embedded rule catalogue, compile all patterns, and
print each catalogue's version and content digest. A non-zero exit
means the binary ships a broken catalogue.

Exit Codes:
  0 = All catalogues valid
  2 = A catalogue failed to load or compile`,
	Run: runRulesVerify,
}

var rulesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "List every embedded detection rule",
	Run:   runRulesDump,
}

func init() {
	rulesCmd.AddCommand(rulesVerifyCmd)
	rulesCmd.AddCommand(rulesDumpCmd)
	rootCmd.AddCommand(rulesCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// embeddedCatalogues pairs each catalogue's raw bytes with a display
// name, in a fixed order.
func embeddedCatalogues() []struct {
	name string
	raw  []byte
} {
	return []struct {
		name string
		raw  []byte
	}{
		{"sast", rules.SASTRules},
		{"secrets", rules.SecretRules},
	}
}

func runRulesVerify(cmd *cobra.Command, args []string) {
	failed := false
	for _, entry := range embeddedCatalogues() {
		cat, err := scanner.LoadCatalogue(entry.raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%-8s INVALID: %v\n", entry.name, err)
			failed = true
			continue
		}
		fmt.Printf("%-8s ok  version=%s  rules=%d  sha256=%x\n",
			entry.name, cat.Version, len(cat.Rules), sha256.Sum256(entry.raw))
	}
	if failed {
		os.Exit(ExitError)
	}
}

func runRulesDump(cmd *cobra.Command, args []string) {
	for _, entry := range embeddedCatalogues() {
		cat, err := scanner.LoadCatalogue(entry.raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%-8s INVALID: %v\n", entry.name, err)
			os.Exit(ExitError)
		}
		fmt.Printf("Catalogue %s (version %s)\n", cat.Catalogue, cat.Version)
		for _, rule := range cat.Rules {
			fmt.Printf("  %-16s %-8s %s\n", rule.ID, rule.Severity, rule.Title)
		}
		fmt.Println()
	}
}
