// SPDX-License-Identifier: MIT
//
// Command pairing runs the matchmaking pipeline from the command line.
//
// Usage:
//
//	pairing [flags] <command> [args]
//
// Commands:
//
//	run        - Match a population file and print the analysis
//	simulate   - Generate a synthetic population (and optionally match it)
//	history    - List or update stored match records
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/katalvlaran/pairing/cmd/pairing/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
