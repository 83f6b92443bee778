// =============================================================================
// History Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the History Converter CLI application.
// It converts a Fidelity "Accounts History" CSV export into a CSV file that
// the TraderSync trade journal can import.
//
// USAGE:
//   history-converter           - Convert the single report in the input directory
//   history-converter version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core conversion logic (not for external import)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/history-converter/cmd"
)

// main is the entry point of the application.
// It delegates to the cmd package, which runs the Cobra CLI.
func main() {
	cmd.Execute()
}
