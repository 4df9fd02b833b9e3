// =============================================================================
// NGR XML to CSV Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the NGR XML to CSV Converter CLI. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   ngrconv convert [file.xml ...]  - Convert XML exports to CSV tables
//   ngrconv validate [file.xml ...] - Preflight files without converting
//   ngrconv version                 - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : Core business logic (extraction, normalization, output)
//   - pkg/        : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/grainbridge/ngr-conversion/cmd"
)

func main() {
	cmd.Execute()
}
