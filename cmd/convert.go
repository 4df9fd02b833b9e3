// =============================================================================
// NGR XML to CSV Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the main entry point of the tool.
// It converts the given XML files (or every *.xml in the input directory
// when no arguments are passed) and writes the four CSV tables plus the ZIP
// bundle per input file.
//
// COMMAND USAGE:
//   ngrconv convert [file.xml ...] [flags]
//
// FLAGS:
//   --dry-run : Parse and normalize without writing any output
//   --xlsx    : Additionally export the tables as one XLSX workbook
//   --no-zip  : Skip the ZIP bundle
//
// Files are processed concurrently, up to the configured max_concurrency.
// Every file is attempted even when some fail; continue_on_error only decides
// whether a run with failures exits non-zero.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/grainbridge/ngr-conversion/internal/converter"
	"github.com/grainbridge/ngr-conversion/pkg/utils"
)

// dryRun parses and normalizes without writing output files.
var dryRun bool

// xlsxOut additionally writes the XLSX workbook export.
var xlsxOut bool

// noZip skips the ZIP bundle.
var noZip bool

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert [file.xml ...]",
	Short: "Convert NGR XML exports into the four CSV tables and a ZIP bundle",
	Long: `The convert command runs the full pipeline for each input file: parse the
XML export, flatten the partnership/payee/user tree into raw rows, deduplicate
into the four output tables, and write them as CSVs plus a ZIP bundle into a
fresh run directory under the output directory.

With file arguments only the named files are converted; without arguments the
input directory is scanned for *.xml files.

On success the original input is moved to the input archive directory, when
one is configured. On failure no artifacts are written for that file and the
input stays in place.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(args)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Parse and normalize without writing output files",
	)

	convertCmd.Flags().BoolVar(
		&xlsxOut,
		"xlsx",
		false,
		"Additionally export all four tables as one XLSX workbook",
	)

	convertCmd.Flags().BoolVar(
		&noZip,
		"no-zip",
		false,
		"Skip the ZIP bundle",
	)
}

// runConvert orchestrates the conversion of all requested files.
func runConvert(args []string) error {
	startTime := time.Now()

	cfg, log, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	inputFiles := args
	if len(inputFiles) == 0 {
		inputFiles, err = utils.DiscoverXMLFiles(cfg.InputDir)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Printf("No XML files found in %s.\n", cfg.InputDir)
		return nil
	}

	fmt.Printf("Found %d file(s) to convert\n", len(inputFiles))

	opts := converter.Options{
		DryRun: dryRun,
		XLSX:   xlsxOut,
		NoZip:  noZip,
	}

	// Fan out one goroutine per file, capped by max_concurrency.
	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.MaxConcurrency)
	results := make(chan converter.Result, len(inputFiles))

	for _, file := range inputFiles {
		wg.Add(1)

		go func(xmlPath string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			conv := converter.New(xmlPath, cfg, opts, log)
			results <- conv.Run()
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var successCount, errorCount int
	for result := range results {
		if result.Success {
			successCount++
			if result.OutputDir != "" {
				fmt.Printf("  ✓ %s -> %s\n", filepath.Base(result.FilePath), result.OutputDir)
			} else {
				fmt.Printf("  ✓ %s (dry run)\n", filepath.Base(result.FilePath))
			}
			fmt.Printf("      GRNs: %d  Payees: %d  Users: %d  Mapping rows: %d\n",
				result.Stats.UniqueGRNs,
				result.Stats.UniquePayees,
				result.Stats.UniqueUsers,
				result.Stats.MappingRows)
		} else {
			errorCount++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
		}
	}

	fmt.Println("\n=== Conversion Complete ===")
	fmt.Printf("Total files:  %d\n", len(inputFiles))
	fmt.Printf("Successful:   %d\n", successCount)
	fmt.Printf("Errors:       %d\n", errorCount)
	fmt.Printf("Time elapsed: %s\n", time.Since(startTime))

	if errorCount > 0 && !cfg.ContinueOnError {
		return fmt.Errorf("%d file(s) failed to convert", errorCount)
	}
	if errorCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d file(s) failed to convert", errorCount)
	}

	return nil
}
