// =============================================================================
// NGR XML to CSV Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command: a preflight pass over the input
// files without writing any artifacts. It checks that each file is
// well-formed XML, flags inputs above the advisory size limit, and reports
// how many records are missing their natural identifiers (those still
// convert, as null-keyed groups).
//
// COMMAND USAGE:
//   ngrconv validate [file.xml ...]
//
// Exit is non-zero only when a file cannot be parsed at all.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grainbridge/ngr-conversion/internal/validation"
	"github.com/grainbridge/ngr-conversion/pkg/utils"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [file.xml ...]",
	Short: "Check input files without converting them",
	Long: `The validate command parses each input file and reports problems without
writing any output. Malformed XML is an error; oversized files and records
missing their GRN, PAYEE_ID or USER_ID identifiers are warnings, because
conversion tolerates them by design.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate preflights all requested files and prints the findings.
func runValidate(args []string) error {
	cfg, _, err := loadConfigAndLogger()
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

	fatalFiles := 0
	for _, file := range inputFiles {
		findings := validation.CheckFile(file, cfg.MaxFileSizeMB)

		if len(findings) == 0 {
			fmt.Printf("  ✓ %s\n", filepath.Base(file))
			continue
		}

		if validation.HasFatal(findings) {
			fatalFiles++
			fmt.Printf("  ✗ %s\n", filepath.Base(file))
		} else {
			fmt.Printf("  ! %s\n", filepath.Base(file))
		}
		for _, f := range findings {
			fmt.Printf("      %s\n", f.Error())
		}
	}

	if fatalFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", fatalFiles, len(inputFiles))
	}

	fmt.Printf("\nAll %d file(s) are well-formed.\n", len(inputFiles))
	return nil
}
