// =============================================================================
// NGR XML to CSV Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it:
//
//   rootCmd (ngrconv)
//   ├── convertCmd  (ngrconv convert)
//   ├── validateCmd (ngrconv validate)
//   └── versionCmd  (ngrconv version)
//
// The root command owns the global flags (--config, --verbose) and the
// shared configuration/logger bootstrap used by the subcommands.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grainbridge/ngr-conversion/internal/config"
	"github.com/grainbridge/ngr-conversion/internal/logger"
)

// cfgFile holds the path to the configuration file, overridable via --config.
var cfgFile string

// verbose forces debug-level logging regardless of the configured level.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ngrconv",
	Short: "NGR XML to CSV Converter - Turn NGR partnership exports into import-ready CSV tables",
	Long: `NGR XML to CSV Converter flattens NGR partnership XML exports into four
normalized, deduplicated tables ready for import into a record-linking tool:

  GRN_unique.csv       - one row per GRN
  PAYEE_unique.csv     - one row per PAYEE_ID
  USER_unique.csv      - one row per USER_ID
  GRN_PAYEE_USER.csv   - mapping table reconstructing the many-to-many links

The four CSVs are also bundled into a single ZIP, and can optionally be
exported as one XLSX workbook. All processing is in-memory and local; no
data leaves the machine.

Example Usage:
  ngrconv convert export.xml          # Convert a single file
  ngrconv convert                     # Convert every *.xml in the input directory
  ngrconv validate export.xml         # Preflight a file without writing outputs`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadConfigAndLogger loads the configuration and builds the logger the
// subcommands share. --verbose overrides the configured log level.
func loadConfigAndLogger() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	return cfg, logger.New(level), nil
}
