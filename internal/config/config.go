// =============================================================================
// NGR XML to CSV Converter - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration from a YAML
// file. All settings have working defaults so the tool runs without any
// configuration file at all; a missing file is not an error, a malformed one
// is.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingInputDir    = errors.New("input_dir is required")
	ErrMissingOutputDir   = errors.New("output_dir is required")
	ErrInvalidLogLevel    = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidMaxFileSize = errors.New("max_file_size_mb must be non-negative")
	ErrInvalidConcurrency = errors.New("max_concurrency must be at least 1")
)

// Config holds the application configuration.
type Config struct {
	// InputDir is scanned for *.xml files when the convert command is given
	// no explicit file arguments.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives one subdirectory per converted input file, holding
	// the four CSVs, the ZIP bundle and the optional workbook.
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where successfully processed inputs are moved.
	// Leave empty to keep inputs in place.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// LogLevel controls verbosity: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// MaxFileSizeMB is the advisory size gate. Files above it are flagged
	// with a warning but still processed. 0 disables the gate.
	MaxFileSizeMB int `yaml:"max_file_size_mb"`

	// XLSXOutput additionally writes all four tables as one workbook.
	XLSXOutput bool `yaml:"xlsx_output"`

	// ZipBundle writes the grainbridge_<timestamp>.zip bundle. On by default.
	ZipBundle bool `yaml:"zip_bundle"`

	// MaxConcurrency caps how many input files are converted at once.
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError controls the exit status of a mixed run: when on,
	// a run with some failed files still exits zero as long as the others
	// converted; when off, any failed file makes the run exit non-zero.
	// Every file is attempted either way.
	ContinueOnError bool `yaml:"continue_on_error"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		InputDir:        "./input",
		OutputDir:       "./output",
		InputArchiveDir: "",
		LogLevel:        "info",
		MaxFileSizeMB:   200,
		XLSXOutput:      false,
		ZipBundle:       true,
		MaxConcurrency:  4,
		ContinueOnError: true,
	}
}

// Load reads the configuration from path. A missing file yields the default
// configuration; an unreadable or invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return ErrMissingInputDir
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.MaxFileSizeMB < 0 {
		return ErrInvalidMaxFileSize
	}
	if c.MaxConcurrency < 1 {
		return ErrInvalidConcurrency
	}
	return nil
}
