// =============================================================================
// NGR XML to CSV Converter - Converter Module
// =============================================================================
//
// This module orchestrates the conversion pipeline for a single input file:
//
//   1. Open the input and apply the advisory size gate
//   2. Parse the XML and extract the raw row collections
//   3. Normalize into the four output tables
//   4. Serialize the tables to CSV (and optionally XLSX)
//   5. Write the artifacts and the ZIP bundle into a fresh run directory
//   6. Archive the processed input
//
// Serialization happens only after extraction and normalization have fully
// succeeded, so a failed run never leaves partial artifacts behind.
//
// CONCURRENCY:
//   Each file is processed by its own Converter instance with no shared
//   state, so multiple files can be converted concurrently without locking.
//
// =============================================================================

package converter

import (
	"fmt"
	"os"
	"time"

	"github.com/grainbridge/ngr-conversion/internal/config"
	"github.com/grainbridge/ngr-conversion/internal/csvwriter"
	"github.com/grainbridge/ngr-conversion/internal/normalizer"
	"github.com/grainbridge/ngr-conversion/internal/types"
	"github.com/grainbridge/ngr-conversion/internal/xlsxwriter"
	"github.com/grainbridge/ngr-conversion/internal/xmlparser"
	"github.com/grainbridge/ngr-conversion/pkg/utils"
)

// Fixed artifact names, as expected by the downstream import tool.
const (
	FileGRN      = "GRN_unique.csv"
	FilePayee    = "PAYEE_unique.csv"
	FileUser     = "USER_unique.csv"
	FileMapping  = "GRN_PAYEE_USER.csv"
	FileWorkbook = "grainbridge_tables.xlsx"
)

// artifactOrder is the stable order of the four CSVs in listings and in the
// ZIP bundle.
var artifactOrder = []string{FileGRN, FilePayee, FileUser, FileMapping}

// Logger is the logging interface the converter uses. Satisfied by
// *logger.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file that was processed.
	FilePath string

	// OutputDir is the run directory holding the artifacts.
	// Empty if processing failed or was a dry run.
	OutputDir string

	// OutputFiles are the paths of all written artifacts, CSVs first, then
	// the optional workbook and the bundle.
	OutputFiles []string

	// ArchivedTo is where the input was moved, when archival is configured.
	ArchivedTo string

	// Success indicates whether processing succeeded.
	Success bool

	// Error contains the failure when Success is false.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about one conversion.
type Stats struct {
	// Raw row counts from extraction.
	PartnershipRows int
	PayeeRows       int
	UserRows        int

	// Deduplicated row counts of the output tables.
	UniqueGRNs   int
	UniquePayees int
	UniqueUsers  int
	MappingRows  int

	// ProcessingTime is the wall time of the whole pipeline.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER
// =============================================================================

// Options control per-run behavior beyond the configuration file.
type Options struct {
	// DryRun parses and normalizes but writes nothing.
	DryRun bool

	// XLSX additionally writes the single-workbook export.
	XLSX bool

	// NoZip skips the ZIP bundle.
	NoZip bool
}

// Converter handles the conversion of a single XML file.
type Converter struct {
	xmlPath string
	cfg     *config.Config
	opts    Options
	fm      *utils.FileManager
	logger  Logger
}

// New creates a Converter for one input file.
func New(xmlPath string, cfg *config.Config, opts Options, log Logger) *Converter {
	return &Converter{
		xmlPath: xmlPath,
		cfg:     cfg,
		opts:    opts,
		fm:      utils.NewFileManager(cfg.OutputDir, cfg.InputArchiveDir),
		logger:  log,
	}
}

// Run executes the conversion pipeline for the file.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{FilePath: c.xmlPath}

	c.logger.Info("processing file", "path", c.xmlPath)

	// =========================================================================
	// STEP 1: OPEN INPUT AND APPLY ADVISORY SIZE GATE
	// =========================================================================

	if c.cfg.MaxFileSizeMB > 0 {
		if info, err := os.Stat(c.xmlPath); err == nil {
			limit := int64(c.cfg.MaxFileSizeMB) * 1024 * 1024
			if info.Size() > limit {
				c.logger.Warn("input exceeds advisory size limit",
					"path", c.xmlPath,
					"size_mb", info.Size()/(1024*1024),
					"limit_mb", c.cfg.MaxFileSizeMB)
			}
		}
	}

	f, err := os.Open(c.xmlPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open input: %w", err)
		return result
	}
	defer f.Close()

	// =========================================================================
	// STEP 2: EXTRACT RAW ROWS
	// =========================================================================

	extraction, err := xmlparser.Parse(f)
	if err != nil {
		result.Error = err
		return result
	}

	result.Stats.PartnershipRows = len(extraction.GRNRows)
	result.Stats.PayeeRows = len(extraction.PayeeRows)
	result.Stats.UserRows = len(extraction.UserRows)
	c.logger.Debug("extracted raw rows",
		"partnerships", result.Stats.PartnershipRows,
		"payees", result.Stats.PayeeRows,
		"users", result.Stats.UserRows)

	// =========================================================================
	// STEP 3: NORMALIZE
	// =========================================================================

	output := normalizer.Normalize(extraction)

	result.Stats.UniqueGRNs = output.GRN.Len()
	result.Stats.UniquePayees = output.Payee.Len()
	result.Stats.UniqueUsers = output.User.Len()
	result.Stats.MappingRows = output.Mapping.Len()
	c.logger.Debug("normalized tables",
		"unique_grns", result.Stats.UniqueGRNs,
		"unique_payees", result.Stats.UniquePayees,
		"unique_users", result.Stats.UniqueUsers,
		"mapping_rows", result.Stats.MappingRows)

	// =========================================================================
	// STEP 4: SERIALIZE TO CSV
	// =========================================================================

	csvData, err := serializeTables(output)
	if err != nil {
		result.Error = err
		return result
	}

	if c.opts.DryRun {
		c.logger.Info("dry run, skipping writes", "path", c.xmlPath)
		result.Success = true
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 5: WRITE ARTIFACTS
	// =========================================================================

	if err := c.fm.EnsureDirectories(); err != nil {
		result.Error = err
		return result
	}

	runDir, err := c.fm.MakeRunDir(c.xmlPath)
	if err != nil {
		result.Error = err
		return result
	}
	result.OutputDir = runDir

	for _, name := range artifactOrder {
		path, err := utils.WriteArtifact(runDir, name, csvData[name])
		if err != nil {
			result.Error = err
			return result
		}
		result.OutputFiles = append(result.OutputFiles, path)
	}

	if c.opts.XLSX || c.cfg.XLSXOutput {
		workbook, err := xlsxwriter.Write([]xlsxwriter.NamedTable{
			{Name: "GRN", Table: output.GRN},
			{Name: "PAYEE", Table: output.Payee},
			{Name: "USER", Table: output.User},
			{Name: "GRN_PAYEE_USER", Table: output.Mapping},
		})
		if err != nil {
			result.Error = fmt.Errorf("failed to build workbook: %w", err)
			return result
		}
		path, err := utils.WriteArtifact(runDir, FileWorkbook, workbook)
		if err != nil {
			result.Error = err
			return result
		}
		result.OutputFiles = append(result.OutputFiles, path)
	}

	if c.cfg.ZipBundle && !c.opts.NoZip {
		entries := make([]utils.ZipEntry, 0, len(artifactOrder))
		for _, name := range artifactOrder {
			entries = append(entries, utils.ZipEntry{Name: name, Data: csvData[name]})
		}
		path, err := utils.WriteZip(runDir, utils.BundleName(startTime), entries)
		if err != nil {
			result.Error = err
			return result
		}
		result.OutputFiles = append(result.OutputFiles, path)
	}

	// =========================================================================
	// STEP 6: ARCHIVE INPUT
	// =========================================================================

	if c.cfg.InputArchiveDir != "" {
		archived, err := c.fm.ArchiveInput(c.xmlPath)
		if err != nil {
			// Outputs are complete at this point; archival failure is not
			// a conversion failure.
			c.logger.Warn("failed to archive input", "path", c.xmlPath, "error", err)
		} else {
			result.ArchivedTo = archived
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Info("conversion complete",
		"path", c.xmlPath,
		"output_dir", runDir,
		"elapsed", result.Stats.ProcessingTime)

	return result
}

// serializeTables renders all four tables to CSV, keyed by artifact name.
func serializeTables(output *normalizer.Output) (map[string][]byte, error) {
	tables := []struct {
		name  string
		table *types.Table
	}{
		{FileGRN, output.GRN},
		{FilePayee, output.Payee},
		{FileUser, output.User},
		{FileMapping, output.Mapping},
	}

	data := make(map[string][]byte, len(tables))
	for _, t := range tables {
		b, err := csvwriter.Write(t.table)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize %s: %w", t.name, err)
		}
		data[t.name] = b
	}
	return data, nil
}
