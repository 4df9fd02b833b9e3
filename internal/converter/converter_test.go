package converter

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grainbridge/ngr-conversion/internal/config"
	"github.com/grainbridge/ngr-conversion/internal/logger"
	"github.com/grainbridge/ngr-conversion/internal/xmlparser"
)

const sampleExport = `<export>
  <partnership>
    <GRN>G100</GRN>
    <TRADING_NAME>Acme Grain Co</TRADING_NAME>
    <payee>
      <PAYEE_ID>P1</PAYEE_ID>
      <user>
        <USER_ID>U1</USER_ID>
        <PHONE_TYPE>Mobile</PHONE_TYPE>
        <PHONE_NUMBER>555-1</PHONE_NUMBER>
      </user>
    </payee>
  </partnership>
  <partnership>
    <GRN>G100</GRN>
    <TRADING_NAME>Duplicate</TRADING_NAME>
  </partnership>
</export>`

func testSetup(t *testing.T, content string) (string, *config.Config) {
	t.Helper()
	base := t.TempDir()

	inputPath := filepath.Join(base, "export.xml")
	require.NoError(t, os.WriteFile(inputPath, []byte(content), 0644))

	cfg := config.Default()
	cfg.InputDir = base
	cfg.OutputDir = filepath.Join(base, "output")
	cfg.InputArchiveDir = filepath.Join(base, "archive")
	return inputPath, cfg
}

func testLogger() Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func TestRunWritesAllArtifacts(t *testing.T) {
	inputPath, cfg := testSetup(t, sampleExport)

	result := New(inputPath, cfg, Options{}, testLogger()).Run()
	require.True(t, result.Success, "run failed: %v", result.Error)
	require.NotEmpty(t, result.OutputDir)

	// Four CSVs plus the bundle.
	require.Len(t, result.OutputFiles, 5)
	for _, name := range []string{FileGRN, FilePayee, FileUser, FileMapping} {
		assert.FileExists(t, filepath.Join(result.OutputDir, name))
	}

	// GRN table: duplicate GRN dropped, first row kept.
	data, err := os.ReadFile(filepath.Join(result.OutputDir, FileGRN))
	require.NoError(t, err)
	assert.Equal(t, "GRN,TRADING_NAME\nG100,Acme Grain Co\n", string(data))

	// User table carries the aggregated phone fields.
	data, err = os.ReadFile(filepath.Join(result.OutputDir, FileUser))
	require.NoError(t, err)
	assert.Contains(t, string(data), "PHONE_TYPES,PHONE_NUMBERS")
	assert.Contains(t, string(data), "Mobile,555-1")

	// Mapping table records the triple.
	data, err = os.ReadFile(filepath.Join(result.OutputDir, FileMapping))
	require.NoError(t, err)
	assert.Equal(t, "GRN,PAYEE_ID,USER_ID\nG100,P1,U1\n", string(data))

	// Stats reflect the tables.
	assert.Equal(t, 2, result.Stats.PartnershipRows)
	assert.Equal(t, 1, result.Stats.UniqueGRNs)
	assert.Equal(t, 1, result.Stats.UniquePayees)
	assert.Equal(t, 1, result.Stats.UniqueUsers)
	assert.Equal(t, 1, result.Stats.MappingRows)

	// Input moved to the archive.
	assert.NoFileExists(t, inputPath)
	assert.Equal(t, filepath.Join(cfg.InputArchiveDir, "export.xml"), result.ArchivedTo)
}

func TestRunBundleContainsFourCSVs(t *testing.T) {
	inputPath, cfg := testSetup(t, sampleExport)

	result := New(inputPath, cfg, Options{}, testLogger()).Run()
	require.True(t, result.Success, "run failed: %v", result.Error)

	bundlePath := result.OutputFiles[len(result.OutputFiles)-1]
	assert.Contains(t, filepath.Base(bundlePath), "grainbridge_")

	zr, err := zip.OpenReader(bundlePath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{FileGRN, FilePayee, FileUser, FileMapping}, names)

	// Bundle entries match the files on disk.
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	bundled, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	onDisk, err := os.ReadFile(filepath.Join(result.OutputDir, FileGRN))
	require.NoError(t, err)
	assert.Equal(t, onDisk, bundled)
}

func TestRunXLSXOption(t *testing.T) {
	inputPath, cfg := testSetup(t, sampleExport)

	result := New(inputPath, cfg, Options{XLSX: true, NoZip: true}, testLogger()).Run()
	require.True(t, result.Success, "run failed: %v", result.Error)

	assert.FileExists(t, filepath.Join(result.OutputDir, FileWorkbook))
	// No bundle with NoZip.
	for _, p := range result.OutputFiles {
		assert.NotContains(t, filepath.Base(p), ".zip")
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	inputPath, cfg := testSetup(t, sampleExport)

	result := New(inputPath, cfg, Options{DryRun: true}, testLogger()).Run()
	require.True(t, result.Success, "run failed: %v", result.Error)

	assert.Empty(t, result.OutputDir)
	assert.Empty(t, result.OutputFiles)
	assert.NoDirExists(t, cfg.OutputDir)
	// Input stays in place on a dry run.
	assert.FileExists(t, inputPath)
	assert.Equal(t, 1, result.Stats.UniqueGRNs)
}

func TestRunMalformedInputProducesNoArtifacts(t *testing.T) {
	inputPath, cfg := testSetup(t, `<export><partnership>`)

	result := New(inputPath, cfg, Options{}, testLogger()).Run()
	require.False(t, result.Success)
	assert.ErrorIs(t, result.Error, xmlparser.ErrMalformedInput)

	assert.Empty(t, result.OutputDir)
	assert.NoDirExists(t, cfg.OutputDir)
	// Failed inputs are never archived.
	assert.FileExists(t, inputPath)
}

func TestRunEmptyExport(t *testing.T) {
	inputPath, cfg := testSetup(t, `<export></export>`)

	result := New(inputPath, cfg, Options{}, testLogger()).Run()
	require.True(t, result.Success, "run failed: %v", result.Error)

	// Empty entity tables serialize to empty files; the mapping table keeps
	// its header.
	data, err := os.ReadFile(filepath.Join(result.OutputDir, FileGRN))
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = os.ReadFile(filepath.Join(result.OutputDir, FileMapping))
	require.NoError(t, err)
	assert.Equal(t, "GRN,PAYEE_ID,USER_ID\n", string(data))
}
