// =============================================================================
// NGR XML to CSV Converter - File Manager Utility
// =============================================================================
//
// This module handles every filesystem concern of a conversion run:
//   - Input discovery (scanning the input directory for XML files)
//   - Output directory management (one run directory per input file)
//   - Artifact writing (CSV, XLSX) and ZIP bundling
//   - Input archival (moving processed files out of the input directory)
//
// ARCHIVAL STRATEGY:
//   - Each input gets a collision-safe run directory under the output
//     directory, named after the input file plus a short unique suffix.
//   - Successfully processed inputs are moved to the input archive when one
//     is configured; failed inputs stay where they are.
//
// =============================================================================

package utils

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ZipEntry is one file inside a ZIP bundle.
type ZipEntry struct {
	Name string
	Data []byte
}

// BundleName returns the ZIP bundle file name for a conversion run started
// at the given time, e.g. "grainbridge_20260830_153012.zip".
func BundleName(t time.Time) string {
	return "grainbridge_" + t.Format("20060102_150405") + ".zip"
}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// OutputDir is the directory where run directories are created.
	OutputDir string

	// InputArchiveDir is the directory processed inputs are moved to.
	// Empty disables archival.
	InputArchiveDir string
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureDirectories creates the output and archive directories if needed.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.InputArchiveDir != "" {
		dirs = append(dirs, fm.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// MakeRunDir creates and returns a fresh directory for one input file's
// artifacts, named after the input with a short unique suffix so repeated
// conversions of the same file never collide.
func (fm *FileManager) MakeRunDir(inputPath string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := filepath.Join(fm.OutputDir, fmt.Sprintf("%s_%s", stem, uuid.NewString()[:8]))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}

	return dir, nil
}

// ArchiveInput moves a processed input file into the archive directory and
// returns its new path. If a file with the same name already exists there,
// a unique suffix is appended rather than overwriting.
func (fm *FileManager) ArchiveInput(path string) (string, error) {
	if fm.InputArchiveDir == "" {
		return "", nil
	}

	if err := os.MkdirAll(fm.InputArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	dest := filepath.Join(fm.InputArchiveDir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(dest)
		dest = strings.TrimSuffix(dest, ext) + "_" + uuid.NewString()[:8] + ext
	}

	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", path, err)
	}

	return dest, nil
}

// =============================================================================
// INPUT DISCOVERY
// =============================================================================

// DiscoverXMLFiles returns all .xml files directly under inputDir, sorted by
// name for deterministic processing order.
func DiscoverXMLFiles(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", inputDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			files = append(files, filepath.Join(inputDir, e.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// ARTIFACT WRITING
// =============================================================================

// WriteArtifact writes one output file into dir and returns its path.
func WriteArtifact(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteZip writes a deflate-compressed ZIP bundle containing the given
// entries, in order, and returns its path.
func WriteZip(dir, name string, entries []ZipEntry) (string, error) {
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create bundle %s: %w", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return "", fmt.Errorf("failed to add %s to bundle: %w", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return "", fmt.Errorf("failed to write %s into bundle: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize bundle %s: %w", path, err)
	}

	return path, nil
}
