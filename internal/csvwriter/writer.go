// =============================================================================
// NGR XML to CSV Converter - CSV Writer Module
// =============================================================================
//
// This module serializes normalized tables to CSV. The header row is the
// table's reconciled column superset; every data row is padded to that
// superset, with null and absent cells rendered empty. Quoting and escaping
// follow encoding/csv (RFC 4180): values containing commas, quotes or
// newlines come out quoted.
//
// =============================================================================

package csvwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/grainbridge/ngr-conversion/internal/types"
)

// WriteOptions contains options for CSV serialization.
type WriteOptions struct {
	// Comma is the field delimiter. Default: ','.
	Comma rune

	// UseCRLF terminates lines with \r\n instead of \n. Default: false.
	UseCRLF bool
}

// DefaultWriteOptions returns the default serialization options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Comma: ','}
}

// Write serializes the table to CSV bytes with default options.
func Write(t *types.Table) ([]byte, error) {
	return WriteWithOptions(t, DefaultWriteOptions())
}

// WriteWithOptions serializes the table to CSV bytes.
//
// A table with no columns serializes to zero bytes (no header line). A table
// with columns but no rows serializes to the header line only.
func WriteWithOptions(t *types.Table, options WriteOptions) ([]byte, error) {
	cols := t.Columns()
	if len(cols) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = options.Comma
	w.UseCRLF = options.UseCRLF

	if err := w.Write(cols); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range t.Rows() {
		for i, col := range cols {
			if v := row.Value(col); v != nil {
				record[i] = *v
			} else {
				record[i] = ""
			}
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV output: %w", err)
	}

	return buf.Bytes(), nil
}
