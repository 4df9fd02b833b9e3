// =============================================================================
// NGR XML to CSV Converter - XLSX Writer Module
// =============================================================================
//
// This module produces the optional single-workbook export: the four output
// tables as four sheets in one XLSX file, for consumers who prefer importing
// a workbook over four separate CSVs. Cell values are written as strings
// exactly as they appear in the CSVs; null cells stay blank.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/grainbridge/ngr-conversion/internal/types"
)

// NamedTable pairs a table with its sheet name.
type NamedTable struct {
	Name  string
	Table *types.Table
}

// Write builds a workbook with one sheet per table, in the given order, and
// returns the serialized XLSX bytes. At least one table is required because
// a workbook cannot be empty.
func Write(tables []NamedTable) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, nt := range tables {
		if i == 0 {
			// Reuse the default sheet for the first table.
			if err := f.SetSheetName(f.GetSheetName(0), nt.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", nt.Name, err)
			}
		} else {
			if _, err := f.NewSheet(nt.Name); err != nil {
				return nil, fmt.Errorf("failed to create sheet %s: %w", nt.Name, err)
			}
		}
		if err := writeSheet(f, nt.Name, nt.Table); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet writes the header row and all data rows of one table.
func writeSheet(f *excelize.File, sheet string, t *types.Table) error {
	cols := t.Columns()
	if len(cols) == 0 {
		return nil
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header on %s: %w", sheet, err)
	}

	record := make([]interface{}, len(cols))
	for i, row := range t.Rows() {
		for j, col := range cols {
			if v := row.Value(col); v != nil {
				record[j] = *v
			} else {
				record[j] = ""
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell on %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}

	return nil
}
