package xlsxwriter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/grainbridge/ngr-conversion/internal/types"
)

func TestWriteWorkbookRoundTrip(t *testing.T) {
	grn := types.NewTable()
	r := types.NewRow()
	r.Set("GRN", types.Str("G1"))
	r.Set("NAME", nil)
	grn.Append(r)

	mapping := types.NewTable()
	mapping.AddColumn("GRN")
	mapping.AddColumn("PAYEE_ID")
	mapping.AddColumn("USER_ID")

	data, err := Write([]NamedTable{
		{Name: "GRN", Table: grn},
		{Name: "GRN_PAYEE_USER", Table: mapping},
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"GRN", "GRN_PAYEE_USER"}, f.GetSheetList())

	rows, err := f.GetRows("GRN")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"GRN", "NAME"}, rows[0])
	require.Len(t, rows, 2)
	assert.Equal(t, "G1", rows[1][0])

	// Header-only sheet for the empty table.
	rows, err = f.GetRows("GRN_PAYEE_USER")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"GRN", "PAYEE_ID", "USER_ID"}, rows[0])
}

func TestWriteNoTables(t *testing.T) {
	_, err := Write(nil)
	assert.Error(t, err)
}
