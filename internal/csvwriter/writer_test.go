package csvwriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grainbridge/ngr-conversion/internal/types"
)

func TestWriteHeaderAndRows(t *testing.T) {
	a := types.NewRow()
	a.Set("GRN", types.Str("G1"))
	a.Set("NAME", types.Str("Acme"))

	b := types.NewRow()
	b.Set("GRN", types.Str("G2"))
	b.Set("REGION", types.Str("south"))

	tbl := types.NewTable()
	tbl.Append(a)
	tbl.Append(b)

	out, err := Write(tbl)
	require.NoError(t, err)
	assert.Equal(t, "GRN,NAME,REGION\nG1,Acme,\nG2,,south\n", string(out))
}

func TestWriteQuotesSpecialCharacters(t *testing.T) {
	r := types.NewRow()
	r.Set("NAME", types.Str(`Acme, "The" Grain
Co`))
	r.Set("STATE", types.Str("NSW"))

	tbl := types.NewTable()
	tbl.Append(r)

	out, err := Write(tbl)
	require.NoError(t, err)
	assert.Equal(t, "NAME,STATE\n\"Acme, \"\"The\"\" Grain\nCo\",NSW\n", string(out))
}

func TestWriteNullAndEmptyBothRenderEmpty(t *testing.T) {
	r := types.NewRow()
	r.Set("A", nil)
	r.Set("B", types.Str(""))
	r.Set("C", types.Str("x"))

	tbl := types.NewTable()
	tbl.Append(r)

	out, err := Write(tbl)
	require.NoError(t, err)
	assert.Equal(t, "A,B,C\n,,x\n", string(out))
}

func TestWriteEmptyTable(t *testing.T) {
	out, err := Write(types.NewTable())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWriteHeaderOnlyTable(t *testing.T) {
	tbl := types.NewTable()
	tbl.AddColumn("GRN")
	tbl.AddColumn("PAYEE_ID")
	tbl.AddColumn("USER_ID")

	out, err := Write(tbl)
	require.NoError(t, err)
	assert.Equal(t, "GRN,PAYEE_ID,USER_ID\n", string(out))
}

func TestWriteWithOptionsDelimiter(t *testing.T) {
	r := types.NewRow()
	r.Set("A", types.Str("1"))
	r.Set("B", types.Str("2"))

	tbl := types.NewTable()
	tbl.Append(r)

	opts := DefaultWriteOptions()
	opts.Comma = ';'
	out, err := WriteWithOptions(tbl, opts)
	require.NoError(t, err)
	assert.Equal(t, "A;B\n1;2\n", string(out))
}
