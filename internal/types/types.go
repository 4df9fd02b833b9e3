// =============================================================================
// NGR XML to CSV Converter - Shared Types
// =============================================================================
//
// This package contains the row and table types shared across the extraction,
// normalization and serialization modules. Keeping them here avoids import
// cycles between:
//   - xmlparser
//   - normalizer
//   - csvwriter / xlsxwriter
//
// VALUE SEMANTICS:
//   A field value is a *string with three observable states:
//     - column absent from the row (the source element never appeared)
//     - nil ("null": the source had no usable value, e.g. a missing GRN child
//       or an empty phone aggregate)
//     - non-nil string, which may be "" (an empty element is a present value,
//       distinct from null)
//   The distinction between "" and nil is load-bearing for the merge policy
//   in the normalizer and must survive every hop until CSV serialization,
//   where both render as an empty cell.
//
// =============================================================================

package types

// Str returns a pointer to s. Convenience for building row values.
func Str(s string) *string {
	return &s
}

// =============================================================================
// ROW
// =============================================================================

// Row is an ordered field mapping: column name -> nullable string value.
// Columns keep their first-insertion position; setting an existing column
// overwrites the value in place (last write wins, position unchanged).
type Row struct {
	cols []string
	vals map[string]*string
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{vals: make(map[string]*string)}
}

// Set stores a value under the given column name.
func (r *Row) Set(name string, value *string) {
	if _, exists := r.vals[name]; !exists {
		r.cols = append(r.cols, name)
	}
	r.vals[name] = value
}

// Get returns the value for the column and whether the column is present.
// A present column may still hold a nil (null) value.
func (r *Row) Get(name string) (*string, bool) {
	v, ok := r.vals[name]
	return v, ok
}

// Value returns the value for the column, treating an absent column as null.
func (r *Row) Value(name string) *string {
	return r.vals[name]
}

// Has reports whether the column is present in the row.
func (r *Row) Has(name string) bool {
	_, ok := r.vals[name]
	return ok
}

// Columns returns the column names in insertion order.
// The returned slice is shared; callers must not mutate it.
func (r *Row) Columns() []string {
	return r.cols
}

// Len returns the number of columns in the row.
func (r *Row) Len() int {
	return len(r.cols)
}

// =============================================================================
// TABLE
// =============================================================================

// Table is an ordered collection of rows together with the reconciled column
// superset across all appended rows, in first-seen order. Individual rows may
// carry only a subset of the table's columns; missing cells read as null.
type Table struct {
	rows []*Row
	cols []string
	seen map[string]struct{}
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{seen: make(map[string]struct{})}
}

// Append adds a row and folds its columns into the table's column superset.
func (t *Table) Append(r *Row) {
	for _, c := range r.Columns() {
		if _, ok := t.seen[c]; !ok {
			t.seen[c] = struct{}{}
			t.cols = append(t.cols, c)
		}
	}
	t.rows = append(t.rows, r)
}

// AddColumn registers a column in the superset without adding a row.
// Used to pin key columns on tables that may end up empty.
func (t *Table) AddColumn(name string) {
	if _, ok := t.seen[name]; !ok {
		t.seen[name] = struct{}{}
		t.cols = append(t.cols, name)
	}
}

// Columns returns the reconciled column names in first-seen order.
func (t *Table) Columns() []string {
	return t.cols
}

// Rows returns the rows in append order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Cell returns the value at the given row index and column, or nil when the
// row does not carry the column.
func (t *Table) Cell(i int, col string) *string {
	return t.rows[i].Value(col)
}
