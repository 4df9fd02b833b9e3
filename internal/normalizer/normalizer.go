// =============================================================================
// NGR XML to CSV Converter - Normalizer Module
// =============================================================================
//
// This module turns the raw row collections from the XML parser into the four
// final tables:
//
//   GRN table       - one row per distinct GRN, first occurrence kept whole
//   Payee table     - one row per distinct PAYEE_ID, column-wise merged
//   User table      - one row per distinct USER_ID, column-wise merged
//   Mapping table   - distinct (GRN, PAYEE_ID, USER_ID) combinations
//
// DEDUPLICATION POLICIES (two distinct ones, do not conflate):
//   - GRN: first row encountered for a key wins verbatim; later duplicates
//     are discarded without any field-level merging.
//   - Payee/User: per column, the first non-null value among the key's rows
//     wins. An empty string is a present value and beats nothing; only nil
//     loses. Rows with a null key merge together as one group.
//
// The mapping table keeps every distinct identifier combination, including
// the same USER_ID under multiple PAYEE_IDs. It is deduplicated on the full
// triple only.
//
// Normalization never fails: empty inputs produce empty tables.
//
// =============================================================================

package normalizer

import (
	"github.com/grainbridge/ngr-conversion/internal/types"
	"github.com/grainbridge/ngr-conversion/internal/xmlparser"
)

// Key columns of the three entity tables.
const (
	KeyGRN   = "GRN"
	KeyPayee = "PAYEE_ID"
	KeyUser  = "USER_ID"
)

// mappingColumns is the fixed projection of the mapping table.
var mappingColumns = []string{KeyGRN, KeyPayee, KeyUser}

// Output holds the four normalized tables produced by one conversion.
type Output struct {
	GRN     *types.Table
	Payee   *types.Table
	User    *types.Table
	Mapping *types.Table
}

// Normalize derives the four output tables from the raw extraction.
// It is pure and deterministic: the same extraction always yields the same
// tables, so re-running it is safe and pointless in equal measure.
func Normalize(ex *xmlparser.Extraction) *Output {
	return &Output{
		GRN:     dedupFirst(ex.GRNRows, KeyGRN),
		Payee:   dedupMerge(ex.PayeeRows, KeyPayee),
		User:    dedupMerge(ex.UserRows, KeyUser),
		Mapping: projectMapping(ex.UserRows),
	}
}

// =============================================================================
// GROUP KEYS
// =============================================================================

// groupKey encodes a nullable value as a map key. Null (nil or absent column)
// is its own group, distinct from every string including "".
func groupKey(v *string) string {
	if v == nil {
		return "\x00"
	}
	return "\x01" + *v
}

// =============================================================================
// DEDUPLICATION
// =============================================================================

// reconcileColumns folds every input row's columns into the table superset
// so that columns contributed by discarded duplicates still materialize
// (as null cells), matching a column union over the raw collection.
func reconcileColumns(out *types.Table, rows []*types.Row) {
	for _, r := range rows {
		for _, c := range r.Columns() {
			out.AddColumn(c)
		}
	}
}

// dedupFirst keeps the first row seen for each key value, verbatim.
// Later rows with the same key are dropped outright, not merged.
func dedupFirst(rows []*types.Row, key string) *types.Table {
	out := types.NewTable()
	reconcileColumns(out, rows)
	seen := make(map[string]struct{})
	for _, r := range rows {
		k := groupKey(r.Value(key))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Append(r)
	}
	return out
}

// dedupMerge groups rows by key value (null keys form one group) and merges
// each group column-wise with MergeRows. Groups are emitted in the order
// their first row appeared.
func dedupMerge(rows []*types.Row, key string) *types.Table {
	groups := make(map[string][]*types.Row)
	var order []string
	for _, r := range rows {
		k := groupKey(r.Value(key))
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := types.NewTable()
	reconcileColumns(out, rows)
	for _, k := range order {
		merged := MergeRows(groups[k])
		if !merged.Has(key) {
			merged.Set(key, nil)
		}
		out.Append(merged)
	}
	return out
}

// MergeRows folds rows into one row, column by column: for every column that
// appears in any of the rows (first-seen order), the merged value is the
// first non-null value scanning the rows in order, or null when every row
// has null or lacks the column. An empty string counts as present.
//
// The fold is a plain "first non-null wins" reduction, exposed on its own so
// the merge policy can be exercised independently of the tree walk.
func MergeRows(rows []*types.Row) *types.Row {
	merged := types.NewRow()
	for _, r := range rows {
		for _, col := range r.Columns() {
			if merged.Has(col) {
				continue
			}
			// Placeholder so column order is fixed by first appearance.
			merged.Set(col, nil)
		}
	}

	for _, col := range merged.Columns() {
		for _, r := range rows {
			if v := r.Value(col); v != nil {
				merged.Set(col, v)
				break
			}
		}
	}
	return merged
}

// =============================================================================
// MAPPING PROJECTION
// =============================================================================

// projectMapping projects the raw user rows onto the three identifier
// columns and removes exact-duplicate triples, preserving first-occurrence
// order. The three columns are pinned even when no user rows exist.
func projectMapping(userRows []*types.Row) *types.Table {
	out := types.NewTable()
	for _, col := range mappingColumns {
		out.AddColumn(col)
	}

	// Keyed per column so values containing the groupKey sentinel bytes
	// can never collide across column boundaries.
	seen := make(map[[3]string]struct{})
	for _, r := range userRows {
		row := types.NewRow()
		var k [3]string
		for i, col := range mappingColumns {
			v := r.Value(col)
			row.Set(col, v)
			k[i] = groupKey(v)
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Append(row)
	}
	return out
}
