package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sheetwise-org/sheetwise/clean"
	"github.com/sheetwise-org/sheetwise/dataset"
	"github.com/sheetwise-org/sheetwise/plan"
	"github.com/sheetwise-org/sheetwise/resolve"
)

// ============================================================================
// SORT DIRECTIVE — multi-column, per-column typed, nulls always last
// ============================================================================

// sortKey is one row's coerced value for one sort column.
type sortKey struct {
	null bool
	num  float64 // number and date (unix seconds) comparisons
	str  string  // text comparisons
}

// applySort reorders rows by the directive's columns. Each column is coerced
// to its declared type before comparison; values that fail coercion are
// treated as nulls and sort last regardless of direction.
func (e *Executor) applySort(ds *dataset.Dataset, directive *plan.SortDirective) (string, error) {
	if len(directive.Columns) == 0 {
		return "", fmt.Errorf("sort directive has no columns")
	}

	type sortSpec struct {
		name       string
		descending bool
		keys       []sortKey
	}
	specs := make([]sortSpec, 0, len(directive.Columns))
	var names []string

	for _, sc := range directive.Columns {
		name, err := resolve.Column(sc.ColumnName, ds.Columns())
		if err != nil {
			return "", fmt.Errorf("could not resolve sort column %q (available: %s)", sc.ColumnName, strings.Join(ds.Columns(), ", "))
		}
		col, err := ds.Column(name)
		if err != nil {
			return "", err
		}
		keys := make([]sortKey, len(col))
		for i, v := range col {
			keys[i] = coerceSortKey(v, sc.DataType)
		}
		specs = append(specs, sortSpec{
			name:       name,
			descending: strings.EqualFold(sc.Order, "desc"),
			keys:       keys,
		})
		names = append(names, name)
	}

	perm := make([]int, ds.RowCount())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		for _, sp := range specs {
			ka, kb := sp.keys[perm[a]], sp.keys[perm[b]]
			// Nulls last regardless of direction.
			if ka.null != kb.null {
				return kb.null
			}
			if ka.null {
				continue
			}
			if ka.num != kb.num || ka.str != kb.str {
				less := ka.num < kb.num || (ka.num == kb.num && ka.str < kb.str)
				if sp.descending {
					return !less
				}
				return less
			}
		}
		return false
	})
	ds.RetainRows(perm)

	e.tracer.Record("sort", 0, names...)
	return fmt.Sprintf("Sorted by %s", strings.Join(names, ", ")), nil
}

// coerceSortKey converts a cell to a comparable key per the declared type.
func coerceSortKey(v dataset.Value, dataType string) sortKey {
	if v.IsNull() {
		return sortKey{null: true}
	}
	switch strings.ToLower(dataType) {
	case "number", "numeric":
		if f, ok := v.Float(); ok {
			return sortKey{num: f}
		}
		return sortKey{null: true}
	case "date", "datetime":
		if t, ok := clean.ValueTime(v); ok {
			return sortKey{num: float64(t.Unix())}
		}
		return sortKey{null: true}
	default:
		return sortKey{str: v.String()}
	}
}
