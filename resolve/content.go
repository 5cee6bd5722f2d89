package resolve

import (
	"strings"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// CONTENT SEARCH — Fallback stage after name-based resolution fails
// ============================================================================
// Deliberately separate from Column(): name resolution is pure over the
// column list, content search reads cell values. Callers invoke it only
// when Column() returned ErrNoMatch.
// ============================================================================

// ColumnByContent finds the column whose values most often contain the
// phrase (case-insensitive). A column qualifies when more than half of its
// non-null cells match. Returns ErrNoMatch when no column qualifies.
func ColumnByContent(phrase string, ds *dataset.Dataset) (string, error) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" || ds == nil || ds.RowCount() == 0 {
		return "", ErrNoMatch
	}

	best := ""
	bestRatio := 0.0
	for _, col := range ds.Columns() {
		values, err := ds.Column(col)
		if err != nil {
			continue
		}
		matched, present := 0, 0
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			present++
			if strings.Contains(strings.ToLower(v.String()), phrase) {
				matched++
			}
		}
		if present == 0 {
			continue
		}
		ratio := float64(matched) / float64(present)
		if ratio > 0.5 && ratio > bestRatio {
			best = col
			bestRatio = ratio
		}
	}

	if best == "" {
		return "", ErrNoMatch
	}
	return best, nil
}

// ColumnByNameHint picks the first column whose name contains any of the
// hint words (case-insensitive). Used by declarative handlers that know the
// operation's subject (e.g. "phone") but got a mismatched column name.
func ColumnByNameHint(columns []string, hints ...string) (string, bool) {
	for _, c := range columns {
		cl := strings.ToLower(c)
		for _, h := range hints {
			if h != "" && strings.Contains(cl, strings.ToLower(h)) {
				return c, true
			}
		}
	}
	return "", false
}
