package formula

import (
	"fmt"
	"strings"

	"github.com/sheetwise-org/sheetwise/clean"
	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// TEXT FUNCTIONS — per-row, coercing to string first
// ============================================================================
// LEFT/RIGHT/MID/TRIM/UPPER/LOWER/PROPER rewrite the target column in place.
// CONCAT/TEXTJOIN create a new column named by joining the source columns.
// ============================================================================

// Left keeps the first n characters of every cell.
func Left(ds *dataset.Dataset, column string, n int) error {
	if n < 0 {
		return fmt.Errorf("LEFT: count must be ≥ 0, got %d", n)
	}
	return mapColumnText(ds, column, func(s string) string {
		r := []rune(s)
		if n > len(r) {
			return s
		}
		return string(r[:n])
	})
}

// Right keeps the last n characters of every cell.
func Right(ds *dataset.Dataset, column string, n int) error {
	if n < 0 {
		return fmt.Errorf("RIGHT: count must be ≥ 0, got %d", n)
	}
	return mapColumnText(ds, column, func(s string) string {
		r := []rune(s)
		if n > len(r) {
			return s
		}
		return string(r[len(r)-n:])
	})
}

// Mid keeps length characters starting at the 1-based start position.
func Mid(ds *dataset.Dataset, column string, start, length int) error {
	if start < 1 {
		return fmt.Errorf("MID: start is 1-based, got %d", start)
	}
	if length < 0 {
		return fmt.Errorf("MID: length must be ≥ 0, got %d", length)
	}
	return mapColumnText(ds, column, func(s string) string {
		r := []rune(s)
		from := start - 1
		if from >= len(r) {
			return ""
		}
		to := from + length
		if to > len(r) {
			to = len(r)
		}
		return string(r[from:to])
	})
}

// Trim strips surrounding whitespace from every cell.
func Trim(ds *dataset.Dataset, column string) error {
	_, err := clean.TrimColumn(ds, column)
	return err
}

// Upper upper-cases every cell.
func Upper(ds *dataset.Dataset, column string) error {
	_, err := clean.NormalizeCase(ds, column, "upper")
	return err
}

// Lower lower-cases every cell.
func Lower(ds *dataset.Dataset, column string) error {
	_, err := clean.NormalizeCase(ds, column, "lower")
	return err
}

// Proper title-cases every cell.
func Proper(ds *dataset.Dataset, column string) error {
	_, err := clean.NormalizeCase(ds, column, "title")
	return err
}

// Concat joins the source columns row-wise with a separator into a new
// column named "<col1>_<col2>_...". Sources are kept.
func Concat(ds *dataset.Dataset, columns []string, separator string) (string, error) {
	if len(columns) < 2 {
		return "", fmt.Errorf("CONCAT requires at least 2 columns, got %d", len(columns))
	}
	return clean.MergeColumns(ds, columns, separator, strings.Join(columns, "_"), false)
}

// TextJoin is Concat with an ignore-empty switch: empty and null cells drop
// out of the join instead of producing doubled delimiters.
func TextJoin(ds *dataset.Dataset, columns []string, delimiter string, ignoreEmpty bool) (string, error) {
	if len(columns) < 2 {
		return "", fmt.Errorf("TEXTJOIN requires at least 2 columns, got %d", len(columns))
	}
	if !ignoreEmpty {
		return Concat(ds, columns, delimiter)
	}

	sources := make([][]dataset.Value, len(columns))
	for i, c := range columns {
		vals, err := ds.Column(c)
		if err != nil {
			return "", err
		}
		sources[i] = vals
	}
	newName := strings.Join(columns, "_")
	out := make([]dataset.Value, ds.RowCount())
	for r := range out {
		var pieces []string
		for c := range sources {
			s := sources[c][r].String()
			if s != "" {
				pieces = append(pieces, s)
			}
		}
		out[r] = dataset.Text(strings.Join(pieces, delimiter))
	}
	if err := ds.SetColumn(newName, out); err != nil {
		return "", err
	}
	return newName, nil
}

// mapColumnText applies fn to the string rendering of every non-null cell,
// writing the result back as text.
func mapColumnText(ds *dataset.Dataset, column string, fn func(string) string) error {
	values, err := ds.Column(column)
	if err != nil {
		return err
	}
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		values[i] = dataset.Text(fn(v.String()))
	}
	return ds.SetColumn(column, values)
}
