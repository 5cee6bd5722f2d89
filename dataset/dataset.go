package dataset

import (
	"fmt"
	"strings"
)

// ============================================================================
// DATASET — Mutable ordered table
// ============================================================================
// Columns keep insertion order (it determines Excel-letter mapping and export
// order). Rows are a dense slice, so the zero-based row index renormalizes
// itself after any row-count-changing operation. Every mutation is
// bounds-checked; out-of-range is a reported error, never a clamp.
//
// A Dataset is owned by exactly one plan execution at a time. Callers that
// need to keep reading the pre-plan state pass a Clone.
// ============================================================================

// Dataset is an in-memory table of named columns and scalar rows.
type Dataset struct {
	cols []string
	rows [][]Value
}

// New creates an empty dataset with the given column order.
// Duplicate column names are rejected.
func New(columns []string) (*Dataset, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	return &Dataset{cols: append([]string(nil), columns...)}, nil
}

// FromRecords builds a dataset from row maps, preserving the given column
// order. Values are collapsed to scalars via FromAny. Missing keys become
// nulls; unknown keys are ignored.
func FromRecords(columns []string, records []map[string]interface{}) (*Dataset, error) {
	ds, err := New(columns)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := make([]Value, len(columns))
		for i, c := range columns {
			if raw, ok := rec[c]; ok {
				row[i] = FromAny(raw)
			} else {
				row[i] = Null()
			}
		}
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

// Columns returns the column names in order. The slice is a copy.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.cols...)
}

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.cols) }

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int { return len(d.rows) }

// HasColumn reports whether a column exists (case-sensitive).
func (d *Dataset) HasColumn(name string) bool { return d.ColumnIndex(name) >= 0 }

// ColumnIndex returns the position of a column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column).
func (d *Dataset) Cell(row int, column string) (Value, error) {
	ci := d.ColumnIndex(column)
	if ci < 0 {
		return Null(), fmt.Errorf("column %q not found (available: %s)", column, strings.Join(d.cols, ", "))
	}
	if row < 0 || row >= len(d.rows) {
		return Null(), fmt.Errorf("row index %d out of range (0-%d)", row, len(d.rows)-1)
	}
	return d.rows[row][ci], nil
}

// SetCell writes a value at (row, column), bounds-checked.
func (d *Dataset) SetCell(row int, column string, v Value) error {
	ci := d.ColumnIndex(column)
	if ci < 0 {
		return fmt.Errorf("column %q not found (available: %s)", column, strings.Join(d.cols, ", "))
	}
	if row < 0 || row >= len(d.rows) {
		return fmt.Errorf("row index %d out of range (0-%d)", row, len(d.rows)-1)
	}
	d.rows[row][ci] = v
	return nil
}

// Column returns a copy of one column's values top to bottom.
func (d *Dataset) Column(name string) ([]Value, error) {
	ci := d.ColumnIndex(name)
	if ci < 0 {
		return nil, fmt.Errorf("column %q not found (available: %s)", name, strings.Join(d.cols, ", "))
	}
	out := make([]Value, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[ci]
	}
	return out, nil
}

// SetColumn replaces a column's values, or appends a new column when the
// name is unknown. The value count must match the row count.
func (d *Dataset) SetColumn(name string, values []Value) error {
	if len(values) != len(d.rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(d.rows))
	}
	ci := d.ColumnIndex(name)
	if ci < 0 {
		d.cols = append(d.cols, name)
		for i := range d.rows {
			d.rows[i] = append(d.rows[i], values[i])
		}
		return nil
	}
	for i := range d.rows {
		d.rows[i][ci] = values[i]
	}
	return nil
}

// AddColumn inserts a column at position (negative or past-end appends),
// filling every row with the default value.
func (d *Dataset) AddColumn(name string, position int, def Value) error {
	if d.HasColumn(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	if position < 0 || position > len(d.cols) {
		position = len(d.cols)
	}
	d.cols = append(d.cols, "")
	copy(d.cols[position+1:], d.cols[position:])
	d.cols[position] = name
	for i := range d.rows {
		row := append(d.rows[i], Null())
		copy(row[position+1:], row[position:])
		row[position] = def
		d.rows[i] = row
	}
	return nil
}

// DeleteColumn removes a column by name.
func (d *Dataset) DeleteColumn(name string) error {
	ci := d.ColumnIndex(name)
	if ci < 0 {
		return fmt.Errorf("column %q not found (available: %s)", name, strings.Join(d.cols, ", "))
	}
	d.cols = append(d.cols[:ci], d.cols[ci+1:]...)
	for i := range d.rows {
		d.rows[i] = append(d.rows[i][:ci], d.rows[i][ci+1:]...)
	}
	return nil
}

// RenameColumn changes a column's name in place.
func (d *Dataset) RenameColumn(oldName, newName string) error {
	ci := d.ColumnIndex(oldName)
	if ci < 0 {
		return fmt.Errorf("column %q not found (available: %s)", oldName, strings.Join(d.cols, ", "))
	}
	if oldName != newName && d.HasColumn(newName) {
		return fmt.Errorf("column %q already exists", newName)
	}
	d.cols[ci] = newName
	return nil
}

// InsertRow adds a row at position (negative or past-end appends).
// Data keys are column names; missing columns become nulls.
func (d *Dataset) InsertRow(position int, data map[string]interface{}) error {
	row := make([]Value, len(d.cols))
	for i, c := range d.cols {
		if raw, ok := data[c]; ok {
			row[i] = FromAny(raw)
		} else {
			row[i] = Null()
		}
	}
	if position < 0 || position > len(d.rows) {
		position = len(d.rows)
	}
	d.rows = append(d.rows, nil)
	copy(d.rows[position+1:], d.rows[position:])
	d.rows[position] = row
	return nil
}

// DeleteRow removes one row, bounds-checked. The remaining rows keep a
// dense 0..N-1 index.
func (d *Dataset) DeleteRow(row int) error {
	if row < 0 || row >= len(d.rows) {
		return fmt.Errorf("row index %d out of range (0-%d)", row, len(d.rows)-1)
	}
	d.rows = append(d.rows[:row], d.rows[row+1:]...)
	return nil
}

// RetainRows keeps only the rows at the given indices, in the given order.
// Out-of-range indices are skipped. This is the single compaction path for
// filters, dedupe, and sorts — the result is always densely indexed.
func (d *Dataset) RetainRows(indices []int) {
	kept := make([][]Value, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(d.rows) {
			kept = append(kept, d.rows[i])
		}
	}
	d.rows = kept
}

// Row returns one row as a column→value map.
func (d *Dataset) Row(i int) (map[string]Value, error) {
	if i < 0 || i >= len(d.rows) {
		return nil, fmt.Errorf("row index %d out of range (0-%d)", i, len(d.rows)-1)
	}
	out := make(map[string]Value, len(d.cols))
	for ci, c := range d.cols {
		out[c] = d.rows[i][ci]
	}
	return out, nil
}

// RowFingerprint returns a string key identifying the full row content.
// Equal rows produce equal fingerprints — used for exact-duplicate removal.
func (d *Dataset) RowFingerprint(i int) string {
	if i < 0 || i >= len(d.rows) {
		return ""
	}
	parts := make([]string, len(d.rows[i]))
	for ci, v := range d.rows[i] {
		parts[ci] = v.Kind().String() + ":" + v.String()
	}
	return strings.Join(parts, "\x1f")
}

// Clone deep-copies the dataset. Values are immutable, so copying the row
// slices is sufficient.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{cols: append([]string(nil), d.cols...)}
	c.rows = make([][]Value, len(d.rows))
	for i, row := range d.rows {
		c.rows[i] = append([]Value(nil), row...)
	}
	return c
}

// Records converts the dataset to ordered row maps for the result bundle.
func (d *Dataset) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, len(d.rows))
	for i, row := range d.rows {
		rec := make(map[string]interface{}, len(d.cols))
		for ci, c := range d.cols {
			rec[c] = row[ci].Interface()
		}
		out[i] = rec
	}
	return out
}
