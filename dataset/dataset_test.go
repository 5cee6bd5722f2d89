package dataset

import (
	"testing"
)

// ============================================================================
// DATASET TESTS
// ============================================================================

func testTable(t *testing.T) *Dataset {
	t.Helper()
	ds, err := FromRecords([]string{"Name", "Amount", "City"}, []map[string]interface{}{
		{"Name": "Alice", "Amount": 100.0, "City": "Singapore"},
		{"Name": "Bob", "Amount": nil, "City": "Tokyo"},
		{"Name": "Alice", "Amount": 100.0, "City": "Singapore"},
	})
	if err != nil {
		t.Fatalf("FromRecords failed: %v", err)
	}
	return ds
}

func TestFromAnyCollapsesNonScalars(t *testing.T) {
	if v := FromAny([]interface{}{42.0, "x"}); v.Kind() != KindNumber {
		t.Errorf("list should collapse to first element, got kind %s", v.Kind())
	}
	if v := FromAny([]interface{}{}); !v.IsNull() {
		t.Errorf("empty list should collapse to null")
	}
	if v := FromAny(map[string]interface{}{"a": 1}); v.Kind() != KindText {
		t.Errorf("map should stringify, got kind %s", v.Kind())
	}
}

func TestFloatCoercion(t *testing.T) {
	cases := []struct {
		v    Value
		want float64
		ok   bool
	}{
		{Text("12"), 12, true},
		{Text(" 1,250.50 "), 1250.50, true},
		{Text("abc"), 0, false},
		{Text(""), 0, false},
		{Number(7), 7, true},
		{Boolean(true), 1, true},
		{Null(), 0, false},
	}
	for _, c := range cases {
		got, ok := c.v.Float()
		if ok != c.ok || got != c.want {
			t.Errorf("Float(%q) = %v,%v; want %v,%v", c.v.String(), got, ok, c.want, c.ok)
		}
	}
}

func TestAddColumnAtPosition(t *testing.T) {
	ds := testTable(t)
	if err := ds.AddColumn("ID", 0, Number(0)); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	cols := ds.Columns()
	if cols[0] != "ID" || cols[1] != "Name" {
		t.Errorf("column order after insert: %v", cols)
	}
	v, err := ds.Cell(1, "ID")
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if f, _ := v.Float(); f != 0 {
		t.Errorf("default not applied: %v", v)
	}
	// Existing data must shift, not vanish
	name, _ := ds.Cell(0, "Name")
	if name.String() != "Alice" {
		t.Errorf("existing cell moved incorrectly: %q", name.String())
	}
}

func TestDeleteColumn(t *testing.T) {
	ds := testTable(t)
	if err := ds.DeleteColumn("Amount"); err != nil {
		t.Fatalf("DeleteColumn failed: %v", err)
	}
	if ds.HasColumn("Amount") {
		t.Error("Amount still present")
	}
	if ds.ColumnCount() != 2 {
		t.Errorf("column count = %d, want 2", ds.ColumnCount())
	}
	if err := ds.DeleteColumn("Nope"); err == nil {
		t.Error("deleting unknown column should error")
	}
}

func TestRowIndexRenormalization(t *testing.T) {
	ds := testTable(t)
	if err := ds.DeleteRow(1); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}
	if ds.RowCount() != 2 {
		t.Fatalf("row count = %d, want 2", ds.RowCount())
	}
	// Index 1 must now be the former index 2 — dense, no gap
	v, err := ds.Cell(1, "Name")
	if err != nil {
		t.Fatalf("Cell(1) after delete: %v", err)
	}
	if v.String() != "Alice" {
		t.Errorf("row after delete = %q, want Alice", v.String())
	}
	if _, err := ds.Cell(2, "Name"); err == nil {
		t.Error("index 2 should be out of range after delete")
	}
}

func TestRetainRows(t *testing.T) {
	ds := testTable(t)
	ds.RetainRows([]int{2, 0, 99})
	if ds.RowCount() != 2 {
		t.Fatalf("row count = %d, want 2 (out-of-range skipped)", ds.RowCount())
	}
	city, _ := ds.Cell(0, "City")
	if city.String() != "Singapore" {
		t.Errorf("retain order not preserved: %q", city.String())
	}
}

func TestInsertRowBounds(t *testing.T) {
	ds := testTable(t)
	if err := ds.InsertRow(0, map[string]interface{}{"Name": "Zed"}); err != nil {
		t.Fatalf("InsertRow failed: %v", err)
	}
	first, _ := ds.Cell(0, "Name")
	if first.String() != "Zed" {
		t.Errorf("insert at 0 = %q", first.String())
	}
	amount, _ := ds.Cell(0, "Amount")
	if !amount.IsNull() {
		t.Errorf("missing columns should be null, got %v", amount)
	}
	// Past-end appends
	if err := ds.InsertRow(500, map[string]interface{}{"Name": "Tail"}); err != nil {
		t.Fatalf("InsertRow past end failed: %v", err)
	}
	last, _ := ds.Cell(ds.RowCount()-1, "Name")
	if last.String() != "Tail" {
		t.Errorf("insert past end = %q", last.String())
	}
}

func TestCloneIsolation(t *testing.T) {
	ds := testTable(t)
	clone := ds.Clone()
	if err := clone.SetCell(0, "Name", Text("Mallory")); err != nil {
		t.Fatalf("SetCell on clone failed: %v", err)
	}
	orig, _ := ds.Cell(0, "Name")
	if orig.String() != "Alice" {
		t.Error("mutating clone leaked into original")
	}
}

func TestRowFingerprintDuplicates(t *testing.T) {
	ds := testTable(t)
	if ds.RowFingerprint(0) != ds.RowFingerprint(2) {
		t.Error("identical rows must share a fingerprint")
	}
	if ds.RowFingerprint(0) == ds.RowFingerprint(1) {
		t.Error("different rows must not share a fingerprint")
	}
}

func TestHundredDeletesStayDense(t *testing.T) {
	ds, _ := New([]string{"N"})
	for i := 0; i < 100; i++ {
		_ = ds.InsertRow(-1, map[string]interface{}{"N": float64(i)})
	}
	for ds.RowCount() > 0 {
		if err := ds.DeleteRow(0); err != nil {
			t.Fatalf("delete at 0 with %d rows: %v", ds.RowCount(), err)
		}
	}
	if ds.RowCount() != 0 {
		t.Errorf("rows remain: %d", ds.RowCount())
	}
}
