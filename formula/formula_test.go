package formula

import (
	"testing"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// FORMULA TESTS
// ============================================================================

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(
		[]string{"Name", "Amount", "Tier"},
		[]map[string]interface{}{
			{"Name": "Alice", "Amount": "10", "Tier": "gold"},
			{"Name": "Bob", "Amount": "x", "Tier": "silver"},
			{"Name": "Cara", "Amount": "5", "Tier": "gold"},
			{"Name": "Dan", "Amount": nil, "Tier": "bronze"},
		},
	)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return ds
}

// ── Aggregates: coercion excludes, never zero-fills ────────────────────────

func TestSumExcludesNonNumeric(t *testing.T) {
	got, err := Sum(fixture(t), "Amount")
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if got != 15 {
		t.Errorf("Sum = %v, want 15", got)
	}
}

func TestCountOnlyCoercible(t *testing.T) {
	got, err := Count(fixture(t), "Amount")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if got != 2 {
		t.Errorf("Count = %v, want 2", got)
	}
}

func TestAverageOverCoercibleOnly(t *testing.T) {
	got, err := Average(fixture(t), "Amount")
	if err != nil {
		t.Fatalf("Average failed: %v", err)
	}
	if got != 7.5 {
		t.Errorf("Average = %v, want 7.5 (15/2, not 15/4)", got)
	}
}

func TestMinMax(t *testing.T) {
	ds := fixture(t)
	if got, _ := Min(ds, "Amount"); got != 5 {
		t.Errorf("Min = %v", got)
	}
	if got, _ := Max(ds, "Amount"); got != 10 {
		t.Errorf("Max = %v", got)
	}
}

func TestMissingColumnRaises(t *testing.T) {
	if _, err := Sum(fixture(t), "Revenue"); err == nil {
		t.Fatal("missing column must error immediately")
	}
}

// ── COUNTIF ────────────────────────────────────────────────────────────────

func TestCountIf(t *testing.T) {
	ds := fixture(t)
	cases := []struct {
		op    string
		value interface{}
		want  float64
	}{
		{">", 4.0, 2},
		{">=", 10.0, 1},
		{"<", 10.0, 1},
		{"==", "gold", 0},              // wrong column on purpose below
		{"contains", "a", 3},           // Alice, Cara, Dan
		{"!=", "alice", 3},             // case-insensitive text
	}
	for _, c := range cases {
		column := "Amount"
		if c.op == "contains" || c.op == "!=" || (c.op == "==" && c.value == "gold") {
			column = "Name"
		}
		got, err := CountIf(ds, column, c.op, dataset.FromAny(c.value))
		if err != nil {
			t.Fatalf("CountIf(%s %v) failed: %v", c.op, c.value, err)
		}
		if got != c.want {
			t.Errorf("CountIf(%s, %s %v) = %v, want %v", column, c.op, c.value, got, c.want)
		}
	}
	if _, err := CountIf(ds, "Amount", "~=", dataset.Number(1)); err == nil {
		t.Error("unknown operator must error")
	}
}

// ── Lookups ────────────────────────────────────────────────────────────────

func TestVLookupFirstMatch(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"K", "V"}, []map[string]interface{}{
		{"K": "A", "V": "first"},
		{"K": "B", "V": "middle"},
		{"K": "A", "V": "last"},
	})
	got, err := VLookup(ds, "K", dataset.Text("A"), "V", true)
	if err != nil {
		t.Fatalf("VLookup failed: %v", err)
	}
	if got.String() != "first" {
		t.Errorf("VLookup exact = %q, want first match", got.String())
	}
	// No match → null
	miss, _ := VLookup(ds, "K", dataset.Text("Z"), "V", true)
	if !miss.IsNull() {
		t.Errorf("no match should be null, got %v", miss)
	}
}

func TestVLookupApproximate(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"Threshold", "Grade"}, []map[string]interface{}{
		{"Threshold": 0.0, "Grade": "F"},
		{"Threshold": 60.0, "Grade": "D"},
		{"Threshold": 70.0, "Grade": "C"},
		{"Threshold": 80.0, "Grade": "B"},
		{"Threshold": 90.0, "Grade": "A"},
	})
	got, err := VLookup(ds, "Threshold", dataset.Number(85), "Grade", false)
	if err != nil {
		t.Fatalf("VLookup approx failed: %v", err)
	}
	if got.String() != "B" {
		t.Errorf("approx(85) = %q, want B", got.String())
	}
	below, _ := VLookup(ds, "Threshold", dataset.Number(-5), "Grade", false)
	if !below.IsNull() {
		t.Errorf("below range should be null, got %v", below)
	}
}

func TestXLookupNotFound(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"K", "V"}, []map[string]interface{}{
		{"K": "A", "V": 1.0},
	})
	got, err := XLookup(ds, "K", dataset.Text("Z"), "V", dataset.Text("missing"))
	if err != nil {
		t.Fatalf("XLookup failed: %v", err)
	}
	if got.String() != "missing" {
		t.Errorf("XLookup not_found = %q", got.String())
	}
}

// ── Text ───────────────────────────────────────────────────────────────────

func TestLeftRightMid(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"T"}, []map[string]interface{}{{"T": "spreadsheet"}})
	if err := Left(ds, "T", 6); err != nil {
		t.Fatalf("Left failed: %v", err)
	}
	v, _ := ds.Cell(0, "T")
	if v.String() != "spread" {
		t.Errorf("Left = %q", v.String())
	}

	ds2, _ := dataset.FromRecords([]string{"T"}, []map[string]interface{}{{"T": "spreadsheet"}})
	if err := Mid(ds2, "T", 7, 5); err != nil {
		t.Fatalf("Mid failed: %v", err)
	}
	v2, _ := ds2.Cell(0, "T")
	if v2.String() != "sheet" {
		t.Errorf("Mid = %q", v2.String())
	}

	if err := Mid(ds2, "T", 0, 2); err == nil {
		t.Error("MID start is 1-based; 0 must error")
	}
}

func TestConcatNaming(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"First", "Last"}, []map[string]interface{}{
		{"First": "Ada", "Last": "Lovelace"},
	})
	name, err := Concat(ds, []string{"First", "Last"}, " ")
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	if name != "First_Last" {
		t.Errorf("Concat column = %q", name)
	}
	v, _ := ds.Cell(0, name)
	if v.String() != "Ada Lovelace" {
		t.Errorf("Concat value = %q", v.String())
	}
}

func TestTextJoinIgnoreEmpty(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"A", "B", "C"}, []map[string]interface{}{
		{"A": "x", "B": nil, "C": "z"},
	})
	name, err := TextJoin(ds, []string{"A", "B", "C"}, "-", true)
	if err != nil {
		t.Fatalf("TextJoin failed: %v", err)
	}
	v, _ := ds.Cell(0, name)
	if v.String() != "x-z" {
		t.Errorf("TextJoin = %q, want x-z", v.String())
	}
}

// ── Dates ──────────────────────────────────────────────────────────────────

func TestDateDifCalendarMonths(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"Start", "End"}, []map[string]interface{}{
		{"Start": "2023-01-31", "End": "2024-03-01"},
		{"Start": "junk", "End": "2024-03-01"},
	})
	name, err := DateDif(ds, "Start", "End", "months")
	if err != nil {
		t.Fatalf("DateDif failed: %v", err)
	}
	v, _ := ds.Cell(0, name)
	// Calendar arithmetic: (2024-2023)*12 + (3-1) = 14, not day division
	if f, _ := v.Float(); f != 14 {
		t.Errorf("months diff = %v, want 14", v)
	}
	bad, _ := ds.Cell(1, name)
	if !bad.IsNull() {
		t.Errorf("unparseable endpoint should yield null, got %v", bad)
	}
}

// ── Group by ───────────────────────────────────────────────────────────────

func TestGroupByCategory(t *testing.T) {
	out, err := GroupByCategory(fixture(t), "Tier", "Amount", "sum")
	if err != nil {
		t.Fatalf("GroupByCategory failed: %v", err)
	}
	cols := out.Columns()
	if cols[1] != "sum_Amount" {
		t.Errorf("output column = %q, want sum_Amount", cols[1])
	}
	if out.RowCount() != 3 {
		t.Fatalf("group count = %d, want 3", out.RowCount())
	}
	// First-seen order: gold first, with 10+5
	label, _ := out.Cell(0, "Tier")
	total, _ := out.Cell(0, "sum_Amount")
	if label.String() != "gold" {
		t.Errorf("first group = %q", label.String())
	}
	if f, _ := total.Float(); f != 15 {
		t.Errorf("gold sum = %v", total)
	}
}
