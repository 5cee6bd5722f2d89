package clean

import (
	"testing"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// CLEANING TESTS
// ============================================================================

func oneColumn(t *testing.T, name string, values ...interface{}) *dataset.Dataset {
	t.Helper()
	records := make([]map[string]interface{}, len(values))
	for i, v := range values {
		records[i] = map[string]interface{}{name: v}
	}
	ds, err := dataset.FromRecords([]string{name}, records)
	if err != nil {
		t.Fatalf("FromRecords failed: %v", err)
	}
	return ds
}

// ── Dates ──────────────────────────────────────────────────────────────────

func TestParseDateLayoutChain(t *testing.T) {
	cases := map[string]string{
		"2024-03-15":     "2024-03-15",
		"03/15/2024":     "2024-03-15",
		"Mar 15, 2024":   "2024-03-15",
		"15 Mar 2024":    "2024-03-15",
		"2024/03/15":     "2024-03-15",
		"3/5/2024":       "2024-03-05",
		"March 15, 2024": "2024-03-15",
	}
	for in, want := range cases {
		tm, ok := ParseDate(in)
		if !ok {
			t.Errorf("ParseDate(%q) failed", in)
			continue
		}
		if got := tm.Format("2006-01-02"); got != want {
			t.Errorf("ParseDate(%q) = %s, want %s", in, got, want)
		}
	}
	if _, ok := ParseDate("not a date"); ok {
		t.Error("garbage should not parse")
	}
}

func TestReformatDatesNullsUnparseable(t *testing.T) {
	ds := oneColumn(t, "When", "03/15/2024", "garbage", "2024-01-02")
	changed, err := ReformatDates(ds, "When", "2006-01-02")
	if err != nil {
		t.Fatalf("ReformatDates failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}
	mid, _ := ds.Cell(1, "When")
	if !mid.IsNull() {
		t.Errorf("unparseable cell should be null, got %v", mid)
	}
	first, _ := ds.Cell(0, "When")
	if first.String() != "2024-03-15" {
		t.Errorf("reformat = %q", first.String())
	}
}

func TestExtractDateComponent(t *testing.T) {
	ds := oneColumn(t, "When", "2024-03-15", nil)
	name, err := ExtractDateComponent(ds, "When", "year")
	if err != nil {
		t.Fatalf("ExtractDateComponent failed: %v", err)
	}
	if name != "When_year" {
		t.Errorf("new column = %q", name)
	}
	v, _ := ds.Cell(0, name)
	if f, _ := v.Float(); f != 2024 {
		t.Errorf("year = %v", v)
	}
	null, _ := ds.Cell(1, name)
	if !null.IsNull() {
		t.Error("null input should yield null component")
	}
	if _, err := ExtractDateComponent(ds, "When", "century"); err == nil {
		t.Error("unknown component should error")
	}
}

// ── Currency ───────────────────────────────────────────────────────────────

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"(500)", -500, true},
		{"€ 99.999", 100.00, true}, // rounds to 2 by default
		{"-42", -42, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseCurrency(c.in, 2)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseCurrency(%q) = %v,%v; want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestCleanCurrencyColumn(t *testing.T) {
	ds := oneColumn(t, "Price", "$10.505", "(2.00)", "n/a stuff", 3.14159)
	changed, err := CleanCurrency(ds, "Price", 2)
	if err != nil {
		t.Fatalf("CleanCurrency failed: %v", err)
	}
	if changed != 3 {
		t.Errorf("changed = %d, want 3", changed)
	}
	v0, _ := ds.Cell(0, "Price")
	if f, _ := v0.Float(); f != 10.51 {
		t.Errorf("row 0 = %v, want 10.51", v0)
	}
	v1, _ := ds.Cell(1, "Price")
	if f, _ := v1.Float(); f != -2 {
		t.Errorf("accounting negative = %v", v1)
	}
	// "n/a stuff" contains no digits? It doesn't — degraded to null
	v2, _ := ds.Cell(2, "Price")
	if !v2.IsNull() {
		t.Errorf("unparseable should be null, got %v", v2)
	}
}

// ── Text ───────────────────────────────────────────────────────────────────

func TestTrimAndCollapse(t *testing.T) {
	ds := oneColumn(t, "T", "  hello   world  ", "clean")
	if _, err := CollapseWhitespace(ds, "T"); err != nil {
		t.Fatalf("CollapseWhitespace failed: %v", err)
	}
	v, _ := ds.Cell(0, "T")
	if v.String() != "hello world" {
		t.Errorf("collapsed = %q", v.String())
	}
}

func TestNormalizeCaseModes(t *testing.T) {
	cases := map[string]string{
		"lower":    "mixed case here",
		"upper":    "MIXED CASE HERE",
		"title":    "Mixed Case Here",
		"sentence": "Mixed case here",
	}
	for mode, want := range cases {
		ds := oneColumn(t, "T", "mIxEd CaSe hErE")
		if _, err := NormalizeCase(ds, "T", mode); err != nil {
			t.Fatalf("NormalizeCase(%s) failed: %v", mode, err)
		}
		v, _ := ds.Cell(0, "T")
		if v.String() != want {
			t.Errorf("%s = %q, want %q", mode, v.String(), want)
		}
	}
	ds := oneColumn(t, "T", "x")
	if _, err := NormalizeCase(ds, "T", "shouty"); err == nil {
		t.Error("unknown mode should error")
	}
}

func TestStripSpecialChars(t *testing.T) {
	ds := oneColumn(t, "T", "he!!o, w#rld$ 2024")
	if _, err := StripSpecialChars(ds, "T", ""); err != nil {
		t.Fatalf("StripSpecialChars failed: %v", err)
	}
	v, _ := ds.Cell(0, "T")
	if v.String() != "heo, wrld 2024" {
		t.Errorf("stripped = %q", v.String())
	}
}

func TestFindReplaceCaseInsensitive(t *testing.T) {
	ds := oneColumn(t, "T", "Foo foo FOO")
	n, err := FindReplace(ds, "T", "foo", "bar", false)
	if err != nil {
		t.Fatalf("FindReplace failed: %v", err)
	}
	if n != 1 {
		t.Errorf("changed cells = %d, want 1", n)
	}
	v, _ := ds.Cell(0, "T")
	if v.String() != "bar bar bar" {
		t.Errorf("replaced = %q", v.String())
	}
}

func TestSplitColumn(t *testing.T) {
	ds := oneColumn(t, "Full", "Ada, Lovelace", "Grace, Hopper, RearAdm")
	names, err := SplitColumn(ds, "Full", ",")
	if err != nil {
		t.Fatalf("SplitColumn failed: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("split width = %d, want 3", len(names))
	}
	if ds.HasColumn("Full") {
		t.Error("original column should be dropped")
	}
	v, _ := ds.Cell(0, "Full_2")
	if v.String() != "Lovelace" {
		t.Errorf("Full_2 = %q", v.String())
	}
	pad, _ := ds.Cell(0, "Full_3")
	if !pad.IsNull() {
		t.Errorf("short row should pad with null, got %v", pad)
	}
}

func TestMergeColumns(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"First", "Last"}, []map[string]interface{}{
		{"First": "Ada", "Last": "Lovelace"},
		{"First": "Grace", "Last": nil},
	})
	name, err := MergeColumns(ds, []string{"First", "Last"}, " ", "", false)
	if err != nil {
		t.Fatalf("MergeColumns failed: %v", err)
	}
	if name != "First_Last" {
		t.Errorf("merged name = %q", name)
	}
	if !ds.HasColumn("First") {
		t.Error("originals should be kept by default")
	}
	v, _ := ds.Cell(1, name)
	if v.String() != "Grace " {
		t.Errorf("null joins as empty: %q", v.String())
	}
}
