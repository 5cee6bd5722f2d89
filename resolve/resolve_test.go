package resolve

import (
	"testing"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// RESOLVER TESTS — strategy priority order
// ============================================================================

var cols = []string{"Name", "Age", "City"}

func TestExactBeatsEverything(t *testing.T) {
	// A column literally named "B" must win over letter decoding
	got, err := Column("B", []string{"A", "B", "Revenue"})
	if err != nil || got != "B" {
		t.Errorf(`Column("B") = %q, %v; want exact "B"`, got, err)
	}
}

func TestCaseInsensitiveName(t *testing.T) {
	got, err := Column("city", cols)
	if err != nil || got != "City" {
		t.Errorf(`Column("city") = %q, %v`, got, err)
	}
}

func TestExcelLetter(t *testing.T) {
	got, err := Column("B", cols)
	if err != nil || got != "Age" {
		t.Errorf(`Column("B") = %q, %v; want Age`, got, err)
	}
	// Letter past the column count is not a hit
	if _, err := Column("Z", cols); err == nil {
		t.Error(`Column("Z") on 3 columns should be unresolved`)
	}
}

func TestLetterIndexBase26(t *testing.T) {
	cases := map[string]int{"A": 0, "Z": 25, "AA": 26, "AZ": 51, "BA": 52}
	for ref, want := range cases {
		got, ok := LetterIndex(ref)
		if !ok || got != want {
			t.Errorf("LetterIndex(%q) = %d,%v; want %d", ref, got, ok, want)
		}
	}
	if _, ok := LetterIndex("A1"); ok {
		t.Error("LetterIndex should reject digits")
	}
}

func TestColumnLetterRoundTrip(t *testing.T) {
	for i := 0; i < 800; i++ {
		got, ok := LetterIndex(ColumnLetter(i))
		if !ok || got != i {
			t.Fatalf("round trip failed at %d (%s → %d)", i, ColumnLetter(i), got)
		}
	}
}

func TestOrdinals(t *testing.T) {
	cases := map[string]string{
		"2nd column": "Age",
		"first":      "Name",
		"3rd":        "City",
		"last":       "City",
		"2":          "Age",
	}
	for ref, want := range cases {
		got, err := Column(ref, cols)
		if err != nil || got != want {
			t.Errorf("Column(%q) = %q, %v; want %q", ref, got, err, want)
		}
	}
}

func TestSubstringContainment(t *testing.T) {
	got, err := Column("Reve", []string{"Name", "Revenue"})
	if err != nil || got != "Revenue" {
		t.Errorf(`Column("Reve") = %q, %v`, got, err)
	}
	// Reference containing the column name also matches
	got, err = Column("the age here", []string{"Name", "Age"})
	if err != nil || got != "Age" {
		t.Errorf(`containment reversed = %q, %v`, got, err)
	}
}

func TestNoEditDistance(t *testing.T) {
	// "agee" contains "age" so it resolves via substring; "aeg" must not
	if got, err := Column("agee", cols); err != nil || got != "Age" {
		t.Errorf(`Column("agee") = %q, %v; substring should match`, got, err)
	}
	if _, err := Column("aeg", cols); err != ErrNoMatch {
		t.Errorf("transposed typo must stay unresolved, got %v", err)
	}
}

func TestUnresolvedSentinel(t *testing.T) {
	if _, err := Column("", cols); err != ErrNoMatch {
		t.Errorf("empty reference: %v", err)
	}
	if _, err := Column("zzz", nil); err != ErrNoMatch {
		t.Errorf("empty columns: %v", err)
	}
}

// ── Content search fallback ──────────────────────────────────────────────

func TestColumnByContent(t *testing.T) {
	ds, _ := dataset.FromRecords([]string{"A", "B"}, []map[string]interface{}{
		{"A": "pending review", "B": "x"},
		{"A": "pending ship", "B": "y"},
		{"A": "done", "B": "pending"},
	})
	got, err := ColumnByContent("pending", ds)
	if err != nil || got != "A" {
		t.Errorf("ColumnByContent = %q, %v; want A (2/3 majority)", got, err)
	}
	if _, err := ColumnByContent("nowhere", ds); err != ErrNoMatch {
		t.Errorf("missing phrase should be ErrNoMatch, got %v", err)
	}
}

func TestColumnByNameHint(t *testing.T) {
	got, ok := ColumnByNameHint([]string{"ID", "Phone Number", "Email"}, "phone")
	if !ok || got != "Phone Number" {
		t.Errorf("ColumnByNameHint = %q, %v", got, ok)
	}
	if _, ok := ColumnByNameHint([]string{"ID"}, "phone"); ok {
		t.Error("no hint match expected")
	}
}
