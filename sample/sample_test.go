package sample

import (
	"fmt"
	"testing"

	"github.com/sheetwise-org/sheetwise/dataset"
)

func buildDataset(t *testing.T, rows int) *dataset.Dataset {
	t.Helper()
	records := make([]map[string]interface{}, rows)
	for i := 0; i < rows; i++ {
		records[i] = map[string]interface{}{
			"Amount":   float64(i * 10),
			"Category": fmt.Sprintf("cat-%d", i%4),
			"Date":     fmt.Sprintf("2024-01-%02d", i%28+1),
		}
	}
	ds, err := dataset.FromRecords([]string{"Amount", "Category", "Date"}, records)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return ds
}

func TestSelectTinyDatasetReturnedWhole(t *testing.T) {
	ds := buildDataset(t, 8)
	res := Select(ds, Options{})
	if res.Sample.RowCount() != 8 {
		t.Fatalf("expected all 8 rows, got %d", res.Sample.RowCount())
	}
	if len(res.Indices) != 8 {
		t.Fatalf("expected 8 indices, got %d", len(res.Indices))
	}
}

func TestSelectSmallDatasetHeadShortCircuit(t *testing.T) {
	ds := buildDataset(t, 35) // between min and 2×cap
	res := Select(ds, Options{MaxRows: 20})
	if res.Sample.RowCount() != 20 {
		t.Fatalf("expected 20 head rows, got %d", res.Sample.RowCount())
	}
	for i, idx := range res.Indices {
		if idx != i {
			t.Fatalf("expected head sample indices 0..19, got %v", res.Indices)
		}
	}
}

func TestSelectLargeDatasetRespectsCap(t *testing.T) {
	ds := buildDataset(t, 500)
	res := Select(ds, Options{MaxRows: 20, Seed: 42})
	if res.Sample.RowCount() > 20 {
		t.Fatalf("sample exceeds cap: %d rows", res.Sample.RowCount())
	}
	seen := map[int]bool{}
	for _, idx := range res.Indices {
		if idx < 0 || idx >= 500 {
			t.Fatalf("index %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("duplicate index %d", idx)
		}
		seen[idx] = true
	}
	if got := res.Sample.ColumnCount(); got != 3 {
		t.Fatalf("expected all 3 columns preserved, got %d", got)
	}
	if res.Explanation == "" {
		t.Fatal("expected a non-empty explanation")
	}
}

func TestSelectDeterministicWithFixedSeed(t *testing.T) {
	ds := buildDataset(t, 300)
	a := Select(ds, Options{MaxRows: 20, Seed: 7})
	b := Select(ds, Options{MaxRows: 20, Seed: 7})
	if len(a.Indices) != len(b.Indices) {
		t.Fatalf("index counts differ: %d vs %d", len(a.Indices), len(b.Indices))
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs: %d vs %d", i, a.Indices[i], b.Indices[i])
		}
	}
}

func TestSelectPicksOutliers(t *testing.T) {
	records := make([]map[string]interface{}, 100)
	for i := range records {
		records[i] = map[string]interface{}{"Amount": 50.0}
	}
	records[77]["Amount"] = 100000.0
	ds, err := dataset.FromRecords([]string{"Amount"}, records)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	res := Select(ds, Options{MaxRows: 20, Seed: 1})
	found := false
	for _, idx := range res.Indices {
		if idx == 77 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the outlier row to be selected")
	}
}

func TestMinRowsFloorApplied(t *testing.T) {
	ds := buildDataset(t, 200)
	res := Select(ds, Options{MaxRows: 3})
	if res.Sample.RowCount() > MinRows {
		t.Fatalf("cap should have been raised to %d, got %d rows", MinRows, res.Sample.RowCount())
	}
}
