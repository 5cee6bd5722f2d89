package trace

import (
	"strings"
	"testing"
)

func TestTracerDigest(t *testing.T) {
	tr := New()
	tr.Begin(10, 3)
	tr.Record("remove_duplicates", 2, "Name", "Amount")
	tr.Record("sort", 0, "Amount")
	tr.Finish(8, 3)

	rep := tr.Report()
	if rep.RowsBefore != 10 || rep.RowsAfter != 8 {
		t.Errorf("rows %d → %d", rep.RowsBefore, rep.RowsAfter)
	}
	if len(rep.OperationHistory) != 2 {
		t.Fatalf("history length = %d", len(rep.OperationHistory))
	}
	// Columns deduplicate but keep first-touch order
	if len(rep.ColumnsUsed) != 2 || rep.ColumnsUsed[0] != "Name" {
		t.Errorf("columns used = %v", rep.ColumnsUsed)
	}
	if !strings.Contains(rep.Summary, "Executed 2 operations") {
		t.Errorf("digest = %q", rep.Summary)
	}
	if !strings.Contains(rep.Summary, "10 → 8") {
		t.Errorf("digest rows = %q", rep.Summary)
	}
}

func TestResetClearsEverything(t *testing.T) {
	tr := New()
	tr.Begin(5, 2)
	tr.Record("op", 1, "A")
	firstID := tr.Report().RunID

	tr.Reset()
	rep := tr.Report()
	if len(rep.OperationHistory) != 0 || len(rep.ColumnsUsed) != 0 {
		t.Error("reset must clear history and columns")
	}
	if rep.RunID == firstID {
		t.Error("reset must issue a new run ID")
	}
	if rep.RowsBefore != 0 {
		t.Errorf("rows before after reset = %d", rep.RowsBefore)
	}
}
