package engine

import (
	"fmt"
	"log"
	"strings"

	"github.com/sheetwise-org/sheetwise/clean"
	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// DEFAULT CLEANING SEQUENCE
// ============================================================================
// Runs when no explicit operation succeeded and the literal prompt implies a
// generic cleaning pass: dedupe → whitespace-trim → missing-value fill.
// Each step appends a count-bearing summary line. The sequence is idempotent:
// running it on its own output changes nothing.
// ============================================================================

// wantsCleaning scans the literal prompt for configured cleaning keywords.
func (e *Executor) wantsCleaning(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, kw := range e.cfg.CleaningKeywords {
		if strings.Contains(p, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// defaultCleaning applies the fixed cleaning sequence and returns its
// summary lines.
func (e *Executor) defaultCleaning(ds *dataset.Dataset) []string {
	log.Printf("🧹 Sheetwise: running default cleaning sequence on %d rows", ds.RowCount())
	var summary []string

	rowsBefore := ds.RowCount()
	dedup, err := removeDuplicates(ds)
	if err == nil {
		summary = append(summary, dedup.summary)
		e.tracer.Record("remove_duplicates", ds.RowCount()-rowsBefore)
	}

	trimmed := 0
	for _, name := range ds.Columns() {
		n, err := clean.TrimColumn(ds, name)
		if err != nil {
			continue
		}
		trimmed += n
	}
	summary = append(summary, fmt.Sprintf("Trimmed whitespace in %d values", trimmed))
	e.tracer.Record("trim_whitespace", 0)

	fill, err := fillMissing(ds, nil)
	if err == nil {
		summary = append(summary, fill.summary)
		e.tracer.Record("fill_missing", 0)
	}

	return summary
}
