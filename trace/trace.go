// Package trace records which columns and operations a plan execution
// touched, as an audit side-channel independent of the human-readable
// summary log.
package trace

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ============================================================================
// DATA TRACER — request-scoped audit trail
// ============================================================================
// One Tracer per plan execution. Reset clears everything and issues a fresh
// run ID; nothing accumulates across requests.
// ============================================================================

// Entry is one executed operation in the history.
type Entry struct {
	Operation string   `json:"operation"`
	Columns   []string `json:"columns,omitempty"`
	RowImpact int      `json:"row_impact"`
}

// Report is the read-only summary handed back in the result bundle.
type Report struct {
	RunID            string   `json:"run_id"`
	ColumnsUsed      []string `json:"columns_used"`
	OperationHistory []Entry  `json:"operation_history"`
	RowsBefore       int      `json:"rows_before"`
	RowsAfter        int      `json:"rows_after"`
	ColumnsBefore    int      `json:"columns_before"`
	ColumnsAfter     int      `json:"columns_after"`
	Summary          string   `json:"summary"`
}

// Tracer accumulates audit state for one request.
type Tracer struct {
	runID       string
	columnsUsed []string
	columnSeen  map[string]bool
	history     []Entry

	rowsBefore, rowsAfter       int
	columnsBefore, columnsAfter int
}

// New returns an empty tracer with a fresh run ID.
func New() *Tracer {
	t := &Tracer{}
	t.Reset()
	return t
}

// Reset clears all recorded state and issues a new run ID.
func (t *Tracer) Reset() {
	t.runID = uuid.NewString()
	t.columnsUsed = nil
	t.columnSeen = make(map[string]bool)
	t.history = nil
	t.rowsBefore, t.rowsAfter = 0, 0
	t.columnsBefore, t.columnsAfter = 0, 0
}

// Begin records the dataset shape before the first operation runs.
func (t *Tracer) Begin(rows, columns int) {
	t.rowsBefore, t.columnsBefore = rows, columns
	t.rowsAfter, t.columnsAfter = rows, columns
}

// Finish records the final dataset shape.
func (t *Tracer) Finish(rows, columns int) {
	t.rowsAfter, t.columnsAfter = rows, columns
}

// Touch marks columns as referenced by some operation.
func (t *Tracer) Touch(columns ...string) {
	for _, c := range columns {
		if c == "" || t.columnSeen[c] {
			continue
		}
		t.columnSeen[c] = true
		t.columnsUsed = append(t.columnsUsed, c)
	}
}

// Record appends an operation to the history and touches its columns.
func (t *Tracer) Record(operation string, rowImpact int, columns ...string) {
	t.Touch(columns...)
	t.history = append(t.history, Entry{
		Operation: operation,
		Columns:   append([]string(nil), columns...),
		RowImpact: rowImpact,
	})
}

// Report builds the trace report with a natural-language digest.
func (t *Tracer) Report() *Report {
	digest := fmt.Sprintf("Executed %d operations.", len(t.history))
	if len(t.columnsUsed) > 0 {
		digest += fmt.Sprintf(" Used %d columns: %s.", len(t.columnsUsed), strings.Join(t.columnsUsed, ", "))
	}
	digest += fmt.Sprintf(" Rows: %d → %d.", t.rowsBefore, t.rowsAfter)

	return &Report{
		RunID:            t.runID,
		ColumnsUsed:      append([]string(nil), t.columnsUsed...),
		OperationHistory: append([]Entry(nil), t.history...),
		RowsBefore:       t.rowsBefore,
		RowsAfter:        t.rowsAfter,
		ColumnsBefore:    t.columnsBefore,
		ColumnsAfter:     t.columnsAfter,
		Summary:          digest,
	}
}
