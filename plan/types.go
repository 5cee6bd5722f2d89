// Package plan defines the action-plan document produced by the external
// Planner and the result bundle returned to the caller. The Planner is a
// non-deterministic upstream — every field here may arrive missing,
// misspelled, or inconsistently encoded, and the parser normalizes what it
// can without guessing.
package plan

import (
	"github.com/sheetwise-org/sheetwise/trace"
)

// ============================================================================
// ACTION PLAN — contract between the Planner and the executor
// ============================================================================

// Plan is one request's declarative instruction document. The task label is
// advisory; UserPrompt keeps the literal prompt for fallback heuristics.
type Plan struct {
	Task       string      `json:"task"`
	UserPrompt string      `json:"user_prompt"`
	Operations []Operation `json:"operations"`

	// Single-shot directives, each optional.
	ChartConfig       *ChartConfig       `json:"chart_config,omitempty"`
	ChartConfigs      []ChartConfig      `json:"chart_configs,omitempty"`
	Sort              *SortDirective     `json:"sort,omitempty"`
	AddRow            *AddRow            `json:"add_row,omitempty"`
	AddColumn         *AddColumn         `json:"add_column,omitempty"`
	DeleteColumn      *DeleteColumn      `json:"delete_column,omitempty"`
	EditCell          *EditCell          `json:"edit_cell,omitempty"`
	ClearCell         *ClearCell         `json:"clear_cell,omitempty"`
	AutoFill          *AutoFill          `json:"auto_fill,omitempty"`
	ConditionalFormat *ConditionalFormat `json:"conditional_format,omitempty"`
	Format            *Format            `json:"format,omitempty"`
	Formula           *Formula           `json:"formula,omitempty"`
}

// Operation is one step: a type tag, free-form params, and/or an execution
// instruction. Applied strictly in list order.
type Operation struct {
	Type        string                 `json:"type"`
	Params      map[string]interface{} `json:"params"`
	Instruction *Instruction           `json:"execution_instructions,omitempty"`
	Description string                 `json:"description"`
}

// Instruction is a method-by-name call. Code is carried only so it can be
// explicitly rejected — free-form code from an LLM is never executed.
type Instruction struct {
	Method string                 `json:"method"`
	Args   []interface{}          `json:"args"`
	Kwargs map[string]interface{} `json:"kwargs"`
	Code   string                 `json:"code,omitempty"`
}

// Encoding is the resolved operation-encoding style.
type Encoding int

const (
	EncodingEmpty       Encoding = iota // nothing usable
	EncodingDeclarative                 // type + params
	EncodingInstructed                  // method/args/kwargs
	EncodingCode                        // inline code, always rejected
)

// Encoding classifies an operation structurally, in match order:
// declarative type first, then instruction method, then raw code.
func (op Operation) Encoding() Encoding {
	if op.Type != "" {
		return EncodingDeclarative
	}
	if op.Instruction != nil && op.Instruction.Method != "" {
		return EncodingInstructed
	}
	if op.Instruction != nil && op.Instruction.Code != "" {
		return EncodingCode
	}
	return EncodingEmpty
}

// StringParam reads a string parameter with trimming; ok is false when the
// key is absent or not a string.
func (op Operation) StringParam(key string) (string, bool) {
	if op.Params == nil {
		return "", false
	}
	s, ok := op.Params[key].(string)
	return s, ok
}

// ============================================================================
// SINGLE-SHOT DIRECTIVES
// ============================================================================

// ChartConfig selects chart columns for the external Renderer.
type ChartConfig struct {
	ChartType string `json:"chart_type"` // bar|line|pie|histogram|scatter
	XColumn   string `json:"x_column"`
	YColumn   string `json:"y_column,omitempty"`
	Title     string `json:"title,omitempty"`
}

// SortDirective orders rows by multiple independently-typed columns.
type SortDirective struct {
	Columns []SortColumn `json:"columns"`
}

// SortColumn is one sort key.
type SortColumn struct {
	ColumnName string `json:"column_name"`
	Order      string `json:"order"`     // asc|desc
	DataType   string `json:"data_type"` // text|number|date
}

// AddRow inserts a row at a position (negative = append).
type AddRow struct {
	Position int                    `json:"position"`
	Data     map[string]interface{} `json:"data"`
}

// AddColumn inserts a column with a default value.
type AddColumn struct {
	Name         string      `json:"name"`
	Position     int         `json:"position"`
	DefaultValue interface{} `json:"default_value"`
}

// DeleteColumn removes a column by name or position.
type DeleteColumn struct {
	ColumnName  string `json:"column_name,omitempty"`
	ColumnIndex *int   `json:"column_index,omitempty"`
}

// EditCell writes one bounds-checked cell.
type EditCell struct {
	RowIndex   int         `json:"row_index"`
	ColumnName string      `json:"column_name"`
	Value      interface{} `json:"value"`
}

// ClearCell blanks one bounds-checked cell.
type ClearCell struct {
	RowIndex   int    `json:"row_index"`
	ColumnName string `json:"column_name"`
}

// AutoFill fills a column's empty cells, either by copying the last
// non-empty value down or with a constant.
type AutoFill struct {
	ColumnName string      `json:"column_name"`
	Method     string      `json:"method"` // down|value
	Value      interface{} `json:"value,omitempty"`
}

// ConditionalFormat records a predicate-driven highlight rule.
type ConditionalFormat struct {
	FormatType string                 `json:"format_type"` // duplicates|greater_than|less_than|between|contains_text|text_equals|regex_match
	Config     map[string]interface{} `json:"config"`
}

// Format records a static style over a range.
type Format struct {
	Range     *RangeRef `json:"range,omitempty"`
	Bold      bool      `json:"bold,omitempty"`
	Italic    bool      `json:"italic,omitempty"`
	TextColor string    `json:"text_color,omitempty"`
	BgColor   string    `json:"bg_color,omitempty"`
	Align     string    `json:"align,omitempty"`
	Border    bool      `json:"border,omitempty"`
}

// RangeRef addresses a cell, a row, a column, or an explicit cell list.
type RangeRef struct {
	Column string   `json:"column,omitempty"`
	Row    *int     `json:"row,omitempty"`
	Cell   string   `json:"cell,omitempty"`  // A1-style
	Cells  []string `json:"cells,omitempty"` // explicit A1 list
}

// Formula requests a single named formula evaluation.
type Formula struct {
	Type    string                 `json:"type"`
	Column  string                 `json:"column,omitempty"`
	Columns []string               `json:"columns,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ============================================================================
// RESULT BUNDLE
// ============================================================================

// ChartSelection is the resolved (x, y, type, title) tuple for the Renderer.
type ChartSelection struct {
	XColumn   string `json:"x_column"`
	YColumn   string `json:"y_column,omitempty"`
	ChartType string `json:"chart_type"`
	Title     string `json:"title,omitempty"`
}

// Result is the bundle returned to the caller after one plan execution.
type Result struct {
	DatasetRows     []map[string]interface{} `json:"dataset_rows"`
	Columns         []string                 `json:"columns"`
	RowCount        int                      `json:"row_count"`
	Summary         []string                 `json:"summary"`
	FormulaResult   interface{}              `json:"formula_result"`
	ChartSelection  *ChartSelection          `json:"chart_selection"`
	ChartSelections []ChartSelection         `json:"chart_selections,omitempty"`
	TraceReport     *trace.Report            `json:"trace_report"`
}
