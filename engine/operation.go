package engine

import (
	"fmt"
	"log"
	"strings"

	"github.com/sheetwise-org/sheetwise/clean"
	"github.com/sheetwise-org/sheetwise/dataset"
	"github.com/sheetwise-org/sheetwise/plan"
	"github.com/sheetwise-org/sheetwise/resolve"
)

// ============================================================================
// OPERATION EXECUTOR — one plan step against the current dataset
// ============================================================================
// The upstream planner may encode the same intent three ways, all honored in
// order:
//   1. Declarative type+params  → hand-written handler per known type
//   2. Execution instructions   → closed method registry (registry.go);
//                                 inline code is always rejected
//   3. Fallback built-in verbs  → remove_duplicates / fillna / dropna
// A malformed operation never aborts the plan — it returns an error the
// orchestrator logs before moving to the next operation.
// ============================================================================

// opOutcome is the result of executing one operation.
type opOutcome struct {
	ds      *dataset.Dataset // possibly replaced (group-by builds a new table)
	summary string
	scalar  interface{} // non-nil when the operation produced a single value
	columns []string    // columns touched, for the tracer
}

// executeOperation dispatches one operation by its encoding.
func (e *Executor) executeOperation(ds *dataset.Dataset, op plan.Operation) (opOutcome, error) {
	switch op.Encoding() {
	case plan.EncodingDeclarative:
		return e.executeDeclarative(ds, op)
	case plan.EncodingInstructed:
		return e.executeInstruction(ds, op.Instruction)
	case plan.EncodingCode:
		return opOutcome{}, fmt.Errorf("inline code execution is not supported; use a named method instead")
	default:
		return opOutcome{}, fmt.Errorf("operation has no usable type, method, or verb")
	}
}

// executeDeclarative handles known type+params operations and the fallback
// verbs, which arrive as bare type tags.
func (e *Executor) executeDeclarative(ds *dataset.Dataset, op plan.Operation) (opOutcome, error) {
	switch op.Type {
	case "remove_characters", "remove_character":
		return e.removeCharacters(ds, op.Params)
	case "replace_text", "find_replace":
		return e.replaceText(ds, op.Params)
	case "remove_duplicates", "drop_duplicates":
		return removeDuplicates(ds)
	case "fillna", "fill_missing":
		return fillMissing(ds, op.Params["value"])
	case "dropna", "drop_missing":
		return dropMissing(ds)
	default:
		// Unknown declarative types may still carry a usable instruction.
		if op.Instruction != nil && op.Instruction.Method != "" {
			return e.executeInstruction(ds, op.Instruction)
		}
		return opOutcome{}, fmt.Errorf("unknown operation type %q", op.Type)
	}
}

// ============================================================================
// DECLARATIVE HANDLERS
// ============================================================================

// charsToSniff are separator characters worth removing when the plan did not
// say which character to strip.
var charsToSniff = []string{"-", "/", "(", ")", ",", ".", " "}

// removeCharacters strips a character (or sniffed separator) from a column,
// scoped to the start, end, or all positions.
func (e *Executor) removeCharacters(ds *dataset.Dataset, params map[string]interface{}) (opOutcome, error) {
	column, err := e.resolveParamColumn(ds, params)
	if err != nil {
		return opOutcome{}, err
	}

	char := paramString(params, "character", "characters", "char", "value")
	if char == "" {
		char = sniffSeparator(ds, column)
		if char == "" {
			return opOutcome{}, fmt.Errorf("column %q: no character given and none could be inferred from the data", column)
		}
		log.Printf("🔧 Sheetwise: remove_characters sniffed separator %q from column %q", char, column)
	}

	position := strings.ToLower(paramString(params, "position", "where"))
	if position == "" {
		position = "all"
	}

	col, err := ds.Column(column)
	if err != nil {
		return opOutcome{}, err
	}
	changed := 0
	for i, v := range col {
		if v.Kind() != dataset.KindText {
			continue
		}
		s := v.String()
		var out string
		switch position {
		case "start", "beginning", "prefix":
			out = strings.TrimPrefix(s, char)
		case "end", "suffix":
			out = strings.TrimSuffix(s, char)
		default:
			out = strings.ReplaceAll(s, char, "")
		}
		if out != s {
			col[i] = dataset.Text(out)
			changed++
		}
	}
	if err := ds.SetColumn(column, col); err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Removed %q from %d values in column '%s'", char, changed, column),
		columns: []string{column},
	}, nil
}

// replaceText substitutes one literal for another across a column.
func (e *Executor) replaceText(ds *dataset.Dataset, params map[string]interface{}) (opOutcome, error) {
	column, err := e.resolveParamColumn(ds, params)
	if err != nil {
		return opOutcome{}, err
	}
	find := paramString(params, "find", "old_value", "old", "search")
	if find == "" {
		return opOutcome{}, fmt.Errorf("column %q: replace_text needs a value to find", column)
	}
	replacement := paramString(params, "replace", "new_value", "new", "replacement")
	caseSensitive := paramBool(params, "case_sensitive")

	changed, err := clean.FindReplace(ds, column, find, replacement, caseSensitive)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Replaced %q with %q in %d values in column '%s'", find, replacement, changed, column),
		columns: []string{column},
	}, nil
}

// resolveParamColumn resolves the operation's column reference, falling back
// to a name-hint search over the reference's words, then a content search.
// Name resolution never guesses by edit distance; content search is a
// separate, last stage.
func (e *Executor) resolveParamColumn(ds *dataset.Dataset, params map[string]interface{}) (string, error) {
	ref := paramString(params, "column", "column_name", "col", "target")
	if ref == "" {
		return "", fmt.Errorf("operation did not name a column (available: %s)", strings.Join(ds.Columns(), ", "))
	}
	if name, err := resolve.Column(ref, ds.Columns()); err == nil {
		return name, nil
	}
	if name, ok := resolve.ColumnByNameHint(ds.Columns(), strings.Fields(ref)...); ok {
		return name, nil
	}
	if name, err := resolve.ColumnByContent(ref, ds); err == nil {
		return name, nil
	}
	return "", fmt.Errorf("could not resolve column reference %q (available: %s)", ref, strings.Join(ds.Columns(), ", "))
}

// sniffSeparator inspects the first non-null text value for a common
// separator character.
func sniffSeparator(ds *dataset.Dataset, column string) string {
	col, err := ds.Column(column)
	if err != nil {
		return ""
	}
	for _, v := range col {
		if v.Kind() != dataset.KindText || strings.TrimSpace(v.String()) == "" {
			continue
		}
		for _, c := range charsToSniff {
			if strings.Contains(v.String(), c) {
				return c
			}
		}
		return ""
	}
	return ""
}

// ============================================================================
// FALLBACK VERBS
// ============================================================================

// removeDuplicates drops exact-duplicate rows, keeping the first occurrence.
func removeDuplicates(ds *dataset.Dataset) (opOutcome, error) {
	seen := make(map[string]bool, ds.RowCount())
	var keep []int
	for i := 0; i < ds.RowCount(); i++ {
		fp := ds.RowFingerprint(i)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		keep = append(keep, i)
	}
	removed := ds.RowCount() - len(keep)
	ds.RetainRows(keep)
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Removed %d duplicate rows", removed),
	}, nil
}

// fillMissing replaces nulls: numeric columns get 0, text columns get the
// empty string, unless an explicit value is supplied.
func fillMissing(ds *dataset.Dataset, value interface{}) (opOutcome, error) {
	filled := 0
	for _, name := range ds.Columns() {
		col, err := ds.Column(name)
		if err != nil {
			return opOutcome{}, err
		}
		fill := fillValueFor(col, value)
		changed := false
		for i, v := range col {
			if v.IsNull() {
				col[i] = fill
				filled++
				changed = true
			}
		}
		if changed {
			if err := ds.SetColumn(name, col); err != nil {
				return opOutcome{}, err
			}
		}
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Filled %d missing values", filled),
	}, nil
}

// fillValueFor picks the fill scalar for one column: the caller's explicit
// value if given, else 0 for predominantly numeric columns and "" otherwise.
func fillValueFor(col []dataset.Value, explicit interface{}) dataset.Value {
	if explicit != nil {
		return dataset.FromAny(explicit)
	}
	numeric, nonNull := 0, 0
	for _, v := range col {
		if v.IsNull() {
			continue
		}
		nonNull++
		if _, ok := v.Float(); ok {
			numeric++
		}
	}
	if nonNull > 0 && numeric*2 > nonNull {
		return dataset.Number(0)
	}
	return dataset.Text("")
}

// dropMissing removes every row containing at least one null.
func dropMissing(ds *dataset.Dataset) (opOutcome, error) {
	var keep []int
	for i := 0; i < ds.RowCount(); i++ {
		row, err := ds.Row(i)
		if err != nil {
			return opOutcome{}, err
		}
		hasNull := false
		for _, v := range row {
			if v.IsNull() {
				hasNull = true
				break
			}
		}
		if !hasNull {
			keep = append(keep, i)
		}
	}
	removed := ds.RowCount() - len(keep)
	ds.RetainRows(keep)
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Dropped %d rows with missing values", removed),
	}, nil
}

// ============================================================================
// PARAM HELPERS
// ============================================================================

// paramString returns the first present, non-empty string under any of the
// given keys. Non-string scalars are stringified.
func paramString(params map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		raw, ok := params[k]
		if !ok || raw == nil {
			continue
		}
		s := strings.TrimSpace(dataset.FromAny(raw).String())
		if s != "" {
			return s
		}
	}
	return ""
}

// paramBool interprets a param as a boolean; absent or unparseable is false.
func paramBool(params map[string]interface{}, key string) bool {
	raw, ok := params[key]
	if !ok {
		return false
	}
	switch x := raw.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	default:
		return false
	}
}
