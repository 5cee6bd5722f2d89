package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sheetwise-org/sheetwise/dataset"
	"github.com/sheetwise-org/sheetwise/format"
	"github.com/sheetwise-org/sheetwise/plan"
	"github.com/sheetwise-org/sheetwise/resolve"
)

// ============================================================================
// SINGLE-SHOT DIRECTIVES
// ============================================================================
// Each directive is a dedicated routine operating on the post-operations
// dataset. Failures are summary lines, never request failures.
// ============================================================================

// applyAddRow inserts a row at the directive position.
func (e *Executor) applyAddRow(ds *dataset.Dataset, d *plan.AddRow) (string, error) {
	if err := ds.InsertRow(d.Position, d.Data); err != nil {
		return "", err
	}
	e.tracer.Record("add_row", 1)
	return fmt.Sprintf("Added a row at position %d", d.Position), nil
}

// applyAddColumn inserts a column with a default value.
func (e *Executor) applyAddColumn(ds *dataset.Dataset, d *plan.AddColumn) (string, error) {
	if d.Name == "" {
		return "", fmt.Errorf("add_column directive has no column name")
	}
	if err := ds.AddColumn(d.Name, d.Position, dataset.FromAny(d.DefaultValue)); err != nil {
		return "", err
	}
	e.tracer.Record("add_column", 0, d.Name)
	return fmt.Sprintf("Added column '%s'", d.Name), nil
}

// applyDeleteColumn removes a column, resolving by name, then by index, then
// by searching column contents for the reference phrase.
func (e *Executor) applyDeleteColumn(ds *dataset.Dataset, d *plan.DeleteColumn, prompt string) (string, error) {
	name, err := e.resolveDeleteTarget(ds, d, prompt)
	if err != nil {
		return "", err
	}
	if err := ds.DeleteColumn(name); err != nil {
		return "", err
	}
	e.tracer.Record("delete_column", 0, name)
	return fmt.Sprintf("Deleted column '%s'", name), nil
}

func (e *Executor) resolveDeleteTarget(ds *dataset.Dataset, d *plan.DeleteColumn, prompt string) (string, error) {
	if d.ColumnIndex != nil {
		cols := ds.Columns()
		if *d.ColumnIndex < 0 || *d.ColumnIndex >= len(cols) {
			return "", fmt.Errorf("column index %d out of range (0-%d)", *d.ColumnIndex, len(cols)-1)
		}
		return cols[*d.ColumnIndex], nil
	}
	if d.ColumnName == "" {
		return "", fmt.Errorf("delete_column directive has neither a name nor an index")
	}
	if name, err := resolve.Column(d.ColumnName, ds.Columns()); err == nil {
		return name, nil
	}
	// No column name matched — search column contents for the reference, then
	// for any quoted phrase in the original prompt.
	if name, err := resolve.ColumnByContent(d.ColumnName, ds); err == nil {
		return name, nil
	}
	if phrase := quotedPhrase(prompt); phrase != "" {
		if name, err := resolve.ColumnByContent(phrase, ds); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("could not resolve column reference %q (available: %s)", d.ColumnName, strings.Join(ds.Columns(), ", "))
}

// applyEditCell writes a value at a zero-based row index, bounds-checked.
func (e *Executor) applyEditCell(ds *dataset.Dataset, d *plan.EditCell) (string, error) {
	name, err := resolve.Column(d.ColumnName, ds.Columns())
	if err != nil {
		return "", fmt.Errorf("could not resolve column reference %q (available: %s)", d.ColumnName, strings.Join(ds.Columns(), ", "))
	}
	if err := ds.SetCell(d.RowIndex, name, dataset.FromAny(d.Value)); err != nil {
		return "", err
	}
	e.tracer.Record("edit_cell", 0, name)
	return fmt.Sprintf("Set %s[%d] to %q", name, d.RowIndex, dataset.FromAny(d.Value).String()), nil
}

// applyClearCell nulls a cell, bounds-checked.
func (e *Executor) applyClearCell(ds *dataset.Dataset, d *plan.ClearCell) (string, error) {
	name, err := resolve.Column(d.ColumnName, ds.Columns())
	if err != nil {
		return "", fmt.Errorf("could not resolve column reference %q (available: %s)", d.ColumnName, strings.Join(ds.Columns(), ", "))
	}
	if err := ds.SetCell(d.RowIndex, name, dataset.Null()); err != nil {
		return "", err
	}
	e.tracer.Record("clear_cell", 0, name)
	return fmt.Sprintf("Cleared %s[%d]", name, d.RowIndex), nil
}

// applyAutoFill fills a column either by propagating the last non-null value
// downward ("down") or by filling nulls with a fixed value ("value").
func (e *Executor) applyAutoFill(ds *dataset.Dataset, d *plan.AutoFill) (string, error) {
	name, err := resolve.Column(d.ColumnName, ds.Columns())
	if err != nil {
		return "", fmt.Errorf("could not resolve column reference %q (available: %s)", d.ColumnName, strings.Join(ds.Columns(), ", "))
	}
	col, err := ds.Column(name)
	if err != nil {
		return "", err
	}

	filled := 0
	switch strings.ToLower(d.Method) {
	case "", "down":
		last := dataset.Null()
		for i, v := range col {
			if v.IsNull() {
				if !last.IsNull() {
					col[i] = last
					filled++
				}
				continue
			}
			last = v
		}
	case "value":
		fill := dataset.FromAny(d.Value)
		for i, v := range col {
			if v.IsNull() {
				col[i] = fill
				filled++
			}
		}
	default:
		return "", fmt.Errorf("unknown auto_fill method %q (want down or value)", d.Method)
	}

	if err := ds.SetColumn(name, col); err != nil {
		return "", err
	}
	e.tracer.Record("auto_fill", 0, name)
	return fmt.Sprintf("Auto-filled %d values in column '%s'", filled, name), nil
}

// applyFormat records a static formatting rule for the writer.
func (e *Executor) applyFormat(ds *dataset.Dataset, d *plan.Format) string {
	rule := format.StaticRule{
		Style: format.Style{
			Bold:      d.Bold,
			Italic:    d.Italic,
			TextColor: d.TextColor,
			BgColor:   d.BgColor,
			Align:     d.Align,
			Border:    d.Border,
		},
	}
	if d.Range != nil {
		if d.Range.Column != "" {
			if name, err := resolve.Column(d.Range.Column, ds.Columns()); err == nil {
				rule.Column = name
				e.tracer.Touch(name)
			} else {
				rule.Column = d.Range.Column
			}
		}
		rule.Row = d.Range.Row
		rule.Cell = d.Range.Cell
		rule.Cells = d.Range.Cells
	}
	before := e.formats.Len()
	e.formats.AddStatic(rule)
	if e.formats.Len() == before {
		return "Skipped an incomplete formatting rule"
	}
	return "Recorded a formatting rule"
}

// ============================================================================
// CONDITIONAL FORMATTING
// ============================================================================

// applyConditionalFormat records the planner's conditional rule, resolving
// its column reference first.
func (e *Executor) applyConditionalFormat(ds *dataset.Dataset, d *plan.ConditionalFormat) (string, error) {
	column := paramString(d.Config, "column", "column_name")
	if column != "" {
		if name, err := resolve.Column(column, ds.Columns()); err == nil {
			column = name
		}
	}
	if column == "" {
		return "", fmt.Errorf("conditional format (%s) has no target column", d.FormatType)
	}

	rule := format.ConditionalRule{
		Column:    column,
		Predicate: format.Predicate(d.FormatType),
		Text:      paramString(d.Config, "text", "value"),
		Style:     styleFromConfig(d.Config),
	}
	if f, ok := dataset.FromAny(d.Config["threshold"]).Float(); ok {
		rule.Threshold = f
	} else if f, ok := dataset.FromAny(d.Config["value"]).Float(); ok {
		rule.Threshold = f
	}
	if f, ok := dataset.FromAny(d.Config["min"]).Float(); ok {
		rule.Lower = f
	}
	if f, ok := dataset.FromAny(d.Config["max"]).Float(); ok {
		rule.Upper = f
	}

	before := e.formats.Len()
	e.formats.AddConditional(rule)
	if e.formats.Len() == before {
		return "", fmt.Errorf("conditional format rule (%s on %q) was invalid", d.FormatType, column)
	}
	e.tracer.Record("conditional_format", 0, column)
	return fmt.Sprintf("Recorded %s highlighting on column '%s'", d.FormatType, column), nil
}

// styleFromConfig reads an optional style payload out of the rule config.
func styleFromConfig(config map[string]interface{}) format.Style {
	style := format.Style{
		BgColor:   paramString(config, "bg_color", "background_color", "color"),
		TextColor: paramString(config, "text_color", "font_color"),
	}
	style.Bold = paramBool(config, "bold")
	style.Italic = paramBool(config, "italic")
	return style
}

var (
	doubleQuoted = regexp.MustCompile(`"([^"]+)"`)
	singleQuoted = regexp.MustCompile(`'([^']+)'`)
)

// quotedPhrase extracts the first quoted literal from the prompt.
func quotedPhrase(prompt string) string {
	if m := doubleQuoted.FindStringSubmatch(prompt); m != nil {
		return m[1]
	}
	if m := singleQuoted.FindStringSubmatch(prompt); m != nil {
		return m[1]
	}
	return ""
}

// synthesizeConditionalFormat builds a contains_text rule from the literal
// prompt when the planner omitted a payload but the user clearly asked for
// highlighting: the target literal comes from a quoted phrase (else the last
// word), the column from name inference then content search, and the color
// from any configured color word (amber if none).
func (e *Executor) synthesizeConditionalFormat(ds *dataset.Dataset, prompt string) (string, bool) {
	p := strings.ToLower(prompt)
	hasVerb := false
	for _, verb := range e.cfg.HighlightVerbs {
		if strings.Contains(p, strings.ToLower(verb)) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return "", false
	}

	literal := quotedPhrase(prompt)
	if literal == "" {
		words := strings.Fields(strings.Trim(prompt, " .!?"))
		if len(words) == 0 {
			return "", false
		}
		literal = words[len(words)-1]
	}

	column := ""
	if name, ok := resolve.ColumnByNameHint(ds.Columns(), strings.Fields(p)...); ok {
		column = name
	} else if name, err := resolve.ColumnByContent(literal, ds); err == nil {
		column = name
	}
	if column == "" {
		return "", false
	}

	// Color words are matched in sorted order so a prompt naming several
	// colors always picks the same one.
	color := format.DefaultHighlight
	words := make([]string, 0, len(e.cfg.ColorWords))
	for word := range e.cfg.ColorWords {
		words = append(words, word)
	}
	sort.Strings(words)
	for _, word := range words {
		if strings.Contains(p, word) {
			color = e.cfg.ColorWords[word]
			break
		}
	}

	e.formats.AddConditional(format.ConditionalRule{
		Column:    column,
		Predicate: format.PredicateContainsText,
		Text:      literal,
		Style:     format.Style{BgColor: color},
	})
	e.tracer.Record("conditional_format", 0, column)
	return fmt.Sprintf("Recorded highlighting of %q in column '%s'", literal, column), true
}

// ============================================================================
// FORMULA DIRECTIVE
// ============================================================================

// applyFormula evaluates the plan's standalone formula. Scalar formulas set
// the plan's formula result; transforms mutate the dataset.
func (e *Executor) applyFormula(ds *dataset.Dataset, d *plan.Formula) (*dataset.Dataset, string, interface{}, error) {
	ins := &plan.Instruction{
		Method: d.Type,
		Kwargs: map[string]interface{}{},
	}
	for k, v := range d.Params {
		ins.Kwargs[k] = v
	}
	if d.Column != "" {
		ins.Kwargs["column"] = d.Column
	}
	if len(d.Columns) > 0 {
		cols := make([]interface{}, len(d.Columns))
		for i, c := range d.Columns {
			cols[i] = c
		}
		ins.Kwargs["columns"] = cols
	}

	out, err := e.executeInstruction(ds, ins)
	if err != nil {
		return ds, "", nil, fmt.Errorf("formula %q: %w", d.Type, err)
	}
	e.tracer.Record("formula_"+strings.ToLower(d.Type), 0, out.columns...)
	return out.ds, out.summary, out.scalar, nil
}

// firstScalar keeps the first non-nil scalar produced during the plan.
func firstScalar(current, candidate interface{}) interface{} {
	if current != nil {
		return current
	}
	return candidate
}
