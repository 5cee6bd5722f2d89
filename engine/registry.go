package engine

import (
	"fmt"
	"strings"

	"github.com/sheetwise-org/sheetwise/clean"
	"github.com/sheetwise-org/sheetwise/dataset"
	"github.com/sheetwise-org/sheetwise/formula"
	"github.com/sheetwise-org/sheetwise/plan"
	"github.com/sheetwise-org/sheetwise/resolve"
)

// ============================================================================
// INSTRUCTION REGISTRY — closed method vocabulary
// ============================================================================
// Execution instructions name a method plus args/kwargs. Dispatch is a
// compile-time map from method name to a typed handler; there is no
// reflection and no code evaluation. Unknown methods are skipped with a
// warning by the orchestrator. Namespace prefixes the planner likes to add
// ("df.", "dataset.") are stripped before lookup.
// ============================================================================

type instructionHandler func(e *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error)

var instructionRegistry = map[string]instructionHandler{
	"drop_duplicates":   handleDropDuplicates,
	"remove_duplicates": handleDropDuplicates,
	"fillna":            handleFillNA,
	"fill_missing":      handleFillNA,
	"dropna":            handleDropNA,
	"drop_missing":      handleDropNA,

	"sum":     aggregateHandler("sum", formula.Sum),
	"average": aggregateHandler("average", formula.Average),
	"mean":    aggregateHandler("average", formula.Average),
	"min":     aggregateHandler("min", formula.Min),
	"max":     aggregateHandler("max", formula.Max),
	"count":   aggregateHandler("count", formula.Count),
	"countif": handleCountIf,

	"vlookup": handleVLookup,
	"xlookup": handleXLookup,

	"left":     handleLeft,
	"right":    handleRight,
	"mid":      handleMid,
	"trim":     textHandler("trim", formula.Trim),
	"upper":    textHandler("upper", formula.Upper),
	"lower":    textHandler("lower", formula.Lower),
	"proper":   textHandler("proper", formula.Proper),
	"concat":   handleConcat,
	"textjoin": handleTextJoin,

	"year":    dateComponentHandler("year", formula.Year),
	"month":   dateComponentHandler("month", formula.Month),
	"day":     dateComponentHandler("day", formula.Day),
	"datedif": handleDateDif,

	"group_by_category": handleGroupBy,
	"group_by":          handleGroupBy,

	"clean_dates":               handleNormalizeDates,
	"normalize_dates":           handleNormalizeDates,
	"reformat_dates":            handleReformatDates,
	"clean_currency":            handleCleanCurrency,
	"split_column":              handleSplitColumn,
	"merge_columns":             handleMergeColumns,
	"replace":                   handleReplace,
	"find_replace":              handleReplace,
	"remove_special_characters": handleStripSpecial,
	"collapse_whitespace":       handleCollapseWhitespace,
	"normalize_case":            handleNormalizeCase,
}

// executeInstruction dispatches a method/args/kwargs triple through the
// registry. Inline code is rejected before lookup.
func (e *Executor) executeInstruction(ds *dataset.Dataset, ins *plan.Instruction) (opOutcome, error) {
	if ins.Code != "" {
		return opOutcome{}, fmt.Errorf("inline code execution is not supported; use a named method instead")
	}
	method := normalizeMethod(ins.Method)
	handler, ok := instructionRegistry[method]
	if !ok {
		return opOutcome{}, fmt.Errorf("unknown method %q", ins.Method)
	}
	call := &instructionCall{args: ins.Args, kwargs: ins.Kwargs}
	return handler(e, ds, call)
}

// normalizeMethod lowercases and strips planner namespace prefixes.
func normalizeMethod(method string) string {
	m := strings.ToLower(strings.TrimSpace(method))
	if i := strings.LastIndex(m, "."); i >= 0 {
		m = m[i+1:]
	}
	return m
}

// ============================================================================
// CALL ARGUMENTS
// ============================================================================

// instructionCall resolves arguments by kwarg name first, then position.
type instructionCall struct {
	args   []interface{}
	kwargs map[string]interface{}
}

// raw finds an argument under any of the kwarg names, falling back to the
// positional index.
func (c *instructionCall) raw(pos int, names ...string) (interface{}, bool) {
	for _, n := range names {
		if v, ok := c.kwargs[n]; ok && v != nil {
			return v, true
		}
	}
	if pos >= 0 && pos < len(c.args) && c.args[pos] != nil {
		return c.args[pos], true
	}
	return nil, false
}

func (c *instructionCall) str(pos int, names ...string) string {
	v, ok := c.raw(pos, names...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(dataset.FromAny(v).String())
}

func (c *instructionCall) value(pos int, names ...string) (dataset.Value, bool) {
	v, ok := c.raw(pos, names...)
	if !ok {
		return dataset.Null(), false
	}
	return dataset.FromAny(v), true
}

func (c *instructionCall) integer(pos int, def int, names ...string) int {
	v, ok := c.raw(pos, names...)
	if !ok {
		return def
	}
	if f, isNum := dataset.FromAny(v).Float(); isNum {
		return int(f)
	}
	return def
}

func (c *instructionCall) boolean(pos int, def bool, names ...string) bool {
	v, ok := c.raw(pos, names...)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	default:
		return def
	}
}

// strs reads a list-of-strings argument, tolerating a single string or a
// comma-separated list.
func (c *instructionCall) strs(pos int, names ...string) []string {
	v, ok := c.raw(pos, names...)
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := strings.TrimSpace(dataset.FromAny(item).String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return x
	case string:
		parts := strings.Split(x, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// column resolves a column reference argument against the dataset.
func (c *instructionCall) column(ds *dataset.Dataset, pos int, names ...string) (string, error) {
	ref := c.str(pos, names...)
	if ref == "" {
		return "", fmt.Errorf("missing column argument (available: %s)", strings.Join(ds.Columns(), ", "))
	}
	name, err := resolve.Column(ref, ds.Columns())
	if err != nil {
		return "", fmt.Errorf("could not resolve column reference %q (available: %s)", ref, strings.Join(ds.Columns(), ", "))
	}
	return name, nil
}

// columns resolves a list of column references.
func (c *instructionCall) columns(ds *dataset.Dataset, pos int, names ...string) ([]string, error) {
	refs := c.strs(pos, names...)
	if len(refs) == 0 {
		return nil, fmt.Errorf("missing columns argument (available: %s)", strings.Join(ds.Columns(), ", "))
	}
	out := make([]string, len(refs))
	for i, ref := range refs {
		name, err := resolve.Column(ref, ds.Columns())
		if err != nil {
			return nil, fmt.Errorf("could not resolve column reference %q (available: %s)", ref, strings.Join(ds.Columns(), ", "))
		}
		out[i] = name
	}
	return out, nil
}

// ============================================================================
// HANDLERS
// ============================================================================

func handleDropDuplicates(_ *Executor, ds *dataset.Dataset, _ *instructionCall) (opOutcome, error) {
	return removeDuplicates(ds)
}

func handleFillNA(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	raw, _ := call.raw(0, "value", "fill_value")
	return fillMissing(ds, raw)
}

func handleDropNA(_ *Executor, ds *dataset.Dataset, _ *instructionCall) (opOutcome, error) {
	return dropMissing(ds)
}

// aggregateHandler adapts a scalar aggregate to the registry signature.
func aggregateHandler(name string, fn func(*dataset.Dataset, string) (float64, error)) instructionHandler {
	return func(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
		column, err := call.column(ds, 0, "column", "column_name")
		if err != nil {
			return opOutcome{}, err
		}
		result, err := fn(ds, column)
		if err != nil {
			return opOutcome{}, err
		}
		return opOutcome{
			ds:      ds,
			summary: fmt.Sprintf("Computed %s of '%s': %s", name, column, dataset.Number(result).String()),
			scalar:  result,
			columns: []string{column},
		}, nil
	}
}

func handleCountIf(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	op := call.str(1, "operator", "op", "condition")
	if op == "" {
		op = "=="
	}
	target, ok := call.value(2, "value", "target")
	if !ok {
		return opOutcome{}, fmt.Errorf("countif on %q needs a comparison value", column)
	}
	result, err := formula.CountIf(ds, column, op, target)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("COUNTIF on '%s' (%s %s): %s", column, op, target.String(), dataset.Number(result).String()),
		scalar:  result,
		columns: []string{column},
	}, nil
}

func handleVLookup(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	lookupValue, ok := call.value(0, "lookup_value", "value")
	if !ok {
		return opOutcome{}, fmt.Errorf("vlookup needs a lookup value")
	}
	lookupColumn, err := call.column(ds, 1, "lookup_column", "column")
	if err != nil {
		return opOutcome{}, err
	}
	returnColumn, err := call.column(ds, 2, "return_column", "result_column")
	if err != nil {
		return opOutcome{}, err
	}
	exact := call.boolean(3, true, "exact_match", "exact")
	result, err := formula.VLookup(ds, lookupColumn, lookupValue, returnColumn, exact)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("VLOOKUP %q in '%s' → '%s': %s", lookupValue.String(), lookupColumn, returnColumn, result.String()),
		scalar:  result.Interface(),
		columns: []string{lookupColumn, returnColumn},
	}, nil
}

func handleXLookup(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	lookupValue, ok := call.value(0, "lookup_value", "value")
	if !ok {
		return opOutcome{}, fmt.Errorf("xlookup needs a lookup value")
	}
	lookupColumn, err := call.column(ds, 1, "lookup_column", "column")
	if err != nil {
		return opOutcome{}, err
	}
	returnColumn, err := call.column(ds, 2, "return_column", "result_column")
	if err != nil {
		return opOutcome{}, err
	}
	notFound, _ := call.value(3, "not_found", "default")
	result, err := formula.XLookup(ds, lookupColumn, lookupValue, returnColumn, notFound)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("XLOOKUP %q in '%s' → '%s': %s", lookupValue.String(), lookupColumn, returnColumn, result.String()),
		scalar:  result.Interface(),
		columns: []string{lookupColumn, returnColumn},
	}, nil
}

func handleLeft(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	n := call.integer(1, 1, "num_chars", "n", "length")
	if err := formula.Left(ds, column, n); err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Kept the first %d characters of column '%s'", n, column),
		columns: []string{column},
	}, nil
}

func handleRight(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	n := call.integer(1, 1, "num_chars", "n", "length")
	if err := formula.Right(ds, column, n); err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Kept the last %d characters of column '%s'", n, column),
		columns: []string{column},
	}, nil
}

func handleMid(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	start := call.integer(1, 1, "start", "start_num")
	length := call.integer(2, 1, "length", "num_chars")
	if err := formula.Mid(ds, column, start, length); err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Extracted %d characters from position %d of column '%s'", length, start, column),
		columns: []string{column},
	}, nil
}

// textHandler adapts an in-place per-row text transform.
func textHandler(name string, fn func(*dataset.Dataset, string) error) instructionHandler {
	return func(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
		column, err := call.column(ds, 0, "column", "column_name")
		if err != nil {
			return opOutcome{}, err
		}
		if err := fn(ds, column); err != nil {
			return opOutcome{}, err
		}
		return opOutcome{
			ds:      ds,
			summary: fmt.Sprintf("Applied %s to column '%s'", name, column),
			columns: []string{column},
		}, nil
	}
}

func handleConcat(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	columns, err := call.columns(ds, 0, "columns")
	if err != nil {
		return opOutcome{}, err
	}
	separator := call.str(1, "separator", "sep")
	newColumn, err := formula.Concat(ds, columns, separator)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Concatenated %s into new column '%s'", strings.Join(columns, ", "), newColumn),
		columns: append(columns, newColumn),
	}, nil
}

func handleTextJoin(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	columns, err := call.columns(ds, 1, "columns")
	if err != nil {
		return opOutcome{}, err
	}
	delimiter := call.str(0, "delimiter", "separator")
	ignoreEmpty := call.boolean(2, true, "ignore_empty")
	newColumn, err := formula.TextJoin(ds, columns, delimiter, ignoreEmpty)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Joined %s into new column '%s'", strings.Join(columns, ", "), newColumn),
		columns: append(columns, newColumn),
	}, nil
}

// dateComponentHandler adapts a date-part extraction that adds a new column.
func dateComponentHandler(name string, fn func(*dataset.Dataset, string) (string, error)) instructionHandler {
	return func(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
		column, err := call.column(ds, 0, "column", "column_name")
		if err != nil {
			return opOutcome{}, err
		}
		newColumn, err := fn(ds, column)
		if err != nil {
			return opOutcome{}, err
		}
		return opOutcome{
			ds:      ds,
			summary: fmt.Sprintf("Extracted %s from '%s' into new column '%s'", name, column, newColumn),
			columns: []string{column, newColumn},
		}, nil
	}
}

func handleDateDif(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	startColumn, err := call.column(ds, 0, "start_column", "start_date")
	if err != nil {
		return opOutcome{}, err
	}
	endColumn, err := call.column(ds, 1, "end_column", "end_date")
	if err != nil {
		return opOutcome{}, err
	}
	unit := call.str(2, "unit")
	if unit == "" {
		unit = "d"
	}
	newColumn, err := formula.DateDif(ds, startColumn, endColumn, unit)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Computed date difference '%s' - '%s' into new column '%s'", endColumn, startColumn, newColumn),
		columns: []string{startColumn, endColumn, newColumn},
	}, nil
}

func handleGroupBy(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	groupColumn, err := call.column(ds, 0, "group_column", "group_by", "column")
	if err != nil {
		return opOutcome{}, err
	}
	valueColumn, err := call.column(ds, 1, "value_column", "target_column")
	if err != nil {
		return opOutcome{}, err
	}
	aggregation := call.str(2, "aggregation", "agg")
	if aggregation == "" {
		aggregation = "sum"
	}
	grouped, err := formula.GroupByCategory(ds, groupColumn, valueColumn, aggregation)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      grouped,
		summary: fmt.Sprintf("Grouped by '%s' (%s of '%s'): %d groups", groupColumn, aggregation, valueColumn, grouped.RowCount()),
		columns: []string{groupColumn, valueColumn},
	}, nil
}

func handleNormalizeDates(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	changed, err := clean.NormalizeDates(ds, column)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Normalized %d dates in column '%s'", changed, column),
		columns: []string{column},
	}, nil
}

func handleReformatDates(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	layout := call.str(1, "format", "layout")
	if layout == "" {
		layout = "2006-01-02"
	}
	changed, err := clean.ReformatDates(ds, column, layout)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Reformatted %d dates in column '%s'", changed, column),
		columns: []string{column},
	}, nil
}

func handleCleanCurrency(e *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	precision := call.integer(1, e.cfg.CurrencyDecimals, "decimals", "precision")
	changed, err := clean.CleanCurrency(ds, column, precision)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Cleaned %d currency values in column '%s'", changed, column),
		columns: []string{column},
	}, nil
}

func handleSplitColumn(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	separator := call.str(1, "separator", "sep", "delimiter")
	if separator == "" {
		separator = ","
	}
	created, err := clean.SplitColumn(ds, column, separator)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Split column '%s' on %q into %s", column, separator, strings.Join(created, ", ")),
		columns: append([]string{column}, created...),
	}, nil
}

func handleMergeColumns(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	columns, err := call.columns(ds, 0, "columns")
	if err != nil {
		return opOutcome{}, err
	}
	separator := call.str(1, "separator", "sep")
	newName := call.str(2, "new_name", "name")
	dropOriginals := call.boolean(3, false, "drop_originals")
	merged, err := clean.MergeColumns(ds, columns, separator, newName, dropOriginals)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Merged %s into column '%s'", strings.Join(columns, ", "), merged),
		columns: append(columns, merged),
	}, nil
}

func handleReplace(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	find := call.str(1, "find", "old_value", "to_replace")
	if find == "" {
		return opOutcome{}, fmt.Errorf("replace on %q needs a value to find", column)
	}
	replacement := call.str(2, "replace", "new_value")
	caseSensitive := call.boolean(3, false, "case_sensitive")
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

func handleStripSpecial(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	keep := call.str(1, "keep", "keep_characters")
	changed, err := clean.StripSpecialChars(ds, column, keep)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Stripped special characters from %d values in column '%s'", changed, column),
		columns: []string{column},
	}, nil
}

func handleCollapseWhitespace(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	changed, err := clean.CollapseWhitespace(ds, column)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Collapsed whitespace in %d values in column '%s'", changed, column),
		columns: []string{column},
	}, nil
}

func handleNormalizeCase(_ *Executor, ds *dataset.Dataset, call *instructionCall) (opOutcome, error) {
	column, err := call.column(ds, 0, "column", "column_name")
	if err != nil {
		return opOutcome{}, err
	}
	mode := call.str(1, "mode", "case")
	if mode == "" {
		mode = "lower"
	}
	changed, err := clean.NormalizeCase(ds, column, mode)
	if err != nil {
		return opOutcome{}, err
	}
	return opOutcome{
		ds:      ds,
		summary: fmt.Sprintf("Normalized case (%s) in %d values in column '%s'", mode, changed, column),
		columns: []string{column},
	}, nil
}
