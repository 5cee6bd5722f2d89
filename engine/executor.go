package engine

import (
	"fmt"
	"log"
	"strings"

	"github.com/sheetwise-org/sheetwise/dataset"
	"github.com/sheetwise-org/sheetwise/format"
	"github.com/sheetwise-org/sheetwise/plan"
	"github.com/sheetwise-org/sheetwise/resolve"
	"github.com/sheetwise-org/sheetwise/trace"
)

// ============================================================================
// ACTION-PLAN EXECUTOR — one request's full lifecycle
// ============================================================================
// Entry point: New(opts...).Run(dataset, plan)
//
// Pipeline:
//   1. Resolve chart column references → chart selections for the renderer
//   2. Run operations in order, folding the dataset forward; capture the
//      first scalar as the plan's formula result
//   3. Apply single-shot directives on the post-operations dataset
//   4. Assemble the result bundle (rows + summary + trace report)
//
// A malformed operation or directive becomes a summary line, never a request
// failure. The dataset is exclusively owned by the executor for the duration
// of one Run; callers keep a Clone if they need the pre-plan state.
// ============================================================================

// Executor runs action plans. One Executor may serve many requests; each Run
// resets the tracer and formatting store.
type Executor struct {
	cfg     *config
	tracer  *trace.Tracer
	formats *format.Store
	final   *dataset.Dataset
}

// New builds an executor.
//
// Options:
//   - WithCleaningKeywords(...) — prompt keywords triggering default cleaning
//   - WithHighlightVerbs(...)   — prompt verbs triggering highlight synthesis
//   - WithColorWords(...)       — color word → hex mapping for highlights
func New(opts ...Option) *Executor {
	return &Executor{
		cfg:     applyOptions(opts),
		tracer:  trace.New(),
		formats: format.NewStore(),
	}
}

// Formats returns the formatting rules accumulated by the last Run, for the
// writer to resolve against final cell values.
func (e *Executor) Formats() *format.Store { return e.formats }

// Dataset returns the final dataset produced by the last Run. Operations like
// group_by_category replace the table outright, so callers persisting output
// must use this rather than the pointer they passed in.
func (e *Executor) Dataset() *dataset.Dataset { return e.final }

// Run executes one plan against the dataset, mutating it in place, and
// returns the result bundle.
func (e *Executor) Run(ds *dataset.Dataset, p *plan.Plan) (*plan.Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("no dataset loaded")
	}
	e.tracer.Reset()
	e.formats = format.NewStore()
	e.tracer.Begin(ds.RowCount(), ds.ColumnCount())

	log.Printf("🔧 Sheetwise: executing plan %q: %d operations, %d rows × %d columns",
		p.Task, len(p.Operations), ds.RowCount(), ds.ColumnCount())

	var summary []string
	var formulaResult interface{}

	// 1. Chart column resolution, before any mutation.
	selections, chartLines := e.resolveCharts(ds, p)
	summary = append(summary, chartLines...)

	// 2. Operations, in order.
	ds, summary, formulaResult = e.runOperations(ds, p, summary)

	// 3. Single-shot directives on the post-operations dataset.
	ds, summary, formulaResult = e.runDirectives(ds, p, summary, formulaResult)

	// 4. Result bundle.
	e.final = ds
	e.tracer.Finish(ds.RowCount(), ds.ColumnCount())
	result := &plan.Result{
		DatasetRows:   ds.Records(),
		Columns:       ds.Columns(),
		RowCount:      ds.RowCount(),
		Summary:       summary,
		FormulaResult: formulaResult,
		TraceReport:   e.tracer.Report(),
	}
	if len(selections) > 0 {
		result.ChartSelection = &selections[0]
		result.ChartSelections = selections
	}
	return result, nil
}

// ============================================================================
// OPERATIONS
// ============================================================================

// runOperations folds the dataset through every operation. One failed
// operation is logged and skipped — except when it was the plan's only
// operation and the prompt implies cleaning, in which case the default
// cleaning sequence substitutes for it.
func (e *Executor) runOperations(ds *dataset.Dataset, p *plan.Plan, summary []string) (*dataset.Dataset, []string, interface{}) {
	var formulaResult interface{}
	succeeded := 0

	for i, op := range p.Operations {
		rowsBefore := ds.RowCount()
		out, err := e.executeOperation(ds, op)
		if err != nil {
			label := op.Type
			if label == "" && op.Instruction != nil {
				label = op.Instruction.Method
			}
			log.Printf("🔧 Sheetwise: operation %d (%s) failed: %v", i+1, label, err)
			summary = append(summary, fmt.Sprintf("Error in operation %d (%s): %v", i+1, label, err))
			continue
		}
		succeeded++
		ds = out.ds
		summary = append(summary, out.summary)
		formulaResult = firstScalar(formulaResult, out.scalar)
		e.tracer.Record(operationLabel(op), ds.RowCount()-rowsBefore, out.columns...)
	}

	// Dual path: if nothing explicit succeeded and the user asked for a
	// generic clean, run the default sequence instead.
	if succeeded == 0 && e.wantsCleaning(p.UserPrompt) {
		summary = append(summary, e.defaultCleaning(ds)...)
	}
	return ds, summary, formulaResult
}

// operationLabel names an operation for the trace history.
func operationLabel(op plan.Operation) string {
	if op.Type != "" {
		return op.Type
	}
	if op.Instruction != nil && op.Instruction.Method != "" {
		return op.Instruction.Method
	}
	return "unknown"
}

// ============================================================================
// DIRECTIVES
// ============================================================================

// runDirectives applies the plan's optional single-shot directives.
func (e *Executor) runDirectives(ds *dataset.Dataset, p *plan.Plan, summary []string, formulaResult interface{}) (*dataset.Dataset, []string, interface{}) {
	report := func(line string, err error) {
		if err != nil {
			log.Printf("🔧 Sheetwise: directive failed: %v", err)
			summary = append(summary, fmt.Sprintf("Error: %v", err))
			return
		}
		summary = append(summary, line)
	}

	if p.AddRow != nil {
		report(e.applyAddRow(ds, p.AddRow))
	}
	if p.AddColumn != nil {
		report(e.applyAddColumn(ds, p.AddColumn))
	}
	if p.DeleteColumn != nil {
		report(e.applyDeleteColumn(ds, p.DeleteColumn, p.UserPrompt))
	}
	if p.EditCell != nil {
		report(e.applyEditCell(ds, p.EditCell))
	}
	if p.ClearCell != nil {
		report(e.applyClearCell(ds, p.ClearCell))
	}
	if p.AutoFill != nil {
		report(e.applyAutoFill(ds, p.AutoFill))
	}
	if p.Sort != nil {
		report(e.applySort(ds, p.Sort))
	}
	if p.Formula != nil {
		out, line, scalar, err := e.applyFormula(ds, p.Formula)
		if err != nil {
			log.Printf("🔧 Sheetwise: directive failed: %v", err)
			summary = append(summary, fmt.Sprintf("Error: %v", err))
		} else {
			ds = out
			summary = append(summary, line)
			formulaResult = firstScalar(formulaResult, scalar)
		}
	}
	if p.Format != nil {
		summary = append(summary, e.applyFormat(ds, p.Format))
	}
	if p.ConditionalFormat != nil {
		report(e.applyConditionalFormat(ds, p.ConditionalFormat))
	} else if line, ok := e.synthesizeConditionalFormat(ds, p.UserPrompt); ok {
		summary = append(summary, line)
	}

	return ds, summary, formulaResult
}

// ============================================================================
// CHARTS
// ============================================================================

// resolveCharts maps chart configs to concrete column selections for the
// external renderer. Per-chart failures are reported, not fatal.
func (e *Executor) resolveCharts(ds *dataset.Dataset, p *plan.Plan) ([]plan.ChartSelection, []string) {
	var selections []plan.ChartSelection
	var lines []string

	for _, cfg := range p.ChartConfigs {
		sel, err := e.resolveChart(ds, cfg)
		if err != nil {
			log.Printf("📊 Sheetwise: chart skipped: %v", err)
			lines = append(lines, fmt.Sprintf("Chart skipped: %v", err))
			continue
		}
		selections = append(selections, sel)
		label := sel.YColumn
		if label == "" {
			label = "row counts"
		}
		lines = append(lines, fmt.Sprintf("Prepared %s chart of %s by %s", sel.ChartType, label, sel.XColumn))
	}
	return selections, lines
}

// resolveChart resolves one chart config's column references.
func (e *Executor) resolveChart(ds *dataset.Dataset, cfg plan.ChartConfig) (plan.ChartSelection, error) {
	if cfg.XColumn == "" {
		return plan.ChartSelection{}, fmt.Errorf("%s chart has no x column (available: %s)", cfg.ChartType, strings.Join(ds.Columns(), ", "))
	}
	x, err := resolve.Column(cfg.XColumn, ds.Columns())
	if err != nil {
		return plan.ChartSelection{}, fmt.Errorf("could not resolve chart x column %q (available: %s)", cfg.XColumn, strings.Join(ds.Columns(), ", "))
	}
	sel := plan.ChartSelection{
		XColumn:   x,
		ChartType: cfg.ChartType,
		Title:     cfg.Title,
	}
	e.tracer.Touch(x)
	if cfg.YColumn != "" {
		y, err := resolve.Column(cfg.YColumn, ds.Columns())
		if err != nil {
			return plan.ChartSelection{}, fmt.Errorf("could not resolve chart y column %q (available: %s)", cfg.YColumn, strings.Join(ds.Columns(), ", "))
		}
		sel.YColumn = y
		e.tracer.Touch(y)
	}
	return sel, nil
}
