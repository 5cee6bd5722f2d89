// Package writer persists a final dataset to CSV or XLSX. Static formatting
// rules are painted onto their fixed targets; conditional rules are resolved
// against final cell values here, at write time, because earlier row edits
// would have invalidated any precomputed coordinates.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sheetwise-org/sheetwise/dataset"
	"github.com/sheetwise-org/sheetwise/format"
)

// ============================================================================
// WRITER
// ============================================================================

const sheetName = "Sheet1"

// WriteCSV renders the dataset as comma-separated text with a header row.
func WriteCSV(ds *dataset.Dataset, w io.Writer) error {
	out := csv.NewWriter(w)
	if err := out.Write(ds.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	columns := ds.Columns()
	for i := 0; i < ds.RowCount(); i++ {
		record := make([]string, len(columns))
		for ci, c := range columns {
			v, err := ds.Cell(i, c)
			if err != nil {
				return err
			}
			record[ci] = v.String()
		}
		if err := out.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	out.Flush()
	return out.Error()
}

// WriteXLSX builds a workbook from the dataset and applies the accumulated
// formatting rules. A nil store writes plain data.
func WriteXLSX(ds *dataset.Dataset, store *format.Store) (*excelize.File, error) {
	f := excelize.NewFile()
	columns := ds.Columns()

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < ds.RowCount(); i++ {
		row := make([]interface{}, len(columns))
		for ci, c := range columns {
			v, err := ds.Cell(i, c)
			if err != nil {
				return nil, err
			}
			row[ci] = v.Interface()
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if store != nil {
		if err := applyStatic(f, ds, store.Static()); err != nil {
			return nil, err
		}
		if err := applyConditional(f, ds, store.Conditional()); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Save writes the workbook to disk.
func Save(ds *dataset.Dataset, store *format.Store, path string) error {
	f, err := WriteXLSX(ds, store)
	if err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// ============================================================================
// STATIC RULES
// ============================================================================

// applyStatic paints each static rule's fixed target.
func applyStatic(f *excelize.File, ds *dataset.Dataset, rules []format.StaticRule) error {
	for _, rule := range rules {
		styleID, err := f.NewStyle(toExcelStyle(rule.Style))
		if err != nil {
			return fmt.Errorf("failed to build style: %w", err)
		}
		for _, cell := range staticTargets(ds, rule) {
			if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
				return fmt.Errorf("failed to style %s: %w", cell, err)
			}
		}
	}
	return nil
}

// staticTargets expands a rule's target to concrete cell names. Data rows
// start at sheet row 2, below the header.
func staticTargets(ds *dataset.Dataset, rule format.StaticRule) []string {
	var cells []string
	switch {
	case rule.Cell != "":
		cells = append(cells, rule.Cell)
	case len(rule.Cells) > 0:
		cells = append(cells, rule.Cells...)
	case rule.Column != "" && rule.Row != nil:
		if ci := ds.ColumnIndex(rule.Column); ci >= 0 {
			if name, err := excelize.CoordinatesToCellName(ci+1, *rule.Row+2); err == nil {
				cells = append(cells, name)
			}
		}
	case rule.Column != "":
		if ci := ds.ColumnIndex(rule.Column); ci >= 0 {
			for i := 0; i < ds.RowCount(); i++ {
				if name, err := excelize.CoordinatesToCellName(ci+1, i+2); err == nil {
					cells = append(cells, name)
				}
			}
		}
	case rule.Row != nil:
		for ci := range ds.Columns() {
			if name, err := excelize.CoordinatesToCellName(ci+1, *rule.Row+2); err == nil {
				cells = append(cells, name)
			}
		}
	}
	return cells
}

// ============================================================================
// CONDITIONAL RULES
// ============================================================================

// applyConditional evaluates each rule's predicate against final cell values
// and styles the matches. A rule that fails to evaluate (unknown column,
// bad regex) is logged and skipped.
func applyConditional(f *excelize.File, ds *dataset.Dataset, rules []format.ConditionalRule) error {
	for _, rule := range rules {
		matches, err := matchingRows(ds, rule)
		if err != nil {
			log.Printf("🎨 Sheetwise: skipping conditional rule on %q: %v", rule.Column, err)
			continue
		}
		if len(matches) == 0 {
			continue
		}
		styleID, err := f.NewStyle(toExcelStyle(rule.Style))
		if err != nil {
			return fmt.Errorf("failed to build style: %w", err)
		}
		ci := ds.ColumnIndex(rule.Column)
		for _, row := range matches {
			cell, _ := excelize.CoordinatesToCellName(ci+1, row+2)
			if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
				return fmt.Errorf("failed to style %s: %w", cell, err)
			}
		}
	}
	return nil
}

// matchingRows returns the data-row indices whose cells satisfy the rule.
func matchingRows(ds *dataset.Dataset, rule format.ConditionalRule) ([]int, error) {
	col, err := ds.Column(rule.Column)
	if err != nil {
		return nil, err
	}

	var matches []int
	switch rule.Predicate {
	case format.PredicateDuplicates:
		counts := make(map[string]int, len(col))
		for _, v := range col {
			if !v.IsNull() {
				counts[v.Kind().String()+":"+v.String()]++
			}
		}
		for i, v := range col {
			if !v.IsNull() && counts[v.Kind().String()+":"+v.String()] > 1 {
				matches = append(matches, i)
			}
		}

	case format.PredicateGreaterThan:
		for i, v := range col {
			if f, ok := v.Float(); ok && f > rule.Threshold {
				matches = append(matches, i)
			}
		}

	case format.PredicateLessThan:
		for i, v := range col {
			if f, ok := v.Float(); ok && f < rule.Threshold {
				matches = append(matches, i)
			}
		}

	case format.PredicateBetween:
		for i, v := range col {
			if f, ok := v.Float(); ok && f >= rule.Lower && f <= rule.Upper {
				matches = append(matches, i)
			}
		}

	case format.PredicateContainsText:
		needle := strings.ToLower(rule.Text)
		for i, v := range col {
			if !v.IsNull() && strings.Contains(strings.ToLower(v.String()), needle) {
				matches = append(matches, i)
			}
		}

	case format.PredicateTextEquals:
		for i, v := range col {
			if !v.IsNull() && strings.EqualFold(v.String(), rule.Text) {
				matches = append(matches, i)
			}
		}

	case format.PredicateRegexMatch:
		re, err := regexp.Compile(rule.Text)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", rule.Text, err)
		}
		for i, v := range col {
			if !v.IsNull() && re.MatchString(v.String()) {
				matches = append(matches, i)
			}
		}

	default:
		return nil, fmt.Errorf("unknown predicate %q", rule.Predicate)
	}
	return matches, nil
}

// ============================================================================
// STYLE CONVERSION
// ============================================================================

// toExcelStyle maps a rule style to an excelize style definition.
func toExcelStyle(s format.Style) *excelize.Style {
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:   s.Bold,
			Italic: s.Italic,
			Color:  strings.TrimPrefix(s.TextColor, "#"),
		},
	}
	if s.BgColor != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(s.BgColor, "#")},
		}
	}
	if s.Align != "" {
		style.Alignment = &excelize.Alignment{Horizontal: s.Align}
	}
	if s.Border {
		style.Border = []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		}
	}
	return style
}
