// Package clean provides domain-agnostic normalizers for dates, currency,
// and text. Upstream data is untrusted: every transform degrades value by
// value (unparseable → null) instead of failing the column.
package clean

import (
	"fmt"
	"strings"
	"time"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// DATE NORMALIZER
// ============================================================================

// dateLayouts are tried in order before the permissive fallback.
// Day-first layouts sit after month-first, matching spreadsheet defaults.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan-2006",
	"2006.01.02",
	"20060102",
}

// ParseDate attempts each known layout, then a permissive month-name scan.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Permissive fallback: tolerate single-digit day/month variants
	for _, layout := range []string{"1/2/2006", "2/1/2006", "2006-1-2", "1-2-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValueTime extracts a timestamp from a cell: time-kind values directly,
// text through the parse chain.
func ValueTime(v dataset.Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	if v.Kind() == dataset.KindText {
		return ParseDate(v.String())
	}
	return time.Time{}, false
}

// ReformatDates rewrites a date column to the target layout. Unparseable
// cells become null. Returns how many cells were reformatted.
func ReformatDates(ds *dataset.Dataset, column, layout string) (int, error) {
	values, err := ds.Column(column)
	if err != nil {
		return 0, err
	}
	if layout == "" {
		layout = "2006-01-02"
	}
	changed := 0
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		t, ok := ValueTime(v)
		if !ok {
			values[i] = dataset.Null()
			continue
		}
		values[i] = dataset.Text(t.Format(layout))
		changed++
	}
	if err := ds.SetColumn(column, values); err != nil {
		return 0, err
	}
	return changed, nil
}

// ExtractDateComponent adds a "<column>_<component>" column holding the
// year, month, day, or weekday of each date cell. Unparseable → null.
func ExtractDateComponent(ds *dataset.Dataset, column, component string) (string, error) {
	values, err := ds.Column(column)
	if err != nil {
		return "", err
	}
	component = strings.ToLower(strings.TrimSpace(component))
	newName := fmt.Sprintf("%s_%s", column, component)

	out := make([]dataset.Value, len(values))
	for i, v := range values {
		t, ok := ValueTime(v)
		if !ok {
			out[i] = dataset.Null()
			continue
		}
		switch component {
		case "year":
			out[i] = dataset.Number(float64(t.Year()))
		case "month":
			out[i] = dataset.Number(float64(t.Month()))
		case "day":
			out[i] = dataset.Number(float64(t.Day()))
		case "weekday":
			out[i] = dataset.Text(t.Weekday().String())
		default:
			return "", fmt.Errorf("unknown date component %q (year, month, day, weekday)", component)
		}
	}
	if err := ds.SetColumn(newName, out); err != nil {
		return "", err
	}
	return newName, nil
}

// NormalizeDates parses a date column and rewrites every parseable cell to
// ISO format (2006-01-02). A convenience wrapper over ReformatDates.
func NormalizeDates(ds *dataset.Dataset, column string) (int, error) {
	return ReformatDates(ds, column, "2006-01-02")
}
