package formula

import (
	"fmt"
	"strings"

	"github.com/sheetwise-org/sheetwise/clean"
	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// DATE FUNCTIONS
// ============================================================================

// Year adds a "<column>_year" column. Unparseable dates become null.
func Year(ds *dataset.Dataset, column string) (string, error) {
	return clean.ExtractDateComponent(ds, column, "year")
}

// Month adds a "<column>_month" column.
func Month(ds *dataset.Dataset, column string) (string, error) {
	return clean.ExtractDateComponent(ds, column, "month")
}

// Day adds a "<column>_day" column.
func Day(ds *dataset.Dataset, column string) (string, error) {
	return clean.ExtractDateComponent(ds, column, "day")
}

// DateDif adds a "datedif_<unit>" column with the per-row difference
// between two date columns. Units: days, months, years. Month and year
// differences use calendar arithmetic (Δyears×12 + Δmonths), not day-count
// division. Rows with an unparseable endpoint get null.
func DateDif(ds *dataset.Dataset, startColumn, endColumn, unit string) (string, error) {
	starts, err := ds.Column(startColumn)
	if err != nil {
		return "", err
	}
	ends, err := ds.Column(endColumn)
	if err != nil {
		return "", err
	}

	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "", "d", "day":
		unit = "days"
	case "m", "month":
		unit = "months"
	case "y", "year":
		unit = "years"
	case "days", "months", "years":
	default:
		return "", fmt.Errorf("unknown DATEDIF unit %q (days, months, years)", unit)
	}

	newName := "datedif_" + unit
	out := make([]dataset.Value, len(starts))
	for i := range starts {
		st, okS := clean.ValueTime(starts[i])
		en, okE := clean.ValueTime(ends[i])
		if !okS || !okE {
			out[i] = dataset.Null()
			continue
		}
		switch unit {
		case "days":
			out[i] = dataset.Number(float64(int(en.Sub(st).Hours() / 24)))
		case "months":
			months := (en.Year()-st.Year())*12 + int(en.Month()) - int(st.Month())
			out[i] = dataset.Number(float64(months))
		case "years":
			out[i] = dataset.Number(float64(en.Year() - st.Year()))
		}
	}
	if err := ds.SetColumn(newName, out); err != nil {
		return "", err
	}
	return newName, nil
}
