package clean

import (
	"math"
	"strconv"
	"strings"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// CURRENCY NORMALIZER
// ============================================================================
// Strips symbols and separators down to digits plus one decimal point.
// Accounting notation — a value wrapped in parentheses — parses as negative.
// ============================================================================

// ParseCurrency extracts a numeric amount from a currency string,
// rounded to the given decimal precision (negative precision → 2).
func ParseCurrency(s string, precision int) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = true
	}

	var b strings.Builder
	seenPoint := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || b.String() == "." {
		return 0, false
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -f
	}
	return roundTo(f, precision), true
}

// CleanCurrency normalizes a column of currency strings to numbers.
// Numeric cells are rounded in place; unparseable text becomes null.
// Returns how many cells were converted or rounded.
func CleanCurrency(ds *dataset.Dataset, column string, precision int) (int, error) {
	values, err := ds.Column(column)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i, v := range values {
		switch v.Kind() {
		case dataset.KindNull:
			continue
		case dataset.KindNumber:
			f, _ := v.Float()
			values[i] = dataset.Number(roundTo(f, precision))
			changed++
		default:
			if f, ok := ParseCurrency(v.String(), precision); ok {
				values[i] = dataset.Number(f)
				changed++
			} else {
				values[i] = dataset.Null()
			}
		}
	}
	if err := ds.SetColumn(column, values); err != nil {
		return 0, err
	}
	return changed, nil
}

func roundTo(f float64, precision int) float64 {
	if precision < 0 {
		precision = 2
	}
	shift := math.Pow(10, float64(precision))
	return math.Round(f*shift) / shift
}
