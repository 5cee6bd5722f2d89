// Package formula implements the named spreadsheet-style functions the plan
// executor dispatches to. Formulas are expected to be precisely specified:
// a missing column or parameter is an immediate error (a silently-wrong
// number is worse than a visible failure), while individual cell values
// still coerce permissively.
package formula

import (
	"fmt"
	"math"
	"strings"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// NUMERIC AGGREGATES
// ============================================================================
// Coercion excludes, never zero-fills: a column of "12", "abc", "7" sums
// to 19. Nulls and unparseable text simply don't participate.
// ============================================================================

// numericValues coerces a column to numbers, dropping non-coercible cells.
func numericValues(ds *dataset.Dataset, column string) ([]float64, error) {
	values, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Sum totals the numeric-coercible cells of a column.
func Sum(ds *dataset.Dataset, column string) (float64, error) {
	nums, err := numericValues(ds, column)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, f := range nums {
		total += f
	}
	return total, nil
}

// Average is the mean over the numeric-coercible cells only.
func Average(ds *dataset.Dataset, column string) (float64, error) {
	nums, err := numericValues(ds, column)
	if err != nil {
		return 0, err
	}
	if len(nums) == 0 {
		return 0, nil
	}
	var total float64
	for _, f := range nums {
		total += f
	}
	return total / float64(len(nums)), nil
}

// Min returns the smallest numeric-coercible cell, 0 when none exist.
func Min(ds *dataset.Dataset, column string) (float64, error) {
	nums, err := numericValues(ds, column)
	if err != nil {
		return 0, err
	}
	if len(nums) == 0 {
		return 0, nil
	}
	m := math.Inf(1)
	for _, f := range nums {
		if f < m {
			m = f
		}
	}
	return m, nil
}

// Max returns the largest numeric-coercible cell, 0 when none exist.
func Max(ds *dataset.Dataset, column string) (float64, error) {
	nums, err := numericValues(ds, column)
	if err != nil {
		return 0, err
	}
	if len(nums) == 0 {
		return 0, nil
	}
	m := math.Inf(-1)
	for _, f := range nums {
		if f > m {
			m = f
		}
	}
	return m, nil
}

// Count counts the numeric-coercible cells (spreadsheet COUNT, not COUNTA).
func Count(ds *dataset.Dataset, column string) (float64, error) {
	nums, err := numericValues(ds, column)
	if err != nil {
		return 0, err
	}
	return float64(len(nums)), nil
}

// ============================================================================
// COUNTIF
// ============================================================================

// CountIf counts cells matching `<op> value`. Numeric comparisons coerce the
// column; "contains" is a case-insensitive substring test over the string
// rendering; "=="/"!=" compare as numbers when both sides coerce, as
// case-insensitive text otherwise.
func CountIf(ds *dataset.Dataset, column, op string, value dataset.Value) (float64, error) {
	values, err := ds.Column(column)
	if err != nil {
		return 0, err
	}

	op = strings.TrimSpace(op)
	if op == "" {
		op = "=="
	}
	target, targetNumeric := value.Float()
	targetText := strings.ToLower(value.String())

	count := 0
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		switch op {
		case "contains":
			if strings.Contains(strings.ToLower(v.String()), targetText) {
				count++
			}
		case "==", "=":
			if f, ok := v.Float(); ok && targetNumeric {
				if f == target {
					count++
				}
			} else if strings.ToLower(v.String()) == targetText {
				count++
			}
		case "!=":
			if f, ok := v.Float(); ok && targetNumeric {
				if f != target {
					count++
				}
			} else if strings.ToLower(v.String()) != targetText {
				count++
			}
		case ">", ">=", "<", "<=":
			if !targetNumeric {
				return 0, fmt.Errorf("COUNTIF %s requires a numeric value, got %q", op, value.String())
			}
			f, ok := v.Float()
			if !ok {
				continue
			}
			switch op {
			case ">":
				if f > target {
					count++
				}
			case ">=":
				if f >= target {
					count++
				}
			case "<":
				if f < target {
					count++
				}
			case "<=":
				if f <= target {
					count++
				}
			}
		default:
			return 0, fmt.Errorf("unknown COUNTIF operator %q", op)
		}
	}
	return float64(count), nil
}
