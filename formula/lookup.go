package formula

import (
	"strings"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// LOOKUPS
// ============================================================================

// valueMatches compares a cell to a lookup target: numerically when both
// sides coerce, case-insensitive text otherwise.
func valueMatches(cell, target dataset.Value) bool {
	cf, cok := cell.Float()
	tf, tok := target.Float()
	if cok && tok {
		return cf == tf
	}
	return strings.EqualFold(cell.String(), target.String())
}

// VLookup finds lookupValue in lookupColumn and returns the same row's cell
// from returnColumn. Exact mode returns the FIRST matching row. Approximate
// mode (exactMatch=false) returns the last row whose lookup value is ≤ the
// target, assuming the column is sorted ascending — spreadsheet VLOOKUP's
// documented caveat, kept for compatibility; the sort is not enforced.
// No match returns null.
func VLookup(ds *dataset.Dataset, lookupColumn string, lookupValue dataset.Value, returnColumn string, exactMatch bool) (dataset.Value, error) {
	lookups, err := ds.Column(lookupColumn)
	if err != nil {
		return dataset.Null(), err
	}
	returns, err := ds.Column(returnColumn)
	if err != nil {
		return dataset.Null(), err
	}

	if exactMatch {
		for i, v := range lookups {
			if valueMatches(v, lookupValue) {
				return returns[i], nil
			}
		}
		return dataset.Null(), nil
	}

	// Approximate: last row with lookup ≤ target (numeric when possible,
	// lexicographic otherwise).
	target, targetNumeric := lookupValue.Float()
	best := -1
	for i, v := range lookups {
		if targetNumeric {
			f, ok := v.Float()
			if !ok || f > target {
				continue
			}
			best = i
		} else {
			if strings.ToLower(v.String()) > strings.ToLower(lookupValue.String()) {
				continue
			}
			best = i
		}
	}
	if best < 0 {
		return dataset.Null(), nil
	}
	return returns[best], nil
}

// XLookup is VLookup with exact matching and a caller-supplied not_found
// value instead of null.
func XLookup(ds *dataset.Dataset, lookupColumn string, lookupValue dataset.Value, returnColumn string, notFound dataset.Value) (dataset.Value, error) {
	result, err := VLookup(ds, lookupColumn, lookupValue, returnColumn, true)
	if err != nil {
		return dataset.Null(), err
	}
	if result.IsNull() {
		// Distinguish "matched a null cell" from "no match": re-scan.
		lookups, _ := ds.Column(lookupColumn)
		for _, v := range lookups {
			if valueMatches(v, lookupValue) {
				return result, nil
			}
		}
		return notFound, nil
	}
	return result, nil
}
