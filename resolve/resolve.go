// Package resolve maps ambiguous column references from plans and prompts
// onto the concrete column names of a loaded dataset.
package resolve

import (
	"errors"
	"strconv"
	"strings"
)

// ============================================================================
// COLUMN RESOLVER — reference string → concrete column name
// ============================================================================
// Strategies run in a fixed priority order; the first hit wins:
//   1. exact name          2. case-insensitive name
//   3. Excel column letter 4. ordinal ("2nd column", "first", "last")
//   5. substring containment (either direction, case-insensitive)
// No edit-distance matching — a typo that shares no substring stays
// unresolved. Content search lives in content.go as a separate fallback
// stage so callers (and tests) can target it independently.
// ============================================================================

// ErrNoMatch is returned when no strategy resolves the reference.
var ErrNoMatch = errors.New("no matching column")

// Column resolves a reference against the column list.
// Returns ErrNoMatch instead of guessing.
func Column(reference string, columns []string) (string, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" || len(columns) == 0 {
		return "", ErrNoMatch
	}

	// 1. Exact match
	for _, c := range columns {
		if c == ref {
			return c, nil
		}
	}

	// 2. Case-insensitive match
	lower := strings.ToLower(ref)
	for _, c := range columns {
		if strings.ToLower(c) == lower {
			return c, nil
		}
	}

	// 3. Excel column letters ("A", "B", "AA")
	if idx, ok := LetterIndex(ref); ok && idx < len(columns) {
		return columns[idx], nil
	}

	// 4. Ordinal words and numeric ordinals
	if idx, ok := ordinalIndex(ref, len(columns)); ok {
		return columns[idx], nil
	}

	// 5. Substring containment, either direction
	for _, c := range columns {
		cl := strings.ToLower(c)
		if strings.Contains(cl, lower) || strings.Contains(lower, cl) {
			return c, nil
		}
	}

	return "", ErrNoMatch
}

// LetterIndex decodes an Excel-style column letter sequence to a zero-based
// index ("A"→0, "Z"→25, "AA"→26). Standard spreadsheet base-26: no letter
// represents zero.
func LetterIndex(ref string) (int, bool) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if ref == "" || len(ref) > 3 {
		return 0, false
	}
	idx := 0
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			return 0, false
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1, true
}

// ColumnLetter is the inverse of LetterIndex (0→"A", 26→"AA").
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	letters := ""
	n := index + 1
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}

var ordinalWords = map[string]int{
	"first": 0, "second": 1, "third": 2, "fourth": 3, "fifth": 4,
	"sixth": 5, "seventh": 6, "eighth": 7, "ninth": 8, "tenth": 9,
}

// ordinalIndex decodes "first", "2nd column", "3", "last" into a zero-based
// index, valid only within the column count.
func ordinalIndex(ref string, columnCount int) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(ref))
	s = strings.TrimSuffix(s, " column")
	s = strings.TrimSpace(s)

	if s == "last" || s == "last column" {
		if columnCount == 0 {
			return 0, false
		}
		return columnCount - 1, true
	}
	if idx, ok := ordinalWords[s]; ok && idx < columnCount {
		return idx, true
	}

	// "1st", "2nd", "3rd", "11th" and plain digits
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		s = strings.TrimSuffix(s, suffix)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > columnCount {
		return 0, false
	}
	return n - 1, true
}
