package clean

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// TEXT NORMALIZER
// ============================================================================

var whitespaceRun = regexp.MustCompile(`\s+`)

// TrimColumn trims surrounding whitespace from every text cell.
// Returns how many cells actually changed.
func TrimColumn(ds *dataset.Dataset, column string) (int, error) {
	return mapText(ds, column, strings.TrimSpace)
}

// CollapseWhitespace trims and squeezes internal whitespace runs to one space.
func CollapseWhitespace(ds *dataset.Dataset, column string) (int, error) {
	return mapText(ds, column, func(s string) string {
		return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	})
}

// NormalizeCase applies a case mode: lower, upper, title, or sentence.
func NormalizeCase(ds *dataset.Dataset, column, mode string) (int, error) {
	var fn func(string) string
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "lower":
		fn = strings.ToLower
	case "upper":
		fn = strings.ToUpper
	case "title", "proper":
		fn = TitleCase
	case "sentence":
		fn = SentenceCase
	default:
		return 0, fmt.Errorf("unknown case mode %q (lower, upper, title, sentence)", mode)
	}
	return mapText(ds, column, fn)
}

// defaultKeepSet is the character class preserved by StripSpecialChars when
// the caller supplies no keep-set: alphanumerics plus basic punctuation.
const defaultKeepSet = " .,-_@"

// StripSpecialChars removes characters outside the keep-set. Alphanumerics
// are always kept; keep adds extra allowed characters.
func StripSpecialChars(ds *dataset.Dataset, column, keep string) (int, error) {
	if keep == "" {
		keep = defaultKeepSet
	}
	return mapText(ds, column, func(s string) string {
		var b strings.Builder
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(keep, r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	})
}

// FindReplace substitutes every occurrence of find with replace.
// Case-insensitive mode matches regardless of case but keeps the
// replacement literal.
func FindReplace(ds *dataset.Dataset, column, find, replace string, caseSensitive bool) (int, error) {
	if find == "" {
		return 0, nil
	}
	if caseSensitive {
		return mapText(ds, column, func(s string) string {
			return strings.ReplaceAll(s, find, replace)
		})
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(find))
	if err != nil {
		return 0, err
	}
	return mapText(ds, column, func(s string) string {
		return re.ReplaceAllLiteralString(s, replace)
	})
}

// SplitColumn splits a text column on a separator into N new columns named
// "<column>_1".."<column>_N" and drops the original. N is the widest split
// across all rows; short rows pad with nulls.
func SplitColumn(ds *dataset.Dataset, column, separator string) ([]string, error) {
	if separator == "" {
		return nil, fmt.Errorf("split separator must not be empty")
	}
	values, err := ds.Column(column)
	if err != nil {
		return nil, err
	}

	parts := make([][]string, len(values))
	width := 1
	for i, v := range values {
		if v.IsNull() {
			continue
		}
		parts[i] = strings.Split(v.String(), separator)
		if len(parts[i]) > width {
			width = len(parts[i])
		}
	}

	names := make([]string, width)
	position := ds.ColumnIndex(column)
	for j := 0; j < width; j++ {
		names[j] = fmt.Sprintf("%s_%d", column, j+1)
		out := make([]dataset.Value, len(values))
		for i := range values {
			if j < len(parts[i]) {
				out[i] = dataset.Text(strings.TrimSpace(parts[i][j]))
			} else {
				out[i] = dataset.Null()
			}
		}
		if err := ds.AddColumn(names[j], position+1+j, dataset.Null()); err != nil {
			return nil, err
		}
		if err := ds.SetColumn(names[j], out); err != nil {
			return nil, err
		}
	}
	if err := ds.DeleteColumn(column); err != nil {
		return nil, err
	}
	return names, nil
}

// MergeColumns string-joins source columns into a new column. Originals are
// kept unless dropOriginals is set. Null cells join as empty strings.
func MergeColumns(ds *dataset.Dataset, columns []string, separator, newName string, dropOriginals bool) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("merge requires at least one source column")
	}
	sources := make([][]dataset.Value, len(columns))
	for i, c := range columns {
		vals, err := ds.Column(c)
		if err != nil {
			return "", err
		}
		sources[i] = vals
	}
	if newName == "" {
		newName = strings.Join(columns, "_")
	}

	out := make([]dataset.Value, ds.RowCount())
	for r := range out {
		pieces := make([]string, len(sources))
		for c := range sources {
			pieces[c] = sources[c][r].String()
		}
		out[r] = dataset.Text(strings.Join(pieces, separator))
	}
	if err := ds.SetColumn(newName, out); err != nil {
		return "", err
	}
	if dropOriginals {
		for _, c := range columns {
			if c == newName {
				continue
			}
			if err := ds.DeleteColumn(c); err != nil {
				return "", err
			}
		}
	}
	return newName, nil
}

// TitleCase upper-cases the first letter of every word.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// SentenceCase upper-cases only the first letter.
func SentenceCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := []rune(s)
	for i, c := range r {
		if unicode.IsLetter(c) {
			r[i] = unicode.ToUpper(c)
			break
		}
	}
	return string(r)
}

// mapText applies fn to every text cell in a column, counting changes.
// Non-text cells pass through untouched.
func mapText(ds *dataset.Dataset, column string, fn func(string) string) (int, error) {
	values, err := ds.Column(column)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i, v := range values {
		if v.Kind() != dataset.KindText {
			continue
		}
		next := fn(v.String())
		if next != v.String() {
			values[i] = dataset.Text(next)
			changed++
		}
	}
	if err := ds.SetColumn(column, values); err != nil {
		return 0, err
	}
	return changed, nil
}
