// Package loader reads source files into datasets. Delimited text is tried
// against multiple encodings, spreadsheets are unwrapped to a single sheet
// (the first, unless one is named), and JSON payloads are accepted as row
// arrays.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/sheetwise-org/sheetwise/dataset"
)

// ============================================================================
// SOURCE LOADER
// ============================================================================
// Validation failures here (bad extension, empty sheet, no columns) abort
// before any operation runs, so the errors carry enough context to
// self-diagnose without a stack trace.
// ============================================================================

// Options controls loading.
type Options struct {
	Sheet string // XLSX sheet name; empty means the first sheet
}

// Load reads a file by extension: .csv/.tsv/.txt, .xlsx/.xlsm, or .json.
func Load(path string, opts Options) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return LoadCSV(data)
	case ".xlsx", ".xlsm":
		return LoadXLSX(data, opts.Sheet)
	case ".json":
		return LoadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported file extension %q (want .csv, .tsv, .txt, .xlsx, .xlsm, or .json)", filepath.Ext(path))
	}
}

// ============================================================================
// DELIMITED TEXT
// ============================================================================

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV parses delimited text, trying UTF-8 first and falling back to
// Windows-1252 and ISO-8859-1. The delimiter is sniffed from the header line.
func LoadCSV(data []byte) (*dataset.Dataset, error) {
	text, encoding, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	if encoding != "UTF-8" {
		log.Printf("🔧 Sheetwise: decoded delimited text as %s", encoding)
	}

	delimiter := sniffDelimiter(text)
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = strings.TrimSpace(h)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("file has no columns")
	}

	ds, err := dataset.New(columns)
	if err != nil {
		return nil, err
	}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rec := make(map[string]interface{}, len(columns))
		for i, c := range columns {
			if i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					rec[c] = v
				}
			}
		}
		if err := ds.InsertRow(-1, rec); err != nil {
			return nil, err
		}
	}
	if ds.RowCount() == 0 {
		return nil, fmt.Errorf("file has no data rows")
	}
	return ds, nil
}

// decodeText returns UTF-8 text from raw bytes, reporting which encoding won.
func decodeText(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), "UTF-8", nil
	}
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), "Windows-1252", nil
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
		return string(decoded), "ISO-8859-1", nil
	}
	return "", "", fmt.Errorf("file is not valid UTF-8, Windows-1252, or ISO-8859-1 text")
}

var delimiterCandidates = []rune{',', ';', '\t', '|'}

// sniffDelimiter picks the candidate with the most occurrences in the header
// line, defaulting to a comma.
func sniffDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	best, bestCount := ',', 0
	for _, c := range delimiterCandidates {
		if n := strings.Count(header, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// ============================================================================
// SPREADSHEETS
// ============================================================================

// LoadXLSX reads one sheet of a workbook. With no sheet named, the first
// sheet is used; naming a missing sheet is an error listing what exists.
func LoadXLSX(data []byte, sheet string) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !containsString(sheets, sheet) {
		return nil, fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.TrimSpace(h)
	}
	ds, err := dataset.New(columns)
	if err != nil {
		return nil, err
	}
	for _, row := range rows[1:] {
		rec := make(map[string]interface{}, len(columns))
		for i, c := range columns {
			if i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					rec[c] = v
				}
			}
		}
		if err := ds.InsertRow(-1, rec); err != nil {
			return nil, err
		}
	}
	if ds.RowCount() == 0 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}
	return ds, nil
}

// ============================================================================
// JSON
// ============================================================================

// LoadJSON accepts an array of row objects. Column order follows first
// appearance across the rows.
func LoadJSON(data []byte) (*dataset.Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON rows: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("JSON payload has no rows")
	}

	var columns []string
	seen := map[string]bool{}
	for _, rec := range records {
		for _, k := range sortedKeys(rec) {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return dataset.FromRecords(columns, records)
}

// sortedKeys keeps JSON column discovery deterministic within one row.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
