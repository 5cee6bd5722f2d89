package writer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetwise-org/sheetwise/dataset"
	"github.com/sheetwise-org/sheetwise/format"
)

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords(
		[]string{"Name", "Amount"},
		[]map[string]interface{}{
			{"Name": "Alice", "Amount": 100.0},
			{"Name": "Bob", "Amount": nil},
			{"Name": "Alice", "Amount": 40.0},
		},
	)
	require.NoError(t, err)
	return ds
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(fixture(t), &buf))
	assert.Equal(t, "Name,Amount\nAlice,100\nBob,\nAlice,40\n", buf.String())
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	f, err := WriteXLSX(fixture(t), nil)
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Name", name)

	amount, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "100", amount)
}

func TestConditionalDuplicatesResolvedAtWriteTime(t *testing.T) {
	store := format.NewStore()
	store.AddConditional(format.ConditionalRule{
		Column:    "Name",
		Predicate: format.PredicateDuplicates,
		Style:     format.Style{BgColor: "#FBBF24"},
	})

	ds := fixture(t)
	f, err := WriteXLSX(ds, store)
	require.NoError(t, err)
	defer f.Close()

	// Both Alice rows (sheet rows 2 and 4) are duplicates, Bob (row 3) is not.
	dup1, err := f.GetCellStyle("Sheet1", "A2")
	require.NoError(t, err)
	dup2, err := f.GetCellStyle("Sheet1", "A4")
	require.NoError(t, err)
	plain, err := f.GetCellStyle("Sheet1", "A3")
	require.NoError(t, err)

	assert.Equal(t, dup1, dup2)
	assert.NotEqual(t, dup1, plain)
}

func TestConditionalThreshold(t *testing.T) {
	store := format.NewStore()
	store.AddConditional(format.ConditionalRule{
		Column:    "Amount",
		Predicate: format.PredicateGreaterThan,
		Threshold: 50,
		Style:     format.Style{BgColor: "#EF4444"},
	})

	ds := fixture(t)
	rows, err := matchingRows(ds, store.Conditional()[0])
	require.NoError(t, err)
	assert.Equal(t, []int{0}, rows, "only the 100 row exceeds 50; null is not coercible")
}

func TestConditionalRegexInvalidSkipped(t *testing.T) {
	store := format.NewStore()
	store.AddConditional(format.ConditionalRule{
		Column:    "Name",
		Predicate: format.PredicateRegexMatch,
		Text:      "([unclosed",
		Style:     format.Style{Bold: true},
	})

	// The bad rule is skipped at write time, not fatal.
	f, err := WriteXLSX(fixture(t), store)
	require.NoError(t, err)
	f.Close()
}

func TestStaticColumnRule(t *testing.T) {
	store := format.NewStore()
	store.AddStatic(format.StaticRule{
		Column: "Amount",
		Style:  format.Style{Bold: true},
	})

	ds := fixture(t)
	cells := staticTargets(ds, store.Static()[0])
	assert.Equal(t, []string{"B2", "B3", "B4"}, cells)
}

func TestStaticRowRule(t *testing.T) {
	row := 0
	store := format.NewStore()
	store.AddStatic(format.StaticRule{
		Row:   &row,
		Style: format.Style{Italic: true},
	})

	cells := staticTargets(fixture(t), store.Static()[0])
	assert.Equal(t, []string{"A2", "B2"}, cells)
}

func TestMatchingRowsContains(t *testing.T) {
	ds := fixture(t)
	rows, err := matchingRows(ds, format.ConditionalRule{
		Column:    "Name",
		Predicate: format.PredicateContainsText,
		Text:      "ali",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, rows)
}
