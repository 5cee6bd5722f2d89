package loader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSVBasic(t *testing.T) {
	ds, err := LoadCSV([]byte("Name,Amount\nAlice,100\nBob,\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Amount"}, ds.Columns())
	assert.Equal(t, 2, ds.RowCount())

	v, err := ds.Cell(1, "Amount")
	require.NoError(t, err)
	assert.True(t, v.IsNull(), "blank cell should load as null")
}

func TestLoadCSVSniffsSemicolon(t *testing.T) {
	ds, err := LoadCSV([]byte("Name;Amount\nAlice;100\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Amount"}, ds.Columns())
}

func TestLoadCSVSniffsTab(t *testing.T) {
	ds, err := LoadCSV([]byte("Name\tAmount\nAlice\t100\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Amount"}, ds.Columns())
}

func TestLoadCSVStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name\nAlice\n")...)
	ds, err := LoadCSV(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name"}, ds.Columns())
}

func TestLoadCSVWindows1252Fallback(t *testing.T) {
	// "Café" with é encoded as the single Windows-1252 byte 0xE9.
	data := []byte("Name\nCaf\xe9\n")
	ds, err := LoadCSV(data)
	require.NoError(t, err)

	v, err := ds.Cell(0, "Name")
	require.NoError(t, err)
	assert.Equal(t, "Café", v.String())
}

func TestLoadCSVRejectsEmpty(t *testing.T) {
	_, err := LoadCSV([]byte("Name,Amount\n"))
	assert.Error(t, err)
}

func TestLoadJSONColumnsInFirstAppearanceOrder(t *testing.T) {
	ds, err := LoadJSON([]byte(`[{"b": 1, "a": "x"}, {"c": true}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ds.Columns())
	assert.Equal(t, 2, ds.RowCount())

	v, err := ds.Cell(0, "b")
	require.NoError(t, err)
	f, ok := v.Float()
	assert.True(t, ok)
	assert.Equal(t, 1.0, f)
}

func TestLoadJSONRejectsNonArray(t *testing.T) {
	_, err := LoadJSON([]byte(`{"not": "rows"}`))
	assert.Error(t, err)
}

func TestLoadXLSXFirstSheet(t *testing.T) {
	data := buildWorkbook(t)
	ds, err := LoadXLSX(data, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Amount"}, ds.Columns())
	assert.Equal(t, 2, ds.RowCount())
}

func TestLoadXLSXNamedSheetMissing(t *testing.T) {
	data := buildWorkbook(t)
	_, err := LoadXLSX(data, "Budget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available")
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("data.parquet", Options{})
	assert.Error(t, err)
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Alice", 100}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Bob", 50}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
