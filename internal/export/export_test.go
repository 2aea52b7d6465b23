package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
)

func sampleRecords() []fields.Record {
	return []fields.Record{
		{Section: fields.SectionName, Detail: "Jane Doe"},
		{Section: fields.SectionDateOfBirth, Detail: "05/03/1990"},
		{Section: fields.SectionSkill, Detail: "Skill: Python and JavaScript"},
	}
}

func readRows(t *testing.T, path string) (*excelize.File, [][]string) {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return f, rows
}

func TestExporter_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "extracted.xlsx")

	summary, err := New(nil).WriteFile(path, sampleRecords())
	require.NoError(t, err)
	assert.True(t, summary.Written)
	assert.Equal(t, 3, summary.Rows)
	assert.Positive(t, summary.Bytes)

	f, rows := readRows(t, path)
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	assert.Equal(t, [][]string{
		{"Section", "Detail"},
		{"Name", "Jane Doe"},
		{"Date of Birth", "05/03/1990"},
		{"Skill", "Skill: Python and JavaScript"},
	}, rows)

	widthA, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("Date of Birth")+2), widthA, 1e-9)

	widthB, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("Skill: Python and JavaScript")+2), widthB, 1e-9)
}

func TestExporter_EmptyWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	summary, err := New(nil).WriteFile(path, nil)
	require.NoError(t, err)
	assert.False(t, summary.Written)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExporter_ShapeIsStable(t *testing.T) {
	dir := t.TempDir()
	exp := New(nil)
	first := filepath.Join(dir, "first.xlsx")
	second := filepath.Join(dir, "second.xlsx")

	_, err := exp.WriteFile(first, sampleRecords())
	require.NoError(t, err)
	_, err = exp.WriteFile(second, sampleRecords())
	require.NoError(t, err)

	_, rowsA := readRows(t, first)
	_, rowsB := readRows(t, second)
	assert.Equal(t, len(rowsA), len(rowsB))
	assert.Equal(t, rowsA[0], rowsB[0])
	assert.Equal(t, rowsA, rowsB)
}

func TestExporter_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(nil).WriteTo(&buf, sampleRecords()[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Section", "Detail"}, {"Name", "Jane Doe"}}, rows)
}

func TestBuild_WideDetailIsCapped(t *testing.T) {
	f, err := Build([]fields.Record{{Section: fields.SectionSkill, Detail: strings.Repeat("x", 400)}})
	require.NoError(t, err)
	defer f.Close()

	width, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.InDelta(t, float64(excelize.MaxColumnWidth), width, 1e-9)
}
