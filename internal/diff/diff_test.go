package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablediff/tablediff/internal/errors"
	"github.com/tablediff/tablediff/internal/table"
)

func TestCompare_IdenticalTables(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"col1", "col2"}, [][]string{
		{"1", "2"},
		{"3", "4"},
	})
	actual := table.New([]string{"col1", "col2"}, [][]string{
		{"1", "2"},
		{"3", "4"},
	})

	result, err := engine.Compare(expected, actual, Options{})
	require.NoError(t, err)

	assert.False(t, result.HasMismatches())
	assert.Empty(t, result.Mismatches)
	assert.Equal(t, 4, result.CellsCompared)
	assert.Equal(t, 2, result.ColumnsChecked)
}

func TestCompare_SingleMismatch(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"col1", "col2"}, [][]string{
		{"1", "2"},
		{"3", "4"},
	})
	actual := table.New([]string{"col1", "col2"}, [][]string{
		{"1", "2"},
		{"3", "5"},
	})

	result, err := engine.Compare(expected, actual, Options{})
	require.NoError(t, err)

	require.Len(t, result.Mismatches, 1)
	m := result.Mismatches[0]
	assert.Equal(t, "col2", m.Column)
	assert.Equal(t, 2, m.Row) // 1-based in the report
	assert.Equal(t, "4", m.Expected)
	assert.Equal(t, "5", m.Actual)
	assert.Equal(t, "Column col2, row 2 values differ: 4 expected, got 5", m.String())
}

// Mismatches are reported column by column, then row by row within each
// column, not row-major.
func TestCompare_ColumnMajorOrder(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"a", "b"}, [][]string{
		{"1", "2"},
		{"3", "4"},
	})
	actual := table.New([]string{"a", "b"}, [][]string{
		{"x", "y"},
		{"z", "w"},
	})

	result, err := engine.Compare(expected, actual, Options{})
	require.NoError(t, err)

	want := []Mismatch{
		{Column: "a", Row: 1, Expected: "1", Actual: "x"},
		{Column: "a", Row: 2, Expected: "3", Actual: "z"},
		{Column: "b", Row: 1, Expected: "2", Actual: "y"},
		{Column: "b", Row: 2, Expected: "4", Actual: "w"},
	}
	if diff := cmp.Diff(want, result.Mismatches); diff != "" {
		t.Errorf("Mismatches ordering (-want +got):\n%s", diff)
	}
}

// Values compare as raw strings, never numerically
func TestCompare_RawStringComparison(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"col1"}, [][]string{{"1.0"}})
	actual := table.New([]string{"col1"}, [][]string{{"1.00"}})

	result, err := engine.Compare(expected, actual, Options{})
	require.NoError(t, err)

	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, "Column col1, row 1 values differ: 1.0 expected, got 1.00", result.Mismatches[0].String())
}

// Columns present only in the new table are never visited
func TestCompare_ExtraColumnInActual(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"col1"}, [][]string{{"1"}})
	actual := table.New([]string{"col1", "extra"}, [][]string{{"1", "9"}})

	result, err := engine.Compare(expected, actual, Options{})
	require.NoError(t, err)
	assert.False(t, result.HasMismatches())
	assert.Equal(t, 1, result.CellsCompared)
}

func TestCompare_MissingColumn(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"col1", "col2"}, [][]string{{"1", "2"}})
	actual := table.New([]string{"col1"}, [][]string{{"9"}})

	result, err := engine.Compare(expected, actual, Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeStructure, errors.GetErrorType(err))
	assert.Contains(t, err.Error(), "col2")

	// The mismatch found before the failure is still reported
	require.NotNil(t, result)
	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, "col1", result.Mismatches[0].Column)
}

func TestCompare_MissingRow(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"col1"}, [][]string{
		{"1"},
		{"3"},
	})
	actual := table.New([]string{"col1"}, [][]string{
		{"1"},
	})

	result, err := engine.Compare(expected, actual, Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeStructure, errors.GetErrorType(err))

	require.NotNil(t, result)
	assert.Empty(t, result.Mismatches)
	assert.Equal(t, 1, result.CellsCompared)
}

func TestCompare_IgnoreColumns(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"spectrum", "xco2"}, [][]string{
		{"a1", "400.1"},
	})
	actual := table.New([]string{"spectrum", "xco2"}, [][]string{
		{"b7", "400.1"},
	})

	result, err := engine.Compare(expected, actual, Options{IgnoreColumns: []string{"spectrum"}})
	require.NoError(t, err)

	assert.False(t, result.HasMismatches())
	assert.Equal(t, 1, result.ColumnsChecked)
	assert.Equal(t, 1, result.CellsCompared)
}

// An ignored column missing from the new table is not a failure
func TestCompare_IgnoredColumnMayBeMissing(t *testing.T) {
	engine := NewEngine()

	expected := table.New([]string{"runtime", "xco2"}, [][]string{
		{"12s", "400.1"},
	})
	actual := table.New([]string{"xco2"}, [][]string{
		{"400.1"},
	})

	result, err := engine.Compare(expected, actual, Options{IgnoreColumns: []string{"runtime"}})
	require.NoError(t, err)
	assert.False(t, result.HasMismatches())
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()

	expectedPath := filepath.Join(dir, "expected.out")
	newPath := filepath.Join(dir, "new.out")
	require.NoError(t, os.WriteFile(expectedPath, []byte("2 header\ncol1 col2\n1 2\n3 4\n"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("2 header\ncol1 col2\n1 2\n3 5\n"), 0o644))

	result, err := CompareFiles(expectedPath, newPath, Options{})
	require.NoError(t, err)

	assert.Equal(t, expectedPath, result.ExpectedFile)
	assert.Equal(t, newPath, result.NewFile)
	require.Len(t, result.Mismatches, 1)
	assert.Equal(t, "Column col2, row 2 values differ: 4 expected, got 5", result.Mismatches[0].String())
}

func TestCompareFiles_ParseErrorStopsComparison(t *testing.T) {
	dir := t.TempDir()

	expectedPath := filepath.Join(dir, "expected.out")
	newPath := filepath.Join(dir, "new.out")
	require.NoError(t, os.WriteFile(expectedPath, []byte("2 header\ncol1\n1\n"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("bogus\n"), 0o644))

	result, err := CompareFiles(expectedPath, newPath, Options{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, errors.ErrorTypeParse, errors.GetErrorType(err))
}

// Comparing the same pair twice yields the same mismatches
func TestCompareFiles_Idempotent(t *testing.T) {
	dir := t.TempDir()

	expectedPath := filepath.Join(dir, "expected.out")
	newPath := filepath.Join(dir, "new.out")
	require.NoError(t, os.WriteFile(expectedPath, []byte("2 header\ncol1 col2\n1 2\n3 4\n"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("2 header\ncol1 col2\n1 9\n3 4\n"), 0o644))

	first, err := CompareFiles(expectedPath, newPath, Options{})
	require.NoError(t, err)
	second, err := CompareFiles(expectedPath, newPath, Options{})
	require.NoError(t, err)

	if diff := cmp.Diff(first.Mismatches, second.Mismatches); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}
