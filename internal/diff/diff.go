// Package diff provides cell-level comparison of two parsed tables and
// reporting of the resulting mismatches.
package diff

import (
	"fmt"
	"time"

	"github.com/tablediff/tablediff/internal/errors"
	"github.com/tablediff/tablediff/internal/table"
)

// Engine defines the interface for table comparison
type Engine interface {
	Compare(expected, actual *table.Table, opts Options) (*Result, error)
}

// Options controls a single comparison
type Options struct {
	// ExpectedFile and NewFile are recorded in the Result for reporting
	// and history; they do not affect the comparison itself.
	ExpectedFile string
	NewFile      string

	// IgnoreColumns lists expected columns to skip entirely.
	IgnoreColumns []string
}

// Mismatch is one cell, addressed by column name and row index, whose
// string values differ between the two tables.
type Mismatch struct {
	Column   string `json:"column" yaml:"column"`
	Row      int    `json:"row" yaml:"row"` // 1-based, as reported
	Expected string `json:"expected" yaml:"expected"`
	Actual   string `json:"actual" yaml:"actual"`
}

// String renders the canonical report line. Row numbers are 1-based for
// human readability; internal indexing is 0-based.
func (m Mismatch) String() string {
	return fmt.Sprintf("Column %s, row %d values differ: %s expected, got %s",
		m.Column, m.Row, m.Expected, m.Actual)
}

// Result is the outcome of comparing two tables
type Result struct {
	ExpectedFile   string        `json:"expected_file" yaml:"expected_file"`
	NewFile        string        `json:"new_file" yaml:"new_file"`
	Mismatches     []Mismatch    `json:"mismatches" yaml:"mismatches"`
	ColumnsChecked int           `json:"columns_checked" yaml:"columns_checked"`
	CellsCompared  int           `json:"cells_compared" yaml:"cells_compared"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	Timestamp      time.Time     `json:"timestamp" yaml:"timestamp"`
}

// HasMismatches reports whether any cell values differed
func (r *Result) HasMismatches() bool {
	return len(r.Mismatches) > 0
}

// cellEngine implements Engine with a straight column-major walk
type cellEngine struct{}

// NewEngine creates a new comparison engine
func NewEngine() Engine {
	return &cellEngine{}
}

// Compare walks the expected table's cells column by column, and within
// each column row by row, looking up the same column name and row index
// in the actual table. Columns or rows present only in the actual table
// are never visited.
//
// When the actual table lacks a column or row that the expected table
// has, Compare returns a structural error together with the partial
// Result holding every mismatch found up to that point, so callers can
// still report the prefix that was compared.
func (e *cellEngine) Compare(expected, actual *table.Table, opts Options) (*Result, error) {
	start := time.Now()

	result := &Result{
		ExpectedFile: opts.ExpectedFile,
		NewFile:      opts.NewFile,
		Mismatches:   []Mismatch{},
		Timestamp:    start,
	}

	ignored := make(map[string]bool, len(opts.IgnoreColumns))
	for _, name := range opts.IgnoreColumns {
		ignored[name] = true
	}

	for col, name := range expected.Columns() {
		if ignored[name] {
			continue
		}

		if !actual.HasColumn(name) {
			result.Duration = time.Since(start)
			return result, errors.NewError(errors.ErrorTypeStructure, "COLUMN_MISSING",
				fmt.Sprintf("column %s present in the expected table is missing from the new table", name)).
				WithSeverity(errors.SeverityHigh).
				WithGuidance("The two files must share the same column names; regenerate the new file or update the expected file").
				WithContext("column", name)
		}
		result.ColumnsChecked++

		for row := 0; row < expected.NumRows(); row++ {
			actualValue, err := actual.Cell(name, row)
			if err != nil {
				result.Duration = time.Since(start)
				return result, errors.NewError(errors.ErrorTypeStructure, "ROW_MISSING",
					fmt.Sprintf("row %d of column %s is missing from the new table", row+1, name)).
					WithSeverity(errors.SeverityHigh).
					WithGuidance("The two files must have the same number of data rows; regenerate the new file or update the expected file").
					WithContext("column", name).
					WithContext("row", row+1)
			}

			result.CellsCompared++
			expectedValue := expected.CellAt(col, row)
			if expectedValue != actualValue {
				result.Mismatches = append(result.Mismatches, Mismatch{
					Column:   name,
					Row:      row + 1,
					Expected: expectedValue,
					Actual:   actualValue,
				})
			}
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CompareFiles reads both files and compares them. It is the whole
// program in one call: parse two tables, walk the cells, return the
// mismatches.
func CompareFiles(expectedFile, newFile string, opts Options) (*Result, error) {
	expected, err := table.ReadFile(expectedFile)
	if err != nil {
		return nil, err
	}

	actual, err := table.ReadFile(newFile)
	if err != nil {
		return nil, err
	}

	opts.ExpectedFile = expectedFile
	opts.NewFile = newFile
	return NewEngine().Compare(expected, actual, opts)
}
