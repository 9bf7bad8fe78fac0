// Package table provides the in-memory representation of a parsed output
// file and the reader for the header-count text format.
package table

import (
	"github.com/tablediff/tablediff/internal/errors"
)

// Table is one parsed file: an ordered sequence of column names over
// row-major string cells. A Table is immutable after construction and
// cell values keep their original string representation; nothing in the
// tool ever parses them numerically.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a Table from an ordered column-name sequence and row-major
// cell values. Column names need not be unique; lookups by name resolve
// to the first occurrence.
func New(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	return &Table{
		columns: columns,
		index:   index,
		rows:    rows,
	}
}

// Columns returns the column names in their original file order.
func (t *Table) Columns() []string {
	return t.columns
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the value at the named column and 0-based row index.
func (t *Table) Cell(column string, row int) (string, error) {
	col, ok := t.index[column]
	if !ok {
		return "", errors.NewError(errors.ErrorTypeStructure, "COLUMN_MISSING",
			"column "+column+" not present in table").
			WithSeverity(errors.SeverityHigh).
			WithContext("column", column)
	}
	if row < 0 || row >= len(t.rows) {
		return "", errors.NewError(errors.ErrorTypeStructure, "ROW_MISSING",
			"row index out of range").
			WithSeverity(errors.SeverityHigh).
			WithContext("column", column).
			WithContext("row", row).
			WithContext("rows", len(t.rows))
	}
	return t.rows[row][col], nil
}

// CellAt returns the value at a 0-based column and row index. Both
// indices must be in range; callers iterate the table's own bounds.
func (t *Table) CellAt(col, row int) string {
	return t.rows[row][col]
}
