package table

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tablediff/tablediff/internal/errors"
)

// ReadFile parses an output text file into a Table.
//
// The format is the header-count convention: the first whitespace-separated
// token of the first line is an integer nhead giving the total number of
// header lines, the last of which holds the column names. Every line after
// the header block is one data row, whitespace-split into one value per
// column. Trailing tokens on the first line are ignored.
//
// For nhead <= 1 the first line itself is the column-name line, leading
// count token included.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeIO, "FILE_OPEN", "failed to open input file").
			WithSeverity(errors.SeverityHigh).
			WithGuidance("Check that the file exists and is readable").
			WithContext("file", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, readError(err, path)
		}
		return nil, errors.NewError(errors.ErrorTypeParse, "FILE_EMPTY", "input file is empty").
			WithGuidance("The first line must start with the number of header lines").
			WithContext("file", path)
	}

	line := scanner.Text()
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.NewError(errors.ErrorTypeParse, "HEADER_COUNT", "first line is blank").
			WithGuidance("The first whitespace-separated token must be the total number of header lines").
			WithContext("file", path)
	}

	nhead, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeParse, "HEADER_COUNT",
			fmt.Sprintf("first token %q of the first line is not an integer", fields[0])).
			WithGuidance("The first whitespace-separated token must be the total number of header lines").
			WithContext("file", path)
	}

	// Advance to line nhead, the column-name line. The first line has
	// already been read, so nhead-1 more lines complete the header block.
	for i := 1; i < nhead; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, readError(err, path)
			}
			return nil, errors.NewError(errors.ErrorTypeParse, "HEADER_TRUNCATED",
				fmt.Sprintf("declared header line count %d exceeds the file length", nhead)).
				WithGuidance("Check that the header count on the first line matches the actual header block").
				WithContext("file", path).
				WithContext("nhead", nhead)
		}
		line = scanner.Text()
	}

	columns := strings.Fields(line)

	var rows [][]string
	lineno := nhead
	for scanner.Scan() {
		lineno++
		row := strings.Fields(scanner.Text())
		if len(row) != len(columns) {
			return nil, errors.NewError(errors.ErrorTypeParse, "ROW_WIDTH",
				fmt.Sprintf("line %d has %d values, want %d", lineno, len(row), len(columns))).
				WithGuidance("Every data row must have exactly one value per column name").
				WithContext("file", path).
				WithContext("line", lineno)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, readError(err, path)
	}

	return New(columns, rows), nil
}

func readError(err error, path string) *errors.Error {
	return errors.WrapError(err, errors.ErrorTypeIO, "FILE_READ", "failed to read input file").
		WithSeverity(errors.SeverityHigh).
		WithGuidance("Check file permissions and that the file is a plain text file").
		WithContext("file", path)
}
