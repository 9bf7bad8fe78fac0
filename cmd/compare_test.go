package cmd

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func writeDataFile(t *testing.T, name, content string) {
	t.Helper()

	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestCompare_FilesAgree(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1 col2\n1 2\n3 4\n")
	writeDataFile(t, "new.out", "2 header\ncol1 col2\n1 2\n3 4\n")

	output, err := executeCommand(t, "compare", "expected.out", "new.out")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "" {
		t.Errorf("Agreement should produce no output, got: %q", output)
	}
}

func TestCompare_SingleMismatch(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1 col2\n1 2\n3 4\n")
	writeDataFile(t, "new.out", "2 header\ncol1 col2\n1 2\n3 5\n")

	output, err := executeCommand(t, "compare", "expected.out", "new.out")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "Column col2, row 2 values differ: 4 expected, got 5\n"
	if output != want {
		t.Errorf("Expected %q, got %q", want, output)
	}
}

func TestCompare_ColumnMajorOrder(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1 col2\n1 2\n3 4\n")
	writeDataFile(t, "new.out", "2 header\ncol1 col2\n9 2\n3 8\n")

	output, err := executeCommand(t, "compare", "expected.out", "new.out")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 mismatch lines, got %d: %q", len(lines), output)
	}
	if lines[0] != "Column col1, row 1 values differ: 1 expected, got 9" {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	if lines[1] != "Column col2, row 2 values differ: 4 expected, got 8" {
		t.Errorf("Unexpected second line: %q", lines[1])
	}
}

// A column missing from the new file aborts the run after the mismatches
// found up to that point have been printed.
func TestCompare_MissingColumn(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1 col2\n1 2\n3 4\n")
	writeDataFile(t, "new.out", "2 header\ncol1\n9\n3\n")

	output, err := executeCommand(t, "compare", "expected.out", "new.out")
	if err == nil {
		t.Fatal("Expected error for missing column")
	}
	if !strings.Contains(err.Error(), "col2") {
		t.Errorf("Error should name the missing column, got: %v", err)
	}
	if !strings.Contains(output, "Column col1, row 1 values differ: 1 expected, got 9") {
		t.Errorf("Mismatches before the abort should still be printed, got: %q", output)
	}
}

func TestCompare_ExtraNewColumnIgnored(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1\n1\n")
	writeDataFile(t, "new.out", "2 header\ncol1 extra\n1 99\n")

	output, err := executeCommand(t, "compare", "expected.out", "new.out")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "" {
		t.Errorf("Extra columns in the new file should be ignored, got: %q", output)
	}
}

func TestCompare_ParseError(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "not-a-number col1\n1\n")
	writeDataFile(t, "new.out", "2 header\ncol1\n1\n")

	_, err := executeCommand(t, "compare", "expected.out", "new.out")
	if err == nil {
		t.Fatal("Expected error for malformed header count")
	}
}

func TestCompare_MissingFile(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1\n1\n")

	_, err := executeCommand(t, "compare", "expected.out", "nonexistent.out")
	if err == nil {
		t.Fatal("Expected error for missing input file")
	}
}

// The two-argument root invocation is shorthand for compare.
func TestCompare_RootShorthand(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1 col2\n1 2\n3 4\n")
	writeDataFile(t, "new.out", "2 header\ncol1 col2\n1 2\n3 5\n")

	output, err := executeCommand(t, "expected.out", "new.out")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "Column col2, row 2 values differ: 4 expected, got 5\n"
	if output != want {
		t.Errorf("Expected %q, got %q", want, output)
	}
}

func TestCompare_JSONOutput(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1 col2\n1 2\n3 4\n")
	writeDataFile(t, "new.out", "2 header\ncol1 col2\n1 2\n3 5\n")

	output, err := executeCommand(t, "compare", "expected.out", "new.out", "--output", "json")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("Output should be valid JSON: %v\noutput: %s", err, output)
	}
	if decoded["expected_file"] != "expected.out" {
		t.Errorf("Unexpected expected_file: %v", decoded["expected_file"])
	}
}

func TestCompare_IgnoreColumns(t *testing.T) {
	chdirTemp(t)

	writeDataFile(t, "expected.out", "2 header\ncol1 col2\n1 2\n3 4\n")
	writeDataFile(t, "new.out", "2 header\ncol1 col2\n1 2\n3 5\n")

	output, err := executeCommand(t, "compare", "expected.out", "new.out", "--ignore-columns", "col2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "" {
		t.Errorf("Ignored column mismatches should not be reported, got: %q", output)
	}
}
