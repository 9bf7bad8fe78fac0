/*
tablediff - cell-level comparison of whitespace-delimited tabular text files.

The tool compares an expected output file against a file produced by a test
run and reports every cell whose value differs, so regressions in regenerated
output tables are caught before they land.
*/
package main

import "github.com/tablediff/tablediff/cmd"

func main() {
	cmd.Execute()
}
