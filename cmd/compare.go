package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablediff/tablediff/internal/diff"
	"github.com/tablediff/tablediff/internal/storage"
)

// compareCmd is the explicit form of the default invocation
var compareCmd = &cobra.Command{
	Use:   "compare <expected_file> <new_file>",
	Short: "Compare two tabular output files cell by cell",
	Long: `Compare an expected-values file against a file produced by a test run and
report every cell whose value differs.

Cells are visited column by column in the expected file's column order, and
within each column row by row. Each mismatch is reported as

  Column <name>, row <row> values differ: <expected> expected, got <new>

with 1-based row numbers. Columns present only in the new file are ignored;
a column or row missing from the new file aborts the comparison after the
mismatches found up to that point have been reported.

Examples:
  tablediff compare expected.out new.out
  tablediff compare expected.out new.out --output json
  tablediff compare expected.out new.out --fail-on-diff   # exit 1 on mismatch
  tablediff compare expected.out new.out --ignore-columns spectrum,runtime`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().Bool("fail-on-diff", false, "exit non-zero when value mismatches are found")
	compareCmd.Flags().StringSlice("ignore-columns", nil, "column names to skip during comparison")
	compareCmd.Flags().Bool("no-history", false, "do not record this run in the history database")
}

// runCompare executes the comparison. It also backs the two-argument form
// of the root command.
func runCompare(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	logger := GetLogger().WithComponent("compare")

	expectedFile, newFile := args[0], args[1]

	outputFormat, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "output", err)
	}
	if outputFormat == "" {
		outputFormat = cfg.Compare.Output
	}
	format, err := diff.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	failOnDiff, err := cmd.Flags().GetBool("fail-on-diff")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "fail-on-diff", err)
	}
	if !cmd.Flags().Changed("fail-on-diff") {
		failOnDiff = cfg.Compare.FailOnDiff
	}

	ignoreColumns, err := cmd.Flags().GetStringSlice("ignore-columns")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "ignore-columns", err)
	}
	ignoreColumns = append(ignoreColumns, cfg.Compare.IgnoreColumns...)

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "no-history", err)
	}

	var store storage.Storage
	if cfg.History.Enabled && !noHistory {
		store, err = storage.NewStorage(cfg.History.DatabaseURL)
		if err != nil {
			// History is a convenience; a broken database must not block
			// the comparison itself.
			logger.LogError(context.TODO(), err, "History disabled for this run")
			store = nil
		} else {
			defer store.Close()
		}
	}

	logger.Debug("Comparing files",
		"expected_file", expectedFile,
		"new_file", newFile,
		"ignore_columns", ignoreColumns)

	result, cmpErr := diff.CompareFiles(expectedFile, newFile, diff.Options{
		IgnoreColumns: ignoreColumns,
	})

	if result != nil {
		reporter := diff.NewReporter(cmd.OutOrStdout(), format)
		if err := reporter.Write(result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		if store != nil {
			if _, err := storage.RecordResult(store, result, cmpErr); err != nil {
				logger.LogError(context.TODO(), err, "Failed to record comparison run")
			}
		}
	}

	if cmpErr != nil {
		return cmpErr
	}

	logger.Debug("Comparison complete",
		"cells_compared", result.CellsCompared,
		"mismatches", len(result.Mismatches))

	if failOnDiff && result.HasMismatches() {
		if store != nil {
			store.Close()
		}
		os.Exit(1)
	}

	return nil
}
