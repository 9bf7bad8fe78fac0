package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tablediff/tablediff/internal/storage"
)

// historyCmd lists recorded comparison runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded comparison runs",
	Long: `List comparison runs recorded in the history database, newest first.

Examples:
  tablediff history                     # most recent runs
  tablediff history --limit 50          # more of them
  tablediff history --status mismatch   # only runs that found mismatches
  tablediff history --since 24h         # runs from the last day
  tablediff history show 12             # one run with its mismatches`,
	RunE: runHistoryList,
}

// historyShowCmd prints one run with its recorded mismatches
var historyShowCmd = &cobra.Command{
	Use:   "show <run_id>",
	Short: "Show one comparison run with its mismatches",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of runs to list")
	historyCmd.Flags().Duration("since", 0, "only runs newer than this age (e.g. 24h)")
	historyCmd.Flags().String("status", "", "filter by status (ok, mismatch, error)")
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in the configuration")
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "limit", err)
	}
	since, err := cmd.Flags().GetDuration("since")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "since", err)
	}
	status, err := cmd.Flags().GetString("status")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "status", err)
	}
	outputFormat, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "output", err)
	}

	store, err := storage.NewStorage(cfg.History.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	filters := storage.RunFilters{
		Status: storage.RunStatus(status),
		Limit:  limit,
	}
	if since > 0 {
		filters.Since = time.Now().Add(-since)
	}

	runs, err := store.ListRuns(filters)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	case "yaml":
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(runs)
	default:
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No comparison runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tSTATUS\tCELLS\tMISMATCHES\tEXPECTED\tNEW")
		for _, run := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
				run.ID,
				run.CreatedAt.Format("2006-01-02 15:04:05"),
				run.Status,
				run.CellsCompared,
				run.MismatchCount,
				run.ExpectedFile,
				run.NewFile)
		}
		return w.Flush()
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in the configuration")
	}

	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}

	store, err := storage.NewStorage(cfg.History.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	mismatches, err := store.GetMismatches(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d (%s)\n", run.ID, run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "  Expected: %s\n", run.ExpectedFile)
	fmt.Fprintf(out, "  New:      %s\n", run.NewFile)
	fmt.Fprintf(out, "  Status:   %s\n", run.Status)
	fmt.Fprintf(out, "  Cells:    %d compared, %d mismatched\n", run.CellsCompared, run.MismatchCount)
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:    %s\n", run.ErrorMessage)
	}

	if len(mismatches) > 0 {
		fmt.Fprintln(out)
		for _, m := range mismatches {
			fmt.Fprintf(out, "Column %s, row %d values differ: %s expected, got %s\n",
				m.Column, m.Row, m.Expected, m.Actual)
		}
	}

	return nil
}
