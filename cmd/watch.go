package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tablediff/tablediff/internal/diff"
	"github.com/tablediff/tablediff/internal/retention"
	"github.com/tablediff/tablediff/internal/storage"
	"github.com/tablediff/tablediff/internal/watch"
)

// watchCmd re-runs the comparison on a schedule
var watchCmd = &cobra.Command{
	Use:   "watch <expected_file> <new_file>",
	Short: "Re-run the comparison on a schedule",
	Long: `Repeatedly compare the expected file against the new file as the
generating test suite rewrites it, until interrupted.

Each pass is recorded in the history database, so 'tablediff history' shows
when a column started drifting. One pass runs immediately at startup; the
rest follow the schedule.

Examples:
  tablediff watch expected.out new.out
  tablediff watch expected.out new.out --schedule "@every 5s"
  tablediff watch expected.out new.out --schedule "*/2 * * * *"
  tablediff watch expected.out new.out --no-history`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("schedule", "", "cron expression or @every interval (default from config)")
	watchCmd.Flags().StringSlice("ignore-columns", nil, "column names to skip during comparison")
	watchCmd.Flags().Bool("no-history", false, "do not record runs in the history database")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	logger := GetLogger()

	schedule, err := cmd.Flags().GetString("schedule")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "schedule", err)
	}
	if schedule == "" {
		schedule = cfg.Watch.Schedule
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
			return fmt.Errorf("failed to open history database: %w", err)
		}
	} else {
		store = storage.NewMemoryStorage()
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	retentionSvc := retention.NewService(store, cfg.History, logger)
	retentionSvc.Start(ctx)
	defer retentionSvc.Stop()

	watcher := watch.NewWatcher(args[0], args[1], diff.Options{
		IgnoreColumns: ignoreColumns,
	}, store, logger)

	// Print mismatch lines for every pass, same format as compare
	out := cmd.OutOrStdout()
	watcher.OnResult = func(result *diff.Result, err error) {
		if result == nil {
			return
		}
		for _, m := range result.Mismatches {
			fmt.Fprintln(out, m.String())
		}
	}

	if _, err := watcher.RunOnce(ctx); err != nil {
		logger.LogError(ctx, err, "Initial comparison pass failed")
	}

	if err := watcher.Start(ctx, schedule); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s against %s (%s), press Ctrl+C to stop\n",
		args[1], args[0], schedule)

	<-ctx.Done()

	status := watcher.Status()
	fmt.Fprintf(cmd.ErrOrStderr(), "Stopped after %d comparison passes (%d failed)\n",
		status.RunCount, status.ErrorCount)

	return nil
}
