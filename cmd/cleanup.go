package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tablediff/tablediff/internal/storage"
)

// cleanupCmd prunes old comparison runs and optimizes the database
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune old comparison runs and optimize the history database",
	Long: `Delete comparison runs older than the retention period and reclaim the
disk space they used. Recorded mismatches are deleted with their runs.

Examples:
  tablediff cleanup                   # use the configured retention period
  tablediff cleanup --older-than 168h # delete runs older than 7 days
  tablediff cleanup --dry-run         # show what would be deleted
  tablediff cleanup --stats           # show database statistics
  tablediff cleanup --vacuum          # only compact the database file`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().Duration("older-than", 0, "delete runs older than this age (default from retention_days)")
	cleanupCmd.Flags().Bool("dry-run", false, "show what would be deleted without deleting")
	cleanupCmd.Flags().Bool("stats", false, "show database statistics and exit")
	cleanupCmd.Flags().Bool("vacuum", false, "only compact the database file")
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in the configuration")
	}

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "dry-run", err)
	}
	showStats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "stats", err)
	}
	vacuumOnly, err := cmd.Flags().GetBool("vacuum")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "vacuum", err)
	}
	olderThan, err := cmd.Flags().GetDuration("older-than")
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", "older-than", err)
	}

	store, err := storage.NewStorage(cfg.History.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if showStats {
		stats, err := store.GetStats()
		if err != nil {
			return fmt.Errorf("failed to get database statistics: %w", err)
		}
		fmt.Fprintf(out, "Database statistics:\n")
		fmt.Fprintf(out, "  Size:       %d bytes\n", stats.DatabaseSizeBytes)
		fmt.Fprintf(out, "  Runs:       %d\n", stats.Runs)
		fmt.Fprintf(out, "  Mismatches: %d\n", stats.Mismatches)
		return nil
	}

	if vacuumOnly {
		if dryRun {
			fmt.Fprintln(out, "Would vacuum the database")
			return nil
		}
		if err := store.VacuumDatabase(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Database vacuumed")
		return nil
	}

	if olderThan == 0 {
		if cfg.History.RetentionDays <= 0 {
			return fmt.Errorf("no retention period configured; use --older-than or set history.retention_days")
		}
		olderThan = time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
	}
	cutoff := time.Now().Add(-olderThan)

	if dryRun {
		runs, err := store.ListRuns(storage.RunFilters{})
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		var count int
		for _, run := range runs {
			if run.CreatedAt.Before(cutoff) {
				count++
			}
		}
		fmt.Fprintf(out, "Would delete %d runs older than %s\n", count, cutoff.Format(time.RFC3339))
		return nil
	}

	deleted, err := store.CleanupOldRuns(cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up old runs: %w", err)
	}

	if err := store.VacuumDatabase(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted %d runs older than %s\n", deleted, cutoff.Format(time.RFC3339))
	return nil
}
