// Package cmd contains all CLI commands for tablediff
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablediff/tablediff/internal/config"
	"github.com/tablediff/tablediff/internal/errors"
	"github.com/tablediff/tablediff/internal/logging"
	"github.com/tablediff/tablediff/internal/version"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logging.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tablediff [expected_file] [new_file]",
	Short: "Report cell-level differences between tabular output files",
	Long: `tablediff compares two whitespace-delimited tabular text files - an
expected-values file and a file produced by a test run - and reports every
cell whose value differs.

Both files use the header-count format: the first token of the first line is
the number of header lines, the last of which holds the column names, and
every following line is one data row. Values are compared as raw strings.

Given two file paths, tablediff runs the comparison directly:

  tablediff expected.out new.out

No output means the files agree on every cell.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("accepts either no arguments or exactly 2, received %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		versionFlag, err := cmd.Flags().GetBool("version")
		if err != nil {
			return fmt.Errorf("failed to get version flag: %w", err)
		}
		if versionFlag {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionString())
			return nil
		}

		if len(args) == 2 {
			return runCompare(cmd, args)
		}

		return cmd.Help()
	},
}

// Execute runs the root command. It is called once from main.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .tablediff.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (text, json, yaml)")

	rootCmd.Flags().Bool("version", false, "show version information")
	rootCmd.Flags().Bool("fail-on-diff", false, "exit non-zero when value mismatches are found")
	rootCmd.Flags().StringSlice("ignore-columns", nil, "column names to skip during comparison")
	rootCmd.Flags().Bool("no-history", false, "do not record this run in the history database")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	logConfig := logging.DefaultLoggerConfig()

	if rootCmd.Flag("verbose").Changed {
		logConfig.Level = logging.LogLevelDebug
	}

	var err error
	logger, err = logging.NewLogger(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitGlobalLogger(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing global logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err = config.LoadConfig(cfgFile)
	if err != nil {
		if te, ok := err.(*errors.Error); ok {
			logger.LogError(context.TODO(), te, "Failed to load configuration")
			fmt.Fprintf(os.Stderr, "Configuration Error: %s\n", te.Message)
			if te.Guidance != "" {
				fmt.Fprintf(os.Stderr, "Guidance: %s\n", te.Guidance)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		}
		os.Exit(1)
	}

	// Verbose logging wins over the configured level
	if rootCmd.Flag("verbose").Changed {
		cfg.Logging.Level = logging.LogLevelDebug
	}

	if rootCmd.Flag("verbose").Changed {
		configPath := config.GetConfigFilePath(cfgFile)
		if config.ConfigExists(configPath) {
			logger.Info("Using config file", "path", configPath)
		} else {
			logger.Info("Using default configuration (no config file found)")
		}
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// GetLogger returns the initialized logger
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return logger
}
