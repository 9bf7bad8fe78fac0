package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tablediff/tablediff/internal/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage tablediff configuration including viewing, validating, and
initializing config files.

Examples:
  tablediff config show       # Show current configuration
  tablediff config validate   # Validate configuration
  tablediff config init       # Initialize default configuration file`,
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current tablediff configuration in the specified format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		outputFormat, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", "format", err)
		}

		switch outputFormat {
		case "json":
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(cfg)
		case "yaml":
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			defer encoder.Close()
			return encoder.Encode(cfg)
		default:
			return fmt.Errorf("unsupported output format: %s (supported: json, yaml)", outputFormat)
		}
	},
}

// configValidateCmd validates the configuration
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  `Validate the current tablediff configuration and report any errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", "config", err)
		}

		// Load config to trigger validation
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration validation failed:\n%v\n", err)
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration is valid ✓\n")
		fmt.Fprintf(out, "- Project: %s\n", cfg.Project.Name)
		fmt.Fprintf(out, "- Default output: %s\n", cfg.Compare.Output)
		fmt.Fprintf(out, "- History: %s\n", map[bool]string{true: "enabled", false: "disabled"}[cfg.History.Enabled])

		return nil
	},
}

// configInitCmd initializes a default configuration file
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default tablediff configuration file with example settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", "config", err)
		}
		configPath := config.GetConfigFilePath(configFile)

		if config.ConfigExists(configPath) {
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return fmt.Errorf("failed to get %s flag: %w", "force", err)
			}
			if !force {
				return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configPath)
			}
		}

		if err := config.CreateDefaultConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create configuration file: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration file created at %s ✓\n", configPath)
		fmt.Fprintf(out, "\nNext steps:\n")
		fmt.Fprintf(out, "1. Adjust compare.ignore_columns for columns that change on every run\n")
		fmt.Fprintf(out, "2. Validate your configuration: tablediff config validate\n")
		fmt.Fprintf(out, "3. Compare files: tablediff expected.out new.out\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	configShowCmd.Flags().String("format", "yaml", "output format (json, yaml)")
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite existing configuration file")
}
