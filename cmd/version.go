package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tablediff/tablediff/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for tablediff including version number,
git commit, build date, Go version, and platform information.

Examples:
  tablediff version                 # Show basic version info
  tablediff version --format json   # Show version info in JSON format
  tablediff version --detailed      # Show detailed version information`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFormat, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", "format", err)
		}
		detailed, err := cmd.Flags().GetBool("detailed")
		if err != nil {
			return fmt.Errorf("failed to get detailed flag: %w", err)
		}

		versionInfo := version.GetVersion()

		switch outputFormat {
		case "json":
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(versionInfo)
		case "yaml":
			encoder := yaml.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent(2)
			defer encoder.Close()
			return encoder.Encode(versionInfo)
		default:
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersionString())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionString())
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().String("format", "text", "output format (text, json, yaml)")
	versionCmd.Flags().BoolP("detailed", "d", false, "show detailed version information")
}
