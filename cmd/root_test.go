package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

// chdirTemp moves the test into a fresh directory with a config file that
// keeps history off, so runs do not create databases in the source tree.
func chdirTemp(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current working directory: %v", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldDir) }) // nolint:errcheck

	testConfig := `
compare:
  output: text
history:
  enabled: false
`
	if err := os.WriteFile(".tablediff.yaml", []byte(testConfig), 0o644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	return tempDir
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var output bytes.Buffer
	rootCmd.SetOut(&output)
	rootCmd.SetErr(&output)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	// Flag values persist across Execute calls; reset the ones later
	// tests read.
	rootCmd.SetArgs([]string{})
	rootCmd.PersistentFlags().Set("output", "") // nolint:errcheck
	if f := rootCmd.Flags().Lookup("help"); f != nil {
		f.Value.Set("false") // nolint:errcheck
		f.Changed = false
	}
	if f := compareCmd.Flags().Lookup("ignore-columns"); f != nil {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil) // nolint:errcheck
		}
		f.Changed = false
	}

	return output.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectError bool
	}{
		{
			name:        "help flag",
			args:        []string{"--help"},
			expectError: false,
		},
		{
			name:        "one argument is rejected",
			args:        []string{"expected.out"},
			expectError: true,
		},
		{
			name:        "three arguments are rejected",
			args:        []string{"a.out", "b.out", "c.out"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)

			_, err := executeCommand(t, tt.args...)
			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestRootCommandFlags(t *testing.T) {
	expectedFlags := []string{"config", "verbose", "output"}

	for _, flagName := range expectedFlags {
		flag := rootCmd.PersistentFlags().Lookup(flagName)
		if flag == nil {
			t.Errorf("Root command should have --%s persistent flag", flagName)
		}
	}

	outputFlag := rootCmd.PersistentFlags().Lookup("output")
	if outputFlag != nil && outputFlag.DefValue != "" {
		t.Errorf("Output flag default should be empty, got '%s'", outputFlag.DefValue)
	}

	localFlags := []string{"version", "fail-on-diff", "ignore-columns", "no-history"}
	for _, flagName := range localFlags {
		if rootCmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Root command should have --%s flag", flagName)
		}
	}
}

func TestRootCommandStructure(t *testing.T) {
	if !strings.HasPrefix(rootCmd.Use, "tablediff") {
		t.Errorf("Expected Use to start with 'tablediff', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Root command should have short description")
	}

	if rootCmd.Long == "" {
		t.Error("Root command should have long description")
	}

	expectedCommands := []string{"compare", "watch", "history", "cleanup", "config", "version"}
	for _, cmdName := range expectedCommands {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if strings.HasPrefix(cmd.Use, cmdName) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Root command should have '%s' subcommand", cmdName)
		}
	}
}

func TestInitConfig(t *testing.T) {
	chdirTemp(t)

	oldCfgFile := cfgFile
	cfgFile = ""
	defer func() { cfgFile = oldCfgFile }()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("initConfig panicked: %v", r)
		}
	}()

	initConfig()

	if cfg == nil {
		t.Error("Config should not be nil after initConfig")
	}
	if cfg != nil && cfg.History.Enabled {
		t.Error("Test config should have history disabled")
	}
}

func TestGetLogger(t *testing.T) {
	if GetLogger() == nil {
		t.Error("GetLogger should never return nil")
	}
}

func TestVersionFlag(t *testing.T) {
	chdirTemp(t)

	output, err := executeCommand(t, "--version")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(output, "tablediff") {
		t.Errorf("Version output should mention tablediff, got: %s", output)
	}
}
