// Package config loads and validates tablediff configuration
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tablediff/tablediff/internal/errors"
	"github.com/tablediff/tablediff/internal/logging"
)

// Config represents the complete tablediff configuration
type Config struct {
	Project ProjectConfig        `json:"project" yaml:"project" mapstructure:"project"`
	Compare CompareConfig        `json:"compare" yaml:"compare" mapstructure:"compare"`
	History HistoryConfig        `json:"history" yaml:"history" mapstructure:"history"`
	Watch   WatchConfig          `json:"watch" yaml:"watch" mapstructure:"watch"`
	Logging logging.LoggerConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// ProjectConfig contains project-level settings
type ProjectConfig struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
}

// CompareConfig contains defaults for the comparison itself
type CompareConfig struct {
	Output        string   `json:"output" yaml:"output" mapstructure:"output"` // text, json, yaml
	FailOnDiff    bool     `json:"fail_on_diff" yaml:"fail_on_diff" mapstructure:"fail_on_diff"`
	IgnoreColumns []string `json:"ignore_columns,omitempty" yaml:"ignore_columns,omitempty" mapstructure:"ignore_columns"`
}

// HistoryConfig contains comparison-run history settings
type HistoryConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	DatabaseURL     string        `json:"database_url" yaml:"database_url" mapstructure:"database_url"`
	RetentionDays   int           `json:"retention_days" yaml:"retention_days" mapstructure:"retention_days"`
	AutoCleanup     bool          `json:"auto_cleanup" yaml:"auto_cleanup" mapstructure:"auto_cleanup"`
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// WatchConfig contains settings for watch mode
type WatchConfig struct {
	Schedule string `json:"schedule" yaml:"schedule" mapstructure:"schedule"` // cron expression
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:        "tablediff project",
			Description: "Expected-vs-new output file comparison",
		},
		Compare: CompareConfig{
			Output:        "text",
			FailOnDiff:    false,
			IgnoreColumns: []string{},
		},
		History: HistoryConfig{
			Enabled:         true,
			DatabaseURL:     "./tablediff.db",
			RetentionDays:   90,
			AutoCleanup:     true,
			CleanupInterval: 24 * time.Hour,
		},
		Watch: WatchConfig{
			Schedule: "@every 30s",
		},
		Logging: logging.DefaultLoggerConfig(),
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".tablediff")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("TABLEDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file is fine, defaults apply
		} else {
			return nil, errors.WrapError(err, errors.ErrorTypeConfig, "CONFIG_READ_ERROR", "failed to read config file").
				WithSeverity(errors.SeverityHigh).
				WithGuidance("Check file permissions and YAML syntax")
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeConfig, "CONFIG_UNMARSHAL_ERROR", "failed to unmarshal config").
			WithSeverity(errors.SeverityHigh).
			WithGuidance("Check configuration file structure and field types")
	}

	substituteEnvVars(config)

	if err := ValidateConfig(config); err != nil {
		if te, ok := err.(*errors.Error); ok {
			return nil, te
		}
		return nil, errors.WrapError(err, errors.ErrorTypeConfig, "CONFIG_VALIDATION_ERROR", "configuration validation failed").
			WithSeverity(errors.SeverityHigh).
			WithGuidance("Run 'tablediff config validate' for detailed error information")
	}

	return config, nil
}

// setDefaults sets default values in Viper
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("project.name", defaults.Project.Name)
	v.SetDefault("project.description", defaults.Project.Description)

	v.SetDefault("compare.output", defaults.Compare.Output)
	v.SetDefault("compare.fail_on_diff", defaults.Compare.FailOnDiff)

	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.database_url", defaults.History.DatabaseURL)
	v.SetDefault("history.retention_days", defaults.History.RetentionDays)
	v.SetDefault("history.auto_cleanup", defaults.History.AutoCleanup)
	v.SetDefault("history.cleanup_interval", defaults.History.CleanupInterval)

	v.SetDefault("watch.schedule", defaults.Watch.Schedule)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output", defaults.Logging.Output)
	v.SetDefault("logging.add_source", defaults.Logging.AddSource)
}

// ValidateConfig checks enum fields and intervals
func ValidateConfig(config *Config) error {
	switch config.Compare.Output {
	case "text", "json", "yaml":
	default:
		return errors.NewError(errors.ErrorTypeConfig, "CONFIG_INVALID",
			fmt.Sprintf("compare.output must be text, json, or yaml, got %q", config.Compare.Output)).
			WithGuidance("Set compare.output to one of: text, json, yaml")
	}

	switch config.Logging.Level {
	case logging.LogLevelDebug, logging.LogLevelInfo, logging.LogLevelWarn, logging.LogLevelError:
	default:
		return errors.NewError(errors.ErrorTypeConfig, "CONFIG_INVALID",
			fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", config.Logging.Level)).
			WithGuidance("Set logging.level to one of: debug, info, warn, error")
	}

	switch config.Logging.Format {
	case logging.LogFormatText, logging.LogFormatJSON:
	default:
		return errors.NewError(errors.ErrorTypeConfig, "CONFIG_INVALID",
			fmt.Sprintf("logging.format must be text or json, got %q", config.Logging.Format)).
			WithGuidance("Set logging.format to text or json")
	}

	if config.History.Enabled {
		if config.History.DatabaseURL == "" {
			return errors.NewError(errors.ErrorTypeConfig, "CONFIG_INVALID",
				"history.database_url must be set when history is enabled").
				WithGuidance("Set history.database_url to a writable file path, e.g. ./tablediff.db")
		}
		if config.History.RetentionDays < 0 {
			return errors.NewError(errors.ErrorTypeConfig, "CONFIG_INVALID",
				fmt.Sprintf("history.retention_days must not be negative, got %d", config.History.RetentionDays)).
				WithGuidance("Set history.retention_days to 0 (keep forever) or a positive number of days")
		}
		if config.History.AutoCleanup && config.History.CleanupInterval <= 0 {
			return errors.NewError(errors.ErrorTypeConfig, "CONFIG_INVALID",
				"history.cleanup_interval must be positive when auto_cleanup is enabled").
				WithGuidance("Set history.cleanup_interval to a duration such as 24h")
		}
	}

	if config.Watch.Schedule == "" {
		return errors.NewError(errors.ErrorTypeConfig, "CONFIG_INVALID",
			"watch.schedule must not be empty").
			WithGuidance("Set watch.schedule to a cron expression or an interval such as '@every 30s'")
	}

	return nil
}

// substituteEnvVars performs ${VAR} substitution in string settings
func substituteEnvVars(config *Config) {
	envVarRegex := regexp.MustCompile(`\$\{([^}]+)\}`)

	expand := func(value string) string {
		return envVarRegex.ReplaceAllStringFunc(value, func(match string) string {
			envVar := strings.Trim(match, "${}")
			if envValue := os.Getenv(envVar); envValue != "" {
				return envValue
			}
			return match
		})
	}

	config.History.DatabaseURL = expand(config.History.DatabaseURL)
	config.Logging.Output = expand(config.Logging.Output)
}
