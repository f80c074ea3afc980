// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"autosales/salesdash/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "SALESDASH"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Storage struct {
		BaseDir      string `mapstructure:"base_dir" yaml:"base_dir"`
		UploadDir    string `mapstructure:"upload_dir" yaml:"upload_dir"`
		OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
		SettingsFile string `mapstructure:"settings_file" yaml:"settings_file"`
	} `mapstructure:"storage" yaml:"storage"`

	History struct {
		File       string `mapstructure:"file" yaml:"file"`
		MaxEntries int    `mapstructure:"max_entries" yaml:"max_entries"`
	} `mapstructure:"history" yaml:"history"`

	Report struct {
		Formats        []string `mapstructure:"formats" yaml:"formats"`
		KeepLatestCopy bool     `mapstructure:"keep_latest_copy" yaml:"keep_latest_copy"`
	} `mapstructure:"report" yaml:"report"`

	Server struct {
		Address string `mapstructure:"address" yaml:"address"`
		Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then config.yaml from the standard locations, then SALESDASH_*
// environment variables.
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig with an explicit config file
// instead of the standard search locations. An empty path searches as usual.
func InitializeConfigFromFile(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.salesdash")
		v.AddConfigPath(".salesdash")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// CSV defaults
	v.SetDefault("csv.delimiter", ",")

	// Storage defaults, relative to the base directory
	v.SetDefault("storage.base_dir", ".")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.output_dir", "output")
	v.SetDefault("storage.settings_file", "storage.yaml")

	// History defaults
	v.SetDefault("history.file", "chart_history.yaml")
	v.SetDefault("history.max_entries", 20)

	// Report defaults
	v.SetDefault("report.formats", []string{"spreadsheet", "document"})
	v.SetDefault("report.keep_latest_copy", true)

	// Server defaults
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.metrics", true)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative, got: %d", config.History.MaxEntries)
	}

	if config.History.File == "" {
		return fmt.Errorf("history.file must be set")
	}

	if _, err := models.ParseReportFormats(config.Report.Formats); err != nil {
		return fmt.Errorf("report.formats: %w", err)
	}

	if config.Server.Address == "" {
		return fmt.Errorf("server.address must be set")
	}

	return nil
}

// Delimiter returns the configured CSV delimiter.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// ReportFormats returns the parsed default report formats.
func (c *Config) ReportFormats() []models.ReportFormat {
	formats, err := models.ParseReportFormats(c.Report.Formats)
	if err != nil || len(formats) == 0 {
		return models.DefaultReportFormats
	}
	return formats
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
