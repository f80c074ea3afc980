// Package root contains the root command for the application
package root

import (
	"fmt"

	"autosales/salesdash/internal/config"
	"autosales/salesdash/internal/container"
	"autosales/salesdash/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	CSVDelimiter string
	JSON         bool
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// AppConfig is the configuration loaded by the persistent pre-run
	AppConfig *config.Config

	// AppContainer holds the wired dependencies for the running command
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "salesdash",
		Short: "A CLI tool to aggregate sales exports into charts and reports.",
		Long: `salesdash reads tabular sales exports, maps their columns to products,
revenue and dates, aggregates them by date, month or year and publishes
spreadsheet, PDF and CSV reports. It also serves the same pipeline over HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to salesdash!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					Log.Warnf("Failed to close container: %v", err)
				}
			}
		},
		SilenceUsage: true,
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches $HOME/.salesdash, .salesdash and .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.CSVDelimiter, "csv-delimiter", "", "Field delimiter of input CSV files")
	Cmd.PersistentFlags().BoolVar(&SharedFlags.JSON, "json", false, "Print results as JSON")
}

// initializeApp loads configuration, applies flag overrides and wires the container.
func initializeApp() error {
	// .env values must be in the environment before viper reads it
	config.LoadEnv(GetLogrusAdapter())

	cfg, err := config.InitializeConfigFromFile(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if err := ApplyFlagOverrides(cfg, SharedFlags); err != nil {
		return err
	}

	Log = config.ConfigureLoggingFromConfig(cfg)

	c, err := container.NewContainerWithLogger(cfg, logging.NewLogrusAdapterFromLogger(Log))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	AppConfig = cfg
	AppContainer = c
	return nil
}

// ApplyFlagOverrides copies non-empty flag values over the loaded configuration.
func ApplyFlagOverrides(cfg *config.Config, flags CommonFlags) error {
	if flags.LogLevel != "" {
		if _, err := logrus.ParseLevel(flags.LogLevel); err != nil {
			return fmt.Errorf("invalid log level: %s", flags.LogLevel)
		}
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		if flags.LogFormat != "text" && flags.LogFormat != "json" {
			return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", flags.LogFormat)
		}
		cfg.Log.Format = flags.LogFormat
	}
	if flags.CSVDelimiter != "" {
		if len([]rune(flags.CSVDelimiter)) != 1 {
			return fmt.Errorf("CSV delimiter must be a single character, got: %s", flags.CSVDelimiter)
		}
		cfg.CSV.Delimiter = flags.CSVDelimiter
	}
	return nil
}

// GetContainer returns the application container, or an error when the
// persistent pre-run has not wired it.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, fmt.Errorf("application container is not initialized")
	}
	return AppContainer, nil
}

// GetConfig returns the loaded configuration, if any.
func GetConfig() *config.Config {
	return AppConfig
}

// GetLogrusAdapter returns the shared logger behind the logging.Logger interface.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}
