package main

import (
	"fmt"
	"os"
	"strings"

	"autosales/salesdash/cmd/columns"
	"autosales/salesdash/cmd/history"
	"autosales/salesdash/cmd/process"
	"autosales/salesdash/cmd/reports"
	"autosales/salesdash/cmd/root"
	"autosales/salesdash/cmd/serve"
	"autosales/salesdash/cmd/settings"
	"autosales/salesdash/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Configure the global log level before any logger is used
	configureLogLevelDirectly()

	// 2. Initialize root command flags
	root.Init()

	// 3. Add all subcommands
	root.Cmd.AddCommand(columns.Cmd)
	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(history.Cmd)
	root.Cmd.AddCommand(reports.Cmd)
	root.Cmd.AddCommand(settings.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

// configureLogLevelDirectly sets the global logrus level from SALESDASH_LOG_LEVEL
func configureLogLevelDirectly() {
	logLevelStr := config.GetEnv(config.EnvPrefix+"_LOG_LEVEL", "info")
	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	root.Log.SetLevel(logLevel)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
