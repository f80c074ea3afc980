package root_test

import (
	"os"
	"path/filepath"
	"testing"

	"autosales/salesdash/cmd/root"
	"autosales/salesdash/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "salesdash", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "aggregate sales exports")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestRootCommand_Flags(t *testing.T) {
	root.Init()

	for _, name := range []string{"config", "log-level", "log-format", "csv-delimiter", "json"} {
		assert.NotNil(t, root.Cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(&cobra.Command{}, []string{})
	})
}

func TestApplyFlagOverrides(t *testing.T) {
	tests := []struct {
		name      string
		flags     root.CommonFlags
		wantError string
		check     func(*testing.T, *config.Config)
	}{
		{
			name:  "no overrides",
			flags: root.CommonFlags{},
			check: func(t *testing.T, c *config.Config) {
				assert.Equal(t, "info", c.Log.Level)
				assert.Equal(t, ",", c.CSV.Delimiter)
			},
		},
		{
			name:  "all overrides",
			flags: root.CommonFlags{LogLevel: "debug", LogFormat: "json", CSVDelimiter: ";"},
			check: func(t *testing.T, c *config.Config) {
				assert.Equal(t, "debug", c.Log.Level)
				assert.Equal(t, "json", c.Log.Format)
				assert.Equal(t, ';', c.Delimiter())
			},
		},
		{name: "bad level", flags: root.CommonFlags{LogLevel: "chatty"}, wantError: "invalid log level"},
		{name: "bad format", flags: root.CommonFlags{LogFormat: "xml"}, wantError: "invalid log format"},
		{name: "bad delimiter", flags: root.CommonFlags{CSVDelimiter: ";;"}, wantError: "single character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Log.Level = "info"
			cfg.Log.Format = "text"
			cfg.CSV.Delimiter = ","

			err := root.ApplyFlagOverrides(cfg, tt.flags)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestPersistentPreRun_WiresContainer(t *testing.T) {
	originalConfig, originalContainer, originalFlags := root.AppConfig, root.AppContainer, root.SharedFlags
	t.Cleanup(func() {
		root.AppConfig, root.AppContainer, root.SharedFlags = originalConfig, originalContainer, originalFlags
	})

	base := t.TempDir()
	cfgFile := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("storage:\n  base_dir: "+base+"\nlog:\n  level: warn\n"), 0600))
	root.SharedFlags = root.CommonFlags{ConfigFile: cfgFile, CSVDelimiter: ";"}

	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))

	c, err := root.GetContainer()
	require.NoError(t, err)
	assert.Equal(t, ';', c.GetReader().Delimiter())
	assert.Equal(t, base, c.GetStorage().BaseDir())
	assert.Equal(t, "warn", root.GetConfig().Log.Level)
	assert.NotNil(t, root.GetLogrusAdapter())
}

func TestPersistentPreRun_BadConfigFile(t *testing.T) {
	originalFlags := root.SharedFlags
	t.Cleanup(func() { root.SharedFlags = originalFlags })

	root.SharedFlags = root.CommonFlags{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}
	assert.Error(t, root.Cmd.PersistentPreRunE(root.Cmd, nil))
}

func TestGetContainer_Uninitialized(t *testing.T) {
	original := root.AppContainer
	t.Cleanup(func() { root.AppContainer = original })

	root.AppContainer = nil
	_, err := root.GetContainer()
	assert.Error(t, err)
}
