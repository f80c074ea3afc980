package container

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autosales/salesdash/internal/config"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.CSV.Delimiter = ";"
	cfg.Storage.BaseDir = t.TempDir()
	cfg.History.File = "chart_history.yaml"
	cfg.History.MaxEntries = 5
	cfg.Report.Formats = []string{"csv"}
	cfg.Server.Address = ":0"
	return cfg
}

func TestNewContainer(t *testing.T) {
	tests := []struct {
		name        string
		config      func(t *testing.T) *config.Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "nil config",
			config:      func(*testing.T) *config.Config { return nil },
			expectError: true,
			errorMsg:    "configuration cannot be nil",
		},
		{
			name:   "valid config",
			config: testConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := NewContainer(tt.config(t))

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, container)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, container)
			assert.NotNil(t, container.GetLogger())
			assert.NotNil(t, container.GetConfig())
			assert.NotNil(t, container.GetStorage())
			assert.NotNil(t, container.GetHistory())
			assert.NotNil(t, container.GetReports())
			assert.NotNil(t, container.GetPipeline())
			assert.NotNil(t, container.GetMetrics())
			assert.NoError(t, container.Close())
		})
	}
}

func TestNewContainerWithLogger_NilLogger(t *testing.T) {
	_, err := NewContainerWithLogger(testConfig(t), nil)
	assert.Error(t, err)
}

func TestContainer_WiresConfiguration(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	assert.Equal(t, ';', c.GetReader().Delimiter())
	assert.Equal(t, filepath.Join(c.GetStorage().BaseDir(), "chart_history.yaml"), c.GetHistory().Path())
	assert.Equal(t, filepath.Join(c.GetStorage().BaseDir(), "uploads"), c.GetStorage().Paths().UploadDir)
}

func TestContainer_PipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainerWithLogger(cfg, logging.NewMockLogger())
	require.NoError(t, err)

	token, err := c.GetStorage().SaveUpload("sales.csv", strings.NewReader("Product;Revenue;Month\nA;10;1\nB;5;2\n"))
	require.NoError(t, err)

	res, err := c.GetPipeline().Run(pipeline.Request{
		Token:   token,
		Mapping: models.ColumnMapping{Product: "product", Revenue: "revenue", Month: "month"},
		Mode:    models.ByMonth,
		Name:    "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan", "Feb"}, res.Aggregation.Labels())

	// Configured default format is csv only.
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, models.FormatCSV, res.Artifacts[0].Format)

	entry, err := c.GetHistory().Load("monthly")
	require.NoError(t, err)
	assert.Equal(t, models.ByMonth, entry.Mode)

	_, err = os.Stat(c.GetHistory().Path())
	assert.NoError(t, err)

	rec := httptest.NewRecorder()
	c.GetMetrics().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `salesdash_pipeline_runs_total{mode="month",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `salesdash_reports_published_total{format="csv"} 1`)
}
