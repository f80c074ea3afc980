package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/pipelineerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, configured Paths) (*Manager, string) {
	t.Helper()
	base := t.TempDir()
	m, err := NewManager(base, configured, "", logging.NewMockLogger())
	require.NoError(t, err)
	return m, base
}

func TestResolveDirs_Defaults(t *testing.T) {
	m, base := newTestManager(t, Paths{})

	uploads, err := m.ResolveUploadDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, DefaultUploadDir), uploads)
	assert.DirExists(t, uploads)

	output, err := m.ResolveOutputDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, DefaultOutputDir), output)
	assert.DirExists(t, output)
}

func TestResolveDirs_ConfiguredPaths(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "reports")
	t.Setenv("SALESDASH_TEST_UPLOADS", "incoming")

	m, base := newTestManager(t, Paths{UploadDir: "data/$SALESDASH_TEST_UPLOADS", OutputDir: abs})

	uploads, err := m.ResolveUploadDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "data", "incoming"), uploads)

	output, err := m.ResolveOutputDir()
	require.NoError(t, err)
	assert.Equal(t, abs, output)
}

func TestExpand_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "reports"), expand("~/reports"))
	assert.Equal(t, "relative", expand("relative"))
}

func TestResolveDirs_StorageUnavailable(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0600))

	m, err := NewManager(base, Paths{OutputDir: filepath.Join(blocker, "output")}, "", logging.NewMockLogger())
	require.NoError(t, err)

	_, err = m.ResolveOutputDir()
	var unavailable *pipelineerror.StorageUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, filepath.Join(blocker, "output"), unavailable.Path)
}

func TestUpdatePaths_PersistsAcrossManagers(t *testing.T) {
	m, base := newTestManager(t, Paths{})

	paths, err := m.UpdatePaths("in", "out")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "in"), paths.UploadDir)
	assert.DirExists(t, paths.UploadDir)
	assert.DirExists(t, paths.OutputDir)
	assert.FileExists(t, filepath.Join(base, DefaultSettingsFile))

	reopened, err := NewManager(base, Paths{UploadDir: "configured"}, "", logging.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, paths, reopened.Paths())
}

func TestUpdatePaths_FailureKeepsCurrentPaths(t *testing.T) {
	m, base := newTestManager(t, Paths{})
	before := m.Paths()

	blocker := filepath.Join(base, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := m.UpdatePaths("in", filepath.Join(blocker, "out"))
	var unavailable *pipelineerror.StorageUnavailableError
	assert.True(t, errors.As(err, &unavailable))
	assert.Equal(t, before, m.Paths())
	assert.NoFileExists(t, filepath.Join(base, DefaultSettingsFile))
}

func TestSaveAndOpenUpload(t *testing.T) {
	m, _ := newTestManager(t, Paths{})

	token, err := m.SaveUpload("C:\\exports\\sales.csv", strings.NewReader("product,total\nA,1\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(token, "_sales.csv"))
	assert.Len(t, strings.TrimSuffix(token, "_sales.csv"), 36)

	path, err := m.OpenUpload(token)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "product,total\nA,1\n", string(data))

	// Directory components in the token are ignored
	traversal, err := m.OpenUpload("../../" + token)
	require.NoError(t, err)
	assert.Equal(t, path, traversal)

	_, err = m.OpenUpload("missing.csv")
	assert.True(t, pipelineerror.IsNotFound(err))

	_, err = m.OpenUpload("..")
	assert.True(t, pipelineerror.IsNotFound(err))
}

func TestSaveUpload_RejectsEmptyName(t *testing.T) {
	m, _ := newTestManager(t, Paths{})
	_, err := m.SaveUpload("", strings.NewReader("x"))
	var parseErr *pipelineerror.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestSummary(t *testing.T) {
	m, _ := newTestManager(t, Paths{})

	s, err := m.Summary()
	require.NoError(t, err)
	assert.Zero(t, s.UploadFiles)

	for _, name := range []string{"a.csv", "b.csv"} {
		_, err := m.SaveUpload(name, strings.NewReader("x"))
		require.NoError(t, err)
	}

	s, err = m.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, s.UploadFiles)
	assert.Equal(t, m.Paths().OutputDir, s.OutputDir)
	assert.Zero(t, s.TotalReports)
	assert.Nil(t, s.LatestReport)
}

func TestSummary_CountsReports(t *testing.T) {
	m, _ := newTestManager(t, Paths{})
	out, err := m.ResolveOutputDir()
	require.NoError(t, err)

	for _, name := range []string{"sales_report_20240101_000000.xlsx", "summary_20240101_000000.pdf", "summary.pdf", "chart_series.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(out, name), []byte("x"), 0600))
	}
	newest := filepath.Join(out, "summary.pdf")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(newest, future, future))

	s, err := m.Summary()
	require.NoError(t, err)
	assert.Equal(t, 4, s.TotalReports)
	assert.Equal(t, 1, s.SpreadsheetReports)
	assert.Equal(t, 2, s.DocumentReports)
	assert.Equal(t, 1, s.CSVReports)
	require.NotNil(t, s.LatestReport)
	assert.Equal(t, "summary.pdf", s.LatestReport.Name)
}

func TestSummary_MissingOutputDirIsEmpty(t *testing.T) {
	m, _ := newTestManager(t, Paths{})
	require.NoError(t, os.RemoveAll(m.Paths().OutputDir))

	s, err := m.Summary()
	require.NoError(t, err)
	assert.Zero(t, s.TotalReports)
}
