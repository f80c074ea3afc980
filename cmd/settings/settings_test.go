package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/pipelineerror"
	"autosales/salesdash/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, base string) *storage.Manager {
	t.Helper()
	m, err := storage.NewManager(base, storage.Paths{}, "", logging.NewMockLogger())
	require.NoError(t, err)
	return m
}

func TestShow(t *testing.T) {
	base := t.TempDir()
	m := newManager(t, base)
	_, err := m.SaveUpload("a.csv", strings.NewReader("product\nA\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, show(m, false, &out))
	assert.Contains(t, out.String(), filepath.Join(base, "uploads")+" (1 files)")

	assert.Contains(t, out.String(), "Reports:          0 (Excel 0, PDF 0, CSV 0)")
	assert.NotContains(t, out.String(), "Latest report")

	outDir, err := m.ResolveOutputDir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "sales_report.xlsx"), []byte("x"), 0600))

	out.Reset()
	require.NoError(t, show(m, false, &out))
	assert.Contains(t, out.String(), "Reports:          1 (Excel 1, PDF 0, CSV 0)")
	assert.Contains(t, out.String(), "Latest report:    sales_report.xlsx")

	out.Reset()
	require.NoError(t, show(m, true, &out))
	var summary storage.Summary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 1, summary.UploadFiles)
	assert.Equal(t, 1, summary.SpreadsheetReports)
	assert.Contains(t, out.String(), `"excel_count": 1`)
}

func TestSet_KeepsOmittedDirectory(t *testing.T) {
	base := t.TempDir()
	m := newManager(t, base)
	newOut := filepath.Join(t.TempDir(), "reports")

	var out bytes.Buffer
	require.NoError(t, set(m, "", newOut, &out))
	assert.Contains(t, out.String(), newOut)
	assert.Equal(t, filepath.Join(base, "uploads"), m.Paths().UploadDir)
	assert.Equal(t, newOut, m.Paths().OutputDir)

	// Persisted settings are read back by a new manager.
	assert.Equal(t, newOut, newManager(t, base).Paths().OutputDir)
}

func TestSet_Unavailable(t *testing.T) {
	m := newManager(t, t.TempDir())
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := set(m, filepath.Join(blocker, "up"), "", &bytes.Buffer{})
	var unavailable *pipelineerror.StorageUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}
