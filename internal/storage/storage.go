// Package storage resolves and creates the upload and output directories, and
// stores uploaded files under collision-free tokens.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"autosales/salesdash/internal/fileutils"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"
	"autosales/salesdash/internal/report"
	"autosales/salesdash/internal/validation"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Default directory and file names, relative to the base directory.
const (
	DefaultUploadDir    = "uploads"
	DefaultOutputDir    = "output"
	DefaultSettingsFile = "storage.yaml"
)

// Paths is the persisted storage configuration.
type Paths struct {
	UploadDir string `json:"upload_dir" yaml:"upload_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// Summary describes the storage state for the settings view.
type Summary struct {
	UploadDir   string `json:"upload_dir"`
	OutputDir   string `json:"output_dir"`
	UploadFiles int    `json:"upload_files"`

	TotalReports       int                `json:"total_reports"`
	SpreadsheetReports int                `json:"excel_count"`
	DocumentReports    int                `json:"pdf_count"`
	CSVReports         int                `json:"csv_count"`
	LatestReport       *models.ReportInfo `json:"latest_report,omitempty"`
}

// Manager owns the upload and output directory locations.
type Manager struct {
	baseDir      string
	settingsFile string
	logger       logging.Logger

	mu    sync.RWMutex
	paths Paths
}

// NewManager creates a Manager. Empty paths fall back to the defaults under
// baseDir; relative paths are resolved against baseDir. Paths persisted by an
// earlier UpdatePaths call take precedence over the given ones.
func NewManager(baseDir string, configured Paths, settingsFile string, logger logging.Logger) (*Manager, error) {
	if baseDir == "" {
		baseDir = "."
	}
	base, err := filepath.Abs(expand(baseDir))
	if err != nil {
		return nil, &pipelineerror.StorageUnavailableError{Path: baseDir, Err: err}
	}
	if settingsFile == "" {
		settingsFile = DefaultSettingsFile
	}

	m := &Manager{baseDir: base, logger: logger}
	m.settingsFile = m.resolve(settingsFile, DefaultSettingsFile)

	persisted, err := m.loadSettings()
	if err != nil {
		return nil, err
	}
	if persisted.UploadDir != "" {
		configured.UploadDir = persisted.UploadDir
	}
	if persisted.OutputDir != "" {
		configured.OutputDir = persisted.OutputDir
	}

	m.paths = Paths{
		UploadDir: m.resolve(configured.UploadDir, DefaultUploadDir),
		OutputDir: m.resolve(configured.OutputDir, DefaultOutputDir),
	}
	return m, nil
}

// BaseDir returns the absolute base directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Paths returns the current resolved directories without creating them.
func (m *Manager) Paths() Paths {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// ResolveUploadDir returns the upload directory, creating it if needed.
func (m *Manager) ResolveUploadDir() (string, error) {
	return ensure(m.Paths().UploadDir)
}

// ResolveOutputDir returns the output directory, creating it if needed.
func (m *Manager) ResolveOutputDir() (string, error) {
	return ensure(m.Paths().OutputDir)
}

// UpdatePaths switches to new directories. Both are created before anything is
// changed; the new paths are then persisted to the settings file. Empty values
// mean the defaults.
func (m *Manager) UpdatePaths(uploadDir, outputDir string) (Paths, error) {
	next := Paths{
		UploadDir: m.resolve(uploadDir, DefaultUploadDir),
		OutputDir: m.resolve(outputDir, DefaultOutputDir),
	}
	if _, err := ensure(next.UploadDir); err != nil {
		return Paths{}, err
	}
	if _, err := ensure(next.OutputDir); err != nil {
		return Paths{}, err
	}

	if err := m.saveSettings(next); err != nil {
		return Paths{}, err
	}

	m.mu.Lock()
	m.paths = next
	m.mu.Unlock()

	m.logger.Info("Updated storage paths",
		logging.F("upload_dir", next.UploadDir),
		logging.F("output_dir", next.OutputDir))
	return next, nil
}

// SaveUpload stores r in the upload directory as <uuid>_<basename of name> and
// returns that token.
func (m *Manager) SaveUpload(name string, r io.Reader) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if err := validation.IsSafeFilename(base); err != nil {
		return "", &pipelineerror.ParseError{Source: name, Field: "filename", Value: name, Err: err}
	}

	dir, err := m.ResolveUploadDir()
	if err != nil {
		return "", err
	}

	token := uuid.NewString() + "_" + base
	path := filepath.Join(dir, token)
	err = fileutils.WriteAtomic(path, 0600, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
	if err != nil {
		return "", &pipelineerror.WriteError{Path: path, Err: err}
	}

	m.logger.Info("Stored upload",
		logging.F(logging.FieldFile, base),
		logging.F(logging.FieldOutputFile, path))
	return token, nil
}

// OpenUpload returns the path of a stored upload. Only the last path element of
// token is used.
func (m *Manager) OpenUpload(token string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(token, `\`, "/"))
	if err := validation.IsSafeFilename(base); err != nil {
		return "", &pipelineerror.NotFoundError{Kind: "upload", Name: token}
	}
	path := filepath.Join(m.Paths().UploadDir, base)
	if !fileutils.FileExists(path) {
		return "", &pipelineerror.NotFoundError{Kind: "upload", Name: token}
	}
	return path, nil
}

// Summary reports the directories, the number of stored uploads and the
// reports in the output directory. Missing directories count as empty.
func (m *Manager) Summary() (Summary, error) {
	paths := m.Paths()
	s := Summary{UploadDir: paths.UploadDir, OutputDir: paths.OutputDir}

	entries, err := os.ReadDir(paths.UploadDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return s, &pipelineerror.StorageUnavailableError{Path: paths.UploadDir, Err: err}
	}
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			s.UploadFiles++
		}
	}

	reports, err := report.ListReports(paths.OutputDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return s, err
	}
	analytics := report.Analyze(reports)
	s.TotalReports = analytics.TotalReports
	s.SpreadsheetReports = analytics.SpreadsheetReports
	s.DocumentReports = analytics.DocumentReports
	s.CSVReports = analytics.CSVReports
	s.LatestReport = analytics.LatestReport
	return s, nil
}

// resolve expands ~ and environment variables and anchors relative paths at the
// base directory. Empty values use def.
func (m *Manager) resolve(path, def string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = def
	}
	path = expand(path)
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.baseDir, path)
	}
	return filepath.Clean(path)
}

func expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

func ensure(dir string) (string, error) {
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return "", &pipelineerror.StorageUnavailableError{Path: dir, Err: err}
	}
	if err := validation.IsValidDirectory(dir); err != nil {
		return "", &pipelineerror.StorageUnavailableError{Path: dir, Err: err}
	}
	return dir, nil
}

func (m *Manager) loadSettings() (Paths, error) {
	var p Paths
	data, err := os.ReadFile(m.settingsFile)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("error reading storage settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, &pipelineerror.ParseError{Source: m.settingsFile, Field: "storage", Err: err}
	}
	return p, nil
}

func (m *Manager) saveSettings(p Paths) error {
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(m.settingsFile)); err != nil {
		return &pipelineerror.StorageUnavailableError{Path: filepath.Dir(m.settingsFile), Err: err}
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("error marshaling storage settings: %w", err)
	}
	if err := fileutils.WriteFileAtomic(m.settingsFile, data, 0600); err != nil {
		return &pipelineerror.WriteError{Path: m.settingsFile, Err: err}
	}
	return nil
}
