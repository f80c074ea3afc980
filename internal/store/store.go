// Package store persists named chart configurations and their aggregation
// snapshots in a single YAML document.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"autosales/salesdash/internal/fileutils"
	"autosales/salesdash/internal/logging"
	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultMaxEntries caps the history when no limit is configured.
const DefaultMaxEntries = 20

// ChartHistory is the contract of the chart history store.
type ChartHistory interface {
	Save(entry models.ChartHistoryEntry, opts SaveOptions) (models.ChartHistoryEntry, error)
	List() ([]models.ChartHistoryEntry, error)
	Summaries() ([]models.ChartHistorySummary, error)
	Load(name string) (models.ChartHistoryEntry, error)
	Delete(name string) error
}

// SaveOptions controls how Save treats an existing entry with the same name.
type SaveOptions struct {
	// Reinsert moves a replaced entry to the front instead of keeping its position.
	Reinsert bool
}

// historyDocument is the on-disk layout, entries most recent first.
type historyDocument struct {
	Entries []models.ChartHistoryEntry `yaml:"entries"`
}

// ChartHistoryStore keeps the history in one YAML file. Every call reads the
// file; every mutation rewrites it atomically while holding the store lock.
type ChartHistoryStore struct {
	path       string
	maxEntries int
	logger     logging.Logger
	now        func() time.Time

	mu sync.Mutex
}

// NewChartHistoryStore creates a store backed by path. maxEntries <= 0 disables
// the cap.
func NewChartHistoryStore(path string, maxEntries int, logger logging.Logger) *ChartHistoryStore {
	return &ChartHistoryStore{
		path:       path,
		maxEntries: maxEntries,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for entry timestamps.
func (s *ChartHistoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Path returns the backing file.
func (s *ChartHistoryStore) Path() string {
	return s.path
}

// Save stores entry. A new name goes to the front of the history. An existing
// name has its content replaced while keeping its position and creation time,
// unless opts.Reinsert moves it to the front as if new. An empty name is
// replaced by a generated one. The stored entry is returned.
func (s *ChartHistoryStore) Save(entry models.ChartHistoryEntry, opts SaveOptions) (models.ChartHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return models.ChartHistoryEntry{}, err
	}

	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		entry.Name = GenerateName()
	}
	now := s.now().UTC()
	entry.UpdatedAt = now

	idx := indexOf(doc.Entries, entry.Name)
	switch {
	case idx >= 0 && !opts.Reinsert:
		entry.CreatedAt = doc.Entries[idx].CreatedAt
		doc.Entries[idx] = entry
	default:
		if idx >= 0 {
			doc.Entries = append(doc.Entries[:idx], doc.Entries[idx+1:]...)
		}
		entry.CreatedAt = now
		doc.Entries = append([]models.ChartHistoryEntry{entry}, doc.Entries...)
	}

	if s.maxEntries > 0 && len(doc.Entries) > s.maxEntries {
		dropped := len(doc.Entries) - s.maxEntries
		doc.Entries = doc.Entries[:s.maxEntries]
		s.logger.Debug("Trimmed chart history",
			logging.F(logging.FieldHistory, s.path),
			logging.F(logging.FieldCount, dropped))
	}

	if err := s.write(doc); err != nil {
		return models.ChartHistoryEntry{}, err
	}

	s.logger.Info("Saved chart history entry",
		logging.F("name", entry.Name),
		logging.F(logging.FieldMode, entry.Mode.String()),
		logging.F("replaced", idx >= 0))
	return entry, nil
}

// List returns all entries, most recent first.
func (s *ChartHistoryStore) List() ([]models.ChartHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// Summaries returns the list view of every entry, most recent first.
func (s *ChartHistoryStore) Summaries() ([]models.ChartHistorySummary, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]models.ChartHistorySummary, len(entries))
	for i, e := range entries {
		out[i] = e.Summary()
	}
	return out, nil
}

// Load returns the entry named name or a NotFoundError.
func (s *ChartHistoryStore) Load(name string) (models.ChartHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return models.ChartHistoryEntry{}, err
	}
	idx := indexOf(doc.Entries, strings.TrimSpace(name))
	if idx < 0 {
		return models.ChartHistoryEntry{}, &pipelineerror.NotFoundError{Kind: "chart", Name: name}
	}
	return doc.Entries[idx], nil
}

// Delete removes the entry named name or returns a NotFoundError.
func (s *ChartHistoryStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	idx := indexOf(doc.Entries, strings.TrimSpace(name))
	if idx < 0 {
		return &pipelineerror.NotFoundError{Kind: "chart", Name: name}
	}
	doc.Entries = append(doc.Entries[:idx], doc.Entries[idx+1:]...)

	if err := s.write(doc); err != nil {
		return err
	}
	s.logger.Info("Deleted chart history entry", logging.F("name", name))
	return nil
}

// GenerateName returns a fresh entry name of the form chart-<8 hex digits>.
func GenerateName() string {
	return "chart-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func indexOf(entries []models.ChartHistoryEntry, name string) int {
	for i, e := range entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// read loads the history document. A missing file is an empty history.
func (s *ChartHistoryStore) read() (*historyDocument, error) {
	doc := &historyDocument{}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading chart history: %w", err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, &pipelineerror.ParseError{Source: s.path, Field: "entries", Err: err}
	}
	return doc, nil
}

func (s *ChartHistoryStore) write(doc *historyDocument) error {
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(s.path)); err != nil {
		return &pipelineerror.StorageUnavailableError{Path: filepath.Dir(s.path), Err: err}
	}
	err := fileutils.WriteAtomic(s.path, 0600, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("error marshaling chart history: %w", err)
		}
		return enc.Close()
	})
	if err != nil {
		return &pipelineerror.WriteError{Path: s.path, Err: err}
	}
	return nil
}
