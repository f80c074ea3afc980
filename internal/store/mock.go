package store

import (
	"strings"
	"sync"
	"time"

	"autosales/salesdash/internal/models"
	"autosales/salesdash/internal/pipelineerror"
)

// MockChartHistoryStore is an in-memory ChartHistory for testing.
type MockChartHistoryStore struct {
	mu      sync.Mutex
	Entries []models.ChartHistoryEntry

	// Error flags for testing error conditions
	SaveError   error
	ListError   error
	LoadError   error
	DeleteError error
}

// Save stores the entry with the same ordering rules as ChartHistoryStore, without a cap.
func (m *MockChartHistoryStore) Save(entry models.ChartHistoryEntry, opts SaveOptions) (models.ChartHistoryEntry, error) {
	if m.SaveError != nil {
		return models.ChartHistoryEntry{}, m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.Name = strings.TrimSpace(entry.Name)
	if entry.Name == "" {
		entry.Name = GenerateName()
	}
	now := time.Now().UTC()
	entry.UpdatedAt = now

	idx := indexOf(m.Entries, entry.Name)
	if idx >= 0 && !opts.Reinsert {
		entry.CreatedAt = m.Entries[idx].CreatedAt
		m.Entries[idx] = entry
		return entry, nil
	}
	if idx >= 0 {
		m.Entries = append(m.Entries[:idx], m.Entries[idx+1:]...)
	}
	entry.CreatedAt = now
	m.Entries = append([]models.ChartHistoryEntry{entry}, m.Entries...)
	return entry, nil
}

// List returns a copy of the mock entries.
func (m *MockChartHistoryStore) List() ([]models.ChartHistoryEntry, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChartHistoryEntry{}, m.Entries...), nil
}

// Summaries returns the list view of the mock entries.
func (m *MockChartHistoryStore) Summaries() ([]models.ChartHistorySummary, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}
	out := make([]models.ChartHistorySummary, len(entries))
	for i, e := range entries {
		out[i] = e.Summary()
	}
	return out, nil
}

// Load returns the named mock entry.
func (m *MockChartHistoryStore) Load(name string) (models.ChartHistoryEntry, error) {
	if m.LoadError != nil {
		return models.ChartHistoryEntry{}, m.LoadError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := indexOf(m.Entries, name); idx >= 0 {
		return m.Entries[idx], nil
	}
	return models.ChartHistoryEntry{}, &pipelineerror.NotFoundError{Kind: "chart", Name: name}
}

// Delete removes the named mock entry.
func (m *MockChartHistoryStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := indexOf(m.Entries, name)
	if idx < 0 {
		return &pipelineerror.NotFoundError{Kind: "chart", Name: name}
	}
	m.Entries = append(m.Entries[:idx], m.Entries[idx+1:]...)
	return nil
}
