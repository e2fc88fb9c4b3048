package mocks

import (
	"context"
	"sync"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
)

// MockJournal keeps entries in memory
type MockJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry

	// AppendErr, when set, is returned by Append
	AppendErr error
}

func NewMockJournal() *MockJournal {
	return &MockJournal{}
}

func (m *MockJournal) Append(ctx context.Context, entry domain.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockJournal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.JournalEntry{}
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *MockJournal) Close() error { return nil }

// Entries returns all entries in append order
func (m *MockJournal) Entries() []domain.JournalEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.JournalEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
