package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
)

// MockStore is an in-memory ArtifactStore for testing
type MockStore struct {
	mu        sync.RWMutex
	artifacts map[string]mockArtifact

	// ListErr, when set, is returned by List
	ListErr error

	// Accessed records every name passed to Stat, Read or Remove
	Accessed []string
}

type mockArtifact struct {
	data    []byte
	changed time.Time
}

// NewMockStore creates a new empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		artifacts: make(map[string]mockArtifact),
	}
}

// Put writes an artifact, as the provisioner would
func (m *MockStore) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[name] = mockArtifact{data: data, changed: time.Now()}
}

// Has reports whether an artifact is present
func (m *MockStore) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.artifacts[name]
	return ok
}

// List returns all records sorted by name
func (m *MockStore) List(ctx context.Context) ([]domain.ClientRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	records := make([]domain.ClientRecord, 0, len(m.artifacts))
	for name, a := range m.artifacts {
		records = append(records, domain.NewClientRecord(name, a.changed, int64(len(a.data))))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// Stat returns the record for one artifact
func (m *MockStore) Stat(ctx context.Context, name string) (*domain.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accessed = append(m.Accessed, name)

	a, ok := m.artifacts[name]
	if !ok {
		return nil, domain.NewNotFound(name)
	}
	record := domain.NewClientRecord(name, a.changed, int64(len(a.data)))
	return &record, nil
}

// Read returns an artifact's content
func (m *MockStore) Read(ctx context.Context, name string) (*domain.ArtifactContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accessed = append(m.Accessed, name)

	a, ok := m.artifacts[name]
	if !ok {
		return nil, domain.NewNotFound(name)
	}
	data := make([]byte, len(a.data))
	copy(data, a.data)
	return &domain.ArtifactContent{Name: name, Data: data}, nil
}

// Remove deletes an artifact
func (m *MockStore) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accessed = append(m.Accessed, name)

	if _, ok := m.artifacts[name]; !ok {
		return domain.NewNotFound(name)
	}
	delete(m.artifacts, name)
	return nil
}
