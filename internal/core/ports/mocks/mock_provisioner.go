package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
)

// MockProvisioner simulates the external provisioning command.
// On success it writes an artifact into Store unless SkipWrite is set.
type MockProvisioner struct {
	mu    sync.Mutex
	calls []string

	Store *MockStore

	// FailWith, when set, is returned instead of provisioning
	FailWith error

	// SkipWrite reports success without writing the artifact
	SkipWrite bool

	// Delay simulates a slow command; it honors ctx cancellation
	Delay time.Duration

	// OnProvision, when set, runs while the call is in flight
	OnProvision func(name string)
}

// NewMockProvisioner creates a provisioner that writes into store
func NewMockProvisioner(store *MockStore) *MockProvisioner {
	return &MockProvisioner{
		Store: store,
	}
}

// Provision records the call and simulates the command
func (m *MockProvisioner) Provision(ctx context.Context, name string) (*domain.ProvisionResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	hook := m.OnProvision
	m.mu.Unlock()

	if hook != nil {
		hook(name)
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, &domain.Error{Kind: domain.KindProvisionFailed, Name: name, ExitCode: -1, Detail: "canceled"}
		}
	}

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	if !m.SkipWrite && m.Store != nil {
		m.Store.Put(name, []byte(fmt.Sprintf("# client %s\n-----BEGIN CERTIFICATE-----\n", name)))
	}

	return &domain.ProvisionResult{
		Output:   "generated " + name,
		Duration: m.Delay,
	}, nil
}

// Calls returns the names passed to Provision, in order
func (m *MockProvisioner) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
