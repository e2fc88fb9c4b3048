package ports

import (
	"context"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
)

// ArtifactStore defines the port for the client artifact directory.
// Implementations MUST return errors classified as *domain.Error.
type ArtifactStore interface {
	// List returns one record per regular file, sorted by name.
	// A missing store directory yields an empty list, not an error.
	List(ctx context.Context) ([]domain.ClientRecord, error)

	// Stat returns the record for a single artifact
	Stat(ctx context.Context, name string) (*domain.ClientRecord, error)

	// Read returns the raw artifact content
	Read(ctx context.Context, name string) (*domain.ArtifactContent, error)

	// Remove deletes an artifact
	Remove(ctx context.Context, name string) error
}

// Provisioner defines the port for the external command that creates artifacts
type Provisioner interface {
	// Provision runs the external command for an already validated name.
	// It does not write the artifact itself.
	Provision(ctx context.Context, name string) (*domain.ProvisionResult, error)
}

// Journal defines the port for the operation audit log
type Journal interface {
	// Append records a settled operation
	Append(ctx context.Context, entry domain.JournalEntry) error

	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)

	// Close releases the underlying storage
	Close() error
}
