package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/ports"
)

// DirStore implements the ArtifactStore port over a flat directory,
// one regular file per client. Every call reopens the directory as an
// os.Root, so names can never resolve outside it and nothing is cached.
type DirStore struct {
	dir string
}

// NewDirStore creates a store rooted at dir. The directory is not created.
func NewDirStore(dir string) *DirStore {
	return &DirStore{
		dir: dir,
	}
}

// Ensure it implements the interface
var _ ports.ArtifactStore = (*DirStore)(nil)

// Dir returns the store directory path
func (s *DirStore) Dir() string {
	return s.dir
}

// Exists reports whether the store directory is present
func (s *DirStore) Exists() bool {
	info, err := os.Stat(s.dir)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// List returns all client records sorted by name
func (s *DirStore) List(ctx context.Context) ([]domain.ClientRecord, error) {
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.ClientRecord{}, nil
		}
		return nil, domain.NewStoreFailure("", fmt.Errorf("failed to open store directory: %w", err))
	}
	defer root.Close()

	d, err := root.Open(".")
	if err != nil {
		return nil, domain.NewStoreFailure("", fmt.Errorf("failed to open store directory: %w", err))
	}
	entries, err := d.ReadDir(-1)
	d.Close()
	if err != nil {
		return nil, domain.NewStoreFailure("", fmt.Errorf("failed to read store directory: %w", err))
	}

	records := make([]domain.ClientRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Stat follows symlinks but only within the root
		info, err := root.Stat(entry.Name())
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		records = append(records, recordFromInfo(entry.Name(), info))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	return records, nil
}

// Stat returns the record for one artifact
func (s *DirStore) Stat(ctx context.Context, name string) (*domain.ClientRecord, error) {
	if err := domain.CheckPathSafe(name); err != nil {
		return nil, err
	}

	root, err := s.openRoot(name)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	info, err := s.statRegular(root, name)
	if err != nil {
		return nil, err
	}

	record := recordFromInfo(name, info)
	return &record, nil
}

// Read returns the full content of one artifact
func (s *DirStore) Read(ctx context.Context, name string) (*domain.ArtifactContent, error) {
	if err := domain.CheckPathSafe(name); err != nil {
		return nil, err
	}

	root, err := s.openRoot(name)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	// Check first so that FIFOs and devices are never opened
	if _, err := s.statRegular(root, name); err != nil {
		return nil, err
	}

	f, err := root.Open(name)
	if err != nil {
		return nil, classify(name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewStoreFailure(name, fmt.Errorf("failed to read artifact: %w", err))
	}

	return &domain.ArtifactContent{
		Name: name,
		Data: data,
	}, nil
}

// Remove deletes one artifact
func (s *DirStore) Remove(ctx context.Context, name string) error {
	if err := domain.CheckPathSafe(name); err != nil {
		return err
	}

	root, err := s.openRoot(name)
	if err != nil {
		return err
	}
	defer root.Close()

	if _, err := s.statRegular(root, name); err != nil {
		return err
	}

	if err := root.Remove(name); err != nil {
		// Lost a race with another remover
		return classify(name, err)
	}

	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// openRoot opens the store directory; a missing directory means no record exists
func (s *DirStore) openRoot(name string) (*os.Root, error) {
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewNotFound(name)
		}
		return nil, domain.NewStoreFailure(name, fmt.Errorf("failed to open store directory: %w", err))
	}
	return root, nil
}

func (s *DirStore) statRegular(root *os.Root, name string) (fs.FileInfo, error) {
	info, err := root.Stat(name)
	if err != nil {
		// Escaping and dangling symlinks are not client files
		if link, lerr := root.Lstat(name); lerr == nil && link.Mode()&fs.ModeSymlink != 0 {
			return nil, domain.NewNotFound(name)
		}
		return nil, classify(name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, domain.NewNotFound(name)
	}
	return info, nil
}

// classify maps filesystem errors onto the domain taxonomy
func classify(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewNotFound(name)
	}
	return domain.NewStoreFailure(name, err)
}

func recordFromInfo(name string, info fs.FileInfo) domain.ClientRecord {
	return domain.NewClientRecord(name, changeTime(info), info.Size())
}
