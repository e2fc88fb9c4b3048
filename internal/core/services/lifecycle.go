package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/ports"
)

// LifecycleService orchestrates client creation, deletion and inspection.
// It holds no client state: every call re-derives truth from the store.
type LifecycleService struct {
	store       ports.ArtifactStore
	provisioner ports.Provisioner
	journal     ports.Journal
	logger      zerolog.Logger
	trustExit   bool
	locks       *nameLocks
}

// Option configures a LifecycleService
type Option func(*LifecycleService)

// WithJournal records every create/delete outcome in j
func WithJournal(j ports.Journal) Option {
	return func(s *LifecycleService) {
		s.journal = j
	}
}

// WithLogger sets the structured logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *LifecycleService) {
		s.logger = l
	}
}

// WithTrustProvisionerExit skips the post-provision artifact check and
// reports success on exit status 0 alone
func WithTrustProvisionerExit(trust bool) Option {
	return func(s *LifecycleService) {
		s.trustExit = trust
	}
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(store ports.ArtifactStore, provisioner ports.Provisioner, opts ...Option) *LifecycleService {
	s := &LifecycleService{
		store:       store,
		provisioner: provisioner,
		logger:      zerolog.Nop(),
		locks:       newNameLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name string // raw user input, trimmed before validation
}

// CreateClientResponse represents a settled, verified creation
type CreateClientResponse struct {
	Record   domain.ClientRecord
	Output   string        // provisioner output
	Duration time.Duration // provisioner run time
	Verified bool          // false only when the artifact check was skipped
}

// ListResponse represents the current content of the store
type ListResponse struct {
	Clients    []domain.ClientRecord
	Total      int
	TotalBytes int64
}

// CreateClient validates the name, runs the provisioner and confirms the
// artifact now exists in the store
func (s *LifecycleService) CreateClient(ctx context.Context, req CreateClientRequest) (*CreateClientResponse, error) {
	name := domain.NormalizeName(req.Name)
	opID := uuid.NewString()
	log := s.logger.With().Str("op", opID).Str("action", string(domain.OpCreate)).Str("client", name).Logger()

	start := time.Now()
	resp, err := s.createClient(ctx, name, log)
	s.settle(ctx, opID, domain.OpCreate, name, start, err, log)

	return resp, err
}

func (s *LifecycleService) createClient(ctx context.Context, name string, log zerolog.Logger) (*CreateClientResponse, error) {
	// 1. Empty input
	if name == "" {
		return nil, &domain.Error{Kind: domain.KindEmptyName}
	}

	// 2. Name rules
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(name)
	defer unlock()

	// 3. Refuse to overwrite an existing artifact
	if _, err := s.store.Stat(ctx, name); err == nil {
		return nil, &domain.Error{Kind: domain.KindAlreadyExists, Name: name}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, classify(name, err)
	}

	// 4. Provision
	log.Debug().Msg("invoking provisioner")
	result, err := s.provisioner.Provision(ctx, name)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &domain.Error{Kind: domain.KindProvisionFailed, Name: name, Err: err}
	}
	log.Debug().Dur("duration", result.Duration).Int("output_bytes", len(result.Output)).Msg("provisioner exited 0")

	resp := &CreateClientResponse{
		Output:   result.Output,
		Duration: result.Duration,
	}

	// 5. Confirm the side effect
	record, err := s.store.Stat(ctx, name)
	switch {
	case err == nil:
		resp.Record = *record
		resp.Verified = true
		return resp, nil
	case errors.Is(err, domain.ErrNotFound) && s.trustExit:
		log.Warn().Msg("artifact missing after provisioning; trusting exit status")
		resp.Record = domain.ClientRecord{Name: name}
		return resp, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, &domain.Error{
			Kind:   domain.KindProvisionInconsistent,
			Name:   name,
			Output: result.Output,
			Detail: "provisioner exited 0 but no artifact was written",
		}
	default:
		return nil, classify(name, err)
	}
}

// DeleteClient removes the named client's artifact
func (s *LifecycleService) DeleteClient(ctx context.Context, name string) error {
	name = domain.NormalizeName(name)
	opID := uuid.NewString()
	log := s.logger.With().Str("op", opID).Str("action", string(domain.OpDelete)).Str("client", name).Logger()

	start := time.Now()
	err := s.deleteClient(ctx, name)
	s.settle(ctx, opID, domain.OpDelete, name, start, err, log)

	return err
}

func (s *LifecycleService) deleteClient(ctx context.Context, name string) error {
	if err := domain.CheckPathSafe(name); err != nil {
		return err
	}

	unlock := s.locks.lock(name)
	defer unlock()

	if err := s.store.Remove(ctx, name); err != nil {
		return classify(name, err)
	}
	return nil
}

// ListClients returns every client record, sorted by name
func (s *LifecycleService) ListClients(ctx context.Context) (*ListResponse, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, classify("", err)
	}

	var total int64
	for _, r := range records {
		total += r.SizeBytes
	}

	return &ListResponse{
		Clients:    records,
		Total:      len(records),
		TotalBytes: total,
	}, nil
}

// GetArtifact returns the raw content of one client's artifact
func (s *LifecycleService) GetArtifact(ctx context.Context, name string) (*domain.ArtifactContent, error) {
	if err := domain.CheckPathSafe(name); err != nil {
		return nil, err
	}

	content, err := s.store.Read(ctx, name)
	if err != nil {
		return nil, classify(name, err)
	}
	return content, nil
}

// History returns the most recent journal entries, newest first
func (s *LifecycleService) History(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if s.journal == nil {
		return []domain.JournalEntry{}, nil
	}
	return s.journal.Recent(ctx, limit)
}

// settle logs and journals the final outcome of a mutation.
// Journal failures are logged and never change the outcome.
func (s *LifecycleService) settle(ctx context.Context, opID string, op domain.Operation, name string, start time.Time, err error, log zerolog.Logger) {
	elapsed := time.Since(start)
	kind := domain.KindOf(err)

	if err != nil {
		log.Warn().Str("kind", kind.String()).Dur("elapsed", elapsed).Err(err).Msg("operation failed")
	} else {
		log.Info().Dur("elapsed", elapsed).Msg("operation succeeded")
	}

	if s.journal == nil {
		return
	}

	entry := domain.JournalEntry{
		ID:       opID,
		Op:       op,
		Client:   name,
		At:       start,
		Outcome:  kind,
		Duration: elapsed,
	}
	var de *domain.Error
	if errors.As(err, &de) {
		entry.Detail = de.Reason()
	}

	// Detached so canceled callers are still recorded
	if jerr := s.journal.Append(context.WithoutCancel(ctx), entry); jerr != nil {
		log.Warn().Err(jerr).Msg("failed to append journal entry")
	}
}

// classify guarantees that only *domain.Error values leave the service
func classify(name string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewStoreFailure(name, err)
}
