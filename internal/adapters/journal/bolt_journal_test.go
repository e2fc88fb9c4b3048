package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/ports/mocks"
	"github.com/kamal-hamza/vpnadm/internal/core/services"
)

func openTemp(t *testing.T) (*BoltJournal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	return j, path
}

func TestBoltJournal_AppendRecent(t *testing.T) {
	j, _ := openTemp(t)
	defer j.Close()
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(ctx, domain.JournalEntry{
			ID:       fmt.Sprintf("op-%d", i),
			Op:       domain.OpCreate,
			Client:   fmt.Sprintf("client-%d", i),
			At:       at.Add(time.Duration(i) * time.Second),
			Duration: 1500 * time.Millisecond,
		}))
	}

	entries, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "op-4", entries[0].ID)
	assert.Equal(t, "op-3", entries[1].ID)
	assert.Equal(t, "op-2", entries[2].ID)

	assert.True(t, entries[0].At.Equal(at.Add(4*time.Second)), "sub-second time survives the round trip")
	assert.Equal(t, 1500*time.Millisecond, entries[0].Duration)

	all, err := j.Recent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestBoltJournal_FailureEntry(t *testing.T) {
	j, _ := openTemp(t)
	defer j.Close()
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, domain.JournalEntry{
		ID:      "x",
		Op:      domain.OpDelete,
		Client:  "ghost",
		At:      time.Now(),
		Outcome: domain.KindNotFound,
		Detail:  "no such client",
	}))

	entries, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.OpDelete, entries[0].Op)
	assert.Equal(t, domain.KindNotFound, entries[0].Outcome)
	assert.False(t, entries[0].Succeeded())
	assert.Equal(t, "not_found", entries[0].OutcomeString())
	assert.Equal(t, "no such client", entries[0].Detail)
}

func TestBoltJournal_Reopen(t *testing.T) {
	j, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, j.Append(ctx, domain.JournalEntry{ID: "first", Op: domain.OpCreate, At: time.Now()}))
	require.NoError(t, j.Close())

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, j.Append(ctx, domain.JournalEntry{ID: "second", Op: domain.OpCreate, At: time.Now()}))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].ID)
	assert.Equal(t, "first", entries[1].ID)
}

func TestBoltJournal_EmptyAndZeroLimit(t *testing.T) {
	j, _ := openTemp(t)
	defer j.Close()
	ctx := context.Background()

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	require.NoError(t, j.Append(ctx, domain.JournalEntry{ID: "a", At: time.Now()}))
	entries, err = j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBoltJournal_LockedFile(t *testing.T) {
	j, path := openTemp(t)

	held, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer held.Close()

	start := time.Now()
	err = j.Append(context.Background(), domain.JournalEntry{ID: "blocked", At: time.Now()})
	assert.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), OpenTimeout/2)
}

func TestBoltJournal_SharedPath(t *testing.T) {
	first, path := openTemp(t)
	second, err := Open(path)
	require.NoError(t, err, "a second handle opens while the first is live")
	ctx := context.Background()

	require.NoError(t, first.Append(ctx, domain.JournalEntry{ID: "from-first", Op: domain.OpCreate, At: time.Now()}))
	require.NoError(t, second.Append(ctx, domain.JournalEntry{ID: "from-second", Op: domain.OpDelete, At: time.Now()}))

	entries, err := first.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "from-second", entries[0].ID)
	assert.Equal(t, "from-first", entries[1].ID)
}

func TestBoltJournal_TwoServicesRecordBoth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	newService := func() *services.LifecycleService {
		j, err := Open(path)
		require.NoError(t, err)
		store := mocks.NewMockStore()
		return services.NewLifecycleService(store, mocks.NewMockProvisioner(store), services.WithJournal(j))
	}

	// One long-lived instance, as with watch or dashboard, and one short one
	watcher := newService()
	creator := newService()

	_, err := watcher.CreateClient(ctx, services.CreateClientRequest{Name: "before-watch"})
	require.NoError(t, err)
	_, err = creator.CreateClient(ctx, services.CreateClientRequest{Name: "during-watch"})
	require.NoError(t, err)

	entries, err := watcher.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "during-watch", entries[0].Client)
	assert.Equal(t, "before-watch", entries[1].Client)
	for _, e := range entries {
		assert.True(t, e.Succeeded(), "entry for %s", e.Client)
	}
}

func TestBoltJournal_RecentMissingFile(t *testing.T) {
	j := &BoltJournal{path: filepath.Join(t.TempDir(), "absent.db")}
	_, err := j.Recent(context.Background(), 5)
	assert.Error(t, err)
}

func TestNopJournal(t *testing.T) {
	var j NopJournal
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, domain.JournalEntry{ID: "dropped"}))
	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, j.Close())
}
