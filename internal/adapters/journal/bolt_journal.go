package journal

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"go.etcd.io/bbolt"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/ports"
)

var bucketEntries = []byte("entries")

// OpenTimeout bounds how long an operation waits for another process holding the file lock
const OpenTimeout = 1 * time.Second

// entries keep sub-second timestamps
var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// BoltJournal implements the Journal port on a bbolt file.
// Keys are big-endian sequence numbers, so cursor order is append order.
// The file is opened only for the duration of each Append or Recent, so
// long-running commands never hold the lock between operations.
type BoltJournal struct {
	path string
}

// Ensure it implements the interface
var _ ports.Journal = (*BoltJournal)(nil)

// Open creates the journal file at path if needed and checks it can be locked
func Open(path string) (*BoltJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	j := &BoltJournal{path: path}
	err := j.update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		return nil, err
	}

	return j, nil
}

// Path returns the journal file location
func (j *BoltJournal) Path() string {
	return j.path
}

// Append stores one entry
func (j *BoltJournal) Append(ctx context.Context, entry domain.JournalEntry) error {
	data, err := encMode.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	return j.update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketEntries)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
}

// Recent returns up to limit entries, newest first
func (j *BoltJournal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	entries := []domain.JournalEntry{}
	if limit <= 0 {
		return entries, nil
	}

	db, err := bbolt.Open(j.path, 0600, &bbolt.Options{Timeout: OpenTimeout, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer db.Close()

	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var e domain.JournalEntry
			if err := cbor.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode journal entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Close is a no-op; every operation releases the file when it returns
func (j *BoltJournal) Close() error {
	return nil
}

// update runs fn in a write transaction on a freshly opened handle
func (j *BoltJournal) update(fn func(tx *bbolt.Tx) error) error {
	db, err := bbolt.Open(j.path, 0600, &bbolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	if err := db.Update(fn); err != nil {
		db.Close()
		return fmt.Errorf("write journal: %w", err)
	}
	return db.Close()
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
