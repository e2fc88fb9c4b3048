package domain

import (
	"time"
)

// DisplayTimeFormat is the minute-precision layout used for record timestamps
const DisplayTimeFormat = "2006-01-02 15:04"

// ClientRecord is the metadata view of one artifact in the store directory.
// Records are never persisted; they are rebuilt from the filesystem on every listing.
type ClientRecord struct {
	Name string `json:"name"`

	// CreatedAt is the file's status-change time (ctime), truncated to the minute.
	// On most filesystems this is the last metadata change, not a birth time.
	CreatedAt time.Time `json:"created_at"`

	SizeBytes int64 `json:"size_bytes"`
}

// NewClientRecord builds a record, truncating the timestamp to minute precision
func NewClientRecord(name string, changed time.Time, size int64) ClientRecord {
	return ClientRecord{
		Name:      name,
		CreatedAt: changed.Truncate(time.Minute),
		SizeBytes: size,
	}
}

// GetDisplayDate formats CreatedAt with layout, or DisplayTimeFormat if empty
func (r ClientRecord) GetDisplayDate(layout string) string {
	if layout == "" {
		layout = DisplayTimeFormat
	}
	return r.CreatedAt.Local().Format(layout)
}

// ArtifactContent is the raw content of one artifact, read on demand
type ArtifactContent struct {
	Name string
	Data []byte
}

// Size returns the content length in bytes
func (a *ArtifactContent) Size() int {
	return len(a.Data)
}

// String returns the content as text
func (a *ArtifactContent) String() string {
	return string(a.Data)
}

// ProvisionResult describes a successful provisioner run
type ProvisionResult struct {
	Output   string
	Duration time.Duration
}
