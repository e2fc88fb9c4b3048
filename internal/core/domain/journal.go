package domain

import (
	"time"
)

// Operation names recorded in the journal
type Operation string

const (
	OpCreate Operation = "create"
	OpDelete Operation = "delete"
)

// JournalEntry records the settled outcome of one mutating operation
type JournalEntry struct {
	ID       string        `cbor:"1,keyasint" json:"id"`
	Op       Operation     `cbor:"2,keyasint" json:"op"`
	Client   string        `cbor:"3,keyasint" json:"client"`
	At       time.Time     `cbor:"4,keyasint" json:"at"`
	Outcome  Kind          `cbor:"5,keyasint" json:"outcome"`
	Detail   string        `cbor:"6,keyasint,omitempty" json:"detail,omitempty"`
	Duration time.Duration `cbor:"7,keyasint" json:"duration"`
}

// Succeeded reports whether the operation completed without error
func (e JournalEntry) Succeeded() bool {
	return e.Outcome == KindNone
}

// OutcomeString returns "ok" or the failure kind
func (e JournalEntry) OutcomeString() string {
	if e.Succeeded() {
		return "ok"
	}
	return e.Outcome.String()
}
