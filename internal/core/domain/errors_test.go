package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
	"time"
)

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFound("alice"))

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(%v, ErrNotFound) = false", err)
	}
	if errors.Is(err, ErrAlreadyExists) {
		t.Errorf("errors.Is(%v, ErrAlreadyExists) = true", err)
	}

	invalid := NewInvalidName("ab", RuleTooShort)
	if !errors.Is(invalid, ErrInvalidName) {
		t.Error("any rule should match ErrInvalidName")
	}
	if errors.Is(invalid, &Error{Kind: KindInvalidName, Rule: RuleCharset}) {
		t.Error("a target rule should be matched exactly")
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := NewStoreFailure("alice", fs.ErrPermission)
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("store failure should expose its cause")
	}
	if !errors.Is(err, ErrStoreFailure) {
		t.Error("store failure should match its sentinel")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{NewNotFound("alice"), `not_found: "alice"`},
		{NewInvalidName("ab", RuleTooShort), `invalid_name: "ab": too short`},
		{&Error{Kind: KindEmptyName}, "empty_name"},
		{&Error{Kind: KindProvisionFailed, Name: "bob", Detail: "exit status 3"}, `provision_failed: "bob": exit status 3`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{NewNotFound("x"), KindNotFound},
		{fmt.Errorf("ctx: %w", &Error{Kind: KindProvisionInconsistent}), KindProvisionInconsistent},
		{errors.New("disk on fire"), KindStoreFailure},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := KindNone; k <= KindProvisionInconsistent; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %s, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("bogus"); ok {
		t.Error("ParseKind(bogus) should fail")
	}
	if !strings.HasPrefix(Kind(99).String(), "kind(") {
		t.Errorf("unknown kind string = %q", Kind(99).String())
	}
}

func TestKindJSON(t *testing.T) {
	data, err := json.Marshal(JournalEntry{Op: OpDelete, Client: "ghost", Outcome: KindNotFound})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"outcome":"not_found"`) {
		t.Errorf("marshaled entry = %s", data)
	}

	var back JournalEntry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Outcome != KindNotFound {
		t.Errorf("Outcome = %s, want not_found", back.Outcome)
	}

	var k Kind
	if err := k.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("UnmarshalText(bogus) should fail")
	}
}

func TestNewClientRecord(t *testing.T) {
	changed := time.Date(2026, 5, 1, 13, 37, 42, 500, time.UTC)
	r := NewClientRecord("alice", changed, 100)

	if want := time.Date(2026, 5, 1, 13, 37, 0, 0, time.UTC); !r.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", r.CreatedAt, want)
	}
	if got := r.CreatedAt.UTC().Format(DisplayTimeFormat); got != "2026-05-01 13:37" {
		t.Errorf("formatted = %q", got)
	}
	if r.SizeBytes != 100 {
		t.Errorf("SizeBytes = %d, want 100", r.SizeBytes)
	}
}

func TestJournalEntryOutcome(t *testing.T) {
	ok := JournalEntry{Outcome: KindNone}
	if !ok.Succeeded() || ok.OutcomeString() != "ok" {
		t.Errorf("success entry reported %q", ok.OutcomeString())
	}
	failed := JournalEntry{Outcome: KindProvisionFailed}
	if failed.Succeeded() || failed.OutcomeString() != "provision_failed" {
		t.Errorf("failed entry reported %q", failed.OutcomeString())
	}
}
