package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure a lifecycle operation can return
type Kind int

const (
	// KindNone is the zero value; KindOf returns it for nil errors
	KindNone Kind = iota

	// Input errors
	KindEmptyName
	KindInvalidName

	// Store state errors
	KindNotFound
	KindAlreadyExists
	KindStoreFailure

	// Provisioning errors
	KindProvisionFailed
	KindProvisionUnavailable
	KindProvisionInconsistent
)

var kindNames = map[Kind]string{
	KindNone:                  "none",
	KindEmptyName:             "empty_name",
	KindInvalidName:           "invalid_name",
	KindNotFound:              "not_found",
	KindAlreadyExists:         "already_exists",
	KindStoreFailure:          "store_failure",
	KindProvisionFailed:       "provision_failed",
	KindProvisionUnavailable:  "provision_unavailable",
	KindProvisionInconsistent: "provision_inconsistent",
}

// String returns the snake_case identifier used in logs and the journal
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindNone, false
}

// MarshalText encodes the kind by name for JSON output
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown kind %q", text)
	}
	*k = parsed
	return nil
}

// Sentinels for errors.Is checks. Any *Error matches the sentinel of its Kind.
var (
	ErrEmptyName             = &Error{Kind: KindEmptyName}
	ErrInvalidName           = &Error{Kind: KindInvalidName}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrAlreadyExists         = &Error{Kind: KindAlreadyExists}
	ErrStoreFailure          = &Error{Kind: KindStoreFailure}
	ErrProvisionFailed       = &Error{Kind: KindProvisionFailed}
	ErrProvisionUnavailable  = &Error{Kind: KindProvisionUnavailable}
	ErrProvisionInconsistent = &Error{Kind: KindProvisionInconsistent}
)

// Error is the single error type crossing the core boundary.
// Fields beyond Kind are filled in only where they apply.
type Error struct {
	Kind Kind
	Name string

	// Rule is set for KindInvalidName
	Rule NameRule

	// ExitCode and Output are set for KindProvisionFailed
	ExitCode int
	Output   string

	// Detail is a short free-form explanation (e.g. "timed out after 2m0s")
	Detail string

	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Name)
	}
	if e.Kind == KindInvalidName && e.Rule != RuleNone {
		msg += ": " + e.Rule.Reason()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
// A target with a Rule set also requires the Rule to match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Rule == RuleNone || t.Rule == e.Rule
}

// Reason returns the violated rule's reason for invalid names, otherwise the detail
func (e *Error) Reason() string {
	if e.Kind == KindInvalidName {
		return e.Rule.Reason()
	}
	return e.Detail
}

// KindOf extracts the Kind from any error chain.
// Errors that carry no *Error are reported as KindStoreFailure.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStoreFailure
}

// NewNotFound builds a KindNotFound error for name
func NewNotFound(name string) *Error {
	return &Error{Kind: KindNotFound, Name: name}
}

// NewInvalidName builds a KindInvalidName error for name and the violated rule
func NewInvalidName(name string, rule NameRule) *Error {
	return &Error{Kind: KindInvalidName, Name: name, Rule: rule}
}

// NewStoreFailure wraps an unexpected filesystem fault
func NewStoreFailure(name string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Name: name, Err: err}
}
