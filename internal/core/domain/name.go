package domain

import (
	"strings"
)

// MinNameLength is the shortest client name accepted for creation
const MinNameLength = 3

// NameRule identifies which client-name rule a value violated
type NameRule int

const (
	RuleNone NameRule = iota
	RuleEmpty
	RuleTooShort
	RuleCharset
	RuleLeadingDash
)

// Reason returns the short, message-free description of the rule
func (r NameRule) Reason() string {
	switch r {
	case RuleEmpty:
		return "empty"
	case RuleTooShort:
		return "too short"
	case RuleCharset:
		return "invalid characters"
	case RuleLeadingDash:
		return "leading hyphen"
	default:
		return ""
	}
}

// String implements fmt.Stringer
func (r NameRule) String() string {
	if r == RuleNone {
		return "none"
	}
	return r.Reason()
}

// NormalizeName trims surrounding whitespace from user input
func NormalizeName(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateName checks a client name against the creation rules.
// Rules are checked in order and the first violation is returned:
// empty, shorter than MinNameLength, characters outside [A-Za-z0-9_-],
// and a leading hyphen (which the provisioner could read as a flag).
func ValidateName(name string) error {
	name = NormalizeName(name)

	if name == "" {
		return NewInvalidName(name, RuleEmpty)
	}

	if len(name) < MinNameLength {
		return NewInvalidName(name, RuleTooShort)
	}

	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return NewInvalidName(name, RuleCharset)
		}
	}

	if name[0] == '-' {
		return NewInvalidName(name, RuleLeadingDash)
	}

	return nil
}

// CheckPathSafe rejects names that are not a single direct entry of the
// store directory. The creation charset is not enforced here: artifacts
// written by other tools may use other characters and must stay readable.
func CheckPathSafe(name string) error {
	switch {
	case name == "":
		return NewInvalidName(name, RuleEmpty)
	case name == "." || name == "..":
		return NewInvalidName(name, RuleCharset)
	case strings.ContainsAny(name, "/\\\x00"):
		return NewInvalidName(name, RuleCharset)
	}
	return nil
}

func isNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_':
		return true
	}
	return false
}
