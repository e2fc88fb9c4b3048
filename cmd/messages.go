package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
)

// Process exit codes, stable for scripting
const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitState       = 3
	exitProvision   = 4
	exitStoreFailed = 5
)

// describeError turns a lifecycle error into the sentence shown to the user
func describeError(err error) string {
	var de *domain.Error
	if !errors.As(err, &de) {
		return err.Error()
	}

	switch de.Kind {
	case domain.KindEmptyName:
		return "Client name cannot be empty."
	case domain.KindInvalidName:
		switch de.Rule {
		case domain.RuleEmpty:
			return "Client name cannot be empty."
		case domain.RuleTooShort:
			return fmt.Sprintf("Client name must be at least %d characters long.", domain.MinNameLength)
		case domain.RuleLeadingDash:
			return "Client name cannot start with a hyphen."
		default:
			return "Client name can only contain letters, numbers, hyphens, and underscores."
		}
	case domain.KindNotFound:
		return fmt.Sprintf("Client '%s' does not exist.", de.Name)
	case domain.KindAlreadyExists:
		return fmt.Sprintf("Client '%s' already exists.", de.Name)
	case domain.KindProvisionFailed:
		return fmt.Sprintf("Error creating client '%s': %s", de.Name, provisionDetail(de))
	case domain.KindProvisionUnavailable:
		return "Provisioning script is unavailable: " + firstNonEmpty(de.Detail, errString(de.Err))
	case domain.KindProvisionInconsistent:
		return fmt.Sprintf("Provisioning reported success but no profile for '%s' was written.", de.Name)
	case domain.KindStoreFailure:
		return "Client directory error: " + firstNonEmpty(errString(de.Err), de.Detail)
	default:
		return err.Error()
	}
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		return exitGeneric
	}

	switch de.Kind {
	case domain.KindEmptyName, domain.KindInvalidName:
		return exitUsage
	case domain.KindNotFound, domain.KindAlreadyExists:
		return exitState
	case domain.KindProvisionFailed, domain.KindProvisionUnavailable, domain.KindProvisionInconsistent:
		return exitProvision
	case domain.KindStoreFailure:
		return exitStoreFailed
	default:
		return exitGeneric
	}
}

func provisionDetail(de *domain.Error) string {
	if de.Detail != "" {
		return de.Detail
	}
	if de.Err != nil {
		return de.Err.Error()
	}
	return "provisioning failed"
}

// outputLines returns the last n non-empty lines of provisioner output
func outputLines(output string, n int) []string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return kept
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
