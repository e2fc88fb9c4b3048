package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/adapters/journal"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your vpnadm setup",
	Long: `Diagnose issues with your vpnadm setup.

Checks for:
  - Configuration file
  - Client directory
  - Provisioning script and interpreter
  - Operation journal`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0

	fmt.Fprintln(out, ui.FormatTitle(ui.IconShield+" vpnadm doctor"))
	fmt.Fprintln(out)

	// 1. Configuration
	checkStep(out, "Configuration File", false, func() (string, error) {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return "", fmt.Errorf("not found at %s (using defaults; run 'vpnadm config init')", displayPath(configPath))
		}
		return displayPath(configPath), nil
	})

	// 2. Client directory
	if !checkStep(out, "Client Directory", true, func() (string, error) {
		info, err := os.Stat(clientStore.Dir())
		if err != nil {
			return "", fmt.Errorf("%s: %w", clientStore.Dir(), err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", clientStore.Dir())
		}
		resp, err := lifecycleService.ListClients(getContext())
		if err != nil {
			return "", fmt.Errorf("%s", describeError(err))
		}
		return fmt.Sprintf("%d clients in %s", resp.Total, clientStore.Dir()), nil
	}) {
		failed++
	}

	// 3. Provisioning
	if !checkStep(out, "Provisioning Script", true, func() (string, error) {
		if err := scriptProv.Check(); err != nil {
			return "", fmt.Errorf("%s", describeError(err))
		}
		interp := scriptProv.Interpreter()
		if interp == "" {
			interp = "direct"
		}
		return fmt.Sprintf("%s (%s)", scriptProv.Script(), interp), nil
	}) {
		failed++
	}

	// 4. Privileges
	checkStep(out, "Privileges", false, func() (string, error) {
		if runtime.GOOS != "windows" && os.Geteuid() != 0 {
			return "", fmt.Errorf("not running as root; the provisioning script may need it")
		}
		return "", nil
	})

	// 5. Journal
	checkStep(out, "Operation Journal", false, func() (string, error) {
		if !appConfig.JournalEnabled {
			return "", fmt.Errorf("disabled in config")
		}
		bj, ok := appJournal.(*journal.BoltJournal)
		if !ok {
			return "", fmt.Errorf("unavailable at %s (locked by another vpnadm?)", displayPath(appDirs.JournalPath()))
		}
		return displayPath(bj.Path()), nil
	})

	fmt.Fprintln(out)
	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	fmt.Fprintln(out, ui.FormatSuccess("All required checks passed"))
	return nil
}

// checkStep runs a check function and prints the result with its detail line.
// Non-required checks print as warnings. It reports whether the check passed.
func checkStep(out io.Writer, name string, required bool, check func() (string, error)) bool {
	detail, err := check()
	if err == nil {
		fmt.Fprintf(out, "%s %s\n", ui.StyleSuccess.Render(ui.IconSuccess), name)
		if detail != "" {
			fmt.Fprintf(out, "    %s\n", ui.StyleMuted.Render(detail))
		}
		return true
	}

	if required {
		fmt.Fprintf(out, "%s %s\n", ui.StyleError.Render(ui.IconError), name)
	} else {
		fmt.Fprintf(out, "%s %s\n", ui.StyleWarning.Render(ui.IconWarning), name)
	}
	fmt.Fprintf(out, "    %s\n", ui.StyleMuted.Render(err.Error()))
	return false
}
