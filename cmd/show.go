package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var (
	showRaw    bool
	showCopy   bool
	showOutput string
	showForce  bool
)

var showCmd = &cobra.Command{
	Use:     "show [name]",
	Aliases: []string{"view"},
	Short:   "Show a client's profile",
	Long: `Print the content of a client's profile.

Without a name, pick the client interactively.

Examples:
  vpnadm show john-laptop
  vpnadm show john-laptop --raw > john-laptop.ovpn
  vpnadm show john-laptop --copy
  vpnadm show john-laptop --output ~/Downloads/john-laptop.ovpn`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the profile exactly as stored, without header or colors")
	showCmd.Flags().BoolVarP(&showCopy, "copy", "c", false, "Copy the profile to the clipboard")
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "Write the profile to a file")
	showCmd.Flags().BoolVarP(&showForce, "force", "f", false, "Overwrite the --output file if it exists")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	out := cmd.OutOrStdout()

	var name string
	if len(args) == 0 {
		selected, err := selectClient(ctx, "show")
		switch {
		case errors.Is(err, errNoClients):
			fmt.Fprintln(out, ui.FormatWarning("No clients found"))
			return nil
		case errors.Is(err, errCancelled):
			return nil
		case err != nil:
			return err
		}
		name = selected
	} else {
		name = args[0]
	}

	content, err := lifecycleService.GetArtifact(ctx, name)
	if err != nil {
		return err
	}

	if showOutput != "" {
		flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
		if showForce {
			flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		}
		f, err := os.OpenFile(showOutput, flags, 0600)
		if err != nil {
			return fmt.Errorf("failed to write profile: %w", err)
		}
		if _, err := f.Write(content.Data); err != nil {
			f.Close()
			return fmt.Errorf("failed to write profile: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write profile: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatSuccess(fmt.Sprintf("Saved '%s' to %s", content.Name, showOutput)))
	}

	if showCopy {
		if err := clipboard.WriteAll(content.String()); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatSuccess(fmt.Sprintf("Copied '%s' to the clipboard", content.Name)))
	}

	if showOutput != "" || showCopy {
		return nil
	}

	if showRaw {
		_, err := out.Write(content.Data)
		return err
	}

	fmt.Fprintln(out, ui.FormatTitle(content.Name))
	fmt.Fprintln(out, ui.FormatMuted(humanSize(int64(content.Size()))))
	fmt.Fprintln(out)
	fmt.Fprint(out, ui.Highlight(content.String()))
	if n := len(content.Data); n > 0 && content.Data[n-1] != '\n' {
		fmt.Fprintln(out)
	}

	return nil
}
