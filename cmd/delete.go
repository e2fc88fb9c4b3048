package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var (
	deleteYes bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete [name]",
	Aliases: []string{"rm"},
	Short:   "Delete a client profile",
	Long: `Delete a client's profile from the client directory.

Without a name, pick the client interactively. You are asked to confirm
unless --yes is given. This cannot be undone.

Examples:
  vpnadm delete john-laptop
  vpnadm rm bob_desktop --yes
  vpnadm delete`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	out := cmd.OutOrStdout()

	// 1. Select client
	var name string
	if len(args) == 0 {
		selected, err := selectClient(ctx, "delete")
		switch {
		case errors.Is(err, errNoClients):
			fmt.Fprintln(out, ui.FormatWarning("No clients found"))
			return nil
		case errors.Is(err, errCancelled):
			fmt.Fprintln(out, ui.FormatInfo("Operation cancelled."))
			return nil
		case err != nil:
			return err
		}
		name = selected
	} else {
		name = domain.NormalizeName(args[0])
	}

	// 2. Confirm; unknown names go straight to DeleteClient for the precise error
	if !deleteYes {
		record := findRecord(name)
		if record == nil {
			return lifecycleService.DeleteClient(ctx, name)
		}

		fmt.Fprintln(out, ui.FormatWarning("You are about to delete:"))
		fmt.Fprintf(out, "  %s\n\n", ui.StyleBold.Render(recordLabel(*record)))
		if !confirm(cmd.InOrStdin(), out, ui.StyleError.Render("Are you sure? This action cannot be undone.")) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	// 3. Delete
	if err := lifecycleService.DeleteClient(ctx, name); err != nil {
		return err
	}

	fmt.Fprintln(out, ui.FormatSuccess(fmt.Sprintf("Client '%s' deleted successfully!", name)))
	return nil
}

// findRecord looks name up in the current listing; nil if absent or unreadable
func findRecord(name string) *domain.ClientRecord {
	resp, err := lifecycleService.ListClients(getContext())
	if err != nil {
		return nil
	}
	for i := range resp.Clients {
		if resp.Clients[i].Name == name {
			return &resp.Clients[i]
		}
	}
	return nil
}
