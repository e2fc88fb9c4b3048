package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/internal/core/services"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var (
	newShowOutput bool
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:     "new <name>",
	Aliases: []string{"create"},
	Short:   "Create a new client profile",
	Long: `Create a new client by running the provisioning script.

Names must be at least 3 characters and may contain only letters, digits,
hyphens and underscores. The command waits for the script to finish and
confirms that the profile was written to the client directory.

Examples:
  vpnadm new john-laptop
  vpnadm create bob_desktop --show-output`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().BoolVar(&newShowOutput, "show-output", false, "Print the provisioning script output")
}

func runNew(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	name := domain.NormalizeName(args[0])

	fmt.Fprintln(out, ui.FormatInfo(fmt.Sprintf("Provisioning '%s'...", name)))

	resp, err := lifecycleService.CreateClient(getContext(), services.CreateClientRequest{Name: args[0]})
	if err != nil {
		printProvisionOutput(cmd, err)
		return err
	}

	fmt.Fprintln(out, ui.FormatSuccess(fmt.Sprintf("Client '%s' created successfully!", resp.Record.Name)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.RenderKeyValue("Name", resp.Record.Name))
	fmt.Fprintln(out, ui.RenderKeyValue("Profile", displayPath(filepath.Join(clientStore.Dir(), resp.Record.Name))))
	if resp.Verified {
		fmt.Fprintln(out, ui.RenderKeyValue("Size", humanSize(resp.Record.SizeBytes)))
		fmt.Fprintln(out, ui.RenderKeyValue("Created", resp.Record.GetDisplayDate(appConfig.DateFormat)))
	}
	fmt.Fprintln(out, ui.RenderKeyValue("Took", resp.Duration.Round(10*time.Millisecond).String()))

	if !resp.Verified {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.FormatWarning("Profile not found after provisioning; trusting the script's exit status"))
	}

	if newShowOutput && resp.Output != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.StyleHeader.Render("Script output"))
		fmt.Fprint(out, ui.FormatMuted(resp.Output))
	}

	return nil
}

// printProvisionOutput shows the tail of the script output for failed runs
func printProvisionOutput(cmd *cobra.Command, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Output == "" {
		return
	}

	limit := 10
	if newShowOutput {
		limit = 1000
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintln(errOut, ui.StyleHeader.Render("Script output"))
	for _, line := range outputLines(de.Output, limit) {
		fmt.Fprintln(errOut, "  "+ui.FormatMuted(line))
	}
}
