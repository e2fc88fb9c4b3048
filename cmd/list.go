package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var (
	listJSON bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all client profiles",
	Aliases: []string{"ls"},
	Long: `List every client profile in the client directory, sorted by name.

Examples:
  vpnadm list
  vpnadm ls --json | jq -r '.[].name'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print clients as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	resp, err := lifecycleService.ListClients(getContext())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp.Clients)
	}

	if resp.Total == 0 {
		fmt.Fprintln(out, ui.FormatWarning("No clients found"))
		fmt.Fprintln(out, ui.FormatInfo("Create your first client with: vpnadm new <name>"))
		return nil
	}

	fmt.Fprintln(out, ui.FormatTitle("Clients"))
	fmt.Fprintln(out)
	renderClientTable(out, resp.Clients)
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("Total: %d clients, %s in %s",
		resp.Total, humanSize(resp.TotalBytes), displayPath(clientStore.Dir()))))

	return nil
}

// renderClientTable prints the name / created / size table
func renderClientTable(out io.Writer, clients []domain.ClientRecord) {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "Name", Width: 20},
		{Header: "Created", Width: 16},
		{Header: "Age", Width: 14},
		{Header: "Size", Width: 8, Align: "right"},
	})

	for _, c := range clients {
		table.AddRow([]string{
			ui.Truncate(c.Name, 40),
			c.GetDisplayDate(appConfig.DateFormat),
			humanize.Time(c.CreatedAt),
			humanSize(c.SizeBytes),
		})
	}

	fmt.Fprint(out, table.Render())
}
