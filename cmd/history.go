package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent create and delete operations",
	Long: `Show the most recent client creations and deletions recorded by vpnadm,
newest first, including failed attempts.

Examples:
  vpnadm history
  vpnadm history -n 50 --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of entries to show (default from config)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print entries as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	limit := historyLimit
	if limit <= 0 {
		limit = appConfig.HistoryLimit
	}

	entries, err := lifecycleService.History(getContext(), limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		if !appConfig.JournalEnabled {
			fmt.Fprintln(out, ui.FormatWarning("History is disabled (journal_enabled: false)"))
		} else {
			fmt.Fprintln(out, ui.FormatWarning("No operations recorded yet"))
		}
		return nil
	}

	fmt.Fprintln(out, ui.FormatTitle("History"))
	fmt.Fprintln(out)

	table := ui.NewTable([]ui.TableColumn{
		{Header: "When", Width: 16},
		{Header: "Op", Width: 6},
		{Header: "Client", Width: 20},
		{Header: "Outcome", Width: 12},
		{Header: "Took", Width: 8, Align: "right"},
		{Header: "Detail"},
	})
	for _, e := range entries {
		table.AddRow([]string{
			humanize.Time(e.At),
			string(e.Op),
			ui.Truncate(e.Client, 30),
			renderOutcome(e),
			e.Duration.Round(time.Millisecond).String(),
			ui.Truncate(e.Detail, 50),
		})
	}
	fmt.Fprint(out, table.Render())

	return nil
}

func renderOutcome(e domain.JournalEntry) string {
	if e.Succeeded() {
		return ui.StyleSuccess.Render(e.OutcomeString())
	}
	return ui.StyleError.Render(e.OutcomeString())
}
