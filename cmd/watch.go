package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
	"github.com/kamal-hamza/vpnadm/pkg/ui"
)

var (
	watchQuiet bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the client directory and reprint the list on changes",
	Long: `Watch the client directory for profiles being added or removed,
by vpnadm or by any other tool, and reprint the client list.

Bursts of changes are coalesced (see watch_debounce_ms in the config).
Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Only print added and removed clients")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	out := cmd.OutOrStdout()

	if !clientStore.Exists() {
		return fmt.Errorf("client directory %s does not exist", clientStore.Dir())
	}

	resp, err := lifecycleService.ListClients(ctx)
	if err != nil {
		return err
	}
	previous := resp.Clients

	fmt.Fprintln(out, ui.FormatInfo("Watching: "+displayPath(clientStore.Dir())))
	fmt.Fprintln(out, ui.FormatMuted("Press Ctrl+C to stop"))
	fmt.Fprintln(out)
	if !watchQuiet {
		printWatchListing(out, previous)
	}

	err = watchDir(ctx, clientStore.Dir(), appConfig.WatchDebounce(), func() {
		resp, err := lifecycleService.ListClients(ctx)
		if err != nil {
			fmt.Fprintln(out, ui.FormatError(describeError(err)))
			return
		}

		added, removed := diffClients(previous, resp.Clients)
		previous = resp.Clients
		if len(added) == 0 && len(removed) == 0 {
			return
		}

		stamp := ui.FormatMuted(time.Now().Format("15:04:05"))
		for _, name := range added {
			fmt.Fprintf(out, "%s %s\n", stamp, ui.StyleSuccess.Render("+ "+name))
		}
		for _, name := range removed {
			fmt.Fprintf(out, "%s %s\n", stamp, ui.StyleError.Render("- "+name))
		}
		if !watchQuiet {
			fmt.Fprintln(out)
			printWatchListing(out, resp.Clients)
		}
	})

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.FormatMuted("Watch stopped"))
	return err
}

func printWatchListing(out io.Writer, clients []domain.ClientRecord) {
	if len(clients) == 0 {
		fmt.Fprintln(out, ui.FormatWarning("No clients found"))
		fmt.Fprintln(out)
		return
	}
	renderClientTable(out, clients)
	fmt.Fprintln(out)
}

// watchDir calls onChange, debounced, whenever an entry of dir is created,
// written, removed or renamed. It returns when ctx is canceled.
func watchDir(ctx context.Context, dir string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

// isRelevantEvent filters out chmod-only events and editor/temp files
func isRelevantEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") || strings.HasSuffix(base, ".swp") {
		return false
	}
	return event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}

// diffClients returns the names present only in cur (added) and only in prev (removed)
func diffClients(prev, cur []domain.ClientRecord) (added, removed []string) {
	before := make(map[string]bool, len(prev))
	for _, c := range prev {
		before[c.Name] = true
	}
	after := make(map[string]bool, len(cur))
	for _, c := range cur {
		after[c.Name] = true
		if !before[c.Name] {
			added = append(added, c.Name)
		}
	}
	for _, c := range prev {
		if !after[c.Name] {
			removed = append(removed, c.Name)
		}
	}
	return added, removed
}
