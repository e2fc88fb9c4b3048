package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/vpnadm/internal/core/domain"
)

// errCancelled is returned when the user backs out of a prompt
var errCancelled = errors.New("cancelled")

// selectClient lets the user pick a client interactively.
// It returns errCancelled on ESC / Ctrl+C and when the store is empty.
func selectClient(ctx context.Context, action string) (string, error) {
	resp, err := lifecycleService.ListClients(ctx)
	if err != nil {
		return "", err
	}
	if resp.Total == 0 {
		return "", errNoClients
	}

	idx, err := fuzzyfinder.Find(
		resp.Clients,
		func(i int) string {
			return resp.Clients[i].Name
		},
		fuzzyfinder.WithPromptString(action+" > "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			c := resp.Clients[i]
			return fmt.Sprintf("Client: %s\nCreated: %s (%s)\nSize: %s",
				c.Name,
				c.GetDisplayDate(appConfig.DateFormat),
				humanize.Time(c.CreatedAt),
				humanSize(c.SizeBytes))
		}),
	)
	if err != nil {
		return "", errCancelled
	}
	return resp.Clients[idx].Name, nil
}

var errNoClients = errors.New("no clients found")

// confirm asks a yes/no question and reads the answer from in
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt+" (y/n): ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(response))
	return answer == "y" || answer == "yes"
}

func humanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// displayPath shortens paths under the home directory to ~
func displayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(os.PathSeparator)) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

// recordLabel is the one-line description used in prompts
func recordLabel(r domain.ClientRecord) string {
	return fmt.Sprintf("%s (%s, created %s)", r.Name, humanSize(r.SizeBytes), r.GetDisplayDate(appConfig.DateFormat))
}
