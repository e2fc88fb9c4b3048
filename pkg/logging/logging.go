package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Logs go to stderr so that
// command output on stdout stays pipeable.
func Setup(verbose bool, noColor bool) {
	SetupWriter(os.Stderr, verbose, noColor)
}

// SetupWriter is Setup with an explicit destination
func SetupWriter(w io.Writer, verbose bool, noColor bool) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	zerolog.DurationFieldInteger = true
	timeFormat := "15:04:05"
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		zerolog.TimeFieldFormat = time.RFC3339Nano
		timeFormat = "15:04:05.000"
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(time.Local)
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: timeFormat, NoColor: noColor}).
		With().Timestamp().Logger()
}

// Component returns a child of the global logger tagged with name
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}
