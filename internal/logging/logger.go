package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/katyella/kconsole/internal/constants"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mode selects where log output goes
type Mode int

const (
	// ModeTUI keeps stdout for the terminal UI; logs go to a file in debug mode
	// and are discarded otherwise
	ModeTUI Mode = iota
	// ModeCLI writes human readable logs to stderr
	ModeCLI
)

// Options configures Setup
type Options struct {
	Mode  Mode
	Debug bool
	// Level is a zerolog level name, usually from LOG_LEVEL
	Level string
	// File overrides the debug log file path
	File string
	// Out replaces stderr as the CLI destination
	Out io.Writer
}

// Setup configures the global zerolog logger and returns it. The returned
// closer releases the debug log file, if one was opened.
func Setup(opts Options) (zerolog.Logger, io.Closer) {
	level := parseLevel(opts.Level, opts.Debug)
	zerolog.SetGlobalLevel(level)

	var out io.Writer
	var closer io.Closer = nopCloser{}

	stderr := opts.Out
	if stderr == nil {
		stderr = os.Stderr
	}

	switch {
	case opts.Mode == ModeCLI:
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339, NoColor: stderr != os.Stderr}
	case opts.Debug:
		path := opts.File
		if path == "" {
			path = constants.LogFileName
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.LogFilePermissions)
		if err != nil {
			// Fall back to stderr if the file cannot be created
			out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
			break
		}
		out = file
		closer = file
	default:
		out = io.Discard
	}

	log.Logger = zerolog.New(out).With().Timestamp().Str("app", "kconsole").Logger()
	return log.Logger, closer
}

func parseLevel(name string, debug bool) zerolog.Level {
	if debug {
		return zerolog.DebugLevel
	}
	if name != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(name)); err == nil {
			return parsed
		}
	}
	return zerolog.InfoLevel
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
