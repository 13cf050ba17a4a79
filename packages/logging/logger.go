// Package logging builds the zerolog loggers used for request diagnostics.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	// Level is one of trace, debug, info, warn, error or disabled. Unknown
	// values mean info.
	Level string
	// Writer defaults to os.Stderr.
	Writer io.Writer
	// Console renders human-friendly lines instead of JSON.
	Console bool
	NoColor bool
}

func New(opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: opts.NoColor, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}

func ParseLevel(level string) zerolog.Level {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		lvl = zerolog.TraceLevel
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "disabled", "off", "none":
		lvl = zerolog.Disabled
	}
	return lvl
}

// VerbosityLevel maps repeated -v flags to a level: none is warn, one is
// info, two or more is debug.
func VerbosityLevel(count int) string {
	switch {
	case count <= 0:
		return "warn"
	case count == 1:
		return "info"
	default:
		return "debug"
	}
}
