// Package logging builds the process logger. Every package logs through the
// zerolog global (github.com/rs/zerolog/log); Setup replaces it once at
// startup from the pipeline's log settings.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger writing to w (os.Stderr when nil). format "json"
// emits one JSON object per line; anything else uses the human-readable
// console writer. Unknown or empty levels fall back to info.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	out := w
	if !strings.EqualFold(format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// Setup installs New(level, format, w) as the global logger and returns it.
func Setup(level, format string, w io.Writer) zerolog.Logger {
	l := New(level, format, w)
	log.Logger = l
	return l
}

// ParseLevel maps a level name to a zerolog level ("warning" is accepted
// for warn).
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
