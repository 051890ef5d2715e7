// Package logging builds the zerolog logger shared by the client packages.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w. Development builds get the human readable console writer,
// everything else gets JSON lines. An unknown level falls back to info.
func New(w io.Writer, level string, dev bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if dev {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
