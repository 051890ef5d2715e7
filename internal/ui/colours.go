// Package ui holds the terminal helpers used by kycctl.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	RedInverse   = "\033[7;31m"
	GreenInverse = "\033[7;32m"

	ResetColor = "\033[0m"
)

// statusColours covers verification statuses, overall statuses and risk levels.
var statusColours = map[string]string{
	"VERIFIED":     Green,
	"PENDING":      Yellow,
	"IN_PROGRESS":  Cyan,
	"NEEDS_REVIEW": Magenta,
	"REJECTED":     Red,
	"EXPIRED":      Gray,
	"INCOMPLETE":   Gray,

	"LOW":      Green,
	"MEDIUM":   Yellow,
	"HIGH":     Red,
	"CRITICAL": RedInverse,
}

// Painter wraps text in ANSI colours when its output is a terminal.
type Painter struct {
	enabled bool
}

// NewPainter enables colour only when w is a terminal and NO_COLOR is unset.
func NewPainter(w io.Writer) Painter {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return Painter{}
	}
	return Painter{enabled: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

// ForcedPainter always (or never) colours, regardless of the output.
func ForcedPainter(enabled bool) Painter {
	return Painter{enabled: enabled}
}

func (p Painter) Paint(colour, s string) string {
	if !p.enabled || colour == "" {
		return s
	}
	return colour + s + ResetColor
}

// Status colours a status or risk value; unknown values are left plain.
func (p Painter) Status(status string) string {
	return p.Paint(statusColours[status], status)
}

func (p Painter) Error(s string) string {
	return p.Paint(Red, s)
}

func (p Painter) Success(s string) string {
	return p.Paint(Green, s)
}
