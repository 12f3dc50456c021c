package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWordWrap is used when the terminal width cannot be detected.
const DefaultWordWrap = 100

// NewRenderer returns a function that renders markdown using glamour.
// Styles are picked from the terminal background; width follows the
// terminal when stdout is a TTY.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(wordWrap()),
	)
	if err != nil {
		return Plain
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Plain returns markdown unchanged. It is used when output is not a terminal.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ForOutput picks the glamour renderer for terminals and Plain otherwise.
func ForOutput(f *os.File) func(string) (string, error) {
	if IsTerminal(f) {
		return NewRenderer()
	}
	return Plain
}

func wordWrap() int {
	if !IsTerminal(os.Stdout) {
		return DefaultWordWrap
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 20 {
		return DefaultWordWrap
	}
	return width - 4
}
