package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the tripreel ASCII art banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Sunset gradient
	lines := []struct {
		text  string
		color string
	}{
		{"  _       _                  _ ", "#fbbf24"},
		{" | |_ _ _(_)_ __ _ _ ___ ___| |", "#f59e0b"},
		{" |  _| '_| | '_ \\ '_/ -_) -_) |", "#f97316"},
		{"  \\__|_| |_| .__/_| \\___\\___|_|", "#ef4444"},
		{"            |_|                ", "#e11d48"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// ErrorBanner formats a failure message for the terminal.
func ErrorBanner(message string) string {
	p := termenv.ColorProfile()
	return termenv.String(" ✗ " + message + " ").Foreground(p.Color("#ffffff")).Background(p.Color("#b91c1c")).Bold().String()
}

// Busy formats the pending indicator.
func Busy(message string) string {
	p := termenv.ColorProfile()
	return termenv.String("⏳ " + message).Foreground(p.Color("#a78bfa")).Italic().String()
}
