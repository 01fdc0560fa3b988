package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII banner with the version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"      _   _      _         ", "#818cf8"},
		{"  ___| |_(_) ___| | ___   _", "#a78bfa"},
		{" / __| __| |/ __| |/ / | | |", "#c084fc"},
		{" \\__ \\ |_| | (__|   <| |_| |", "#e879f9"},
		{" |___/\\__|_|\\___|_|\\_\\\\__, |", "#f472b6"},
		{"                      |___/ ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", out.String("v"+version).Faint())
}
