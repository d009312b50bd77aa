package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Waypoint banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{` __      __                      _       _   `, "#34d399"},
		{` \ \    / /_ _ _   _ _ __   ___ (_)_ __ | |_ `, "#2dd4bf"},
		{`  \ \/\/ / _' | | | | '_ \ / _ \| | '_ \| __|`, "#22d3ee"},
		{`   \_/\_/\__,_|\__, | .__/ \___/|_|_| |_|\__|`, "#38bdf8"},
		{`               |___/|_|                      `, "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colours a navigation status for terminal output.
func Status(w io.Writer, status string) string {
	out := termenv.NewOutput(w)
	color := "#facc15"
	switch status {
	case "committed":
		color = "#4ade80"
	case "not_found", "view_not_found", "failed":
		color = "#f87171"
	}
	return out.String(status).Foreground(out.Color(color)).String()
}
