package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// It detects light/dark backgrounds automatically.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return "", fmt.Errorf("failed to create renderer: %w", err)
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// HistoryMarkdown formats a snapshot as a markdown table, newest entry last.
// The entry matching the last key is marked with an arrow.
func HistoryMarkdown(snap domain.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** in view **%s**\n\n", escape(snap.CurrentPath), escape(snap.ActiveView))
	sb.WriteString("| | Key | Path | View | Backed |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, e := range snap.Entries {
		marker := ""
		if e.Key == snap.LastKey {
			marker = "→"
		}
		backed := ""
		if e.IsBacked {
			backed = "yes"
		}
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s |\n", marker, e.Key, escape(e.Path), escape(e.ViewName), backed)
	}
	return sb.String()
}

// NewSnapshotRenderer renders snapshots with glamour.
func NewSnapshotRenderer() func(domain.Snapshot) (string, error) {
	render := NewRenderer()
	return func(snap domain.Snapshot) (string, error) {
		return render(HistoryMarkdown(snap))
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
