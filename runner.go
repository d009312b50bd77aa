package waypoint

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Runner drives a Router from line commands read from Input.
// This allows for easy testing and scripted simulations of navigation sessions.
//
// Commands:
//
//	go <path> [view]     navigate
//	back [fallback]      browser back gesture
//	forward              browser forward gesture
//	view <name>          change view
//	activate <name>      activate view
//	home                 send the active view home
//	query k=v ...        replace the query string
//	state                print the snapshot
//	quit                 stop
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer SnapshotRenderer
}

// SnapshotRenderer formats the router state for the "state" command.
// This allows for TUI rendering without coupling the core package.
type SnapshotRenderer func(domain.Snapshot) (string, error)

// NewRunner creates a new Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes commands until quit or end of input.
func (r *Runner) Run(ctx context.Context, router *Router) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewScanner(r.Input)
	w := r.Output

	if !r.Headless {
		fmt.Fprintln(w, "--- Waypoint (Runner) ---")
	}

	for {
		if !r.Headless {
			fmt.Fprint(w, "> ")
		}
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}
		fields := strings.Fields(lines.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			if !r.Headless {
				fmt.Fprintln(w, "Bye!")
			}
			return nil
		}
		if err := r.exec(ctx, router, fields); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}
}

func (r *Runner) exec(ctx context.Context, router *Router, fields []string) error {
	w := r.Output
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "go", "navigate":
		if len(args) == 0 {
			return fmt.Errorf("usage: go <path> [view]")
		}
		var opts *domain.NavigateOptions
		if len(args) > 1 {
			opts = domain.View(args[1:]...)
		}
		printResult(w, router.Navigate(ctx, args[0], opts))
	case "back":
		fallback := ""
		if len(args) > 0 {
			fallback = args[0]
		}
		if !router.Back(ctx, fallback) {
			fmt.Fprintln(w, "back: nothing to go back to")
		}
		printLocation(w, router.Snapshot())
	case "forward":
		router.Forward(ctx)
		printLocation(w, router.Snapshot())
	case "view":
		if len(args) != 1 {
			return fmt.Errorf("usage: view <name>")
		}
		printResult(w, router.ChangeView(ctx, args[0]))
	case "activate":
		if len(args) != 1 {
			return fmt.Errorf("usage: activate <name>")
		}
		printResult(w, router.ActivateView(ctx, args[0]))
	case "home":
		printResult(w, router.ForceHome(ctx))
	case "query":
		params := make(map[string]any, len(args))
		for _, kv := range args {
			k, v, _ := strings.Cut(kv, "=")
			params[k] = v
		}
		if err := router.UpdateQueryParams(ctx, params); err != nil {
			return err
		}
		printLocation(w, router.Snapshot())
	case "state":
		snap := router.Snapshot()
		if r.Renderer != nil {
			out, err := r.Renderer(snap)
			if err == nil {
				fmt.Fprintln(w, strings.TrimSpace(out))
				return nil
			}
		}
		for _, e := range snap.Entries {
			marker := " "
			if e.Key == snap.LastKey {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %d %s (%s)\n", marker, e.Key, e.Path, e.ViewName)
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printResult(w io.Writer, res domain.Result) {
	switch {
	case res.Redirect != "":
		fmt.Fprintf(w, "%s %s -> %s\n", res.Status, res.Path, res.Redirect)
	case res.View != "":
		fmt.Fprintf(w, "%s %s (%s)\n", res.Status, res.Path, res.View)
	default:
		fmt.Fprintf(w, "%s %s\n", res.Status, res.Path)
	}
}

func printLocation(w io.Writer, snap domain.Snapshot) {
	fmt.Fprintf(w, "at %s (%s)\n", snap.CurrentPath, snap.ActiveView)
}
