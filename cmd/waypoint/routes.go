package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"text/tabwriter"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/aretw0/waypoint/pkg/routing"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Inspect a route file",
}

var routesValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a route file for consistency",
	Long: `Reports duplicate patterns, redirects to unknown paths, unknown guards and
routes targeting views the file does not declare.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadRoutes(cmd, args)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid! ✅ (%d routes, %d views)\n", path, len(cfg.Routes), len(cfg.Views))
		return nil
	},
}

var routesListCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List the routes of a route file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadRoutes(cmd, args)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PATH\tVIEW\tGUARD\tPAGE")
		for _, r := range cfg.Routes {
			guard := "-"
			if target, ok := cfg.Redirects[r.Path]; ok {
				guard = "redirect:" + target
			} else if r.Guard != nil {
				guard = "yes"
			}
			view := r.TargetView()
			if view == "" {
				view = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", r.Path, view, guard, r.Page)
		}
		return w.Flush()
	},
}

var routesResolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Show which route a path resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadRoutes(cmd, nil)
		if err != nil {
			return err
		}
		table := routing.NewTable()
		table.Load(cfg.Routes)

		match, ok := table.ResolveOrNotFound(args[0], nil)
		if !ok {
			return fmt.Errorf("no route matches %q", args[0])
		}
		out := struct {
			Path     string            `json:"path"`
			Route    string            `json:"route"`
			Page     any               `json:"page"`
			View     string            `json:"view,omitempty"`
			Params   map[string]string `json:"params"`
			Query    url.Values        `json:"query,omitempty"`
			NotFound bool              `json:"not_found,omitempty"`
		}{
			Path:     args[0],
			Route:    match.Route.Path,
			Page:     match.Route.Page,
			View:     match.Route.TargetView(),
			Params:   match.Params,
			Query:    routing.Query(args[0]),
			NotFound: match.NotFound,
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var routesGraphCmd = &cobra.Command{
	Use:   "graph [file]",
	Short: "Export the route map as a Mermaid diagram",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadRoutes(cmd, args)
		if err != nil {
			return err
		}
		routes := make([]graph.Route, 0, len(cfg.Routes))
		for _, r := range cfg.Routes {
			redirect := cfg.Redirects[r.Path]
			routes = append(routes, graph.Route{
				Path:     r.Path,
				View:     r.TargetView(),
				Redirect: redirect,
				Guarded:  r.Guard != nil && redirect == "",
			})
		}

		var overlay *graph.Overlay
		current, _ := cmd.Flags().GetString("current")
		visited, _ := cmd.Flags().GetStringSlice("visited")
		if current != "" || len(visited) > 0 {
			overlay = &graph.Overlay{CurrentRoute: current, VisitedRoutes: visited}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(routes, overlay))
		return nil
	},
}

func loadRoutes(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	path := settings.Routes
	if len(args) > 0 {
		path = args[0]
	}
	guards, err := guardSet(cmd)
	if err != nil {
		return nil, path, err
	}
	// Names referenced by the file but not bound on the command line are
	// accepted here; validation is about the file, not a deployment.
	if !strictGuards(cmd) {
		guards = withPlaceholders(path, guards)
	}
	cfg, err := config.Load(path, guards)
	return cfg, path, err
}

// strictGuards is false for commands without a --strict flag.
func strictGuards(cmd *cobra.Command) bool {
	strict, err := cmd.Flags().GetBool("strict")
	return err == nil && strict
}

// withPlaceholders binds every guard name the file uses and guards lacks to a deny guard.
func withPlaceholders(path string, guards config.GuardSet) config.GuardSet {
	names, err := config.GuardNames(path)
	if err != nil {
		return guards
	}
	merged := make(config.GuardSet, len(guards)+len(names))
	for name, g := range guards {
		merged[name] = g
	}
	var missing []string
	for _, name := range names {
		if !merged.Has(name) {
			missing = append(missing, name+"=deny")
		}
	}
	sort.Strings(missing)
	placeholders, _ := config.ParseGuardSet(missing)
	for name, g := range placeholders {
		merged[name] = g
	}
	return merged
}

func init() {
	routesValidateCmd.Flags().Bool("strict", false, "Fail on guard names not bound with --guard")
	routesGraphCmd.Flags().String("current", "", "Route pattern to highlight as current")
	routesGraphCmd.Flags().StringSlice("visited", nil, "Route patterns to highlight as visited")
	routesCmd.AddCommand(routesValidateCmd, routesListCmd, routesResolveCmd, routesGraphCmd)
	rootCmd.AddCommand(routesCmd)
}

