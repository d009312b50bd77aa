package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/graph"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		routes   []graph.Route
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name:   "Root and Not Found Shapes",
			routes: []graph.Route{{Path: "/"}, {Path: "*"}},
			contains: []string{
				"root[\"/\"]",
				"not_found{{\"*\"}}",
			},
		},
		{
			name:   "Guarded Route Shape",
			routes: []graph.Route{{Path: "/vault", Guarded: true}},
			contains: []string{
				"route_vault[[\"/vault\"]]",
			},
		},
		{
			name:   "Parameterized Route Shape",
			routes: []graph.Route{{Path: "/users/:id"}},
			contains: []string{
				"route_users__id([\"/users/:id\"])",
			},
		},
		{
			name: "Redirect Edge",
			routes: []graph.Route{
				{Path: "/admin", Guarded: true, Redirect: "/login"},
				{Path: "/login"},
			},
			contains: []string{
				"route_admin -. redirect .-> route_login",
			},
		},
		{
			name: "View Subgraph",
			routes: []graph.Route{
				{Path: "/settings", View: "side-panel"},
				{Path: "/"},
			},
			contains: []string{
				"subgraph view_side_panel[\"side-panel\"]",
				"        route_settings[\"/settings\"]",
				"    end",
			},
		},
		{
			name:   "No Overlay",
			routes: []graph.Route{{Path: "/"}},
			excludes: []string{
				"classDef",
			},
		},
		{
			name:   "Overlay",
			routes: []graph.Route{{Path: "/"}, {Path: "/a"}},
			overlay: &graph.Overlay{
				VisitedRoutes: []string{"/", "/a", "/"},
				CurrentRoute:  "/a",
			},
			contains: []string{
				"class root visited;",
				"class route_a visited;",
				"class route_a current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.routes, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("expected flowchart header, got:\n%s", got)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected output to contain %q, got:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("expected output not to contain %q, got:\n%s", s, got)
				}
			}
			if n := strings.Count(got, "class root visited;"); n > 1 {
				t.Errorf("visited routes must be deduplicated, found %d", n)
			}
		})
	}
}
