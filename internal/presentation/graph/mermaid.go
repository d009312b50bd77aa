package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Route is a route as drawn on the map.
type Route struct {
	Path string
	// View is the view the route targets, empty for whichever view is active.
	View string
	// Redirect is the target of a declarative redirect guard.
	Redirect string
	Guarded  bool
}

// Overlay contains session data to visualize on the map.
type Overlay struct {
	// VisitedRoutes and CurrentRoute hold route patterns, not concrete paths.
	VisitedRoutes []string
	CurrentRoute  string
}

// GenerateMermaid produces a Mermaid flowchart of the route table.
// Shapes:
// - Not-found route: {{Hexagon}}
// - Guarded route: [[Subroutine]]
// - Parameterized route: ([Stadium])
// - Default: [Rectangle]
// Routes targeting a view are grouped in a subgraph named after it, and
// redirect guards are drawn as dotted edges.
func GenerateMermaid(routes []Route, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	byView := make(map[string][]Route)
	var views []string
	for _, r := range routes {
		if _, ok := byView[r.View]; !ok && r.View != "" {
			views = append(views, r.View)
		}
		byView[r.View] = append(byView[r.View], r)
	}
	sort.Strings(views)

	for _, r := range byView[""] {
		sb.WriteString("    " + node(r) + "\n")
	}
	for _, view := range views {
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", "view_"+sanitizeMermaidID(view), view))
		for _, r := range byView[view] {
			sb.WriteString("        " + node(r) + "\n")
		}
		sb.WriteString("    end\n")
	}

	for _, r := range routes {
		if r.Redirect == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -. redirect .-> %s\n", nodeID(r.Path), nodeID(r.Redirect)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, path := range overlay.VisitedRoutes {
			id := nodeID(path)
			if path != "" && !visited[id] {
				visited[id] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", id))
			}
		}
		if overlay.CurrentRoute != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", nodeID(overlay.CurrentRoute)))
		}
	}

	return sb.String()
}

func node(r Route) string {
	opener, closer := "[", "]"
	switch {
	case r.Path == "*":
		opener, closer = "{{", "}}"
	case r.Guarded:
		opener, closer = "[[", "]]"
	case strings.Contains(r.Path, ":"):
		opener, closer = "([", "])"
	}
	return fmt.Sprintf("%s%s\"%s\"%s", nodeID(r.Path), opener, r.Path, closer)
}

func nodeID(path string) string {
	switch path {
	case "*":
		return "not_found"
	case "/":
		return "root"
	}
	return "route" + sanitizeMermaidID(path)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
