package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/internal/dto"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/routing"
)

// ValidateRoutes checks a route file for duplicate patterns, dangling redirects,
// unknown guards and views. known reports whether a named guard is registered.
func ValidateRoutes(file *dto.RouteFile, known func(guard string) bool) error {
	var errors []string

	paths := make(map[string]bool)
	for i, r := range file.Routes {
		if r.Path == "" {
			errors = append(errors, fmt.Sprintf("Route #%d has no path", i+1))
			continue
		}
		if r.Path != domain.NotFoundPattern && !strings.HasPrefix(r.Path, "/") {
			errors = append(errors, fmt.Sprintf("Route '%s' must start with '/'", r.Path))
		}
		if paths[r.Path] {
			errors = append(errors, fmt.Sprintf("Duplicate route: '%s'", r.Path))
		}
		paths[r.Path] = true
		for _, seg := range strings.Split(r.Path, "/") {
			if seg == ":" {
				errors = append(errors, fmt.Sprintf("Route '%s' has an unnamed parameter", r.Path))
			}
		}
	}

	views := make(map[string]bool)
	defaults := 0
	for _, v := range file.Views {
		if v.Name == "" {
			errors = append(errors, fmt.Sprintf("View at '%s' has no name", v.Path))
			continue
		}
		if views[v.Name] {
			errors = append(errors, fmt.Sprintf("Duplicate view: '%s'", v.Name))
		}
		views[v.Name] = true
		if v.Default {
			defaults++
		}
	}
	if defaults > 1 {
		errors = append(errors, fmt.Sprintf("Found %d default views, at most one is allowed", defaults))
	}

	table := routing.NewTable()
	for _, r := range file.Routes {
		table.Add(domain.Route{Path: r.Path})
	}
	resolvable := func(target string) bool {
		_, ok := table.Resolve(target, nil)
		return ok
	}

	for _, v := range file.Views {
		if v.Path != "" && !resolvable(v.Path) {
			errors = append(errors, fmt.Sprintf("View '%s' starts at unknown path '%s'", v.Name, v.Path))
		}
	}

	for _, r := range file.Routes {
		for _, name := range r.TargetViews() {
			if len(file.Views) > 0 && !views[name] {
				errors = append(errors, fmt.Sprintf("Route '%s' targets unknown view '%s'", r.Path, name))
			}
		}
		switch guard := r.Guard; {
		case guard == "", guard == "allow", guard == "deny":
		case strings.HasPrefix(guard, "redirect:"):
			target := strings.TrimPrefix(guard, "redirect:")
			if target == "" || !resolvable(target) {
				errors = append(errors, fmt.Sprintf("Route '%s' redirects to unknown path '%s'", r.Path, target))
			}
		default:
			if known == nil || !known(guard) {
				errors = append(errors, fmt.Sprintf("Route '%s' uses unknown guard '%s'", r.Path, guard))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
