package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/waypoint/internal/compiler"
	"github.com/aretw0/waypoint/internal/dto"
	"github.com/aretw0/waypoint/internal/validator"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Format selects the syntax of a route document.
type Format = compiler.Format

const (
	YAML = compiler.FormatYAML
	JSON = compiler.FormatJSON
)

// GuardSet binds guard names used in route files to implementations.
type GuardSet map[string]domain.Guard

// Has reports whether name is bound.
func (g GuardSet) Has(name string) bool {
	_, ok := g[name]
	return ok
}

// Names lists the bound guard names, sorted.
func (g GuardSet) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// View is a view the host mounts when a session starts.
type View struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Default bool   `json:"default,omitempty"`
}

// Config is a validated route configuration ready for the engine.
type Config struct {
	Fallback string
	Routes   []domain.Route
	Views    []View
	// Redirects maps route paths to the target of their "redirect:" guard.
	Redirects map[string]string
}

// Load reads a route file. Files ending in .json are parsed as JSON, anything else as YAML.
func Load(path string, guards GuardSet) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes config: %w", err)
	}
	cfg, err := Decode(data, formatOf(path), guards)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// GuardNames lists the named guards a route file references, sorted and without duplicates.
// Declarative guards are not names and are left out.
func GuardNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes config: %w", err)
	}
	file, err := compiler.NewParser().Parse(data, formatOf(path))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, def := range file.Routes {
		if _, declarative := ParseGuard(def.Guard); declarative || seen[def.Guard] {
			continue
		}
		seen[def.Guard] = true
		names = append(names, def.Guard)
	}
	sort.Strings(names)
	return names, nil
}

func formatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return JSON
	}
	return YAML
}

// Decode parses and validates a route document.
func Decode(data []byte, format Format, guards GuardSet) (*Config, error) {
	file, err := compiler.NewParser().Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateRoutes(file, guards.Has); err != nil {
		return nil, err
	}
	return build(file, guards), nil
}

func build(file *dto.RouteFile, guards GuardSet) *Config {
	cfg := &Config{Fallback: file.Fallback, Redirects: make(map[string]string)}
	if cfg.Fallback == "" {
		cfg.Fallback = domain.DefaultFallbackPath
	}
	for _, def := range file.Routes {
		route := domain.Route{
			Path:  def.Path,
			Page:  def.Page,
			Guard: guardFor(def.Guard, guards),
		}
		if target, ok := strings.CutPrefix(def.Guard, "redirect:"); ok {
			cfg.Redirects[def.Path] = target
		}
		if views := def.TargetViews(); len(views) > 0 {
			route.Options = domain.View(views...)
		}
		cfg.Routes = append(cfg.Routes, route)
	}
	for _, v := range file.Views {
		cfg.Views = append(cfg.Views, View{Name: v.Name, Path: v.Path, Default: v.Default})
	}
	return cfg
}

// guardFor turns a guard declaration into a domain.Guard. Names are resolved
// against guards; validation has already rejected unknown ones.
func guardFor(spec string, guards GuardSet) domain.Guard {
	if guard, ok := ParseGuard(spec); ok {
		return guard
	}
	return guards[spec]
}

// ParseGuard builds a declarative guard: "allow" (or ""), "deny" or "redirect:/path".
// ok is false for anything else, which route files treat as a guard name.
// An allow guard is returned as nil.
func ParseGuard(spec string) (guard domain.Guard, ok bool) {
	switch {
	case spec == "" || spec == "allow":
		return nil, true
	case spec == "deny":
		return func(ctx context.Context, path string) (domain.GuardResult, error) {
			return domain.Deny(), nil
		}, true
	case strings.HasPrefix(spec, "redirect:"):
		target := strings.TrimPrefix(spec, "redirect:")
		return func(ctx context.Context, path string) (domain.GuardResult, error) {
			return domain.RedirectTo(target), nil
		}, true
	default:
		return nil, false
	}
}

// ParseGuardSet binds names to declarative guards given as "name=spec".
func ParseGuardSet(bindings []string) (GuardSet, error) {
	set := make(GuardSet, len(bindings))
	for _, b := range bindings {
		name, spec, found := strings.Cut(b, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid guard binding %q, expected name=spec", b)
		}
		guard, ok := ParseGuard(spec)
		if !ok {
			return nil, fmt.Errorf("guard %q: unknown spec %q", name, spec)
		}
		if guard == nil {
			guard = func(ctx context.Context, path string) (domain.GuardResult, error) {
				return domain.Allow(), nil
			}
		}
		set[name] = guard
	}
	return set, nil
}

// DefaultView returns the view marked default, falling back to the first one.
func (c *Config) DefaultView() (View, bool) {
	for _, v := range c.Views {
		if v.Default {
			return v, true
		}
	}
	if len(c.Views) > 0 {
		return c.Views[0], true
	}
	return View{}, false
}
