package dsl

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// RouteBuilder provides a fluent API for configuring a route.
type RouteBuilder struct {
	route   domain.Route
	builder *Builder

	// declared mirrors the guard in route-file syntax for validation.
	declared string
}

// Page sets the page handed to the view when the route is displayed.
func (r *RouteBuilder) Page(page domain.Page) *RouteBuilder {
	r.route.Page = page
	return r
}

// View sets the candidate views the route is displayed in; the first registered one wins.
func (r *RouteBuilder) View(names ...string) *RouteBuilder {
	r.route.Options = domain.View(names...)
	return r
}

// Guard protects the route with a custom guard.
func (r *RouteBuilder) Guard(guard domain.Guard) *RouteBuilder {
	r.route.Guard = guard
	r.declared = "custom"
	return r
}

// RedirectTo sends every navigation to the route to target instead.
func (r *RouteBuilder) RedirectTo(target string) *RouteBuilder {
	r.route.Guard = func(ctx context.Context, path string) (domain.GuardResult, error) {
		return domain.RedirectTo(target), nil
	}
	r.declared = "redirect:" + target
	return r
}

// Deny rejects every navigation to the route; the engine falls back instead.
func (r *RouteBuilder) Deny() *RouteBuilder {
	r.route.Guard = func(ctx context.Context, path string) (domain.GuardResult, error) {
		return domain.Deny(), nil
	}
	r.declared = "deny"
	return r
}

// Add continues with the next route of the same builder.
func (r *RouteBuilder) Add(path string) *RouteBuilder {
	return r.builder.Add(path)
}

// NotFound continues with the not-found route of the same builder.
func (r *RouteBuilder) NotFound(page domain.Page) *RouteBuilder {
	return r.builder.NotFound(page)
}

// Build builds the whole table, see Builder.Build.
func (r *RouteBuilder) Build() ([]domain.Route, error) {
	return r.builder.Build()
}

// Route returns the underlying domain.Route.
func (r *RouteBuilder) Route() domain.Route {
	return r.route
}
