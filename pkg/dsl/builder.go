package dsl

import (
	"fmt"

	"github.com/aretw0/waypoint/internal/dto"
	"github.com/aretw0/waypoint/internal/validator"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Builder manages the route table construction.
type Builder struct {
	order []string
	nodes map[string]*RouteBuilder
}

// New creates a new route table builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*RouteBuilder),
	}
}

// Add declares a route for path.
// If the route already exists, it returns the existing builder.
func (b *Builder) Add(path string) *RouteBuilder {
	if rb, ok := b.nodes[path]; ok {
		return rb
	}
	rb := &RouteBuilder{
		route:   domain.Route{Path: path},
		builder: b,
	}
	b.nodes[path] = rb
	b.order = append(b.order, path)
	return rb
}

// NotFound declares the page rendered when no route matches.
func (b *Builder) NotFound(page domain.Page) *RouteBuilder {
	return b.Add(domain.NotFoundPattern).Page(page)
}

// Build validates the table and returns the routes in declaration order.
func (b *Builder) Build() ([]domain.Route, error) {
	file := &dto.RouteFile{}
	routes := make([]domain.Route, 0, len(b.order))
	for _, path := range b.order {
		rb := b.nodes[path]
		file.Routes = append(file.Routes, dto.RouteDefinition{Path: path, Guard: rb.declared})
		routes = append(routes, rb.route)
	}

	// Function guards are opaque here, so every named guard counts as known.
	if err := validator.ValidateRoutes(file, func(string) bool { return true }); err != nil {
		return nil, fmt.Errorf("invalid route table: %w", err)
	}
	return routes, nil
}
