package routing

import (
	"strings"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Match is a resolved route together with its bound path parameters.
type Match struct {
	Route  domain.Route
	Params map[string]string
	// NotFound is set when Route is the not-found fallback.
	NotFound bool
}

// Table holds the route descriptors. Safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	routes   []domain.Route
	notFound *domain.Route
}

// NewTable creates a table with the given routes.
func NewTable(routes ...domain.Route) *Table {
	t := &Table{}
	t.Load(routes)
	return t
}

// Add appends a route. A route with the NotFoundPattern becomes the not-found route.
func (t *Table) Add(route domain.Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append(t.routes, route)
	if route.Path == domain.NotFoundPattern {
		r := route
		t.notFound = &r
	}
}

// Load replaces every route.
func (t *Table) Load(routes []domain.Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes = append([]domain.Route(nil), routes...)
	t.notFound = nil
	for i := range t.routes {
		if t.routes[i].Path == domain.NotFoundPattern {
			r := t.routes[i]
			t.notFound = &r
			break
		}
	}
}

// Routes returns a copy of the registered routes.
func (t *Table) Routes() []domain.Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.Route(nil), t.routes...)
}

// NotFound returns the not-found route, if one is registered.
func (t *Table) NotFound() (domain.Route, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.notFound == nil {
		return domain.Route{}, false
	}
	return *t.notFound, true
}

// Resolve finds the route for path. viewExists filters out routes whose declared
// view is not registered; nil accepts every view.
func (t *Table) Resolve(path string, viewExists func(string) bool) (Match, bool) {
	target := StripPath(path)

	t.mu.RLock()
	defer t.mu.RUnlock()

	usable := func(r domain.Route) bool {
		if r.Path == domain.NotFoundPattern {
			return false
		}
		if view := r.TargetView(); view != "" && viewExists != nil && !viewExists(view) {
			return false
		}
		return true
	}

	for _, r := range t.routes {
		if usable(r) && r.Path == target {
			return Match{Route: r, Params: map[string]string{}}, true
		}
	}

	for _, r := range t.routes {
		if !usable(r) || !strings.Contains(r.Path, ":") {
			continue
		}
		if params, ok := matchPattern(r.Path, target); ok {
			return Match{Route: r, Params: params}, true
		}
	}
	return Match{}, false
}

// ResolveOrNotFound is Resolve falling back to the not-found route.
func (t *Table) ResolveOrNotFound(path string, viewExists func(string) bool) (Match, bool) {
	if m, ok := t.Resolve(path, viewExists); ok {
		return m, true
	}
	if nf, ok := t.NotFound(); ok {
		return Match{Route: nf, Params: map[string]string{}, NotFound: true}, true
	}
	return Match{}, false
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	want := segments(pattern)
	got := segments(path)
	if len(want) == 0 || len(want) != len(got) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range want {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			params[name] = got[i]
			continue
		}
		if seg != got[i] {
			return nil, false
		}
	}
	return params, true
}

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
