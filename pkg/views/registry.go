// Package views tracks the named views, which one is active and the view stack.
package views

import (
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Registry tracks registered views. Safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	views     map[string]ports.View
	stack     []string
	current   string
	lastKnown string
	onChange  domain.ActiveViewChangedFunc
}

// NewRegistry creates an empty registry. onChange, if not nil, is called after
// every successful activation with (new, previous); it runs without the lock held.
func NewRegistry(onChange domain.ActiveViewChangedFunc) *Registry {
	return &Registry{
		views:    make(map[string]ports.View),
		onChange: onChange,
	}
}

// Register adds a view. The active view is pushed onto the view stack first,
// except popup views which are never stacked.
func (r *Registry) Register(name string, view ports.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != "" && !isPopup(r.current) {
		r.lastKnown = r.current
		r.stack = append(r.stack, r.current)
	}
	r.views[name] = view
	r.stack = append(r.stack, name)
}

// Unregister removes a view, pops the view stack and recomputes the active view
// from what remains.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, name)
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
	r.current = ""
	if len(r.stack) > 0 {
		r.current = r.stack[len(r.stack)-1]
	}
}

// SetActive activates the first registered candidate.
// It reports false when no candidate is registered.
func (r *Registry) SetActive(candidates ...string) bool {
	r.mu.Lock()
	name, ok := r.first(candidates)
	if !ok {
		r.mu.Unlock()
		return false
	}
	previous := r.current
	r.current = name
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(name, previous)
	}
	return true
}

// Resolve picks the target view: the first registered candidate, else the active
// view, else the last known one.
func (r *Registry) Resolve(candidates ...string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name, ok := r.first(candidates); ok {
		return name
	}
	if r.current != "" {
		return r.current
	}
	return r.lastKnown
}

// Active returns the active view name, "" when none.
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// LastKnown returns the view that was active before the latest registration.
func (r *Registry) LastKnown() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastKnown
}

// Get returns a registered view.
func (r *Registry) Get(name string) (ports.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[name]
	return v, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered view names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.views))
	for name := range r.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the first (by name) view reporting IsDefault.
func (r *Registry) Default() (string, bool) {
	for _, name := range r.Names() {
		if v, ok := r.Get(name); ok && v.IsDefault() {
			return name, true
		}
	}
	return "", false
}

// Descriptor snapshots one view.
func (r *Registry) Descriptor(name string) (domain.ViewDescriptor, bool) {
	v, ok := r.Get(name)
	if !ok {
		return domain.ViewDescriptor{}, false
	}
	return domain.ViewDescriptor{
		Name:        name,
		IsDefault:   v.IsDefault(),
		CurrentPath: v.Path(),
		InitialPath: v.InitialPath(),
		Active:      name == r.Active(),
	}, true
}

// Descriptors snapshots every registered view, sorted by name.
func (r *Registry) Descriptors() []domain.ViewDescriptor {
	var out []domain.ViewDescriptor
	for _, name := range r.Names() {
		if d, ok := r.Descriptor(name); ok {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) first(candidates []string) (string, bool) {
	for _, name := range candidates {
		if _, ok := r.views[name]; ok {
			return name, true
		}
	}
	return "", false
}

func isPopup(name string) bool {
	return strings.Contains(strings.ToLower(name), "popup")
}
