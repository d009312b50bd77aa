package waypoint

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/config"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/history"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/routing"
)

// Router is the high-level entry point for the Waypoint library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Router struct {
	engine *runtime.Engine
	host   ports.Host
	config *config.Config
	logger *slog.Logger
	hooks  domain.Hooks

	routes   []domain.Route
	guards   config.GuardSet
	fallback string
	clock    *history.Clock

	Name string
}

// Option defines a functional option for configuring the Router.
type Option func(*Router)

// WithHost binds the router to a native history. Defaults to an in-memory host.
func WithHost(host ports.Host) Option {
	return func(r *Router) {
		r.host = host
	}
}

// WithLogger sets a custom structured logger for the router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(r *Router) {
		r.hooks = hooks
	}
}

// WithRoutes registers routes in addition to those of the route file.
func WithRoutes(routes ...domain.Route) Option {
	return func(r *Router) {
		r.routes = append(r.routes, routes...)
	}
}

// WithGuards binds the guard names a route file refers to.
func WithGuards(guards config.GuardSet) Option {
	return func(r *Router) {
		r.guards = guards
	}
}

// WithFallbackPath overrides where a guard denial without redirect leads.
func WithFallbackPath(path string) Option {
	return func(r *Router) {
		r.fallback = path
	}
}

// WithClock overrides the clock issuing history keys.
func WithClock(clock *history.Clock) Option {
	return func(r *Router) {
		r.clock = clock
	}
}

// New initializes a Router.
// When routesPath is not empty the route file is loaded and validated first;
// routes given with WithRoutes are added after it.
func New(routesPath string, opts ...Option) (*Router, error) {
	r := &Router{}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.host == nil {
		r.host = memory.NewHost()
	}

	var routes []domain.Route
	if routesPath != "" {
		cfg, err := config.Load(routesPath, r.guards)
		if err != nil {
			return nil, fmt.Errorf("failed to load routes: %w", err)
		}
		r.config = cfg
		r.Name = strings.TrimSuffix(filepath.Base(routesPath), filepath.Ext(routesPath))
		routes = append(routes, cfg.Routes...)
		if r.fallback == "" {
			r.fallback = cfg.Fallback
		}
	}
	routes = append(routes, r.routes...)

	if r.Name != "" {
		r.logger = r.logger.With("routes", r.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(r.logger),
		runtime.WithHooks(r.hooks),
		runtime.WithRoutes(routes...),
	}
	if r.fallback != "" {
		runtimeOpts = append(runtimeOpts, runtime.WithFallbackPath(r.fallback))
	}
	if r.clock != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithClock(r.clock))
	}
	r.engine = runtime.NewEngine(r.host, runtimeOpts...)

	return r, nil
}

// ViewFactory builds the view for a declared view.
type ViewFactory func(v config.View) ports.View

// MountConfiguredViews mounts the views declared in the route file, the default view first.
// Without a factory, headless in-memory views are used.
func (r *Router) MountConfiguredViews(ctx context.Context, factory ViewFactory) error {
	if r.config == nil {
		return nil
	}
	if factory == nil {
		factory = func(v config.View) ports.View {
			if v.Default {
				return memory.NewView(v.Path, memory.AsDefault())
			}
			return memory.NewView(v.Path)
		}
	}

	ordered := make([]config.View, 0, len(r.config.Views))
	for _, v := range r.config.Views {
		if v.Default {
			ordered = append([]config.View{v}, ordered...)
		} else {
			ordered = append(ordered, v)
		}
	}
	for _, v := range ordered {
		if err := r.engine.MountView(ctx, v.Name, factory(v)); err != nil {
			return fmt.Errorf("failed to mount view %q: %w", v.Name, err)
		}
	}
	return nil
}

// Navigate requests a navigation to path.
func (r *Router) Navigate(ctx context.Context, path string, opts ...*domain.NavigateOptions) domain.Result {
	return r.engine.Navigate(ctx, path, opts...)
}

// Back goes back one entry, or navigates to fallback when there is nothing to go back to.
func (r *Router) Back(ctx context.Context, fallback string) bool {
	return r.engine.Back(ctx, fallback)
}

// Forward goes forward one entry.
func (r *Router) Forward(ctx context.Context) {
	r.engine.Forward(ctx)
}

// ChangeView shows a view with the page it currently displays.
func (r *Router) ChangeView(ctx context.Context, name string) domain.Result {
	return r.engine.ChangeView(ctx, name)
}

// ForceHome navigates the active view to its initial path.
func (r *Router) ForceHome(ctx context.Context) domain.Result {
	return r.engine.ForceHome(ctx)
}

// LoadInitialPath displays the path the application was opened at.
func (r *Router) LoadInitialPath(ctx context.Context, path string) domain.Result {
	return r.engine.LoadInitialPath(ctx, path)
}

// AddRoute registers a route.
func (r *Router) AddRoute(route domain.Route) {
	r.engine.AddRoute(route)
}

// LoadStaticRoutes replaces the routes in bulk.
func (r *Router) LoadStaticRoutes(routes []domain.Route) {
	r.engine.LoadStaticRoutes(routes)
}

// Routes returns the registered routes.
func (r *Router) Routes() []domain.Route {
	return r.engine.Routes()
}

// Resolve looks a path up the way a navigation would.
func (r *Router) Resolve(path string) (routing.Match, bool) {
	return r.engine.Resolve(path)
}

// MountView registers a view and displays its initial page.
func (r *Router) MountView(ctx context.Context, name string, view ports.View) error {
	return r.engine.MountView(ctx, name, view)
}

// UnmountView removes a view.
func (r *Router) UnmountView(name string) {
	r.engine.UnmountView(name)
}

// ActivateView switches to a view, keeping its page.
func (r *Router) ActivateView(ctx context.Context, name string) domain.Result {
	return r.engine.ActivateView(ctx, name)
}

func (r *Router) SubscribeToActiveViewChanged(fn domain.ActiveViewChangedFunc) domain.SubscriptionID {
	return r.engine.SubscribeToActiveViewChanged(fn)
}

func (r *Router) UnsubscribeFromActiveViewChanged(id domain.SubscriptionID) bool {
	return r.engine.UnsubscribeFromActiveViewChanged(id)
}

func (r *Router) SubscribeToBeforeNavigate(fn domain.BeforeNavigateFunc) domain.SubscriptionID {
	return r.engine.SubscribeToBeforeNavigate(fn)
}

func (r *Router) UnsubscribeFromBeforeNavigate(id domain.SubscriptionID) bool {
	return r.engine.UnsubscribeFromBeforeNavigate(id)
}

func (r *Router) SubscribeToAfterNavigate(fn domain.AfterNavigateFunc) domain.SubscriptionID {
	return r.engine.SubscribeToAfterNavigate(fn)
}

func (r *Router) UnsubscribeFromAfterNavigate(id domain.SubscriptionID) bool {
	return r.engine.UnsubscribeFromAfterNavigate(id)
}

// QueryParams extracts typed query parameters of the displayed path.
func (r *Router) QueryParams(lookups []routing.Lookup) map[string]any {
	return r.engine.QueryParams(lookups)
}

// PathParams extracts typed route parameters of the displayed path.
func (r *Router) PathParams(lookups []routing.Lookup) map[string]any {
	return r.engine.PathParams(lookups)
}

// UpdateQueryParams replaces the query string of the displayed path in place.
func (r *Router) UpdateQueryParams(ctx context.Context, params map[string]any) error {
	return r.engine.UpdateQueryParams(ctx, params)
}

// Snapshot returns a read-only picture of the router.
func (r *Router) Snapshot() domain.Snapshot {
	return r.engine.Snapshot()
}

// Host returns the native history the router is bound to.
func (r *Router) Host() ports.Host {
	return r.host
}

// Config returns the loaded route file, nil when routes were given in code only.
func (r *Router) Config() *config.Config {
	return r.config
}
