package runtime

import (
	"log/slog"
	"sync"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/history"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/routing"
	"github.com/aretw0/waypoint/pkg/views"
	"go.uber.org/atomic"
)

// Engine coordinates the route table, the view registry and the history store.
//
// Programmatic navigations run on one track and browser back gestures on another.
// Each track runs one attempt at a time and parks at most one request while busy;
// a newer request replaces the parked one. The engine mutex guards bookkeeping only
// and is never held while guards, callbacks, views or the host run.
type Engine struct {
	routes  *routing.Table
	views   *views.Registry
	history *history.Store
	logger  *slog.Logger
	hooks   domain.Hooks

	fallback string
	clock    *history.Clock

	mu            sync.Mutex
	nav           track[domain.PendingRequest]
	back          track[domain.Entry]
	path          string // full path of the displayed page
	initialLoaded bool
	redirect      string // guard redirect raised while checking a gesture

	ids           atomic.Uint64
	activeChanged observers[domain.ActiveViewChangedFunc]
	before        observers[domain.BeforeNavigateFunc]
	after         observers[domain.AfterNavigateFunc]
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger configures a logger for the Engine and its history store.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithFallbackPath sets where a guard denial without redirect leads. Defaults to "/".
func WithFallbackPath(path string) EngineOption {
	return func(e *Engine) {
		e.fallback = path
	}
}

// WithRoutes preloads the route table.
func WithRoutes(routes ...domain.Route) EngineOption {
	return func(e *Engine) {
		e.routes.Load(routes)
	}
}

// WithClock overrides the clock issuing history keys.
func WithClock(clock *history.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates an engine bridged to host.
func NewEngine(host ports.Host, opts ...EngineOption) *Engine {
	e := &Engine{
		routes:   routing.NewTable(),
		logger:   logging.NewNop(),
		fallback: domain.DefaultFallbackPath,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.views = views.NewRegistry(e.notifyActiveChanged)

	storeOpts := []history.Option{history.WithLogger(e.logger), history.WithHooks(e.hooks)}
	if e.clock != nil {
		storeOpts = append(storeOpts, history.WithClock(e.clock))
	}
	e.history = history.New(host, storeOpts...)
	e.history.OnCheckNavigation(e.checkGesture)
	e.history.OnReject(e.gestureRejected)
	e.history.OnBack(e.restore)
	e.history.OnForward(e.replay)

	return e
}

// AddRoute registers a route. The "*" pattern sets the not-found route.
func (e *Engine) AddRoute(route domain.Route) {
	e.routes.Add(route)
}

// LoadStaticRoutes replaces the route table in bulk.
func (e *Engine) LoadStaticRoutes(routes []domain.Route) {
	e.routes.Load(routes)
}

// Routes returns the registered routes, not-found route excluded.
func (e *Engine) Routes() []domain.Route {
	return e.routes.Routes()
}

// Resolve looks a path up the way a navigation would.
func (e *Engine) Resolve(path string) (routing.Match, bool) {
	return e.routes.ResolveOrNotFound(path, e.views.Has)
}

// History exposes the history store.
func (e *Engine) History() *history.Store {
	return e.history
}

// Views exposes the view registry.
func (e *Engine) Views() *views.Registry {
	return e.views
}

// Path returns the full path of the displayed page.
func (e *Engine) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// CurrentPath returns the displayed path without query or fragment.
func (e *Engine) CurrentPath() string {
	return routing.StripPath(e.Path())
}

// Snapshot returns a consistent read-only picture of the engine.
func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	path, navigating, goingBack := e.path, e.nav.busy, e.back.busy
	e.mu.Unlock()

	return domain.Snapshot{
		ActiveView:  e.views.Active(),
		CurrentPath: path,
		LastKey:     e.history.LastKey(),
		Entries:     e.history.Entries(),
		Views:       e.views.Descriptors(),
		Navigating:  navigating,
		GoingBack:   goingBack,
	}
}

func (e *Engine) setPath(path string) (previous string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	previous, e.path = e.path, path
	return previous
}
