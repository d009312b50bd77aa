package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/routing"
)

// MountView registers a view and displays the page of its initial path.
// The route guard is evaluated once; a redirect displays the redirect target instead.
// Mounting the default view activates it and replaces the current history entry.
func (e *Engine) MountView(ctx context.Context, name string, view ports.View) error {
	e.views.Register(name, view)

	path := view.Path()
	match, ok := e.routes.Resolve(path, e.views.Has)
	if !ok {
		e.logger.Error("initial path of view does not exist", "path", path, "view", name)
		return fmt.Errorf("mount %q at %q: %w", name, path, domain.ErrRouteNotFound)
	}

	if target, denied, _ := e.checkGuard(ctx, match.Route); denied {
		redirected, ok := e.routes.Resolve(target, e.views.Has)
		if !ok {
			e.logger.Error("guard redirect does not exist", "path", target, "view", name)
			return fmt.Errorf("mount %q redirected to %q: %w", name, target, domain.ErrRouteNotFound)
		}
		match, path = redirected, target
	}

	if err := view.SetPage(ctx, match.Route.Page, path); err != nil {
		return fmt.Errorf("mount %q: %w", name, err)
	}

	if view.IsDefault() {
		res := e.submit(ctx, domain.PendingRequest{Kind: domain.RequestReplace, Path: view.Path(), Options: domain.View(name)})
		if res.Status == domain.StatusFailed {
			return fmt.Errorf("mount %q: failed to record %q in history", name, res.Path)
		}
	}
	return nil
}

// UnmountView removes a view. The view below it on the view stack becomes current.
func (e *Engine) UnmountView(name string) {
	e.views.Unregister(name)
}

// ChangeView navigates to the page a view currently displays, in that view.
func (e *Engine) ChangeView(ctx context.Context, name string) domain.Result {
	view, ok := e.views.Get(name)
	if !ok {
		e.logger.Error("view not found", "view", name)
		return domain.Result{Status: domain.StatusViewNotFound, View: name}
	}
	return e.Navigate(ctx, view.Path(), domain.View(name))
}

// ForceHome navigates the active view back to its initial path.
func (e *Engine) ForceHome(ctx context.Context) domain.Result {
	name := e.views.Active()
	view, ok := e.views.Get(name)
	if !ok {
		e.logger.Error("view not found", "view", name)
		return domain.Result{Status: domain.StatusViewNotFound, View: name}
	}
	return e.Navigate(ctx, view.InitialPath(), domain.View(name))
}

// ActivateView switches to a view keeping the page it displays, recording it in history.
// Activating the view that is already active sends it home instead.
// Before-navigate callbacks are informed but cannot veto the switch.
func (e *Engine) ActivateView(ctx context.Context, name string) domain.Result {
	if name == e.views.Active() {
		return e.ForceHome(ctx)
	}
	return e.submit(ctx, domain.PendingRequest{Kind: domain.RequestActivate, Options: domain.View(name)})
}

func (e *Engine) runActivate(ctx context.Context, req domain.PendingRequest) domain.Result {
	name := req.Options.Views[0]
	view, ok := e.views.Get(name)
	if !ok {
		e.logger.Error("view not found", "view", name)
		return domain.Result{Status: domain.StatusViewNotFound, View: name}
	}

	path := view.Path()
	res := domain.Result{Path: path, View: name}
	previousPath := ""
	if current, ok := e.views.Get(e.views.Active()); ok {
		previousPath = routing.StripPath(current.Path())
	}
	newPath := routing.StripPath(path)

	e.beforeNavigate(ctx, newPath, previousPath, path)

	e.views.SetActive(name)
	if _, err := e.history.Push(ctx, domain.Location{Path: path, ViewName: name}); err != nil {
		e.logger.Error("failed to record navigation", "path", path, "view", name, "err", err)
	}
	e.setPath(path)
	e.afterNavigate(newPath, previousPath)

	res.Status = domain.StatusCommitted
	return res
}

// LoadInitialPath displays the path the application was opened at, replacing the
// bootstrap history entry. It only acts once and ignores the root path.
// Unknown paths render the not-found route in the default view.
func (e *Engine) LoadInitialPath(ctx context.Context, path string) domain.Result {
	e.mu.Lock()
	skip := path == "" || path == "/" || e.initialLoaded
	e.initialLoaded = true
	e.mu.Unlock()
	if skip {
		return domain.Result{Status: domain.StatusIgnored, Path: path}
	}
	return e.submit(ctx, domain.PendingRequest{Kind: domain.RequestInitial, Path: path})
}

func (e *Engine) runInitial(ctx context.Context, req domain.PendingRequest) domain.Result {
	res := domain.Result{Path: req.Path}

	match, ok := e.routes.Resolve(req.Path, e.views.Has)
	if !ok {
		notFound, ok := e.routes.NotFound()
		if !ok {
			e.logger.Error("invalid route and no not-found page", "path", req.Path)
			res.Status = domain.StatusNotFound
			return res
		}
		name, ok := e.views.Default()
		if !ok {
			e.logger.Error("no default view for the not-found page", "path", req.Path)
			res.Status = domain.StatusViewNotFound
			return res
		}
		return e.replaceDisplay(ctx, res, name, notFound.Page)
	}

	if target, denied, cancelled := e.checkGuard(ctx, match.Route); cancelled {
		res.Status = domain.StatusPrevented
		return res
	} else if denied {
		e.redirectTo(ctx, target)
		res.Status, res.Redirect = domain.StatusRedirected, target
		return res
	}
	if e.beforeNavigate(ctx, routing.StripPath(req.Path), domain.DefaultFallbackPath, req.Path) {
		res.Status = domain.StatusPrevented
		return res
	}

	name := e.views.Active()
	if declared := match.Route.TargetView(); declared != "" {
		if !e.views.Has(declared) {
			e.logger.Error("view not found", "path", req.Path, "view", declared)
			res.Status = domain.StatusViewNotFound
			return res
		}
		name = declared
	}
	res = e.replaceDisplay(ctx, res, name, match.Route.Page)
	if res.Committed() {
		e.afterNavigate(routing.StripPath(req.Path), domain.DefaultFallbackPath)
	}
	return res
}

// replaceDisplay shows page in the named view, activates it and overwrites the current history entry.
func (e *Engine) replaceDisplay(ctx context.Context, res domain.Result, name string, page domain.Page) domain.Result {
	view, ok := e.views.Get(name)
	if !ok {
		e.logger.Error("view not found", "path", res.Path, "view", name)
		res.Status = domain.StatusViewNotFound
		return res
	}
	res.View = name

	if err := view.SetPage(ctx, page, res.Path); err != nil {
		e.logger.Error("view failed to display page", "path", res.Path, "view", name, "err", err)
		res.Status = domain.StatusFailed
		return res
	}
	e.views.SetActive(name)
	if _, err := e.history.Replace(ctx, domain.Location{Path: res.Path, ViewName: name}); err != nil {
		e.logger.Error("failed to record navigation", "path", res.Path, "view", name, "err", err)
	}
	e.setPath(res.Path)
	res.Status = domain.StatusCommitted
	return res
}

// runReplace overwrites the current history entry with a path shown by a view
// and makes that view active. Without a view option the active view is used.
// Nothing is redisplayed.
func (e *Engine) runReplace(ctx context.Context, req domain.PendingRequest) domain.Result {
	name := e.views.Active()
	if req.Options.HasView() {
		name = req.Options.Views[0]
	}
	res := domain.Result{Path: req.Path, View: name}
	view, ok := e.views.Get(name)
	if !ok {
		e.logger.Error("view not found", "path", req.Path, "view", name)
		res.Status = domain.StatusViewNotFound
		return res
	}
	if req.Query != nil {
		res.Path = routing.WithQuery(view.Path(), req.Query)
	}
	if _, err := e.history.Replace(ctx, domain.Location{Path: res.Path, ViewName: name}); err != nil {
		e.logger.Error("failed to replace history entry", "path", res.Path, "view", name, "err", err)
		res.Status = domain.StatusFailed
		return res
	}
	e.views.SetActive(name)
	e.setPath(res.Path)
	res.Status = domain.StatusCommitted
	return res
}
