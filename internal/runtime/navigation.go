package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/routing"
)

// Navigate requests a navigation to path. Only the first non-nil options value is used.
//
// The call returns once the request is settled for this caller: committed, rejected,
// or parked behind the navigation in flight (StatusQueued). A parked request runs
// after the current one unless a newer request replaces it first.
func (e *Engine) Navigate(ctx context.Context, path string, opts ...*domain.NavigateOptions) domain.Result {
	req := domain.PendingRequest{Path: path}
	for _, o := range opts {
		if o != nil {
			req.Options = o
			break
		}
	}
	return e.submit(ctx, req)
}

// submit runs req on the navigation track, or parks it when the track is busy.
// The owner drains parked requests before returning.
//
// A replace request never displaces a parked navigation; it is superseded by it instead.
func (e *Engine) submit(ctx context.Context, req domain.PendingRequest) domain.Result {
	e.mu.Lock()
	if req.Kind == domain.RequestReplace && e.nav.busy && e.navigationParked() {
		e.mu.Unlock()
		e.logger.Debug("history replacement superseded by pending navigation", "path", req.Path)
		return domain.Result{Status: domain.StatusSuperseded, Path: req.Path}
	}
	owned, dropped := e.nav.acquire(req)
	e.mu.Unlock()

	if !owned {
		if dropped != nil {
			e.logger.Debug("pending navigation replaced", "path", dropped.Path, "by", req.Path)
			e.emitFor(ctx, *dropped, domain.Result{Status: domain.StatusSuperseded, Path: dropped.Path}, 0)
		}
		res := domain.Result{Status: domain.StatusQueued, Path: req.Path}
		e.emitFor(ctx, req, res, 0)
		return res
	}

	res := e.attempt(ctx, req)

	// Parked requests outlive their callers; only cancellation of the owner is dropped.
	drainCtx := context.WithoutCancel(ctx)
	for {
		e.mu.Lock()
		next, ok := e.nav.next()
		e.mu.Unlock()
		if !ok {
			return res
		}
		e.attempt(drainCtx, *next)
	}
}

func (e *Engine) attempt(ctx context.Context, req domain.PendingRequest) domain.Result {
	start := time.Now()
	var res domain.Result
	switch req.Kind {
	case domain.RequestActivate:
		res = e.runActivate(ctx, req)
	case domain.RequestInitial:
		res = e.runInitial(ctx, req)
	case domain.RequestReplace:
		res = e.runReplace(ctx, req)
	default:
		res = e.runNavigate(ctx, req)
	}
	e.emitFor(ctx, req, res, time.Since(start))
	return res
}

func (e *Engine) runNavigate(ctx context.Context, req domain.PendingRequest) domain.Result {
	res := domain.Result{Path: req.Path}

	match, ok := e.routes.ResolveOrNotFound(req.Path, e.views.Has)
	if !ok {
		e.logger.Error("this path does not exist", "path", req.Path)
		res.Status = domain.StatusNotFound
		return res
	}

	if !req.FromGesture {
		if target, denied, cancelled := e.checkGuard(ctx, match.Route); cancelled {
			res.Status = domain.StatusPrevented
			return res
		} else if denied {
			e.redirectTo(ctx, target)
			res.Status, res.Redirect = domain.StatusRedirected, target
			return res
		}
		if e.beforeNavigate(ctx, routing.StripPath(req.Path), e.CurrentPath(), req.Path) || ctx.Err() != nil {
			res.Status = domain.StatusPrevented
			return res
		}
	}

	if e.superseded() {
		e.logger.Debug("navigation superseded before commit", "path", req.Path)
		res.Status = domain.StatusSuperseded
		return res
	}
	return e.commit(ctx, req, match)
}

// commit displays the page, records history and notifies after-navigate callbacks.
func (e *Engine) commit(ctx context.Context, req domain.PendingRequest, match routing.Match) domain.Result {
	res := domain.Result{Path: req.Path}

	candidates := match.Route.Options
	if req.Options.HasView() {
		candidates = req.Options
	}
	var names []string
	if candidates.HasView() {
		names = candidates.Views
	}
	name := e.views.Resolve(names...)
	view, ok := e.views.Get(name)
	if !ok {
		e.logger.Error("view not found", "path", req.Path, "view", name)
		res.Status = domain.StatusViewNotFound
		return res
	}
	res.View = name

	if err := view.SetPage(ctx, match.Route.Page, req.Path); err != nil {
		e.logger.Error("view failed to display page", "path", req.Path, "view", name, "err", err)
		res.Status = domain.StatusFailed
		return res
	}
	if name != e.views.Active() {
		e.views.SetActive(name)
	}

	if !req.FromGesture {
		loc := domain.Location{Path: req.Path, ViewName: name, RouteOptions: req.Options}
		if _, err := e.history.Push(ctx, loc); err != nil {
			e.logger.Error("failed to record navigation", "path", req.Path, "view", name, "err", err)
		}
	}

	previous := e.setPath(req.Path)
	e.afterNavigate(routing.StripPath(req.Path), routing.StripPath(previous))
	res.Status = domain.StatusCommitted
	return res
}

func (e *Engine) superseded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.navigationParked()
}

// navigationParked reports whether a request that displays a page is waiting.
// Parked history replacements do not count. Callers hold e.mu.
func (e *Engine) navigationParked() bool {
	return e.nav.contended() && e.nav.pending.Kind != domain.RequestReplace
}

// redirectTo issues a navigation on behalf of a guard. From inside the track it is
// parked and run by the owner right after the denied attempt.
func (e *Engine) redirectTo(ctx context.Context, path string) {
	e.logger.Debug("guard redirect", "path", path)
	e.submit(ctx, domain.PendingRequest{Path: path})
}

// checkGuard evaluates the route guard once. A denial yields the redirect target.
// Errors and panics count as a denial; a cancelled context reports cancelled instead.
func (e *Engine) checkGuard(ctx context.Context, route domain.Route) (target string, denied, cancelled bool) {
	if route.Guard == nil {
		return "", false, false
	}
	res, err := e.runGuard(ctx, route)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, true
		}
		e.logger.Warn("guard failed, treating as denial", "path", route.Path, "err", err)
		return e.fallback, true, false
	}
	if res.Allowed() {
		return "", false, false
	}
	if target = res.Redirect(); target == "" {
		target = e.fallback
	}
	return target, true, false
}

func (e *Engine) runGuard(ctx context.Context, route domain.Route) (res domain.GuardResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.GuardError{Path: route.Path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	res, err = route.Guard(ctx, route.Path)
	if err != nil {
		return res, &domain.GuardError{Path: route.Path, Err: err}
	}
	return res, nil
}

// beforeNavigate runs every callback and reports whether any of them vetoed.
// A callback error or panic counts as a veto.
func (e *Engine) beforeNavigate(ctx context.Context, newPath, previousPath, fullPath string) bool {
	prevent := false
	for _, fn := range e.before.snapshot() {
		if e.callBefore(ctx, fn, newPath, previousPath, fullPath) {
			prevent = true
		}
	}
	return prevent
}

func (e *Engine) callBefore(ctx context.Context, fn domain.BeforeNavigateFunc, newPath, previousPath, fullPath string) (prevent bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("before-navigate callback panicked", "path", fullPath, "panic", r)
			prevent = true
		}
	}()
	prevent, err := fn(ctx, newPath, previousPath, fullPath)
	if err != nil {
		e.logger.Warn("before-navigate callback failed", "path", fullPath, "err", err)
		return true
	}
	return prevent
}

func (e *Engine) afterNavigate(newPath, previousPath string) {
	for _, fn := range e.after.snapshot() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("after-navigate callback panicked", "path", newPath, "panic", r)
				}
			}()
			fn(newPath, previousPath)
		}()
	}
}

func (e *Engine) notifyActiveChanged(newView, previousView string) {
	for _, fn := range e.activeChanged.snapshot() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("active-view callback panicked", "view", newView, "panic", r)
				}
			}()
			fn(newView, previousView)
		}()
	}
}

// emitFor reports navigation outcomes; in-place history replacements are not navigations.
func (e *Engine) emitFor(ctx context.Context, req domain.PendingRequest, res domain.Result, took time.Duration) {
	if req.Kind == domain.RequestReplace {
		return
	}
	e.emit(ctx, res, took)
}

func (e *Engine) emit(ctx context.Context, res domain.Result, took time.Duration) {
	if e.hooks.OnNavigate == nil {
		return
	}
	e.hooks.OnNavigate(ctx, &domain.NavigationEvent{
		Timestamp: time.Now(),
		Path:      res.Path,
		View:      res.View,
		Status:    res.Status,
		Duration:  took,
	})
}
