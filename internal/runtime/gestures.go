package runtime

import (
	"context"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/routing"
)

// Back asks the host to go back one entry. With nothing to go back to it
// navigates to fallback instead, when one is given, and returns false.
func (e *Engine) Back(ctx context.Context, fallback string) bool {
	if e.history.Back(ctx) {
		return true
	}
	if fallback != "" {
		e.Navigate(ctx, fallback)
	}
	return false
}

// Forward asks the host to go forward one entry.
func (e *Engine) Forward(ctx context.Context) {
	e.history.Forward(ctx)
}

// checkGesture vets a browser gesture before the history store applies it.
// A guard redirect is held back until the store has undone the gesture.
func (e *Engine) checkGesture(ctx context.Context, entry domain.Entry) (bool, error) {
	match, ok := e.routes.ResolveOrNotFound(entry.Path, e.views.Has)
	if !ok {
		e.logger.Error("this path does not exist", "path", entry.Path, "key", entry.Key)
		return false, nil
	}

	target, denied, cancelled := e.checkGuard(ctx, match.Route)
	if cancelled {
		return false, ctx.Err()
	}
	if denied {
		e.mu.Lock()
		e.redirect = target
		e.mu.Unlock()
		return false, nil
	}

	prevent := e.beforeNavigate(ctx, routing.StripPath(entry.Path), e.CurrentPath(), entry.Path)
	return !prevent, nil
}

func (e *Engine) gestureRejected(ctx context.Context, _ domain.Entry) {
	e.mu.Lock()
	target := e.redirect
	e.redirect = ""
	e.mu.Unlock()

	if target != "" {
		e.redirectTo(ctx, target)
	}
}

// replay re-displays an entry reached with a forward gesture. It was checked
// already and is in history, so it runs on the navigation track without either step.
func (e *Engine) replay(ctx context.Context, entry domain.Entry) {
	req := domain.PendingRequest{Path: entry.Path, Options: entry.RouteOptions, FromGesture: true}
	if entry.ViewName != "" {
		req.Options = domain.View(entry.ViewName)
	}
	e.submit(ctx, req)
}

// restore re-displays an entry reached with a back gesture on the back track.
func (e *Engine) restore(ctx context.Context, entry domain.Entry) {
	e.mu.Lock()
	owned, dropped := e.back.acquire(entry)
	e.mu.Unlock()
	if !owned {
		if dropped != nil {
			e.logger.Debug("pending back gesture replaced", "key", dropped.Key, "by", entry.Key)
		}
		return
	}

	e.runRestore(ctx, entry)
	for {
		e.mu.Lock()
		next, ok := e.back.next()
		e.mu.Unlock()
		if !ok {
			return
		}
		e.runRestore(ctx, *next)
	}
}

func (e *Engine) runRestore(ctx context.Context, entry domain.Entry) {
	start := time.Now()
	res := domain.Result{Path: entry.Path, View: entry.ViewName}
	defer func() { e.emit(ctx, res, time.Since(start)) }()

	match, ok := e.routes.ResolveOrNotFound(entry.Path, e.views.Has)
	if !ok {
		e.logger.Error("this path does not exist", "path", entry.Path, "key", entry.Key)
		res.Status = domain.StatusNotFound
		return
	}
	view, ok := e.views.Get(entry.ViewName)
	if !ok {
		e.logger.Error("view not found", "path", entry.Path, "view", entry.ViewName)
		res.Status = domain.StatusViewNotFound
		return
	}
	if err := view.Restore(ctx, match.Route.Page, entry.Path); err != nil {
		e.logger.Error("view failed to restore page", "path", entry.Path, "view", entry.ViewName, "err", err)
		res.Status = domain.StatusFailed
		return
	}
	if entry.ViewName != e.views.Active() {
		e.views.SetActive(entry.ViewName)
	}

	previous := e.setPath(entry.Path)
	e.afterNavigate(routing.StripPath(entry.Path), routing.StripPath(previous))
	res.Status = domain.StatusCommitted
}
