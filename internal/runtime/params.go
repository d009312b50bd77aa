package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/routing"
)

// QueryParams extracts typed values from the query string of the displayed path.
func (e *Engine) QueryParams(lookups []routing.Lookup) map[string]any {
	return routing.LookupQuery(routing.Query(e.Path()), lookups)
}

// PathParams extracts typed values bound by the route pattern of the displayed path.
func (e *Engine) PathParams(lookups []routing.Lookup) map[string]any {
	match, ok := e.routes.Resolve(e.CurrentPath(), e.views.Has)
	if !ok {
		return routing.LookupParams(nil, lookups)
	}
	return routing.LookupParams(match.Params, lookups)
}

// UpdateQueryParams replaces the query string of the active view's path in place,
// without adding a history entry or redisplaying the page.
//
// The replacement runs on the navigation track. While a navigation is in flight it
// is parked and applied to the page that navigation displays; when another
// navigation is already parked the update is dropped.
func (e *Engine) UpdateQueryParams(ctx context.Context, params map[string]any) error {
	view, ok := e.views.Get(e.views.Active())
	if !ok {
		return fmt.Errorf("update query: %w", domain.ErrViewNotFound)
	}
	if params == nil {
		params = map[string]any{}
	}
	req := domain.PendingRequest{Kind: domain.RequestReplace, Path: view.Path(), Query: params}
	switch res := e.submit(ctx, req); res.Status {
	case domain.StatusViewNotFound:
		return fmt.Errorf("update query: %w", domain.ErrViewNotFound)
	case domain.StatusFailed:
		return fmt.Errorf("update query: failed to record %q in history", res.Path)
	}
	return nil
}
