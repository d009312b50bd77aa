package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// PopStateFunc receives a back/forward gesture from the host.
type PopStateFunc func(ctx context.Context, state domain.HistoryState) error

// Host is the narrow bridge to a native session history.
// Implementations store only the minimal HistoryState next to each URL.
type Host interface {
	// PushState appends a native entry, discarding any forward entries.
	PushState(ctx context.Context, state domain.HistoryState, url string) error

	// ReplaceState overwrites the current native entry (or creates the first one).
	ReplaceState(ctx context.Context, state domain.HistoryState, url string) error

	// Current returns the state and URL of the current native entry.
	// Returns domain.ErrNoHistory when nothing was recorded yet.
	Current(ctx context.Context) (domain.HistoryState, string, error)

	// Back and Forward move the native cursor and notify OnPopState subscribers.
	// Moving past either end is a no-op.
	Back(ctx context.Context) error
	Forward(ctx context.Context) error

	// OnPopState registers a gesture subscriber.
	OnPopState(fn PopStateFunc)
}
