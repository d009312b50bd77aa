package domain

import (
	"context"
	"time"
)

// Status is the outcome of a navigation attempt.
type Status string

const (
	StatusCommitted    Status = "committed"      // Page displayed and history recorded
	StatusQueued       Status = "queued"         // Engine busy; request parked in the pending slot
	StatusSuperseded   Status = "superseded"     // A newer request replaced this one before it committed
	StatusRedirected   Status = "redirected"     // Guard denied; a redirect navigation was issued
	StatusPrevented    Status = "prevented"      // A before-navigate callback vetoed the navigation
	StatusNotFound     Status = "not_found"      // No route and no not-found route
	StatusViewNotFound Status = "view_not_found" // Target view is not registered
	StatusFailed       Status = "failed"         // The view failed to display the page
	StatusIgnored      Status = "ignored"        // Nothing to do
)

// RequestKind distinguishes the work parked on the navigation track.
type RequestKind string

const (
	RequestNavigate RequestKind = ""         // Resolve, check and display a path
	RequestActivate RequestKind = "activate" // Switch to a view keeping the page it displays
	RequestInitial  RequestKind = "initial"  // Load the first path, replacing the bootstrap entry
	RequestReplace  RequestKind = "replace"  // Overwrite the current history entry in place
)

// Result reports what happened to a navigation request.
type Result struct {
	Status Status `json:"status"`
	Path   string `json:"path"`
	// Redirect holds the substituted path when Status is StatusRedirected.
	Redirect string `json:"redirect,omitempty"`
	// View is the view that displayed the page on commit.
	View string `json:"view,omitempty"`
}

// Committed reports whether the page was displayed.
func (r Result) Committed() bool {
	return r.Status == StatusCommitted
}

// PendingRequest is a navigation parked while its track is busy.
type PendingRequest struct {
	Kind    RequestKind
	Path    string
	Options *NavigateOptions
	// Query, when set on a replace request, is applied to the path the target view
	// shows at the time the request runs.
	Query map[string]any
	// FromGesture marks requests raised by a browser forward gesture.
	// They were already checked by the history store and must not re-push history.
	FromGesture bool
}

// SubscriptionID identifies a registered callback.
type SubscriptionID uint64

// ActiveViewChangedFunc observes view activation.
type ActiveViewChangedFunc func(newView, previousView string)

// BeforeNavigateFunc may veto a navigation by returning true.
// newPath and previousPath carry no query or fragment; fullPath is the requested path as given.
type BeforeNavigateFunc func(ctx context.Context, newPath, previousPath, fullPath string) (prevent bool, err error)

// AfterNavigateFunc observes committed navigations.
type AfterNavigateFunc func(newPath, previousPath string)

// Direction distinguishes browser gestures.
type Direction string

const (
	DirectionBack    Direction = "back"
	DirectionForward Direction = "forward"
)

// NavigationEvent describes a finished navigation attempt.
type NavigationEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Path      string        `json:"path"`
	View      string        `json:"view,omitempty"`
	Status    Status        `json:"status"`
	Duration  time.Duration `json:"duration"`
}

// GestureEvent describes a browser back/forward gesture handled by the history store.
type GestureEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Key       int64     `json:"key"`
	Direction Direction `json:"direction,omitempty"`
	// Outcome is "applied", "rejected" or "mismatch".
	Outcome string `json:"outcome"`
}

// Hooks defines callbacks for engine observability.
type Hooks struct {
	OnNavigate func(context.Context, *NavigationEvent)
	OnGesture  func(context.Context, *GestureEvent)
	OnHistory  func(entries int)
}

// Snapshot is a read-only view of the engine for introspection.
type Snapshot struct {
	ActiveView  string           `json:"active_view"`
	CurrentPath string           `json:"current_path"`
	LastKey     int64            `json:"last_key"`
	Entries     []Entry          `json:"entries"`
	Views       []ViewDescriptor `json:"views"`
	Navigating  bool             `json:"navigating"`
	GoingBack   bool             `json:"going_back"`
}
