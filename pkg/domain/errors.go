package domain

import (
	"errors"
	"fmt"
)

// ErrRouteNotFound is reported when no route matches a path and no not-found route is registered.
var ErrRouteNotFound = errors.New("route not found")

// ErrViewNotFound is reported when the target view of a navigation is not registered.
var ErrViewNotFound = errors.New("view not found")

// ErrStateMismatch is returned when a host gesture references a key with no recorded entry.
// The gesture is dropped; the host URL may now diverge from the engine.
var ErrStateMismatch = errors.New("history state mismatch")

// ErrNoHistory is returned when there is nothing to go back to.
var ErrNoHistory = errors.New("no history to go back to")

// ErrSessionNotFound is returned when a session ID cannot be found.
var ErrSessionNotFound = errors.New("session not found")

// GuardError wraps a failure raised while evaluating a route guard.
// The engine treats it as a denial.
type GuardError struct {
	Path string
	Err  error
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("guard for %q failed: %v", e.Path, e.Err)
}

func (e *GuardError) Unwrap() error {
	return e.Err
}

// ErrSessionExists is returned when creating a session under an ID already in use.
var ErrSessionExists = errors.New("session already exists")
