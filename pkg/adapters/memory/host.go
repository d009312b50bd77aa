package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

type record struct {
	state domain.HistoryState
	url   string
}

// Host implements ports.Host in memory, behaving like a browser session history.
// Gestures are delivered synchronously on the caller's goroutine.
// Safe for concurrent use.
type Host struct {
	mu     sync.Mutex
	stack  []record
	cursor int
	subs   []ports.PopStateFunc
}

// NewHost creates an empty in-memory host.
func NewHost() *Host {
	return &Host{cursor: -1}
}

// PushState appends a native entry after the cursor, dropping forward entries.
func (h *Host) PushState(ctx context.Context, state domain.HistoryState, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = append(h.stack[:h.cursor+1], record{state: state, url: url})
	h.cursor++
	return nil
}

// ReplaceState overwrites the entry at the cursor.
func (h *Host) ReplaceState(ctx context.Context, state domain.HistoryState, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < 0 {
		h.stack = append(h.stack, record{state: state, url: url})
		h.cursor = 0
		return nil
	}
	h.stack[h.cursor] = record{state: state, url: url}
	return nil
}

// Current returns the entry at the cursor.
func (h *Host) Current(ctx context.Context) (domain.HistoryState, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < 0 {
		return domain.HistoryState{}, "", domain.ErrNoHistory
	}
	r := h.stack[h.cursor]
	return r.state, r.url, nil
}

// Back moves the cursor back and notifies subscribers.
func (h *Host) Back(ctx context.Context) error {
	return h.move(ctx, -1)
}

// Forward moves the cursor forward and notifies subscribers.
func (h *Host) Forward(ctx context.Context) error {
	return h.move(ctx, 1)
}

// Go moves the cursor by delta in one gesture, like history.go(delta).
func (h *Host) Go(ctx context.Context, delta int) error {
	return h.move(ctx, delta)
}

// OnPopState registers a gesture subscriber.
func (h *Host) OnPopState(fn ports.PopStateFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}

// URLs returns the native stack URLs, oldest first.
func (h *Host) URLs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	urls := make([]string, len(h.stack))
	for i, r := range h.stack {
		urls[i] = r.url
	}
	return urls
}

// Position returns the cursor index, -1 when empty.
func (h *Host) Position() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

func (h *Host) move(ctx context.Context, delta int) error {
	h.mu.Lock()
	target := h.cursor + delta
	if delta == 0 || h.cursor < 0 || target < 0 || target >= len(h.stack) {
		h.mu.Unlock()
		return nil
	}
	h.cursor = target
	state := h.stack[target].state
	subs := append([]ports.PopStateFunc(nil), h.subs...)
	h.mu.Unlock()

	var errs []error
	for _, fn := range subs {
		if err := fn(ctx, state); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
