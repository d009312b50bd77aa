package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// CheckFunc decides whether a gesture towards entry may proceed.
type CheckFunc func(ctx context.Context, entry domain.Entry) (bool, error)

// GestureFunc is notified of an applied back or forward gesture.
type GestureFunc func(ctx context.Context, entry domain.Entry)

// Store owns the ordered list of navigation entries and keeps it consistent
// with the host's native history. It knows keys, paths and view names only.
type Store struct {
	host   ports.Host
	clock  *Clock
	logger *slog.Logger
	hooks  domain.Hooks

	mu      sync.Mutex
	entries []domain.Entry
	last    int64 // key of the displayed entry

	backFns    []GestureFunc
	forwardFns []GestureFunc
	rejectFns  []GestureFunc
	checkFns   []CheckFunc
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the key clock.
func WithClock(clock *Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// New creates a Store bridged to host and subscribes to its gestures.
func New(host ports.Host, opts ...Option) *Store {
	s := &Store{
		host:   host,
		clock:  NewClock(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	host.OnPopState(s.HandlePopState)
	return s
}

// OnBack registers a callback for backward gestures.
func (s *Store) OnBack(fn GestureFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backFns = append(s.backFns, fn)
}

// OnForward registers a callback for forward gestures.
func (s *Store) OnForward(fn GestureFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwardFns = append(s.forwardFns, fn)
}

// OnReject registers a callback run after a rejected gesture was undone on the host.
func (s *Store) OnReject(fn GestureFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectFns = append(s.rejectFns, fn)
}

// OnCheckNavigation registers a predicate consulted before any gesture is applied.
func (s *Store) OnCheckNavigation(fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkFns = append(s.checkFns, fn)
}

// Push erases the forward branch, records a new entry and pushes it to the host.
func (s *Store) Push(ctx context.Context, loc domain.Location) (domain.Entry, error) {
	s.mu.Lock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.IsBacked {
			kept = append(kept, e)
		}
	}
	s.entries = kept

	entry := domain.Entry{Key: s.clock.Next(), Location: loc}
	s.entries = append(s.entries, entry)
	s.last = entry.Key
	n := len(s.entries)
	s.mu.Unlock()

	s.report(n)
	if err := s.host.PushState(ctx, entry.State(), loc.Path); err != nil {
		return entry, fmt.Errorf("failed to push history: %w", err)
	}
	return entry, nil
}

// Replace overwrites the entry the host currently shows, without growing history.
// With no recorded entries it synthesises the first one.
func (s *Store) Replace(ctx context.Context, loc domain.Location) (domain.Entry, error) {
	current, _, err := s.host.Current(ctx)
	hasCurrent := err == nil
	if err != nil && !errors.Is(err, domain.ErrNoHistory) {
		return domain.Entry{}, fmt.Errorf("failed to read host state: %w", err)
	}

	s.mu.Lock()
	var entry domain.Entry
	if len(s.entries) == 0 {
		entry = domain.Entry{Key: s.clock.Next(), Location: loc}
		s.entries = append(s.entries, entry)
		s.last = entry.Key
	} else {
		key := s.last
		if hasCurrent {
			key = current.Key
		}
		idx := s.indexOf(key)
		if idx < 0 {
			s.mu.Unlock()
			s.logger.Error("no entry matches the host state", "key", key, "path", loc.Path)
			return domain.Entry{}, fmt.Errorf("replace %q: %w", loc.Path, domain.ErrStateMismatch)
		}
		s.entries[idx].Location = loc
		entry = s.entries[idx]
	}
	n := len(s.entries)
	s.mu.Unlock()

	s.report(n)
	if err := s.host.ReplaceState(ctx, entry.State(), loc.Path); err != nil {
		return entry, fmt.Errorf("failed to replace history: %w", err)
	}
	return entry, nil
}

// Back asks the host to go back. It returns false when fewer than two entries exist.
func (s *Store) Back(ctx context.Context) bool {
	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	if n < 2 {
		return false
	}
	if err := s.host.Back(ctx); err != nil {
		s.logger.Warn("host back failed", "err", err)
	}
	return true
}

// Forward asks the host to go forward.
func (s *Store) Forward(ctx context.Context) {
	if err := s.host.Forward(ctx); err != nil {
		s.logger.Warn("host forward failed", "err", err)
	}
}

// HandlePopState applies a host gesture. It is registered with the host by New.
func (s *Store) HandlePopState(ctx context.Context, state domain.HistoryState) error {
	entry, ok := s.Lookup(state.Key)
	if !ok {
		s.logger.Error("no entry matches the browser state", "key", state.Key)
		s.gesture(ctx, state.Key, "", "mismatch")
		return fmt.Errorf("gesture to key %d: %w", state.Key, domain.ErrStateMismatch)
	}

	if !s.check(ctx, entry) {
		// Undo the gesture by pushing the displayed entry back onto the host.
		prev, ok := s.Last()
		if !ok {
			s.logger.Error("no entry matches the previous state", "key", s.LastKey())
			return fmt.Errorf("restore key %d: %w", s.LastKey(), domain.ErrStateMismatch)
		}
		s.logger.Debug("gesture rejected", "key", entry.Key, "path", entry.Path)
		s.gesture(ctx, entry.Key, "", "rejected")
		if err := s.host.PushState(ctx, prev.State(), prev.Path); err != nil {
			return fmt.Errorf("failed to restore history: %w", err)
		}
		s.mu.Lock()
		fns := append([]GestureFunc(nil), s.rejectFns...)
		s.mu.Unlock()
		for _, fn := range fns {
			fn(ctx, entry)
		}
		return nil
	}

	s.mu.Lock()
	var fns []GestureFunc
	var dir domain.Direction
	switch {
	case entry.Key > s.last:
		dir = domain.DirectionForward
		if idx := s.indexOf(entry.Key); idx >= 0 {
			s.entries[idx].IsBacked = false
			entry = s.entries[idx]
		}
		s.last = entry.Key
		fns = append(fns, s.forwardFns...)
	case entry.Key < s.last:
		dir = domain.DirectionBack
		if idx := s.indexOf(s.last); idx >= 0 {
			s.entries[idx].IsBacked = true
		} else {
			s.logger.Error("could not find history matching key", "key", s.last)
		}
		s.last = entry.Key
		fns = append(fns, s.backFns...)
	}
	s.mu.Unlock()

	if dir == "" {
		s.logger.Debug("gesture to the displayed entry ignored", "key", entry.Key)
		return nil
	}

	s.logger.Debug("gesture applied", "direction", dir, "key", entry.Key, "path", entry.Path)
	s.gesture(ctx, entry.Key, dir, "applied")
	for _, fn := range fns {
		fn(ctx, entry)
	}
	return nil
}

// Entries returns a copy of the recorded entries in creation order.
func (s *Store) Entries() []domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Entry(nil), s.entries...)
}

// Lookup finds an entry by key.
func (s *Store) Lookup(key int64) (domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(key); idx >= 0 {
		return s.entries[idx], true
	}
	return domain.Entry{}, false
}

// Last returns the displayed entry.
func (s *Store) Last() (domain.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(s.last); idx >= 0 {
		return s.entries[idx], true
	}
	return domain.Entry{}, false
}

// LastKey returns the key of the displayed entry, or 0 before anything was recorded.
func (s *Store) LastKey() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// check runs the predicates in order and stops at the first rejection.
// A predicate error counts as a rejection.
func (s *Store) check(ctx context.Context, entry domain.Entry) bool {
	s.mu.Lock()
	fns := append([]CheckFunc(nil), s.checkFns...)
	s.mu.Unlock()

	for _, fn := range fns {
		ok, err := fn(ctx, entry)
		if err != nil {
			s.logger.Warn("navigation check failed", "path", entry.Path, "err", err)
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

func (s *Store) indexOf(key int64) int {
	for i := range s.entries {
		if s.entries[i].Key == key {
			return i
		}
	}
	return -1
}

func (s *Store) report(entries int) {
	if s.hooks.OnHistory != nil {
		s.hooks.OnHistory(entries)
	}
}

func (s *Store) gesture(ctx context.Context, key int64, dir domain.Direction, outcome string) {
	if s.hooks.OnGesture == nil {
		return
	}
	s.hooks.OnGesture(ctx, &domain.GestureEvent{
		Timestamp: time.Now(),
		Key:       key,
		Direction: dir,
		Outcome:   outcome,
	})
}
