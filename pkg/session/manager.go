package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock is held.
const DefaultLockTTL = 30 * time.Second

// Factory builds the router of a new session.
type Factory func(ctx context.Context, id string) (*waypoint.Router, error)

// Session is a router bound to one client.
type Session struct {
	ID        string
	CreatedAt time.Time
	Router    *waypoint.Router

	events *broker
}

// Subscribe streams the session events until cancel is called or the session is deleted.
func (s *Session) Subscribe() (events <-chan Event, cancel func()) {
	return s.events.subscribe()
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*lockEntry

	locker   ports.DistributedLocker
	lockTTL  time.Duration
	onDelete func(ctx context.Context, id string) error
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithOnDelete runs fn when a session is deleted, to release what its host persisted.
func WithOnDelete(fn func(ctx context.Context, id string) error) Option {
	return func(m *Manager) {
		m.onDelete = fn
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager building routers with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		sessions: make(map[string]*Session),
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewRouterFactory returns a Factory loading routesPath for every session and
// mounting the views it declares. hosts, when set, picks the native history of each session.
func NewRouterFactory(routesPath string, hosts func(id string) ports.Host, opts ...waypoint.Option) Factory {
	return func(ctx context.Context, id string) (*waypoint.Router, error) {
		sessionOpts := append([]waypoint.Option(nil), opts...)
		if hosts != nil {
			sessionOpts = append(sessionOpts, waypoint.WithHost(hosts(id)))
		}
		router, err := waypoint.New(routesPath, sessionOpts...)
		if err != nil {
			return nil, err
		}
		if err := router.MountConfiguredViews(ctx, nil); err != nil {
			return nil, err
		}
		return router, nil
	}
}

// Create starts a session. An empty id gets a random one.
func (m *Manager) Create(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	var s *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if _, err := m.Get(id); err == nil {
			return fmt.Errorf("%w: %s", domain.ErrSessionExists, id)
		}

		router, err := m.factory(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		s = &Session{ID: id, CreatedAt: time.Now(), Router: router, events: newBroker()}
		m.wire(s)

		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("session created", "session_id", id)
	return s, nil
}

func (m *Manager) wire(s *Session) {
	publish := func(ev Event) {
		if dropped := s.events.publish(ev); dropped > 0 {
			m.logger.Debug("dropped session event for slow subscribers",
				"session_id", s.ID,
				"subscribers", dropped,
			)
		}
	}
	s.Router.SubscribeToAfterNavigate(func(newPath, previousPath string) {
		publish(Event{Type: EventNavigate, Path: newPath, Previous: previousPath, Timestamp: time.Now()})
	})
	s.Router.SubscribeToActiveViewChanged(func(newView, previousView string) {
		publish(Event{Type: EventView, View: newView, Previous: previousView, Timestamp: time.Now()})
	})
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return s, nil
}

// Do runs fn against a session while holding its lock.
func (m *Manager) Do(ctx context.Context, id string, fn func(ctx context.Context, s *Session) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		s, err := m.Get(id)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// Delete drops a session and closes its subscriptions.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		s, ok := m.sessions[id]
		delete(m.sessions, id)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
		}

		s.events.close()
		if m.onDelete != nil {
			if err := m.onDelete(ctx, id); err != nil {
				return fmt.Errorf("failed to release session %s: %w", id, err)
			}
		}
		m.logger.Debug("session deleted", "session_id", id)
		return nil
	})
}

// List returns the live session IDs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Close deletes every session.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error
	for _, id := range m.List() {
		if err := m.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
