package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileFactory() session.Factory {
	return session.NewRouterFactory("testdata/routes.yaml", nil)
}

func TestManager_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(fileFactory())

	s, err := mgr.Create(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "/", s.Router.Snapshot().CurrentPath)

	got, err := mgr.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, []string{s.ID}, mgr.List())

	_, err = mgr.Create(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionExists)

	require.NoError(t, mgr.Delete(ctx, s.ID))
	_, err = mgr.Get(s.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, mgr.Delete(ctx, s.ID), domain.ErrSessionNotFound)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(fileFactory())

	a, err := mgr.Create(ctx, "a")
	require.NoError(t, err)
	b, err := mgr.Create(ctx, "b")
	require.NoError(t, err)

	require.True(t, a.Router.Navigate(ctx, "/a").Committed())

	assert.Equal(t, "/a", a.Router.Snapshot().CurrentPath)
	assert.Equal(t, "/", b.Router.Snapshot().CurrentPath)
	assert.Equal(t, []string{"a", "b"}, mgr.List())
}

func TestManager_FactoryError(t *testing.T) {
	mgr := session.NewManager(session.NewRouterFactory("testdata/missing.yaml", nil))
	_, err := mgr.Create(context.Background(), "x")
	assert.Error(t, err)
	assert.Empty(t, mgr.List())
}

func TestSession_Subscribe(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(fileFactory())
	s, err := mgr.Create(ctx, "events")
	require.NoError(t, err)

	events, cancel := s.Subscribe()
	defer cancel()

	require.True(t, s.Router.Navigate(ctx, "/a").Committed())
	res := s.Router.Navigate(ctx, "/private")
	assert.Equal(t, domain.StatusRedirected, res.Status)

	select {
	case ev := <-events:
		assert.Equal(t, session.EventNavigate, ev.Type)
		assert.Equal(t, "/a", ev.Path)
		assert.Equal(t, "/", ev.Previous)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	select {
	case ev := <-events:
		assert.Equal(t, "/", ev.Path, "denied navigation lands on the fallback")
		assert.Equal(t, "/a", ev.Previous)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	require.NoError(t, mgr.Delete(ctx, "events"))
	_, open := <-events
	assert.False(t, open, "deleting the session closes subscriptions")
}

func TestManager_Do(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(fileFactory())
	_, err := mgr.Create(ctx, "s")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	inside := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.Do(ctx, "s", func(ctx context.Context, s *session.Session) error {
				mu.Lock()
				inside++
				assert.Equal(t, 1, inside, "operations on a session must not overlap")
				mu.Unlock()

				time.Sleep(time.Millisecond)
				s.Router.Navigate(ctx, "/a")

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err = mgr.Do(ctx, "missing", func(ctx context.Context, s *session.Session) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_RedisBacked(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, "waypoint:")

	mgr := session.NewManager(
		session.NewRouterFactory("", func(id string) ports.Host { return store.Host(id) },
			waypoint.WithRoutes(domain.Route{Path: "/", Page: "home"}, domain.Route{Path: "/a", Page: "a"}),
		),
		session.WithLocker(locker),
		session.WithOnDelete(store.Delete),
	)

	s, err := mgr.Create(ctx, "r1")
	require.NoError(t, err)
	require.NoError(t, s.Router.MountView(ctx, "home", memory.NewView("/", memory.AsDefault())))
	require.True(t, s.Router.Navigate(ctx, "/a").Committed())

	ok, err := store.Exists(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists("waypoint:lock:r1"), "lock is released after each operation")

	require.NoError(t, mgr.Delete(ctx, "r1"))
	ok, err = store.Exists(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_LockTimeout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	locker := redis.NewLocker(client, "waypoint:")
	mgr := session.NewManager(fileFactory(), session.WithLocker(locker), session.WithLockTTL(time.Minute))

	unlock, err := locker.Lock(context.Background(), "busy", time.Minute)
	require.NoError(t, err)
	defer unlock(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = mgr.Create(ctx, "busy")
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}
