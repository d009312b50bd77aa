package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	back    []string
	forward []string
}

func newStore(t *testing.T, opts ...history.Option) (*history.Store, *memory.Host, *recorder) {
	t.Helper()
	host := memory.NewHost()
	store := history.New(host, opts...)
	rec := &recorder{}
	store.OnBack(func(ctx context.Context, e domain.Entry) { rec.back = append(rec.back, e.Path) })
	store.OnForward(func(ctx context.Context, e domain.Entry) { rec.forward = append(rec.forward, e.Path) })
	return store, host, rec
}

func push(t *testing.T, s *history.Store, path string) domain.Entry {
	t.Helper()
	e, err := s.Push(context.Background(), domain.Location{Path: path, ViewName: "home"})
	require.NoError(t, err)
	return e
}

func TestClock_StrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1_000)
	clock := history.NewClockFunc(func() time.Time { return fixed })

	a, b, c := clock.Next(), clock.Next(), clock.Next()
	assert.Equal(t, int64(1_000), a)
	assert.Equal(t, int64(1_001), b)
	assert.Equal(t, int64(1_002), c)
}

func TestStore_PushStoresOnlyKeyInHost(t *testing.T) {
	s, host, _ := newStore(t)

	e := push(t, s, "/search?q=go")

	state, url, err := host.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.HistoryState{Key: e.Key}, state)
	assert.Equal(t, "/search?q=go", url)
	assert.Equal(t, e.Key, s.LastKey())

	got, ok := s.Lookup(e.Key)
	require.True(t, ok)
	assert.Equal(t, "home", got.ViewName)
}

func TestStore_BackNeedsTwoEntries(t *testing.T) {
	s, _, rec := newStore(t)
	ctx := context.Background()

	assert.False(t, s.Back(ctx))
	push(t, s, "/")
	assert.False(t, s.Back(ctx))
	push(t, s, "/a")
	assert.True(t, s.Back(ctx))
	assert.Equal(t, []string{"/"}, rec.back)
}

func TestStore_BackAndForwardGestures(t *testing.T) {
	s, _, rec := newStore(t)
	ctx := context.Background()
	first := push(t, s, "/")
	second := push(t, s, "/a")

	require.True(t, s.Back(ctx))
	assert.Equal(t, []string{"/"}, rec.back)
	assert.Equal(t, first.Key, s.LastKey())
	backed, _ := s.Lookup(second.Key)
	assert.True(t, backed.IsBacked, "the entry we left must be flagged")

	s.Forward(ctx)
	assert.Equal(t, []string{"/a"}, rec.forward)
	assert.Equal(t, second.Key, s.LastKey())
	restored, _ := s.Lookup(second.Key)
	assert.False(t, restored.IsBacked)
}

func TestStore_PushAfterBackErasesForwardBranch(t *testing.T) {
	s, _, rec := newStore(t)
	ctx := context.Background()
	push(t, s, "/")
	push(t, s, "/a")
	require.True(t, s.Back(ctx))

	push(t, s, "/b")

	var paths []string
	for _, e := range s.Entries() {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/", "/b"}, paths)

	s.Forward(ctx)
	assert.Empty(t, rec.forward, "nothing is reachable forward after a new push")
}

func TestStore_RejectedGestureIsUndone(t *testing.T) {
	s, host, rec := newStore(t)
	ctx := context.Background()
	push(t, s, "/")
	second := push(t, s, "/a")
	s.OnCheckNavigation(func(ctx context.Context, e domain.Entry) (bool, error) {
		return false, nil
	})
	var rejected []string
	s.OnReject(func(ctx context.Context, e domain.Entry) {
		_, url, err := host.Current(ctx)
		require.NoError(t, err)
		rejected = append(rejected, e.Path+" from "+url)
	})

	require.True(t, s.Back(ctx))

	assert.Empty(t, rec.back)
	assert.Equal(t, []string{"/ from /a"}, rejected)
	assert.Equal(t, second.Key, s.LastKey())
	state, url, err := host.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Key, state.Key)
	assert.Equal(t, "/a", url)
}

func TestStore_CheckErrorRejects(t *testing.T) {
	s, _, rec := newStore(t)
	ctx := context.Background()
	push(t, s, "/")
	push(t, s, "/a")

	calls := 0
	s.OnCheckNavigation(func(ctx context.Context, e domain.Entry) (bool, error) {
		calls++
		return false, errors.New("boom")
	})
	s.OnCheckNavigation(func(ctx context.Context, e domain.Entry) (bool, error) {
		calls++
		return true, nil
	})

	require.True(t, s.Back(ctx))
	assert.Empty(t, rec.back)
	assert.Equal(t, 1, calls, "checks stop at the first rejection")
}

func TestStore_UnknownKeyIsMismatch(t *testing.T) {
	var outcomes []string
	s, _, rec := newStore(t, history.WithHooks(domain.Hooks{
		OnGesture: func(ctx context.Context, e *domain.GestureEvent) { outcomes = append(outcomes, e.Outcome) },
	}))
	push(t, s, "/")

	err := s.HandlePopState(context.Background(), domain.HistoryState{Key: 42})
	assert.ErrorIs(t, err, domain.ErrStateMismatch)
	assert.Empty(t, rec.back)
	assert.Empty(t, rec.forward)
	assert.Equal(t, []string{"mismatch"}, outcomes)
}

func TestStore_Replace(t *testing.T) {
	ctx := context.Background()

	t.Run("Synthesises the first entry", func(t *testing.T) {
		s, host, _ := newStore(t)
		e, err := s.Replace(ctx, domain.Location{Path: "/", ViewName: "home"})
		require.NoError(t, err)
		assert.Equal(t, e.Key, s.LastKey())
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, []string{"/"}, host.URLs())
	})

	t.Run("Replaces the displayed entry in place", func(t *testing.T) {
		s, host, _ := newStore(t)
		push(t, s, "/")
		second := push(t, s, "/search")

		e, err := s.Replace(ctx, domain.Location{Path: "/search?page=2", ViewName: "home"})
		require.NoError(t, err)
		assert.Equal(t, second.Key, e.Key)
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []string{"/", "/search?page=2"}, host.URLs())
	})
}

func TestStore_HistoryHook(t *testing.T) {
	var sizes []int
	s, _, _ := newStore(t, history.WithHooks(domain.Hooks{
		OnHistory: func(n int) { sizes = append(sizes, n) },
	}))
	push(t, s, "/")
	push(t, s, "/a")
	assert.Equal(t, []int{1, 2}, sizes)
}
