package ports

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHostContract runs a suite of tests to verify that a Host implementation
// behaves like a browser session history. newHost must return an empty host.
func RunHostContract(t *testing.T, newHost func(t *testing.T) Host) {
	ctx := context.Background()

	record := func(h Host) func() []domain.HistoryState {
		var mu sync.Mutex
		var got []domain.HistoryState
		h.OnPopState(func(ctx context.Context, state domain.HistoryState) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, state)
			return nil
		})
		return func() []domain.HistoryState {
			mu.Lock()
			defer mu.Unlock()
			return append([]domain.HistoryState(nil), got...)
		}
	}

	t.Run("Empty Host", func(t *testing.T) {
		h := newHost(t)
		_, _, err := h.Current(ctx)
		assert.ErrorIs(t, err, domain.ErrNoHistory)
	})

	t.Run("Push and Current", func(t *testing.T) {
		h := newHost(t)
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 1}, "/"))
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 2}, "/a"))

		state, url, err := h.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), state.Key)
		assert.Equal(t, "/a", url)
	})

	t.Run("Replace keeps depth", func(t *testing.T) {
		h := newHost(t)
		popped := record(h)
		require.NoError(t, h.ReplaceState(ctx, domain.HistoryState{Key: 1}, "/"))
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 2}, "/a"))
		require.NoError(t, h.ReplaceState(ctx, domain.HistoryState{Key: 2}, "/a?page=2"))

		_, url, err := h.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, "/a?page=2", url)

		require.NoError(t, h.Back(ctx))
		assert.Equal(t, []domain.HistoryState{{Key: 1}}, popped())
	})

	t.Run("Back at start is a no-op", func(t *testing.T) {
		h := newHost(t)
		popped := record(h)
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 1}, "/"))
		require.NoError(t, h.Back(ctx))
		assert.Empty(t, popped())
	})

	t.Run("Back and Forward notify", func(t *testing.T) {
		h := newHost(t)
		popped := record(h)
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 1}, "/"))
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 2}, "/a"))

		require.NoError(t, h.Back(ctx))
		require.NoError(t, h.Forward(ctx))
		assert.Equal(t, []domain.HistoryState{{Key: 1}, {Key: 2}}, popped())
	})

	t.Run("Push after Back erases forward entries", func(t *testing.T) {
		h := newHost(t)
		popped := record(h)
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 1}, "/"))
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 2}, "/a"))
		require.NoError(t, h.Back(ctx))
		require.NoError(t, h.PushState(ctx, domain.HistoryState{Key: 3}, "/b"))

		require.NoError(t, h.Forward(ctx))
		assert.Equal(t, []domain.HistoryState{{Key: 1}}, popped(), "forward must find nothing")

		state, url, err := h.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), state.Key)
		assert.Equal(t, "/b", url)
	})
}
