package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_RecordsDisplays(t *testing.T) {
	ctx := context.Background()
	v := memory.NewView("/", memory.AsDefault())

	assert.True(t, v.IsDefault())
	assert.Equal(t, "/", v.Path())

	require.NoError(t, v.SetPage(ctx, "search", "/search?q=go"))
	require.NoError(t, v.Restore(ctx, "home", "/"))

	assert.Equal(t, "/", v.Path())
	assert.Equal(t, "/", v.InitialPath())
	assert.Equal(t, "home", v.Page())
	assert.Equal(t, []memory.Display{
		{Page: "search", Path: "/search?q=go"},
		{Page: "home", Path: "/", Restored: true},
	}, v.Displays())
}

func TestView_DisplayFuncRejects(t *testing.T) {
	boom := errors.New("boom")
	v := memory.NewView("/", memory.WithDisplayFunc(func(ctx context.Context, d memory.Display) error {
		return boom
	}))

	err := v.SetPage(context.Background(), "search", "/search")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "/", v.Path(), "a rejected display must not change the path")
	assert.Empty(t, v.Displays())
}
