package routing_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripPathAndQuery(t *testing.T) {
	assert.Equal(t, "/search", routing.StripPath("/search?q=go#results"))
	assert.Equal(t, "/search", routing.StripPath("/search#results"))
	assert.Equal(t, "go", routing.Query("/search?q=go#results").Get("q"))
	assert.Empty(t, routing.Query("/search"))
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/search?page=2&q=go+lang", routing.WithQuery("/search?old=1", map[string]any{"q": "go lang", "page": 2}))
	assert.Equal(t, "/search", routing.WithQuery("/search?old=1", nil))
}

func TestLookupQuery(t *testing.T) {
	values := routing.Query("/list?page=3&ratio=0.5&sort=name&bad=x")
	got := routing.LookupQuery(values, []routing.Lookup{
		{Key: "page", Type: routing.TypeInteger, Default: 1},
		{Key: "ratio", Type: routing.TypeFloat, Default: 1.0},
		{Key: "sort", Type: routing.TypeString, Default: "date", Alias: "order"},
		{Key: "bad", Type: routing.TypeInteger, Default: 10},
		{Key: "missing", Type: routing.TypeString, Default: "none"},
	})

	assert.Equal(t, map[string]any{
		"page":    3,
		"ratio":   0.5,
		"order":   "name",
		"bad":     10,
		"missing": "none",
	}, got)
}

func TestLookupParamsAndDecode(t *testing.T) {
	got := routing.LookupParams(map[string]string{"id": "42"}, []routing.Lookup{
		{Key: "id", Type: routing.TypeInteger, Default: 0},
		{Key: "tab", Type: routing.TypeString, Default: "profile"},
	})

	var out struct {
		ID  int    `mapstructure:"id"`
		Tab string `mapstructure:"tab"`
	}
	require.NoError(t, routing.Decode(got, &out))
	assert.Equal(t, 42, out.ID)
	assert.Equal(t, "profile", out.Tab)
}
