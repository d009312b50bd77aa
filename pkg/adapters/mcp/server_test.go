package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	Result struct {
		IsError           bool            `json:"isError"`
		StructuredContent json.RawMessage `json:"structuredContent"`
		Content           []struct {
			Text string `json:"text"`
		} `json:"content"`
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	router, err := waypoint.New("", waypoint.WithRoutes(
		domain.Route{Path: "/", Page: "home"},
		domain.Route{Path: "/users/:id", Page: "user"},
		domain.Route{Path: "/admin", Page: "admin", Guard: func(ctx context.Context, path string) (domain.GuardResult, error) {
			return domain.Deny(), nil
		}},
		domain.Route{Path: domain.NotFoundPattern, Page: "404"},
	))
	require.NoError(t, err)
	require.NoError(t, router.MountView(context.Background(), "main", memory.NewView("/", memory.AsDefault())))
	return NewServer(router)
}

var rpcID int

func call(t *testing.T, s *Server, method string, params any) rpcResponse {
	t.Helper()
	rpcID++
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      rpcID,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	msg := s.MCPServer().HandleMessage(context.Background(), raw)
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(out, &resp), string(out))
	require.Nil(t, resp.Error, string(out))
	return resp
}

func callTool(t *testing.T, s *Server, name string, args map[string]any, out any) {
	t.Helper()
	resp := call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
	require.False(t, resp.Result.IsError, fmt.Sprint(resp.Result.Content))
	require.NoError(t, json.Unmarshal(resp.Result.StructuredContent, out))
}

func TestTools_List(t *testing.T) {
	s := newTestServer(t)
	resp := call(t, s, "tools/list", map[string]any{})

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"navigate", "back", "forward", "get_state", "resolve_path"}, names)
}

func TestTools_NavigateBackForward(t *testing.T) {
	s := newTestServer(t)

	var nav NavigateResponse
	callTool(t, s, "navigate", map[string]any{"path": "/users/7"}, &nav)
	assert.Equal(t, domain.StatusCommitted, nav.Result.Status)
	assert.Equal(t, "/users/7", nav.State.CurrentPath)
	assert.Equal(t, "main", nav.State.ActiveView)

	callTool(t, s, "navigate", map[string]any{"path": "/admin"}, &nav)
	assert.Equal(t, domain.StatusRedirected, nav.Result.Status)
	assert.Equal(t, "/", nav.State.CurrentPath)

	var back GestureResponse
	callTool(t, s, "back", map[string]any{}, &back)
	assert.True(t, back.Moved)
	assert.Equal(t, "/users/7", back.State.CurrentPath)

	var fwd GestureResponse
	callTool(t, s, "forward", nil, &fwd)
	assert.True(t, fwd.Moved)
	assert.Equal(t, "/", fwd.State.CurrentPath)

	callTool(t, s, "forward", nil, &fwd)
	assert.False(t, fwd.Moved, "nothing to go forward to")
}

func TestTools_NavigateRequiresPath(t *testing.T) {
	s := newTestServer(t)
	resp := call(t, s, "tools/call", map[string]any{"name": "navigate", "arguments": map[string]any{}})
	assert.True(t, resp.Result.IsError)
}

func TestTools_GetState(t *testing.T) {
	s := newTestServer(t)
	var state domain.Snapshot
	callTool(t, s, "get_state", nil, &state)
	assert.Equal(t, "/", state.CurrentPath)
	require.Len(t, state.Entries, 1)
	assert.Equal(t, "main", state.Entries[0].ViewName)
}

func TestTools_ResolvePath(t *testing.T) {
	s := newTestServer(t)

	var res ResolveResponse
	callTool(t, s, "resolve_path", map[string]any{"path": "/users/42?tab=posts"}, &res)
	assert.True(t, res.Matched)
	assert.Equal(t, "/users/:id", res.Route)
	assert.Equal(t, map[string]string{"id": "42"}, res.Params)

	callTool(t, s, "resolve_path", map[string]any{"path": "/nowhere"}, &res)
	assert.True(t, res.NotFound)
	assert.Equal(t, domain.NotFoundPattern, res.Route)
}

func TestResources(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, "resources/read", map[string]any{"uri": routesURI})
	require.Len(t, resp.Result.Contents, 1)
	assert.Contains(t, resp.Result.Contents[0].Text, `"path":"/users/:id"`)
	assert.Contains(t, resp.Result.Contents[0].Text, `{"path":"/admin","page":"admin","guarded":true}`)

	resp = call(t, s, "resources/read", map[string]any{"uri": historyURI})
	require.Len(t, resp.Result.Contents, 1)
	var entries []domain.Entry
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Contents[0].Text), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/", entries[0].Path)
}
