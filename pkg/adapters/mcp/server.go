package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	routesURI  = "waypoint://routes"
	historyURI = "waypoint://history"
)

// NavigateArgs are the arguments of the navigate tool.
type NavigateArgs struct {
	Path string `json:"path"`
	View string `json:"view,omitempty"`
}

// BackArgs are the arguments of the back tool.
type BackArgs struct {
	Fallback string `json:"fallback,omitempty"`
}

// ResolveArgs are the arguments of the resolve_path tool.
type ResolveArgs struct {
	Path string `json:"path"`
}

// NavigateResponse aligns with the HTTP adapter and provides a unified structure across adapters.
type NavigateResponse struct {
	Result domain.Result   `json:"result" jsonschema_description:"Outcome of the navigation"`
	State  domain.Snapshot `json:"state" jsonschema_description:"Router state after the navigation"`
}

// GestureResponse reports a back or forward gesture.
type GestureResponse struct {
	Moved bool            `json:"moved" jsonschema_description:"Whether history moved; false when a fallback navigation ran instead"`
	State domain.Snapshot `json:"state" jsonschema_description:"Router state after the gesture"`
}

// ResolveResponse describes the route a path resolves to.
type ResolveResponse struct {
	Path     string            `json:"path"`
	Route    string            `json:"route,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	NotFound bool              `json:"not_found"`
	Matched  bool              `json:"matched"`
}

// Server exposes one navigation session as an MCP server.
type Server struct {
	router    *waypoint.Router
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(router *waypoint.Router, opts ...Option) *Server {
	s := &Server{
		router:    router,
		mcpServer: server.NewMCPServer("waypoint-mcp", strings.TrimSpace(waypoint.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("navigate",
		mcp.WithDescription("Navigate to a path. Guards may redirect and before-navigate subscribers may prevent it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target path, query string allowed")),
		mcp.WithString("view", mcp.Description("View that should display the page (optional)")),
		mcp.WithOutputSchema[NavigateResponse](),
	), mcp.NewStructuredToolHandler(s.handleNavigate))

	s.mcpServer.AddTool(mcp.NewTool("back",
		mcp.WithDescription("Go back one history entry, or navigate to fallback when there is nothing to go back to."),
		mcp.WithString("fallback", mcp.Description("Path to navigate to when history is empty (optional)")),
		mcp.WithOutputSchema[GestureResponse](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("forward",
		mcp.WithDescription("Go forward one history entry."),
		mcp.WithOutputSchema[GestureResponse](),
	), mcp.NewStructuredToolHandler(s.handleForward))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the active view, displayed path and recorded history."),
		mcp.WithOutputSchema[domain.Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("resolve_path",
		mcp.WithDescription("Show which route a path resolves to without navigating."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to resolve")),
		mcp.WithOutputSchema[ResolveResponse](),
	), mcp.NewStructuredToolHandler(s.handleResolve))
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest, args NavigateArgs) (NavigateResponse, error) {
	if args.Path == "" {
		return NavigateResponse{}, errors.New("path is required")
	}
	var opts *domain.NavigateOptions
	if args.View != "" {
		opts = domain.View(args.View)
	}
	res := s.router.Navigate(ctx, args.Path, opts)
	s.logger.Debug("MCP navigate", "path", args.Path, "status", res.Status)
	return NavigateResponse{Result: res, State: s.router.Snapshot()}, nil
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest, args BackArgs) (GestureResponse, error) {
	moved := s.router.Back(ctx, args.Fallback)
	return GestureResponse{Moved: moved, State: s.router.Snapshot()}, nil
}

func (s *Server) handleForward(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (GestureResponse, error) {
	before := s.router.Snapshot().LastKey
	s.router.Forward(ctx)
	state := s.router.Snapshot()
	return GestureResponse{Moved: state.LastKey != before, State: state}, nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (domain.Snapshot, error) {
	return s.router.Snapshot(), nil
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest, args ResolveArgs) (ResolveResponse, error) {
	resp := ResolveResponse{Path: args.Path}
	match, ok := s.router.Resolve(args.Path)
	if !ok {
		return resp, nil
	}
	resp.Matched = true
	resp.Route = match.Route.Path
	resp.Params = match.Params
	resp.NotFound = match.NotFound
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(routesURI, "Registered Routes",
		mcp.WithResourceDescription("Route patterns known to the router"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		type route struct {
			Path    string      `json:"path"`
			Page    domain.Page `json:"page,omitempty"`
			Guarded bool        `json:"guarded"`
		}
		var routes []route
		for _, r := range s.router.Routes() {
			routes = append(routes, route{Path: r.Path, Page: r.Page, Guarded: r.Guard != nil})
		}
		return jsonResource(routesURI, routes)
	})

	s.mcpServer.AddResource(mcp.NewResource(historyURI, "Navigation History",
		mcp.WithResourceDescription("Entries recorded by the history store, oldest first"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(historyURI, s.router.Snapshot().Entries)
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
