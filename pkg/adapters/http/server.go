package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server implements the generated ServerInterface on top of a session manager.
type Server struct {
	Sessions *session.Manager
	Routes   []domain.Route

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRoutes sets the routes listed by GET /routes.
func WithRoutes(routes []domain.Route) Option {
	return func(s *Server) {
		s.Routes = routes
	}
}

// WithGatherer sets the registry exposed on /metrics. Defaults to the Prometheus default gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

var _ ServerInterface = (*Server)(nil)

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return HandlerWithOptions(s, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: s.paramError,
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type routeInfo struct {
	Path    string      `json:"path"`
	Page    domain.Page `json:"page,omitempty"`
	Guarded bool        `json:"guarded"`
	Views   []string    `json:"views,omitempty"`
}

type sessionResponse struct {
	ID    string          `json:"id"`
	State domain.Snapshot `json:"state"`
}

type navigateResponse struct {
	Result domain.Result   `json:"result"`
	State  domain.Snapshot `json:"state"`
}

type backResponse struct {
	Moved bool            `json:"moved"`
	State domain.Snapshot `json:"state"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if spec, err := GetSpec(r.Context()); err == nil && spec.Info != nil {
		apiVersion = spec.Info.Version
	} else if err != nil {
		s.logger.Error("Failed to load OpenAPI spec", "err", err)
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "waypoint-http",
		"version":     strings.TrimSpace(waypoint.Version),
		"api_version": apiVersion,
	})
}

// ListRoutes handles the GET /routes request.
func (s *Server) ListRoutes(w http.ResponseWriter, r *http.Request) {
	routes := make([]routeInfo, 0, len(s.Routes))
	for _, route := range s.Routes {
		info := routeInfo{Path: route.Path, Page: route.Page, Guarded: route.Guard != nil}
		if route.Options.HasView() {
			info.Views = route.Options.Views
		}
		routes = append(routes, info)
	}
	s.writeJSON(w, http.StatusOK, routes)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Sessions.List())
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionJSONRequestBody
	if !s.decode(w, r, &body, true) {
		return
	}

	sess, err := s.Sessions.Create(r.Context(), value(body.Id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var resp sessionResponse
	err = s.Sessions.Do(r.Context(), sess.ID, func(ctx context.Context, sess *session.Session) error {
		if initial := value(body.InitialPath); initial != "" {
			res := sess.Router.LoadInitialPath(ctx, initial)
			s.logger.Debug("Initial path loaded", "session_id", sess.ID, "path", initial, "status", res.Status)
		}
		resp = sessionResponse{ID: sess.ID, State: sess.Router.Snapshot()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id SessionID) {
	sess, err := s.Sessions.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, State: sess.Router.Snapshot()})
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id SessionID) {
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles the POST /sessions/{id}/navigate request.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request, id SessionID) {
	var body NavigateJSONRequestBody
	if !s.decode(w, r, &body, false) {
		return
	}
	if body.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	var resp navigateResponse
	err := s.Sessions.Do(r.Context(), id, func(ctx context.Context, sess *session.Session) error {
		var opts *domain.NavigateOptions
		if view := value(body.View); view != "" {
			opts = domain.View(view)
		}
		resp.Result = sess.Router.Navigate(ctx, body.Path, opts)
		resp.State = sess.Router.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Back handles the POST /sessions/{id}/back request.
func (s *Server) Back(w http.ResponseWriter, r *http.Request, id SessionID) {
	var body BackJSONRequestBody
	if !s.decode(w, r, &body, true) {
		return
	}

	var resp backResponse
	err := s.Sessions.Do(r.Context(), id, func(ctx context.Context, sess *session.Session) error {
		resp.Moved = sess.Router.Back(ctx, value(body.Fallback))
		resp.State = sess.Router.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Forward handles the POST /sessions/{id}/forward request.
func (s *Server) Forward(w http.ResponseWriter, r *http.Request, id SessionID) {
	var resp sessionResponse
	err := s.Sessions.Do(r.Context(), id, func(ctx context.Context, sess *session.Session) error {
		sess.Router.Forward(ctx)
		resp = sessionResponse{ID: sess.ID, State: sess.Router.Snapshot()}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
// The stream ends when the client disconnects or the session is deleted.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, id SessionID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sess, err := s.Sessions.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	events, cancel := sess.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to session events", "session_id", sess.ID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sess.ID)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("SSE: failed to encode event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}

// decode reads a JSON body. An empty body is accepted when optional is set.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	http.Error(w, "Invalid request body", http.StatusBadRequest)
	s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
	return false
}

// paramError answers requests whose path parameters fail to bind.
func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Invalid request parameter", "path", r.URL.Path, "err", err)
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrSessionExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.logger.Error("Request failed", "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}
