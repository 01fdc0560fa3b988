package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/sticky/internal/logging"
	"github.com/aretw0/sticky/pkg/domain"
	"github.com/aretw0/sticky/pkg/locals"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the part of the sticky engine exposed over HTTP.
type Engine interface {
	Transition(ctx context.Context, to string, params domain.Params, opts domain.Options) (*domain.State, error)
	Current() (*domain.State, domain.Params)
	InactiveStates() []domain.InactiveState
	Snapshot() *domain.Snapshot
	Reset(ctx context.Context, name string) error
	Locals(name string) (locals.Chain, error)
}

// TransitionRequest is the body of POST /transitions.
type TransitionRequest struct {
	To      string        `json:"to"`
	Params  domain.Params `json:"params,omitempty"`
	Options struct {
		Reload     bool   `json:"reload,omitempty"`
		ReloadFrom string `json:"reload_from,omitempty"`
		Relative   string `json:"relative,omitempty"`
		Inherit    bool   `json:"inherit,omitempty"`
	} `json:"options"`
}

// TransitionResponse is the body returned by POST /transitions.
type TransitionResponse struct {
	Current string               `json:"current"`
	Params  domain.Params        `json:"params,omitempty"`
	Diff    *domain.SnapshotDiff `json:"diff,omitempty"`
}

// CurrentResponse is the body of GET /states/current.
type CurrentResponse struct {
	Current string        `json:"current"`
	Params  domain.Params `json:"params,omitempty"`
}

// Server serves the introspection and transition API.
type Server struct {
	Engine   Engine
	Streams  *StreamManager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes the collectors of g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	return newServer(engine, opts...).routes()
}

func newServer(engine Engine, opts ...Option) *Server {
	server := &Server{
		Engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.logger)
	return server
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/states/current", s.GetCurrent)
	r.Get("/states/inactive", s.GetInactive)
	r.Delete("/states/inactive/{name}", s.ResetInactive)
	r.Get("/snapshot", s.GetSnapshot)
	r.Get("/locals/{name}", s.GetLocals)
	r.Post("/transitions", s.PostTransition)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PostTransition handles the POST /transitions request.
func (s *Server) PostTransition(w http.ResponseWriter, r *http.Request) {
	var body TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostTransition: Invalid request body", "err", err)
		return
	}
	if body.To == "" {
		http.Error(w, "Missing target state", http.StatusBadRequest)
		return
	}

	opts := domain.Options{
		Reload:     body.Options.Reload,
		ReloadFrom: body.Options.ReloadFrom,
		Relative:   body.Options.Relative,
		Inherit:    body.Options.Inherit,
	}

	before := s.Engine.Snapshot()
	if _, err := s.Engine.Transition(r.Context(), body.To, body.Params, opts); err != nil {
		status := statusOf(err)
		http.Error(w, fmt.Sprintf("Transition error: %v", err), status)
		if status == http.StatusInternalServerError {
			s.logger.Error("Transition failed", "to", body.To, "err", err)
		} else {
			s.logger.Debug("Transition rejected", "to", body.To, "err", err)
		}
		return
	}
	after := s.Engine.Snapshot()

	diff := domain.Diff(before, after)
	if diff != nil {
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(string(bytes))
		}
	}

	resp := TransitionResponse{Current: after.Current, Params: after.Params, Diff: diff}
	s.writeJSON(w, "PostTransition", resp)
}

// GetCurrent handles the GET /states/current request.
func (s *Server) GetCurrent(w http.ResponseWriter, r *http.Request) {
	current, params := s.Engine.Current()
	s.writeJSON(w, "GetCurrent", CurrentResponse{Current: current.Name, Params: params})
}

// GetInactive handles the GET /states/inactive request.
func (s *Server) GetInactive(w http.ResponseWriter, r *http.Request) {
	inactive := s.Engine.InactiveStates()
	if inactive == nil {
		inactive = []domain.InactiveState{}
	}
	s.writeJSON(w, "GetInactive", inactive)
}

// ResetInactive handles the DELETE /states/inactive/{name} request.
// The name "*" resets every inactive state.
func (s *Server) ResetInactive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	before := s.Engine.Snapshot()
	if err := s.Engine.Reset(r.Context(), name); err != nil {
		http.Error(w, fmt.Sprintf("Reset error: %v", err), statusOf(err))
		s.logger.Warn("Reset failed", "state", name, "err", err)
		return
	}
	if diff := domain.Diff(before, s.Engine.Snapshot()); diff != nil {
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(string(bytes))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSnapshot handles the GET /snapshot request.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "GetSnapshot", s.Engine.Snapshot())
}

// GetLocals handles the GET /locals/{name} request, returning every view
// visible from the named state keyed as "view@state".
func (s *Server) GetLocals(w http.ResponseWriter, r *http.Request) {
	chain, err := s.Engine.Locals(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Locals error: %v", err), statusOf(err))
		return
	}
	s.writeJSON(w, "GetLocals", chain.Flatten())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "GetHealth", map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, op string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(op+" response encode failed", "err", err)
	}
}

func statusOf(err error) int {
	var reg *domain.RegistrationError
	switch {
	case errors.Is(err, domain.ErrStateNotFound), errors.Is(err, domain.ErrNotInactive):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransitionSuperseded), errors.Is(err, domain.ErrTransitionPending):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransitionPrevented):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTransitionAborted):
		return http.StatusServiceUnavailable
	case errors.As(err, &reg), errors.Is(err, domain.ErrReloadOutsidePath):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// StreamManager fans registry diffs out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
