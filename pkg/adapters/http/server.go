package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/sketchtrail"
	"github.com/aretw0/sketchtrail/internal/logging"
	"github.com/aretw0/sketchtrail/internal/render"
	"github.com/aretw0/sketchtrail/pkg/domain"
	"github.com/aretw0/sketchtrail/pkg/runner"
)

// Event types accepted by POST /sessions/{id}/events.
const (
	EventPointerDown = runner.EventPointerDown
	EventPointerMove = runner.EventPointerMove
	EventPointerUp   = runner.EventPointerUp
	EventStroke      = runner.EventStroke
	EventClear       = runner.EventClear
	EventUndo        = runner.EventUndo
	EventRedo        = runner.EventRedo
)

// maxBodyBytes bounds request bodies, including imported graphs.
const maxBodyBytes = 8 << 20

// EventRequest is one input-surface event.
type EventRequest = runner.Event

// EventResponse reports the session after an event.
type EventResponse = runner.Result

// Server exposes persisted sessions over HTTP.
type Server struct {
	Service *sketchtrail.Service
	Streams *StreamManager
	Render  render.Options
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	render   render.Options
	gatherer prometheus.Gatherer
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRenderOptions sizes snapshot.png responses.
func WithRenderOptions(opts render.Options) Option {
	return func(c *config) {
		c.render = opts
	}
}

// WithMetrics exposes gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(c *config) {
		c.gatherer = gatherer
	}
}

// NewHandler creates a new HTTP handler for the service.
func NewHandler(service *sketchtrail.Service, opts ...Option) http.Handler {
	cfg := config{logger: logging.NewNop(), render: render.DefaultOptions}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Server{
		Service: service,
		Streams: NewStreamManager(cfg.logger),
		Render:  cfg.render,
		Logger:  cfg.logger,
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Post("/events", s.PostEvent)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/strokes", s.GetStrokes)
			r.Get("/provenance", s.GetProvenance)
			r.Put("/provenance", s.PutProvenance)
			r.Get("/snapshot.png", s.GetSnapshot)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedImport), errors.Is(err, errBadRequest),
		errors.Is(err, runner.ErrInvalidEvent):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	} else {
		s.Logger.Debug(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, fmt.Sprintf("%s: %v", op, err), status)
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// PostEvent handles POST /sessions/{id}/events.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var ev EventRequest
	if err := decodeBody(r, w, &ev); err != nil {
		s.writeError(w, "event", err)
		return
	}

	resp, err := runner.Step(r.Context(), s.Service, id, ev)
	if err != nil {
		s.writeError(w, "event", err)
		return
	}

	if resp.Applied {
		if payload, err := json.Marshal(resp); err == nil {
			s.Streams.Broadcast(id, string(payload))
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetStrokes handles GET /sessions/{id}/strokes.
func (s *Server) GetStrokes(w http.ResponseWriter, r *http.Request) {
	var strokes []domain.Stroke
	err := s.Service.View(r.Context(), chi.URLParam(r, "id"), func(sess *sketchtrail.Session) error {
		var err error
		strokes, err = sess.CurrentStrokes()
		return err
	})
	if err != nil {
		s.writeError(w, "strokes", err)
		return
	}
	s.writeJSON(w, http.StatusOK, strokes)
}

// GetProvenance handles GET /sessions/{id}/provenance.
func (s *Server) GetProvenance(w http.ResponseWriter, r *http.Request) {
	sg, err := s.Service.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "export", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sg)
}

// PutProvenance handles PUT /sessions/{id}/provenance.
func (s *Server) PutProvenance(w http.ResponseWriter, r *http.Request) {
	var sg domain.SerializedGraph
	if err := decodeBody(r, w, &sg); err != nil {
		s.writeError(w, "import", err)
		return
	}
	if err := s.Service.Import(r.Context(), chi.URLParam(r, "id"), &sg); err != nil {
		s.writeError(w, "import", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSnapshot handles GET /sessions/{id}/snapshot.png.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	var strokes []domain.Stroke
	err := s.Service.View(r.Context(), chi.URLParam(r, "id"), func(sess *sketchtrail.Session) error {
		var err error
		strokes, err = sess.CurrentStrokes()
		return err
	})
	if err != nil {
		s.writeError(w, "snapshot", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := render.PNG(w, strokes, s.Render); err != nil {
		s.Logger.Error("snapshot render failed", "err", err)
	}
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Service.List(r.Context())
	if err != nil {
		s.writeError(w, "list", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "sketchtrail-http",
		"version": strings.TrimSpace(sketchtrail.Version),
	})
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
}

// NewStreamManager creates an empty stream manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a channel for a session's updates.
func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Subscribers reports how many streams are open for a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast sends msg to every subscriber of a session without blocking.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// Each applied event is pushed as an EventResponse.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
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
