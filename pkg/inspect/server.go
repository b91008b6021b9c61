// Package inspect serves a live view of a property graph over HTTP:
// the graph topology, per-property values and versions, a WebSocket
// change feed, and Prometheus metrics. It is a development aid for
// hosts embedding the prop engine.
//
// The manager is single-threaded; every HTTP handler takes the
// server's mutex before touching it. Hosts that mutate the manager
// from their own goroutine must do so through the same lock, available
// via Lock/Unlock on the server.
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scrollkit-dev/scrollkit/pkg/prop"
)

// ServerConfig holds the inspection server configuration.
type ServerConfig struct {
	// Address is the listen address (default: ":6060").
	Address string

	// ShutdownTimeout bounds graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout guards against slow clients (default: 10s).
	ReadHeaderTimeout time.Duration

	// CheckOrigin validates WebSocket upgrade origins. The default
	// accepts any origin; the server is a development tool.
	CheckOrigin func(*http.Request) bool

	// Logger receives server logs (default: slog.Default).
	Logger *slog.Logger

	// Metrics configures the Prometheus collector registered for the
	// manager.
	Metrics []MetricsOption
}

// DefaultServerConfig returns the default inspection server
// configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":6060",
		ShutdownTimeout:   5 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		CheckOrigin:       func(*http.Request) bool { return true },
	}
}

// Server exposes one manager over HTTP.
type Server struct {
	mu sync.Mutex
	m  *prop.Manager

	config   *ServerConfig
	upgrader websocket.Upgrader
	registry *prometheus.Registry
	handler  http.Handler

	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds an inspection server for the manager. A nil config
// uses defaults.
func NewServer(m *prop.Manager, config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		defaults := DefaultServerConfig()
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
		if config.ReadHeaderTimeout == 0 {
			config.ReadHeaderTimeout = defaults.ReadHeaderTimeout
		}
		if config.CheckOrigin == nil {
			config.CheckOrigin = defaults.CheckOrigin
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "inspect")

	s := &Server{
		m:        m,
		config:   config,
		registry: prometheus.NewRegistry(),
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: config.CheckOrigin,
		},
	}

	metricsOpts := append([]MetricsOption{WithLock(&s.mu)}, config.Metrics...)
	s.registry.MustRegister(NewCollector(m, metricsOpts...))
	s.handler = s.routes()
	return s
}

// Lock takes the lock serializing manager access. Hosts that mutate
// the manager while the server runs hold it around every call.
func (s *Server) Lock() { s.mu.Lock() }

// Unlock releases the manager lock.
func (s *Server) Unlock() { s.mu.Unlock() }

// Handler returns the server's HTTP handler, for mounting into a
// larger mux or for tests.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/graph", s.handleGraph)
	r.Get("/props/{name}", s.handleGetProp)
	r.Put("/props/{name}", s.handlePutProp)
	r.Get("/watch", s.handleWatch)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Run starts the server and blocks until a termination signal or a
// listener error.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspection server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("inspection server shutdown complete")
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// graphNode is one property in the /graph response.
type graphNode struct {
	Name          string   `json:"name"`
	Policy        string   `json:"policy"`
	Tier          int      `json:"tier"`
	Version       uint64   `json:"version"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	Dependents    []string `json:"dependents,omitempty"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	names := s.m.Names()
	nodes := make([]graphNode, 0, len(names))
	for _, name := range names {
		policy, _ := s.m.PolicyOf(name)
		tier, _ := s.m.Tier(name)
		version, _ := s.m.Version(name)
		prereqs, _ := s.m.Prerequisites(name)
		deps, _ := s.m.Dependents(name)
		nodes = append(nodes, graphNode{
			Name:          name,
			Policy:        policy.String(),
			Tier:          tier,
			Version:       version,
			Prerequisites: prereqs,
			Dependents:    deps,
		})
	}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]any{"properties": nodes})
}

// propState is the /props/{name} response.
type propState struct {
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Version uint64 `json:"version"`
	Policy  string `json:"policy"`
	Tier    int    `json:"tier"`
}

func (s *Server) handleGetProp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	value, err := s.m.Value(name)
	if err != nil {
		s.mu.Unlock()
		s.writeError(w, err)
		return
	}
	version, _ := s.m.Version(name)
	policy, _ := s.m.PolicyOf(name)
	tier, _ := s.m.Tier(name)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, propState{
		Name:    name,
		Value:   value,
		Version: version,
		Policy:  policy.String(),
		Tier:    tier,
	})
}

// putPropRequest is the /props/{name} write body.
type putPropRequest struct {
	Value any `json:"value"`
}

func (s *Server) handlePutProp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req putPropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}

	s.mu.Lock()
	value := coerceValue(s.m, name, req.Value)
	err := s.m.SetValue(name, value)
	if err != nil {
		s.mu.Unlock()
		s.writeError(w, err)
		return
	}
	version, _ := s.m.Version(name)
	stored, _ := s.m.Value(name)
	s.mu.Unlock()

	s.logger.Debug("property written", "name", name, "version", version)
	s.writeJSON(w, http.StatusOK, propState{Name: name, Value: stored, Version: version})
}

// coerceValue matches a decoded JSON number to the property's current
// value type. encoding/json decodes every number as float64; a graph
// holding ints would otherwise see a type change on every write.
func coerceValue(m *prop.Manager, name string, v any) any {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	current, err := m.Value(name)
	if err != nil {
		return v
	}
	switch current.(type) {
	case int:
		return int(f)
	case int64:
		return int64(f)
	case uint64:
		return uint64(f)
	default:
		return v
	}
}

// watchEvent is one change on the /watch feed.
type watchEvent struct {
	Name    string `json:"name"`
	Old     any    `json:"old"`
	New     any    `json:"new"`
	Version uint64 `json:"version"`
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// The watcher fires synchronously inside propagation with the lock
	// held; it must not block, so events go through a buffered channel
	// and a slow client drops changes rather than stalling the engine.
	events := make(chan watchEvent, 64)
	s.mu.Lock()
	cancel := s.m.Watch(func(c prop.Change) {
		select {
		case events <- watchEvent{Name: c.Name, Old: c.Old, New: c.New, Version: c.Version}:
		default:
			s.logger.Warn("watch feed full, dropping change", "name", c.Name)
		}
	})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		cancel()
		s.mu.Unlock()
	}()

	// Reader goroutine: the client sends nothing meaningful, but the
	// read loop is how we learn the connection closed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Debug("watch client connected", "remote", conn.RemoteAddr())
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-events:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				s.logger.Debug("watch client write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, prop.ErrUnknownProperty) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
