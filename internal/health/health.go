// Package health exposes liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const checkTimeout = 5 * time.Second

// CheckFunc reports whether one dependency is healthy, with a reason when
// it is not.
type CheckFunc func(ctx context.Context) (bool, string)

// Check is one dependency's result in the /health response.
type Check struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Status is the /health response body.
type Status struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Version   string           `json:"version,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Server serves /health, /ready and /live on its own port.
type Server struct {
	port    int
	version string

	mu     sync.RWMutex
	checks map[string]CheckFunc

	server *http.Server
}

// NewServer creates a health server; call Start to begin listening.
func NewServer(port int, version string) *Server {
	return &Server{
		port:    port,
		version: version,
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency check. Safe to call after Start.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Handler returns the route mux, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	return mux
}

// Start begins serving in the background. Failures after startup are
// swallowed; health endpoints must never take the process down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		_ = err // ErrServerClosed on shutdown, bind errors otherwise
	}()

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runChecks executes every registered check against a bounded context.
func (s *Server) runChecks(ctx context.Context) (map[string]Check, bool) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	s.mu.RLock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for name, fn := range s.checks {
		checks[name] = fn
	}
	s.mu.RUnlock()

	results := make(map[string]Check, len(checks))
	healthy := true
	for name, fn := range checks {
		ok, msg := fn(ctx)
		results[name] = Check{Healthy: ok, Message: msg}
		if !ok {
			healthy = false
		}
	}
	return results, healthy
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results, healthy := s.runChecks(r.Context())

	status := Status{
		Status:    "ok",
		Checks:    results,
		Version:   s.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		status.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, healthy := s.runChecks(r.Context()); !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
		return
	}
	w.Write([]byte("ready"))
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("alive"))
}
