package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rossini123/Byzantine-Fault-Tolerance-Protocols/experiment"
)

// Server serves harness metrics and the latest sweep result over HTTP.
type Server struct {
	registry *prometheus.Registry
	metrics  *Metrics

	httpServer *http.Server
	startTime  time.Time

	mu     sync.RWMutex
	latest *experiment.Result
}

// NewServer creates a server with its own metrics registry.
func NewServer() *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	return &Server{
		registry:  registry,
		metrics:   NewMetrics("bftsim", registry),
		startTime: time.Now(),
	}
}

// Metrics returns the server's metrics, to be wired into a sweep as its
// observer.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// SetResult publishes a sweep result on the /results endpoint.
func (s *Server) SetResult(res *experiment.Result) {
	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/results", s.handleResults)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		http.Error(w, `{"error":"no sweep has completed yet"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(latest)
}

// Start begins serving on the given address in the background.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.httpServer = &http.Server{Handler: s.Handler()}
	go func() {
		_ = s.httpServer.Serve(listener)
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
