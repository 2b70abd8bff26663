// Package http exposes the collector daemon's operational endpoints: health,
// readiness, a collection status summary, and Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/turf-weather-collector/internal/adapter/sqlite"
	"github.com/couchcryptid/turf-weather-collector/internal/collector"
)

// StatusSource reports collector state: readiness flips once the first
// collection run completes, and LastRun carries that run's tally.
type StatusSource interface {
	CheckReadiness(ctx context.Context) error
	LastRun() (collector.RunStatus, bool)
}

// StatsProvider reports stored snapshot totals for the status endpoint.
type StatsProvider interface {
	Stats(ctx context.Context) (sqlite.Stats, error)
}

// Server exposes the daemon's HTTP surface.
type Server struct {
	httpServer *http.Server
	source     StatusSource
	stats      StatsProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /statusz, and
// /metrics routes.
func NewServer(addr string, source StatusSource, stats StatsProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		source: source,
		stats:  stats,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /statusz", s.handleStatus)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady reports 503 until the first collection run has completed, so
// the daemon only joins a load balancer once it has swept the catalog.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.source.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusResponse is the /statusz payload: the last completed run and the
// stored snapshot totals. A store read failure degrades to store_error rather
// than failing the endpoint; run state is still worth reporting.
type statusResponse struct {
	Service    string               `json:"service"`
	LastRun    *collector.RunStatus `json:"last_run,omitempty"`
	Store      *storeStatus         `json:"store,omitempty"`
	StoreError string               `json:"store_error,omitempty"`
}

type storeStatus struct {
	TotalRecords int    `json:"total_records"`
	UniqueVenues int    `json:"unique_venues"`
	EarliestDate string `json:"earliest_date,omitempty"`
	LatestDate   string `json:"latest_date,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := statusResponse{Service: "turf-weather-collector"}
	if run, ok := s.source.LastRun(); ok {
		body.LastRun = &run
	}

	if stats, err := s.stats.Stats(ctx); err != nil {
		s.logger.Warn("status endpoint: store stats unavailable", "error", err)
		body.StoreError = err.Error()
	} else {
		body.Store = &storeStatus{
			TotalRecords: stats.TotalRecords,
			UniqueVenues: stats.UniqueVenues,
			EarliestDate: stats.EarliestDate,
			LatestDate:   stats.LatestDate,
		}
	}

	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort operational response
}
