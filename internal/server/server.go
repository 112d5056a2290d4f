// Package server exposes the analysis pipeline over HTTP: a webhook
// that accepts incident payloads, a health probe, and Prometheus
// exposition.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"obelisk/internal/metrics"
	"obelisk/internal/store"
	"obelisk/internal/wiring"
	"obelisk/pkg/pipeline"
)

// Server wires the runtime, history store, metrics collector, and HTTP
// routes.
type Server struct {
	rt        *pipeline.Runtime
	history   store.Store
	collector *metrics.Collector
	log       *slog.Logger
}

// New builds a server around an assembled runtime. A nil history store
// falls back to in-memory retention; a nil collector keeps /metrics
// serving an empty registry.
func New(rt *pipeline.Runtime, history store.Store, collector *metrics.Collector, log *slog.Logger) *Server {
	if history == nil {
		history = store.NewMemStore()
	}
	if collector == nil {
		collector = metrics.NewCollector("obelisk")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{rt: rt, history: history, collector: collector, log: log}
}

// Handler returns the route table. Exposed separately from Run so tests
// can drive it through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/executions", s.handleListExecutions)
	mux.HandleFunc("GET /api/executions/{id}", s.handleGetExecution)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.collector.Registry(), promhttp.HandlerOpts{}))
	return mux
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	incident, err := wiring.DecodeIncident(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	result := s.rt.Execute(r.Context(), incident, s.collector.Sink())
	s.collector.ObserveExecution(time.Since(start), len(result.SignalsUsed), result.RequiresHumanReview)

	if err := s.history.Save(incident.DeploymentID, result); err != nil {
		// History is best effort; the analysis already succeeded.
		s.log.Error("persist execution", "execution_id", result.ExecutionID, "error", err)
	}

	s.log.Info("analysis served",
		"execution_id", result.ExecutionID,
		"deployment", incident.DeploymentID,
		"ranked", len(result.RankedHypotheses),
		"review", result.RequiresHumanReview,
	)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListExecutions(w http.ResponseWriter, _ *http.Request) {
	summaries, err := s.history.List(50)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if summaries == nil {
		summaries = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	rec, err := s.history.Get(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec.Result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"agents": s.rt.Registry().Len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Warn("request rejected", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
