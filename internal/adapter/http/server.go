package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportProvider exposes the most recently built report.
type ReportProvider interface {
	Report() (domain.Report, bool)
}

// Service is what the server needs from the pipeline.
type Service interface {
	sharedobs.ReadinessChecker
	ReportProvider
}

// Server exposes health, readiness, metrics and report HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /report and /report/{metric} routes.
func NewServer(addr string, svc Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", handleReport(svc))
	mux.HandleFunc("GET /report/{metric}", handleRanking(svc))

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

func handleReport(p ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		report, ok := p.Report()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "report not built yet"})
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func handleRanking(p ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metric, err := domain.ParseMetric(r.PathValue("metric"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		report, ok := p.Report()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "report not built yet"})
			return
		}
		rk, _ := report.Ranking(metric)
		writeJSON(w, http.StatusOK, rk)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
