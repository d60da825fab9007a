// Package cli hosts the process-level adapters around the rewrite service:
// the metrics/health HTTP endpoint used when watch mode runs unattended.
package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"typeref/internal/core/app"
	"typeref/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ObservabilityServer struct {
	addr          string
	healthService *app.HealthService
	service       ports.RewriteService
	server        *http.Server
}

func NewObservabilityServer(addr string, healthService *app.HealthService, service ports.RewriteService) *ObservabilityServer {
	return &ObservabilityServer{
		addr:          addr,
		healthService: healthService,
		service:       service,
	}
}

func (s *ObservabilityServer) handler() http.Handler {
	mux := http.NewServeMux()

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := s.healthService.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	})

	// Last completed run, for scripted polling of watch mode.
	mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
		result, ok := s.service.LastResult()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "no completed run"})
			return
		}
		json.NewEncoder(w).Encode(result)
	})

	return mux
}

func (s *ObservabilityServer) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.handler(),
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *ObservabilityServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
