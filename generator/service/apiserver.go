package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yaron8/latency-metrics/generator/config"
	"github.com/yaron8/latency-metrics/generator/metrics"
	"github.com/yaron8/latency-metrics/logi"
	promMetrics "github.com/yaron8/latency-metrics/metrics"
)

type APIServer struct {
	dataset     *metrics.Dataset
	config      *config.Config
	server      *http.Server
	handler     http.Handler
	httpMetrics *promMetrics.HTTPMetrics
	logger      *slog.Logger
}

func NewAPIServer(config *config.Config, dataset *metrics.Dataset, httpMetrics *promMetrics.HTTPMetrics) *APIServer {
	api := &APIServer{
		config:      config,
		dataset:     dataset,
		httpMetrics: httpMetrics,
		logger:      logi.GetLogger(),
	}

	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			api.logger.Error("Error writing health check response", "error", err)
		}
	})

	mux.HandleFunc("GET /telemetry.json", api.telemetryJSONHandler)
	mux.HandleFunc("GET /telemetry.csv", api.telemetryCSVHandler)
	mux.Handle("GET /metrics", httpMetrics.Handler())

	// Wrap the mux with logging middleware
	api.handler = api.middleware(mux)

	return api
}

func (api *APIServer) Handler() http.Handler {
	return api.handler
}

// Start initializes and starts the HTTP server
func (api *APIServer) Start() error {
	api.logger.Info("Generator APIServer starting", "port", api.config.Port)

	api.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.config.Port),
		Handler:      api.handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := api.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (api *APIServer) Shutdown(ctx context.Context) error {
	if api.server == nil {
		return nil
	}
	return api.server.Shutdown(ctx)
}
