package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/yaron8/latency-metrics/aggregator/config"
	"github.com/yaron8/latency-metrics/aggregator/stats"
	"github.com/yaron8/latency-metrics/logi"
	"github.com/yaron8/latency-metrics/metrics"
	"github.com/yaron8/latency-metrics/telemetrics"
)

// SummaryCache stores computed responses keyed by request.
// *dao.DAOSummaries implements it.
type SummaryCache interface {
	Key(req telemetrics.MetricsRequest) string
	Get(ctx context.Context, key string) (*telemetrics.MetricsResponse, bool, error)
	Store(ctx context.Context, key string, resp *telemetrics.MetricsResponse) error
}

type APIServer struct {
	config      *config.Config
	server      *http.Server
	handler     http.Handler
	aggregator  *stats.Aggregator
	cache       SummaryCache
	fills       singleflight.Group
	httpMetrics *metrics.HTTPMetrics
	logger      *slog.Logger
}

// NewAPIServer wires the routes. cache may be nil, in which case every
// request is computed.
func NewAPIServer(config *config.Config, aggregator *stats.Aggregator, cache SummaryCache, httpMetrics *metrics.HTTPMetrics) *APIServer {
	api := &APIServer{
		config:      config,
		aggregator:  aggregator,
		cache:       cache,
		httpMetrics: httpMetrics,
		logger:      logi.GetLogger(),
	}

	mux := http.NewServeMux()

	// Liveness
	mux.HandleFunc("GET /{$}", api.RootHandler)
	mux.HandleFunc("GET /health", api.HealthHandler)

	mux.HandleFunc("POST /metrics", api.MetricsHandler)
	mux.Handle("GET "+config.Metrics.Path, httpMetrics.Handler())

	cors := newCORSHandler(config.CORS)
	api.handler = api.middleware(cors.middleware(mux))

	return api
}

// Handler returns the full handler stack (routes plus middleware).
func (api *APIServer) Handler() http.Handler {
	return api.handler
}

// Start initializes and starts the HTTP server. It returns nil after Shutdown.
func (api *APIServer) Start() error {
	api.logger.Info("Aggregator APIServer starting", "port", api.config.Port)

	api.server = &http.Server{
		Addr:         api.config.Addr(),
		Handler:      api.handler,
		ReadTimeout:  api.config.Server.ReadTimeout,
		WriteTimeout: api.config.Server.WriteTimeout,
		IdleTimeout:  api.config.Server.IdleTimeout,
	}

	if err := api.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		api.logger.Error("Server failed to start", "error", err, "port", api.config.Port)
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (api *APIServer) Shutdown(ctx context.Context) error {
	if api.server == nil {
		return nil
	}
	api.logger.Info("Aggregator APIServer shutting down")
	return api.server.Shutdown(ctx)
}
