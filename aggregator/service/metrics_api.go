package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/yaron8/latency-metrics/metrics"
	"github.com/yaron8/latency-metrics/telemetrics"
)

// MetricsHandler handles POST /metrics: per-region latency and uptime summaries.
func (api *APIServer) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, apiErr := api.decodeMetricsRequest(w, r)
	if apiErr != nil {
		api.logger.Warn("Rejected metrics request",
			"request_id", requestID(ctx),
			"status", apiErr.Status,
			"error", apiErr.Error())
		apiErr.WriteJSON(w)
		return
	}

	resp := api.summarize(ctx, req)

	// Set content type and status code before encoding
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Can't send error response after WriteHeader, just log it
		api.logger.Error("Error encoding metrics to JSON", "request_id", requestID(ctx), "error", err)
	}
}

// summarize serves from the cache when one is configured. Cache failures are
// logged and fall through to computing the response.
func (api *APIServer) summarize(ctx context.Context, req telemetrics.MetricsRequest) *telemetrics.MetricsResponse {
	if api.cache == nil {
		return api.aggregator.Summarize(req)
	}

	key := api.cache.Key(req)

	cached, ok, err := api.cache.Get(ctx, key)
	switch {
	case err != nil:
		api.httpMetrics.RecordCacheLookup(metrics.CacheError)
		api.logger.Warn("Summary cache lookup failed", "key", key, "error", err)
	case ok:
		api.httpMetrics.RecordCacheLookup(metrics.CacheHit)
		return cached
	default:
		api.httpMetrics.RecordCacheLookup(metrics.CacheMiss)
	}

	v, _, _ := api.fills.Do(key, func() (any, error) {
		resp := api.aggregator.Summarize(req)
		// Detached from the request so a cancelled client does not abort the write.
		if err := api.cache.Store(context.WithoutCancel(ctx), key, resp); err != nil {
			api.logger.Warn("Summary cache store failed", "key", key, "error", err)
		}
		return resp, nil
	})

	return v.(*telemetrics.MetricsResponse)
}
