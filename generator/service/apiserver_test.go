package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaron8/latency-metrics/generator/config"
	"github.com/yaron8/latency-metrics/generator/metrics"
	promMetrics "github.com/yaron8/latency-metrics/metrics"
	"github.com/yaron8/latency-metrics/telemetrics"
)

func newTestServer() *APIServer {
	cfg := &config.Config{Port: 0, Seed: 42, Regions: []string{"apac", "emea"}, RecordsPerRegion: 5}
	return NewAPIServer(cfg, metrics.NewDataset(cfg.Seed, cfg.Regions, cfg.RecordsPerRegion), promMetrics.NewHTTPMetrics("generator_test"))
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestTelemetryEndpoints_Loadable(t *testing.T) {
	srv := httptest.NewServer(newTestServer().Handler())
	defer srv.Close()

	fromJSON, err := telemetrics.Load(context.Background(), srv.URL+"/telemetry.json")
	require.NoError(t, err)
	fromCSV, err := telemetrics.Load(context.Background(), srv.URL+"/telemetry.csv")
	require.NoError(t, err)

	assert.Equal(t, 10, fromJSON.Len())
	assert.Equal(t, fromJSON.Records(), fromCSV.Records())
	assert.Equal(t, fromJSON.Fingerprint(), fromCSV.Fingerprint())
	assert.Len(t, fromJSON.Region("apac"), 5)
}

func TestTelemetryEndpoints_ContentType(t *testing.T) {
	h := newTestServer().Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/telemetry.csv", nil))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/telemetry.json", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telemetry.json", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	h := newTestServer().Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/telemetry.csv", nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(),
		`generator_test_http_requests_total{code="200",handler="GET /telemetry.csv",method="GET"} 1`)
}
