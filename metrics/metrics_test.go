package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := NewHTTPMetrics("test")

	m.RecordRequest("/metrics", http.MethodPost, http.StatusOK, 10*time.Millisecond)
	m.RecordRequest("/metrics", http.MethodPost, http.StatusOK, 20*time.Millisecond)
	m.RecordRequest("/metrics", http.MethodPost, http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/metrics", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/metrics", "POST", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestRecordCacheLookup(t *testing.T) {
	m := NewHTTPMetrics("test")

	m.RecordCacheLookup(CacheMiss)
	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheHit)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheError)))
}

func TestHandler_Exposition(t *testing.T) {
	m := NewHTTPMetrics("test")
	m.RecordRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `test_http_requests_total{code="200",handler="/",method="GET"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
