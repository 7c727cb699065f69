package integration_tests

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/yaron8/latency-metrics/aggregator/bootstrap"
)

const (
	maxRetries = 30
	retryDelay = 100 * time.Millisecond
)

// dataset has the same shape as data/q-vercel-latency.json.
const dataset = `[
  {"region": "apac", "latency_ms": 120.5, "uptime_pct": 99.1},
  {"region": "apac", "latency_ms": 210.0, "uptime_pct": 98.7},
  {"region": "apac", "latency_ms": 185.2, "uptime_pct": 99.4},
  {"region": "emea", "latency_ms": 140.0, "uptime_pct": 99.9},
  {"region": "emea", "latency_ms": 160.0, "uptime_pct": 99.8},
  {"region": "amer", "latency_ms": 95.0,  "uptime_pct": 97.5}
]`

type IntegrationTestSuite struct {
	suite.Suite
	redis   *miniredis.Miniredis
	server  *httptest.Server
	baseURL string
	client  *http.Client
}

// SetupSuite runs once before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	dir := s.T().TempDir()
	source := filepath.Join(dir, "telemetry.json")
	s.Require().NoError(os.WriteFile(source, []byte(dataset), 0o644))

	s.redis = miniredis.NewMiniRedis()
	s.Require().NoError(s.redis.Start(), "Failed to start miniredis")

	s.T().Setenv("DATA_SOURCE", source)
	s.T().Setenv("LOG_DIR", dir)
	s.T().Setenv("REDIS_ENABLED", "true")
	s.T().Setenv("REDIS_HOST", s.redis.Host())
	s.T().Setenv("REDIS_PORT", s.redis.Port())
	s.T().Setenv("CORS_ALLOW_CREDENTIALS", "false")

	b, err := bootstrap.NewBootstrap()
	s.Require().NoError(err, "Failed to create aggregator bootstrap")

	s.server = httptest.NewServer(b.Handler())
	s.baseURL = s.server.URL
	s.client = &http.Client{Timeout: 5 * time.Second}

	s.T().Log("Waiting for aggregator to be ready...")
	s.waitForService(s.baseURL + "/health")
}

// TearDownSuite runs once after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// waitForService waits for a service to become available
func (s *IntegrationTestSuite) waitForService(url string) {
	for i := 0; i < maxRetries; i++ {
		resp, err := s.client.Get(url)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			s.T().Logf("Service at %s is ready", url)
			return
		}
		if resp != nil {
			resp.Body.Close()
		}

		s.T().Logf("Waiting for service at %s (attempt %d/%d)...", url, i+1, maxRetries)
		time.Sleep(retryDelay)
	}

	s.Require().Fail(fmt.Sprintf("Service at %s did not become ready after %d attempts", url, maxRetries))
}
