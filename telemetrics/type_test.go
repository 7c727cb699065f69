package telemetrics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRequest_Threshold(t *testing.T) {
	assert.Equal(t, DefaultThresholdMs, MetricsRequest{}.Threshold())

	th := 150.0
	assert.Equal(t, 150.0, MetricsRequest{ThresholdMs: &th}.Threshold())

	zero := 0.0
	assert.Equal(t, 0.0, MetricsRequest{ThresholdMs: &zero}.Threshold())
}

func TestMetricsResponse_KeepsInsertionOrder(t *testing.T) {
	mr := NewMetricsResponse()
	mr.Set("us-west", RegionSummary{AvgLatency: 1})
	mr.Set("apac", RegionSummary{AvgLatency: 2, Breaches: 3})
	mr.Set("emea", RegionSummary{AvgLatency: 4})
	mr.Set("apac", RegionSummary{AvgLatency: 5})

	assert.Equal(t, []string{"us-west", "apac", "emea"}, mr.Regions())
	got, ok := mr.Get("apac")
	require.True(t, ok)
	assert.Equal(t, 5.0, got.AvgLatency)

	data, err := json.Marshal(mr)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"us-west":{"avg_latency":1,"p95_latency":0,"avg_uptime":0,"breaches":0},
		  "apac":{"avg_latency":5,"p95_latency":0,"avg_uptime":0,"breaches":0},
		  "emea":{"avg_latency":4,"p95_latency":0,"avg_uptime":0,"breaches":0}}`,
		string(data))
	assert.Regexp(t, `^\{"us-west":.*"apac":.*"emea":`, string(data))
}

func TestMetricsResponse_DecodeIsByteIdentical(t *testing.T) {
	mr := NewMetricsResponse()
	mr.Set("zeta", RegionSummary{AvgLatency: 150.25, P95Latency: 195, AvgUptime: 99.7, Breaches: 1})
	mr.Set("alpha", RegionSummary{AvgLatency: 10, P95Latency: 12.5, AvgUptime: 98, Breaches: 0})

	first, err := json.Marshal(mr)
	require.NoError(t, err)

	decoded := NewMetricsResponse()
	require.NoError(t, json.Unmarshal(first, decoded))
	assert.Equal(t, []string{"zeta", "alpha"}, decoded.Regions())

	second, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestMetricsResponse_Empty(t *testing.T) {
	data, err := json.Marshal(NewMetricsResponse())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	var decoded MetricsResponse
	assert.Error(t, json.Unmarshal([]byte(`[]`), &decoded))
}
