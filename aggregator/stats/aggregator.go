package stats

import (
	"sort"

	"github.com/yaron8/latency-metrics/telemetrics"
)

// p95 is the quantile reported as p95_latency.
const p95 = 0.95

// Aggregator computes per-region summaries over a read-only Store.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	store *telemetrics.Store
}

func NewAggregator(store *telemetrics.Store) *Aggregator {
	return &Aggregator{
		store: store,
	}
}

// Summarize returns one summary per distinct requested region that has
// records, in the order regions first appear in req.Regions. Unknown regions
// are left out.
func (a *Aggregator) Summarize(req telemetrics.MetricsRequest) *telemetrics.MetricsResponse {
	threshold := req.Threshold()
	resp := telemetrics.NewMetricsResponse()
	seen := make(map[string]struct{}, len(req.Regions))

	for _, region := range req.Regions {
		if _, dup := seen[region]; dup {
			continue
		}
		seen[region] = struct{}{}

		records := a.store.Region(region)
		if len(records) == 0 {
			continue
		}
		resp.Set(region, summarize(records, threshold))
	}

	return resp
}

func summarize(records []telemetrics.TelemetryRecord, thresholdMs float64) telemetrics.RegionSummary {
	latencies := make([]float64, len(records))
	uptimes := make([]float64, len(records))
	breaches := 0

	for i, r := range records {
		latencies[i] = r.LatencyMs
		uptimes[i] = r.UptimePct
		if r.LatencyMs > thresholdMs {
			breaches++
		}
	}

	avgLatency := telemetrics.Mean(latencies)
	sort.Float64s(latencies)

	return telemetrics.RegionSummary{
		AvgLatency: avgLatency,
		P95Latency: telemetrics.Percentile(latencies, p95),
		AvgUptime:  telemetrics.Mean(uptimes),
		Breaches:   breaches,
	}
}
