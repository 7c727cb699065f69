package telemetrics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultThresholdMs is used when a request does not carry threshold_ms.
const DefaultThresholdMs = 180.0

type TelemetryRecord struct {
	Region    string  `json:"region"`
	LatencyMs float64 `json:"latency_ms"`
	UptimePct float64 `json:"uptime_pct"`
}

type MetricsRequest struct {
	Regions     []string `json:"regions"`
	ThresholdMs *float64 `json:"threshold_ms"`
}

// Threshold returns the breach threshold, falling back to DefaultThresholdMs.
func (r MetricsRequest) Threshold() float64 {
	if r.ThresholdMs == nil {
		return DefaultThresholdMs
	}
	return *r.ThresholdMs
}

type RegionSummary struct {
	AvgLatency float64 `json:"avg_latency"`
	P95Latency float64 `json:"p95_latency"`
	AvgUptime  float64 `json:"avg_uptime"`
	Breaches   int     `json:"breaches"`
}

// MetricsResponse maps region to summary and keeps the order in which regions were added.
type MetricsResponse struct {
	order     []string
	summaries map[string]RegionSummary
}

func NewMetricsResponse() *MetricsResponse {
	return &MetricsResponse{
		summaries: map[string]RegionSummary{},
	}
}

// Set adds or replaces a region summary. New regions go to the end.
func (mr *MetricsResponse) Set(region string, summary RegionSummary) {
	if _, ok := mr.summaries[region]; !ok {
		mr.order = append(mr.order, region)
	}
	mr.summaries[region] = summary
}

func (mr *MetricsResponse) Get(region string) (RegionSummary, bool) {
	s, ok := mr.summaries[region]
	return s, ok
}

// Regions returns the region keys in insertion order.
func (mr *MetricsResponse) Regions() []string {
	out := make([]string, len(mr.order))
	copy(out, mr.order)
	return out
}

func (mr *MetricsResponse) Len() int {
	return len(mr.order)
}

// MarshalJSON writes the object with keys in insertion order.
func (mr *MetricsResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, region := range mr.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(region)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(mr.summaries[region])
		if err != nil {
			return nil, fmt.Errorf("marshal summary for %q: %w", region, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of region summaries preserving key order.
func (mr *MetricsResponse) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metrics response: expected object, got %v", tok)
	}

	mr.order = nil
	mr.summaries = map[string]RegionSummary{}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		region, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metrics response: expected region key, got %v", tok)
		}

		var summary RegionSummary
		if err := dec.Decode(&summary); err != nil {
			return fmt.Errorf("metrics response: region %q: %w", region, err)
		}
		mr.Set(region, summary)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// GetCSVHeader lists the columns of the CSV dataset format.
func GetCSVHeader() []string {
	return []string{
		"region",
		"latency_ms",
		"uptime_pct"}
}
