package metrics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/yaron8/latency-metrics/telemetrics"
)

const (
	minLatencyMs   = 50.0
	latencySpanMs  = 200.0
	minUptimePct   = 97.0
	uptimeSpanPct  = 3.0
	valuePrecision = 100.0
)

// Dataset is a synthetic telemetry snapshot. Records are generated on first
// use and are identical for the same seed, regions and count.
type Dataset struct {
	seed      uint64
	regions   []string
	perRegion int

	mu       sync.RWMutex
	records  []telemetrics.TelemetryRecord
	jsonData []byte
	csvData  []byte
}

func NewDataset(seed uint64, regions []string, perRegion int) *Dataset {
	return &Dataset{
		seed:      seed,
		regions:   append([]string(nil), regions...),
		perRegion: perRegion,
	}
}

// Records returns the generated records, region by region.
func (ds *Dataset) Records() ([]telemetrics.TelemetryRecord, error) {
	if err := ds.ensure(); err != nil {
		return nil, err
	}
	return ds.records, nil
}

// JSON returns the snapshot as a JSON array of records.
func (ds *Dataset) JSON() ([]byte, error) {
	if err := ds.ensure(); err != nil {
		return nil, err
	}
	return ds.jsonData, nil
}

// CSV returns the snapshot as CSV with a region,latency_ms,uptime_pct header.
func (ds *Dataset) CSV() ([]byte, error) {
	if err := ds.ensure(); err != nil {
		return nil, err
	}
	return ds.csvData, nil
}

func (ds *Dataset) ensure() error {
	ds.mu.RLock()
	ready := ds.records != nil
	ds.mu.RUnlock()
	if ready {
		return nil
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	// Double-check after acquiring write lock
	if ds.records != nil {
		return nil
	}

	records := ds.generate()

	jsonData, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("error encoding json: %w", err)
	}

	csvData, err := encodeCSV(records)
	if err != nil {
		return err
	}

	ds.records = records
	ds.jsonData = jsonData
	ds.csvData = csvData
	return nil
}

func (ds *Dataset) generate() []telemetrics.TelemetryRecord {
	rng := rand.New(rand.NewPCG(ds.seed, ds.seed^0x9e3779b97f4a7c15))

	records := make([]telemetrics.TelemetryRecord, 0, len(ds.regions)*ds.perRegion)
	for _, region := range ds.regions {
		for i := 0; i < ds.perRegion; i++ {
			records = append(records, telemetrics.TelemetryRecord{
				Region:    region,
				LatencyMs: truncate(minLatencyMs + rng.Float64()*latencySpanMs),
				UptimePct: truncate(minUptimePct + rng.Float64()*uptimeSpanPct),
			})
		}
	}
	return records
}

// truncate keeps two decimals, rounding down so values stay below the range end.
func truncate(v float64) float64 {
	return math.Floor(v*valuePrecision) / valuePrecision
}

func encodeCSV(records []telemetrics.TelemetryRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(telemetrics.GetCSVHeader()); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Region,
			strconv.FormatFloat(rec.LatencyMs, 'f', 2, 64),
			strconv.FormatFloat(rec.UptimePct, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("error writing row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing writer: %w", err)
	}
	return buf.Bytes(), nil
}
