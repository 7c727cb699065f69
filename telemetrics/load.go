package telemetrics

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/yaron8/latency-metrics/logi"
)

// DataLoadError reports a telemetry source that is missing or malformed.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load telemetry from %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

type format int

const (
	formatJSON format = iota
	formatCSV
)

// Load reads the whole dataset from a file path or an http(s) URL and builds
// a Store. Any failure is returned as a *DataLoadError.
func Load(ctx context.Context, source string) (*Store, error) {
	body, f, err := open(ctx, source)
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}
	defer body.Close()

	var records []TelemetryRecord
	switch f {
	case formatCSV:
		records, err = parseCSV(body)
	default:
		records, err = parseJSON(body)
	}
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}

	outOfRange := 0
	for _, r := range records {
		if r.UptimePct < 0 || r.UptimePct > 100 {
			outOfRange++
		}
	}

	logger := logi.GetLogger()
	if outOfRange > 0 {
		logger.Warn("uptime_pct outside 0-100", "source", source, "records", outOfRange)
	}

	store := NewStore(records)
	logger.Info("Telemetry loaded",
		"source", source,
		"records", store.Len(),
		"regions", len(store.byRegion))

	return store, nil
}

func open(ctx context.Context, source string) (io.ReadCloser, format, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetch(ctx, source)
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, formatJSON, err
	}
	if strings.HasSuffix(strings.ToLower(source), ".csv") {
		return file, formatCSV, nil
	}
	return file, formatJSON, nil
}

func fetch(ctx context.Context, url string) (io.ReadCloser, format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, formatJSON, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, formatJSON, fmt.Errorf("failed to fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, formatJSON, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/csv" || strings.HasSuffix(strings.ToLower(url), ".csv") {
		return resp.Body, formatCSV, nil
	}
	return resp.Body, formatJSON, nil
}

type jsonRecord struct {
	Region    *string  `json:"region"`
	LatencyMs *float64 `json:"latency_ms"`
	UptimePct *float64 `json:"uptime_pct"`
}

func parseJSON(r io.Reader) ([]TelemetryRecord, error) {
	var raw []jsonRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON dataset: %w", err)
	}

	records := make([]TelemetryRecord, 0, len(raw))
	for i, jr := range raw {
		if jr.Region == nil || jr.LatencyMs == nil || jr.UptimePct == nil {
			return nil, fmt.Errorf("record %d: region, latency_ms and uptime_pct are required", i)
		}

		rec := TelemetryRecord{Region: *jr.Region, LatencyMs: *jr.LatencyMs, UptimePct: *jr.UptimePct}
		if err := validate(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// parseCSV expects the header from GetCSVHeader followed by one record per line.
func parseCSV(r io.Reader) ([]TelemetryRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = len(GetCSVHeader())

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty CSV dataset")
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	for i, col := range GetCSVHeader() {
		if strings.TrimSpace(header[i]) != col {
			return nil, fmt.Errorf("header column %d: got %q, want %q", i, header[i], col)
		}
	}

	var records []TelemetryRecord
	lineNumber := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNumber++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		rec, err := parseCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseCSVRow(row []string) (TelemetryRecord, error) {
	latencyMs, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return TelemetryRecord{}, fmt.Errorf("invalid latency_ms: %w", err)
	}

	uptimePct, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return TelemetryRecord{}, fmt.Errorf("invalid uptime_pct: %w", err)
	}

	rec := TelemetryRecord{
		Region:    strings.TrimSpace(row[0]),
		LatencyMs: latencyMs,
		UptimePct: uptimePct,
	}
	return rec, validate(rec)
}

func validate(rec TelemetryRecord) error {
	if rec.Region == "" {
		return errors.New("empty region")
	}
	if math.IsNaN(rec.LatencyMs) || math.IsInf(rec.LatencyMs, 0) || rec.LatencyMs < 0 {
		return fmt.Errorf("latency_ms must be a finite non-negative number, got %v", rec.LatencyMs)
	}
	if math.IsNaN(rec.UptimePct) || math.IsInf(rec.UptimePct, 0) {
		return fmt.Errorf("uptime_pct must be finite, got %v", rec.UptimePct)
	}
	return nil
}
