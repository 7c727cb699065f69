package telemetrics

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Store is the read-only telemetry dataset. It is built once by NewStore or
// Load and never mutated afterwards, so it can be shared by any number of
// goroutines without locking.
type Store struct {
	records     []TelemetryRecord
	byRegion    map[string][]TelemetryRecord
	fingerprint uint64
}

// NewStore copies records and indexes them by region.
func NewStore(records []TelemetryRecord) *Store {
	s := &Store{
		records:  make([]TelemetryRecord, len(records)),
		byRegion: map[string][]TelemetryRecord{},
	}
	copy(s.records, records)

	h := xxhash.New()
	var num [8]byte
	for _, r := range s.records {
		s.byRegion[r.Region] = append(s.byRegion[r.Region], r)

		h.WriteString(r.Region)
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(num[:], math.Float64bits(r.LatencyMs))
		h.Write(num[:])
		binary.LittleEndian.PutUint64(num[:], math.Float64bits(r.UptimePct))
		h.Write(num[:])
	}
	s.fingerprint = h.Sum64()

	return s
}

func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of all records in dataset order.
func (s *Store) Records() []TelemetryRecord {
	out := make([]TelemetryRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Region returns the records whose region equals name exactly, in dataset
// order. The returned slice is shared and must not be modified.
func (s *Store) Region(name string) []TelemetryRecord {
	return s.byRegion[name]
}

// Fingerprint identifies the dataset contents.
func (s *Store) Fingerprint() uint64 {
	return s.fingerprint
}
