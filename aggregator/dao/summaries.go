package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/yaron8/latency-metrics/telemetrics"
)

const keyPrefix = "summary"

// DAOSummaries caches computed metrics responses in Redis.
// Keys are scoped by dataset fingerprint, so entries written for a
// different dataset are never read back.
type DAOSummaries struct {
	redisClient *redis.Client
	ttl         time.Duration
	fingerprint uint64
}

// NewDAOSummaries creates a summary cache for the dataset identified by fingerprint
func NewDAOSummaries(redisClient *redis.Client, ttl time.Duration, fingerprint uint64) *DAOSummaries {
	return &DAOSummaries{
		redisClient: redisClient,
		ttl:         ttl,
		fingerprint: fingerprint,
	}
}

// Key derives the cache key of a request: distinct regions in first-seen
// order plus the resolved threshold.
func (dao *DAOSummaries) Key(req telemetrics.MetricsRequest) string {
	h := xxhash.New()
	seen := make(map[string]struct{}, len(req.Regions))
	for _, region := range req.Regions {
		if _, dup := seen[region]; dup {
			continue
		}
		seen[region] = struct{}{}
		h.WriteString(strconv.Quote(region))
		h.WriteString(",")
	}
	h.WriteString(strconv.FormatFloat(req.Threshold(), 'g', -1, 64))

	return fmt.Sprintf("%s:%016x:%016x", keyPrefix, dao.fingerprint, h.Sum64())
}

// Get returns the cached response for key. ok is false on a cache miss.
func (dao *DAOSummaries) Get(ctx context.Context, key string) (*telemetrics.MetricsResponse, bool, error) {
	data, err := dao.redisClient.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}

	resp := telemetrics.NewMetricsResponse()
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return resp, true, nil
}

// Store saves a response under key with the configured TTL
func (dao *DAOSummaries) Store(ctx context.Context, key string, resp *telemetrics.MetricsResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return dao.redisClient.Set(ctx, key, data, dao.ttl).Err()
}

// Ping checks the Redis connection.
func (dao *DAOSummaries) Ping(ctx context.Context) error {
	return dao.redisClient.Ping(ctx).Err()
}
