package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/yaron8/latency-metrics/aggregator/config"
	"github.com/yaron8/latency-metrics/aggregator/dao"
	"github.com/yaron8/latency-metrics/aggregator/service"
	"github.com/yaron8/latency-metrics/aggregator/stats"
	"github.com/yaron8/latency-metrics/logi"
	"github.com/yaron8/latency-metrics/metrics"
	"github.com/yaron8/latency-metrics/telemetrics"
)

type Bootstrap struct {
	config      *config.Config
	redisClient *redis.Client
	apiServer   *service.APIServer
}

// NewBootstrap loads configuration and the telemetry dataset. A dataset that
// cannot be loaded is returned as a *telemetrics.DataLoadError.
func NewBootstrap() (*Bootstrap, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := logi.NewLog(cfg.Logi()); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	logger := logi.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LoadTimeout)
	defer cancel()

	store, err := telemetrics.Load(ctx, cfg.DataSource)
	if err != nil {
		return nil, err
	}

	b := &Bootstrap{config: cfg}

	var cache service.SummaryCache
	if cfg.Redis.Enabled {
		b.redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: "", // no password set
			DB:       0,  // use default DB
			Protocol: 2,
		})

		summaries := dao.NewDAOSummaries(b.redisClient, cfg.Redis.TTL, store.Fingerprint())
		if err := pingWithBackoff(summaries, cfg.Redis.ConnectTimeout); err != nil {
			logger.Warn("Redis unreachable, serving without summary cache",
				"addr", b.redisClient.Options().Addr,
				"error", err)
			_ = b.redisClient.Close()
			b.redisClient = nil
		} else {
			cache = summaries
		}
	}

	b.apiServer = service.NewAPIServer(
		cfg,
		stats.NewAggregator(store),
		cache,
		metrics.NewHTTPMetrics("aggregator"),
	)

	logger.Info("Aggregator bootstrapped",
		"source", cfg.DataSource,
		"records", store.Len(),
		"cache", cache != nil)

	return b, nil
}

func pingWithBackoff(summaries *dao.DAOSummaries, limit time.Duration) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = limit

	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	return backoff.Retry(func() error {
		return summaries.Ping(ctx)
	}, backoff.WithContext(policy, ctx))
}

// Handler exposes the API handler without binding a port.
func (b *Bootstrap) Handler() http.Handler {
	return b.apiServer.Handler()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests.
func (b *Bootstrap) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(b.apiServer.Start)

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), b.config.ShutdownTimeout)
		defer cancel()

		if err := b.apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		if b.redisClient != nil {
			return b.redisClient.Close()
		}
		return nil
	})

	return g.Wait()
}
