package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yaron8/latency-metrics/generator/config"
	"github.com/yaron8/latency-metrics/generator/metrics"
	"github.com/yaron8/latency-metrics/generator/service"
	"github.com/yaron8/latency-metrics/logi"
	promMetrics "github.com/yaron8/latency-metrics/metrics"
)

const shutdownTimeout = 5 * time.Second

type Bootstrap struct {
	apiServer *service.APIServer
}

func NewBootstrap() (*Bootstrap, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := logi.NewLog(cfg.Logi()); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	dataset := metrics.NewDataset(cfg.Seed, cfg.Regions, cfg.RecordsPerRegion)

	return &Bootstrap{
		apiServer: service.NewAPIServer(cfg, dataset, promMetrics.NewHTTPMetrics("generator")),
	}, nil
}

// StartServer serves until SIGINT or SIGTERM.
func (b *Bootstrap) StartServer() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(b.apiServer.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return b.apiServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
