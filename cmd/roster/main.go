package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/roster-sheets/internal/cli"
	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/pkg/config"
	"github.com/angelmondragon/roster-sheets/pkg/env"
	"github.com/angelmondragon/roster-sheets/pkg/logger"
	"github.com/angelmondragon/roster-sheets/pkg/metrics"
	"github.com/angelmondragon/roster-sheets/pkg/redis"
	"github.com/angelmondragon/roster-sheets/pkg/sheets"
)

func main() {
	_ = godotenv.Load()

	serviceName := env.Get("ROSTER_SERVICE_NAME", "roster")
	rt := &process{
		serviceName: serviceName,
		registry:    prometheus.NewRegistry(),
		logg:        logger.New(logger.Options{ServiceName: serviceName}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand(rt.load).ExecuteContext(ctx)
	stop()

	rt.close(context.Background())
	os.Exit(cli.ExitCode(err))
}

// process owns the process-wide resources behind the CLI.
type process struct {
	serviceName string
	registry    *prometheus.Registry
	logg        *logger.Logger
	cfg         *config.Config
	cache       *redis.Client
}

func (r *process) load(ctx context.Context, opts *cli.RootOptions) (*cli.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	r.cfg = cfg

	level := logger.ParseLevel(cfg.App.LogLevel)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	r.logg = logger.New(logger.Options{
		ServiceName: r.serviceName,
		Level:       level,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = r.logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})

	client, err := sheets.NewClient(ctx, cfg.Google, r.logg)
	if err != nil {
		return nil, err
	}
	retrier := sheets.NewRetrier(sheets.RetryPolicy{
		MaxRetries: cfg.Sheets.MaxRetries,
		BaseDelay:  cfg.Sheets.BaseDelay,
	}, r.logg, metrics.NewSheetsMetrics(r.registry))

	var cache sheetstore.RangeCache
	if cfg.Cache.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Cache, r.logg)
		if err != nil {
			r.logg.WarnErr(ctx, "range cache unavailable, reading sheets directly", err)
		} else {
			r.cache = redisClient
			cache = redisClient
		}
	}

	return cli.NewApp(cfg, sheets.WithRetry(client, retrier), cache, r.logg, nil)
}

func (r *process) close(ctx context.Context) {
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.logg.Error(ctx, "failed to close redis client", err)
		}
	}
	if r.cfg == nil || r.cfg.Metrics.TextfilePath == "" {
		return
	}
	if err := prometheus.WriteToTextfile(r.cfg.Metrics.TextfilePath, r.registry); err != nil {
		r.logg.Error(ctx, "failed to write metrics textfile", err)
	}
}
