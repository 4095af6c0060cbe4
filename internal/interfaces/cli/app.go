package cli

import (
	"context"

	"github.com/turtacn/MetaNetX-Resolver/internal/application/build"
	"github.com/turtacn/MetaNetX-Resolver/internal/application/query"
	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/naming"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/domain/source"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/database/redis"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/storage/filesystem"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/storage/httpsource"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/storage/minio"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// AppFactory builds the App for one command invocation.
type AppFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error)

// App holds the wired components shared by the commands.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Store     *snapshot.Store
	Fetcher   source.Fetcher
	Holder    *query.Holder
	Engine    *query.Engine
	Collector prom.MetricsCollector
	Metrics   *prom.ResolverMetrics

	closers []func() error
}

// NewApp wires the snapshot store, the source fetcher, the query engine and
// metrics from cfg.  Lock and event publisher are created per build by
// Pipeline since only the build command needs them.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	logger = logging.OrDefault(logger)
	a := &App{Config: cfg, Logger: logger, Holder: query.NewHolder()}

	var mc *minio.Client
	minioClient := func() (*minio.Client, error) {
		if mc != nil {
			return mc, nil
		}
		var err error
		mc, err = minio.NewClient(ctx, cfg.MinIO, logger)
		return mc, err
	}

	switch cfg.Snapshot.Backend {
	case "minio":
		c, err := minioClient()
		if err != nil {
			return nil, err
		}
		if err := c.EnsureBucket(ctx, cfg.Snapshot.Bucket); err != nil {
			return nil, err
		}
		a.Store = snapshot.NewStore(c.Bucket(cfg.Snapshot.Bucket, cfg.Snapshot.Prefix), logger)
	default:
		fs, err := filesystem.NewStore(cfg.Snapshot.Dir, logger)
		if err != nil {
			return nil, err
		}
		a.Store = snapshot.NewStore(fs, logger)
	}

	switch cfg.Source.Backend {
	case "minio":
		c, err := minioClient()
		if err != nil {
			return nil, err
		}
		// The source bucket is published upstream and never created here.
		if st := c.HealthCheck(ctx, cfg.Source.Bucket); !st.Healthy {
			return nil, errors.SourceUnavailable(cfg.Source.Bucket, errors.New(errors.ErrCodeExternalService, st.Error))
		}
		a.Fetcher = c.Bucket(cfg.Source.Bucket, cfg.Source.Prefix)
	case "http":
		f, err := httpsource.NewFetcher(cfg.Source.BaseURL, cfg.Source.Timeout, logger)
		if err != nil {
			return nil, err
		}
		a.Fetcher = f
	default:
		fs, err := filesystem.NewStore(cfg.Source.Dir, logger)
		if err != nil {
			return nil, err
		}
		a.Fetcher = fs
	}

	if cfg.Metrics.Enabled {
		c, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: cfg.Metrics.Namespace}, logger)
		if err != nil {
			return nil, err
		}
		a.Collector = c
		a.Metrics = prom.NewResolverMetrics(c)
	}

	a.Engine = query.NewEngine(a.Holder, cfg.Query, logger, a.Metrics)
	return a, nil
}

// Load publishes snapshot version to the query engine.
func (a *App) Load(ctx context.Context, version string) (*query.Snapshot, error) {
	return a.Holder.LoadFrom(ctx, a.Store, version)
}

// Pipeline wires a build pipeline.  mode overrides the configured lock
// mode when non-empty.
func (a *App) Pipeline(ctx context.Context, mode build.LockMode) (*build.Pipeline, error) {
	cfg := a.Config
	if mode == "" {
		m, err := build.ParseLockMode(cfg.Build.LockMode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	var lock build.Lock
	switch cfg.Build.LockBackend {
	case "redis":
		client, err := redis.NewClient(ctx, cfg.Redis, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		lock = build.NewRedisLock(redis.NewLockFactory(client, a.Logger), mode, cfg.Build.LockTTL, cfg.Build.LockRetryDelay, a.Logger)
	default:
		lock = build.NewLocalLock(mode)
	}

	resolver := naming.NewResolver(naming.Config{
		Threshold:       cfg.Naming.ClusterThreshold,
		Priority:        cfg.Naming.NamespacePriority,
		ECLabelFallback: cfg.Naming.ECLabelFallback,
	}, a.Logger)

	opts := []build.Option{build.WithHolder(a.Holder), build.WithMetrics(a.Metrics)}
	if a.Collector != nil && cfg.Metrics.PushgatewayURL != "" {
		opts = append(opts, build.WithPushgateway(a.Collector, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job))
	}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, producer.Close)
		opts = append(opts, build.WithPublisher(producer))
	}

	return build.NewPipeline(build.ConfigFrom(cfg), a.Fetcher, a.Store, resolver, lock, a.Logger, opts...), nil
}

// Close releases connections opened by the App, newest first.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Close failed", logging.Err(err))
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}

// watchDir is the local directory a watch loop observes.
func (a *App) watchDir() (string, error) {
	if a.Config.Source.Backend != "" && a.Config.Source.Backend != "filesystem" {
		return "", errors.InvalidParam("--watch needs a filesystem source").WithDetail(a.Config.Source.Backend)
	}
	return a.Config.Source.Dir, nil
}

//Personal.AI order the ending
