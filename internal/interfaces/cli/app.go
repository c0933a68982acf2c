package cli

import (
	"context"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/config"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/internal/infrastructure/database/redis"
	"github.com/turtacn/druglike/internal/infrastructure/datasource"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/druglike/internal/infrastructure/storage/minio"
	"github.com/turtacn/druglike/internal/interfaces/http/handlers"
	"github.com/turtacn/druglike/pkg/errors"
)

// App is the screening pipeline wired from configuration.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Service   *screening.Service
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	redis       *redis.Client
	descriptors *redis.DescriptorCache
	minio       *minio.MinIOClient
	datasets    minio.DatasetRepository
}

// NewApp builds the pipeline: metrics, the dataset source, the optional
// descriptor cache and the screening service.  Redis failures only disable
// the cache; a MinIO failure is fatal when MinIO is the dataset source.
func NewApp(cfg *config.Config, logger logging.Logger, deps Dependencies) (*App, error) {
	logger = logging.OrNop(logger)
	app := &App{Config: cfg, Logger: logger, datasets: deps.Datasets}

	var metrics screening.Metrics
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(cfg.Metrics, logger.Named("metrics"))
		if err != nil {
			return nil, err
		}
		app.Collector = collector
		app.Metrics = prometheus.NewAppMetrics(collector)
		metrics = app.Metrics
	}

	source := deps.Source
	if source == nil {
		if cfg.Dataset.Source == datasource.KindMinIO && app.datasets == nil {
			if err := app.openMinIO(); err != nil {
				return nil, err
			}
		}
		src, err := datasource.New(cfg.Dataset, datasource.Options{
			Objects: app.datasets,
			Logger:  logger.Named("dataset"),
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		source = src
	}

	annotatorOpts := []screening.AnnotatorOption{
		screening.WithWorkers(cfg.Screening.Workers),
		screening.WithAnnotatorLogger(logger.Named("annotator")),
		screening.WithAnnotatorMetrics(metrics),
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(&cfg.Redis, logger.Named("redis"))
		if err != nil {
			logger.Warn("descriptor cache disabled", logging.Err(err))
		} else {
			app.redis = client
			app.descriptors = redis.NewDescriptorCache(client, logger.Named("redis"), cfg.Redis.TTL)
			annotatorOpts = append(annotatorOpts, screening.WithDescriptorCache(app.descriptors))
		}
	}

	rules, err := cfg.Rules()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Service = screening.NewService(
		screening.NewDatasetCache(source, logger.Named("loader"), metrics),
		screening.NewAnnotator(molecule.NewEngine(), annotatorOpts...),
		logger.Named("screening"),
		metrics,
		rules...,
	)
	return app, nil
}

func (a *App) openMinIO() error {
	client, err := minio.NewMinIOClient(&a.Config.MinIO, a.Logger.Named("minio"))
	if err != nil {
		return err
	}
	a.minio = client
	a.datasets = minio.NewDatasetRepository(client, a.Logger.Named("minio"))
	return nil
}

// Datasets returns the MinIO dataset repository, connecting on first use.
func (a *App) Datasets() (minio.DatasetRepository, error) {
	if a.datasets == nil {
		if err := a.openMinIO(); err != nil {
			return nil, err
		}
	}
	return a.datasets, nil
}

// HealthCheckers lists the health checks of every wired component.  The dataset
// and a MinIO dataset source are required; the descriptor cache is
// optional.
func (a *App) HealthCheckers() []handlers.HealthChecker {
	checkers := []handlers.HealthChecker{handlers.DatasetChecker(a.Service)}
	if a.descriptors != nil {
		checkers = append(checkers, handlers.OptionalChecker("redis", a.descriptors.Ping))
	}
	if a.minio != nil {
		checkers = append(checkers, handlers.CheckerFunc("minio", func(ctx context.Context) error {
			st, err := a.minio.HealthCheck(ctx)
			if err != nil {
				return err
			}
			if !st.Healthy {
				return errors.New(errors.ErrCodeServiceUnavailable, st.Error)
			}
			return nil
		}))
	}
	return checkers
}

// Close releases the Redis and MinIO clients.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn("redis close failed", logging.Err(err))
		}
	}
	if a.minio != nil {
		if err := a.minio.Close(); err != nil {
			a.Logger.Warn("minio close failed", logging.Err(err))
		}
	}
}

// newApp builds an App from the command's CLIContext.
func newApp(cc *CLIContext) (*App, error) {
	return NewApp(cc.Config, cc.Logger, cc.deps)
}
