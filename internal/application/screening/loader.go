package screening

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
)

// Source fetches the raw dataset.  Implementations live in
// internal/infrastructure/datasource.
type Source interface {
	Fetch(ctx context.Context) (*compound.Dataset, error)
	// Name identifies the source in logs and metrics ("http", "file", "minio").
	Name() string
}

// DatasetCache holds the dataset for the process lifetime.  The first
// successful Load fetches it; later calls return the cached table.
// Concurrent first loads share one fetch.  A failed fetch is not cached.
// Callers always receive an independent clone.
type DatasetCache struct {
	source  Source
	logger  logging.Logger
	metrics Metrics

	group singleflight.Group
	mu    sync.RWMutex
	ds    *compound.Dataset
}

// NewDatasetCache constructs an empty cache over source.
func NewDatasetCache(source Source, logger logging.Logger, metrics Metrics) *DatasetCache {
	return &DatasetCache{
		source:  source,
		logger:  logging.OrNop(logger),
		metrics: orNopMetrics(metrics),
	}
}

// maxFetchTime bounds a shared fetch once it no longer follows any caller's
// context.  Sources apply their own, usually shorter, timeouts.
const maxFetchTime = 5 * time.Minute

// Load returns a clone of the cached dataset, fetching it first if needed.
// A caller whose ctx ends stops waiting, but the shared fetch keeps running
// for the other callers and still populates the cache.
func (c *DatasetCache) Load(ctx context.Context) (*compound.Dataset, error) {
	if ds := c.cached(); ds != nil {
		return ds.Clone(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetFetchFailed, "dataset load abandoned")
	}

	ch := c.group.DoChan("dataset", func() (interface{}, error) {
		if ds := c.cached(); ds != nil {
			return ds, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), maxFetchTime)
		defer cancel()
		return c.fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("dataset fetch shared with concurrent caller")
		}
		return res.Val.(*compound.Dataset).Clone(), nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeDatasetFetchFailed, "dataset load abandoned")
	}
}

// Loaded reports whether the dataset has been populated.
func (c *DatasetCache) Loaded() bool {
	return c.cached() != nil
}

func (c *DatasetCache) cached() *compound.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ds
}

func (c *DatasetCache) fetch(ctx context.Context) (*compound.Dataset, error) {
	start := time.Now()
	ds, err := c.source.Fetch(ctx)
	elapsed := time.Since(start)
	c.metrics.ObserveDatasetFetch(c.source.Name(), elapsed, err)
	if err != nil {
		c.logger.Error("dataset fetch failed",
			logging.String("source", c.source.Name()),
			logging.Duration("elapsed", elapsed),
			logging.Err(err))
		if errors.GetCode(err) == errors.CodeUnknown {
			err = errors.Wrap(err, errors.ErrCodeDatasetFetchFailed, "dataset fetch failed")
		}
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, errors.New(errors.ErrCodeDatasetEmpty, "dataset has no complete rows").
			WithDetail("source=" + c.source.Name())
	}

	c.mu.Lock()
	c.ds = ds
	c.mu.Unlock()

	c.logger.Info("dataset loaded",
		logging.String("source", c.source.Name()),
		logging.Int("rows", ds.Len()),
		logging.Strings("columns", ds.Columns),
		logging.Duration("elapsed", elapsed))
	return ds, nil
}
