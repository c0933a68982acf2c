package screening

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
)

// DescriptorCache stores computed descriptors keyed by SMILES.  It is an
// optimisation only: misses and errors fall through to the engine.
type DescriptorCache interface {
	GetDescriptors(ctx context.Context, smiles string) (molecule.Descriptors, bool, error)
	SetDescriptors(ctx context.Context, smiles string, d molecule.Descriptors) error
}

// Annotator appends the five descriptors to every record of a dataset.
type Annotator struct {
	engine  molecule.Engine
	cache   DescriptorCache
	workers int
	logger  logging.Logger
	metrics Metrics
}

// AnnotatorOption configures an Annotator.
type AnnotatorOption func(*Annotator)

// WithDescriptorCache enables the SMILES-keyed descriptor cache.
func WithDescriptorCache(c DescriptorCache) AnnotatorOption {
	return func(a *Annotator) { a.cache = c }
}

// WithWorkers sets the number of rows annotated concurrently.  Values below
// one mean sequential.
func WithWorkers(n int) AnnotatorOption {
	return func(a *Annotator) {
		if n < 1 {
			n = 1
		}
		a.workers = n
	}
}

// WithAnnotatorLogger sets the logger.
func WithAnnotatorLogger(l logging.Logger) AnnotatorOption {
	return func(a *Annotator) { a.logger = logging.OrNop(l) }
}

// WithAnnotatorMetrics sets the metrics sink.
func WithAnnotatorMetrics(m Metrics) AnnotatorOption {
	return func(a *Annotator) { a.metrics = orNopMetrics(m) }
}

// NewAnnotator returns an Annotator over engine.
func NewAnnotator(engine molecule.Engine, opts ...AnnotatorOption) *Annotator {
	a := &Annotator{
		engine:  engine,
		workers: 1,
		logger:  logging.NewNopLogger(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Annotate returns an annotated copy of ds.  A record whose SMILES fails to
// parse is kept with NaN descriptors and ParseError set; it never aborts the
// pass.  Only context cancellation does.
func (a *Annotator) Annotate(ctx context.Context, ds *compound.Dataset) (*compound.Dataset, error) {
	start := time.Now()
	out := ds.Clone()
	var failures int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range out.Records {
		rec := &out.Records[i]
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !a.annotateOne(gctx, rec) {
				atomic.AddInt64(&failures, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAnnotationFailed, "annotation interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAnnotationFailed, "annotation interrupted")
	}
	out.Annotated = true

	elapsed := time.Since(start)
	a.metrics.ObserveAnnotation(out.Len(), int(failures), elapsed)
	a.logger.Debug("dataset annotated",
		logging.Int("rows", out.Len()),
		logging.Int64("parse_failures", failures),
		logging.Int("workers", a.workers),
		logging.Duration("elapsed", elapsed))
	return out, nil
}

// annotateOne fills rec and reports whether its SMILES parsed.
func (a *Annotator) annotateOne(ctx context.Context, rec *compound.Record) bool {
	if a.cache != nil {
		d, ok, err := a.cache.GetDescriptors(ctx, rec.SMILES)
		if err != nil {
			a.logger.Warn("descriptor cache read failed", logging.String("smiles", rec.SMILES), logging.Err(err))
		}
		a.metrics.ObserveDescriptorCache(ok)
		if ok {
			rec.Descriptors = d
			rec.ParseError = nil
			return true
		}
	}

	d, err := molecule.Describe(a.engine, rec.SMILES)
	rec.Descriptors = d
	rec.ParseError = err
	if err != nil {
		a.logger.Debug("smiles did not parse",
			logging.Int("row", rec.Index),
			logging.String("name", rec.Name),
			logging.Err(err))
		return false
	}

	if a.cache != nil {
		if err := a.cache.SetDescriptors(ctx, rec.SMILES, d); err != nil {
			a.logger.Warn("descriptor cache write failed", logging.String("smiles", rec.SMILES), logging.Err(err))
		}
	}
	return true
}
