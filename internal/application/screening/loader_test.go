package screening

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/testutil"
	"github.com/turtacn/druglike/pkg/errors"
)

func TestDatasetCache_LoadsOnce(t *testing.T) {
	src := &fakeSource{ds: drugs()}
	cache := NewDatasetCache(src, logging.NewNopLogger(), nil)
	assert.False(t, cache.Loaded())

	first, err := cache.Load(context.Background())
	require.NoError(t, err)
	second, err := cache.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.count())
	assert.True(t, cache.Loaded())
	assert.Equal(t, names(first), names(second))
}

func TestDatasetCache_ReturnsIndependentCopies(t *testing.T) {
	cache := NewDatasetCache(&fakeSource{ds: drugs()}, nil, nil)

	first, err := cache.Load(context.Background())
	require.NoError(t, err)
	first.Records[0].Name = "mutated"
	first.Records[0].Fields[compound.ColumnName] = "mutated"
	first.Records = first.Records[:1]

	second, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ethanol", second.Records[0].Name)
	assert.Equal(t, "ethanol", second.Records[0].Fields[compound.ColumnName])
	assert.Equal(t, drugs().Len(), second.Len())
}

func TestDatasetCache_ConcurrentFirstLoadsShareFetch(t *testing.T) {
	src := &fakeSource{ds: drugs(), delay: 50 * time.Millisecond}
	cache := NewDatasetCache(src, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := cache.Load(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, drugs().Len(), ds.Len())
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, src.count())
}

func TestDatasetCache_CancelledCallerDoesNotAbortSharedFetch(t *testing.T) {
	src := &fakeSource{ds: drugs(), delay: 100 * time.Millisecond}
	cache := NewDatasetCache(src, nil, nil)

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.Load(first)
		firstErr <- err
	}()
	// Give the first caller time to start the fetch before the second joins.
	time.Sleep(20 * time.Millisecond)

	secondDone := make(chan error, 1)
	go func() {
		ds, err := cache.Load(context.Background())
		if err == nil {
			assert.Equal(t, drugs().Len(), ds.Len())
		}
		secondDone <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetFetchFailed))

	require.NoError(t, <-secondDone)
	assert.Equal(t, 1, src.count())
	assert.True(t, cache.Loaded())
}

func TestDatasetCache_AlreadyCancelledContext(t *testing.T) {
	src := &fakeSource{ds: drugs()}
	cache := NewDatasetCache(src, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, src.count())
}

func TestDatasetCache_FailureIsNotCached(t *testing.T) {
	src := &fakeSource{ds: drugs(), errs: []error{stderrors.New("connection reset")}}
	cache := NewDatasetCache(src, nil, nil)

	_, err := cache.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetFetchFailed))
	assert.False(t, cache.Loaded())

	ds, err := cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, drugs().Len(), ds.Len())
	assert.Equal(t, 2, src.count())
}

func TestDatasetCache_LogsFetchOutcome(t *testing.T) {
	logger := testutil.NewRecordingLogger()
	src := &fakeSource{ds: drugs(), errs: []error{stderrors.New("connection reset")}}
	cache := NewDatasetCache(src, logger, nil)

	_, err := cache.Load(context.Background())
	require.Error(t, err)
	failed, ok := logger.Find("error", "dataset fetch failed")
	require.True(t, ok)
	errField, _ := failed.Field("error")
	assert.Equal(t, "connection reset", errField)

	_, err = cache.Load(context.Background())
	require.NoError(t, err)
	loaded, ok := logger.Find("info", "dataset loaded")
	require.True(t, ok)
	rows, _ := loaded.Field("rows")
	assert.Equal(t, drugs().Len(), rows)
	source, _ := loaded.Field("source")
	assert.Equal(t, "fake", source)
}

func TestDatasetCache_KeepsSourceErrorCode(t *testing.T) {
	src := &fakeSource{err: errors.New(errors.ErrCodeDatasetColumnMissing, "missing smiles column")}
	_, err := NewDatasetCache(src, nil, nil).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatasetColumnMissing, errors.GetCode(err))
}

func TestDatasetCache_EmptyDatasetIsError(t *testing.T) {
	src := &fakeSource{ds: dataset()}
	cache := NewDatasetCache(src, nil, nil)
	_, err := cache.Load(context.Background())
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetEmpty))
	assert.False(t, cache.Loaded())
}

func TestDatasetCache_RecordsMetrics(t *testing.T) {
	m := &recordingMetrics{}
	_, err := NewDatasetCache(&fakeSource{ds: drugs()}, nil, m).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fake"}, m.fetches)
}

type recordingMetrics struct {
	mu        sync.Mutex
	fetches   []string
	annotated int
	failures  int
	hits      int
	misses    int
	filters   map[string]int
}

func (m *recordingMetrics) ObserveDatasetFetch(source string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, source)
}

func (m *recordingMetrics) ObserveAnnotation(rows, failures int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.annotated += rows
	m.failures += failures
}

func (m *recordingMetrics) ObserveDescriptorCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *recordingMetrics) ObserveFilter(rule string, _, out int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filters == nil {
		m.filters = map[string]int{}
	}
	m.filters[rule] = out
}
