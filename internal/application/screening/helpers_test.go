package screening

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/internal/domain/molecule"
)

// fakeSource counts fetches and optionally blocks or fails.
type fakeSource struct {
	ds      *compound.Dataset
	err     error
	delay   time.Duration
	fetches int32

	mu   sync.Mutex
	errs []error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) (*compound.Dataset, error) {
	atomic.AddInt32(&f.fetches, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.ds.Clone(), nil
}

func (f *fakeSource) count() int { return int(atomic.LoadInt32(&f.fetches)) }

func dataset(rows ...[2]string) *compound.Dataset {
	records := make([]compound.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, compound.Record{
			Name:   r[0],
			SMILES: r[1],
			Fields: map[string]string{compound.ColumnName: r[0], compound.ColumnSMILES: r[1]},
		})
	}
	return compound.New([]string{compound.ColumnName, compound.ColumnSMILES}, records)
}

// drugs is a small annotated-by-engine set spanning both rules.
func drugs() *compound.Dataset {
	return dataset(
		[2]string{"ethanol", "CCO"},
		[2]string{"aspirin", "CC(=O)Oc1ccccc1C(=O)O"},
		[2]string{"benzene", "c1ccccc1"},
		[2]string{"paracetamol", "CC(=O)Nc1ccc(O)cc1"},
		[2]string{"ibuprofen", "CC(C)Cc1ccc(cc1)C(C)C(=O)O"},
		[2]string{"hexane", "CCCCCC"},
		[2]string{"broken", "C1CC"},
	)
}

func annotate(t *testing.T, ds *compound.Dataset) *compound.Dataset {
	t.Helper()
	out, err := NewAnnotator(molecule.NewEngine()).Annotate(context.Background(), ds)
	require.NoError(t, err)
	return out
}

// synthetic builds an annotated dataset from literal descriptor values.
func synthetic(values ...molecule.Descriptors) *compound.Dataset {
	records := make([]compound.Record, 0, len(values))
	for i, d := range values {
		name := string(rune('a' + i))
		records = append(records, compound.Record{
			Name:        name,
			SMILES:      "C",
			Fields:      map[string]string{compound.ColumnName: name, compound.ColumnSMILES: "C"},
			Descriptors: d,
		})
	}
	ds := compound.New([]string{compound.ColumnName, compound.ColumnSMILES}, records)
	ds.Annotated = true
	return ds
}

func names(ds *compound.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, r := range ds.Records {
		out = append(out, r.Name)
	}
	return out
}
