package screening

import "time"

// Metrics receives pipeline observations.  The prometheus package provides
// the production implementation.
type Metrics interface {
	ObserveDatasetFetch(source string, elapsed time.Duration, err error)
	ObserveAnnotation(rows, failures int, elapsed time.Duration)
	ObserveDescriptorCache(hit bool)
	ObserveFilter(rule string, in, out int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveDatasetFetch(string, time.Duration, error) {}
func (nopMetrics) ObserveAnnotation(int, int, time.Duration)        {}
func (nopMetrics) ObserveDescriptorCache(bool)                      {}
func (nopMetrics) ObserveFilter(string, int, int)                   {}

func orNopMetrics(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
