package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func counterValue(t *testing.T, v CounterVec, lvs ...string) float64 {
	t.Helper()
	pv, ok := v.(promCounterVec)
	require.True(t, ok)
	return testutil.ToFloat64(pv.vec.WithLabelValues(lvs...))
}

func gaugeValue(t *testing.T, v GaugeVec, lvs ...string) float64 {
	t.Helper()
	pv, ok := v.(promGaugeVec)
	require.True(t, ok)
	return testutil.ToFloat64(pv.vec.WithLabelValues(lvs...))
}

func TestNewAppMetrics_AllRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	for _, v := range []CounterVec{m.HTTPRequestsTotal, m.GRPCRequestsTotal, m.DatasetFetchTotal, m.CacheHitsTotal, m.CacheMissesTotal, m.FilterRequestsTotal, m.ErrorsTotal} {
		_, ok := v.(promCounterVec)
		assert.True(t, ok)
	}
	for _, v := range []GaugeVec{m.HTTPActiveRequests, m.DatasetRows, m.AnnotationFailures, m.HealthCheckStatus} {
		_, ok := v.(promGaugeVec)
		assert.True(t, ok)
	}
}

func TestNewAppMetrics_Twice(t *testing.T) {
	c := newTestCollector(t)
	a := NewAppMetrics(c)
	b := NewAppMetrics(c)
	a.FilterRequestsTotal.WithLabelValues("ro5").Inc()
	b.FilterRequestsTotal.WithLabelValues("ro5").Inc()
	assert.Equal(t, 2.0, counterValue(t, a.FilterRequestsTotal, "ro5"))
}

func TestObserveDatasetFetch(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	m.ObserveDatasetFetch("http", 2*time.Second, nil)
	m.ObserveDatasetFetch("http", time.Second, errors.New("timeout"))

	assert.Equal(t, 1.0, counterValue(t, m.DatasetFetchTotal, "http", "success"))
	assert.Equal(t, 1.0, counterValue(t, m.DatasetFetchTotal, "http", "failure"))
	assert.Equal(t, 1.0, counterValue(t, m.ErrorsTotal, "dataset", "fetch"))
}

func TestObserveAnnotation(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.ObserveAnnotation(1500, 12, 3*time.Second)

	assert.Equal(t, 1500.0, gaugeValue(t, m.DatasetRows, "annotated"))
	assert.Equal(t, 12.0, gaugeValue(t, m.DatasetRows, "parse_failed"))
	assert.Equal(t, 12.0, gaugeValue(t, m.AnnotationFailures))
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_annotation_duration_seconds_count 1")
}

func TestObserveDescriptorCache(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	m.ObserveDescriptorCache(true)
	m.ObserveDescriptorCache(true)
	m.ObserveDescriptorCache(false)

	assert.Equal(t, 2.0, counterValue(t, m.CacheHitsTotal, "descriptors"))
	assert.Equal(t, 1.0, counterValue(t, m.CacheMissesTotal, "descriptors"))
}

func TestObserveFilter(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.ObserveFilter("ro3", 100, 7)

	assert.Equal(t, 1.0, counterValue(t, m.FilterRequestsTotal, "ro3"))
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_filter_retained_rows_bucket{rule="ro3",le="10"} 1`)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "GET", "/api/v1/screen/:rule", 200, 20*time.Millisecond, 512)
	RecordHTTPRequest(m, "GET", "/api/v1/screen/:rule", 404, time.Millisecond, -1)

	assert.Equal(t, 1.0, counterValue(t, m.HTTPRequestsTotal, "GET", "/api/v1/screen/:rule", "200"))
	assert.Equal(t, 1.0, counterValue(t, m.HTTPRequestsTotal, "GET", "/api/v1/screen/:rule", "404"))
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_http_response_size_bytes_count{method="GET",path="/api/v1/screen/:rule"} 1`)
}

func TestRecordGRPCRequest(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	RecordGRPCRequest(m, "/druglike.v1.Screening/Screen", "OK", time.Millisecond)
	assert.Equal(t, 1.0, counterValue(t, m.GRPCRequestsTotal, "/druglike.v1.Screening/Screen", "OK"))
}

func TestRecordHealth(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	RecordHealth(m, "redis", true)
	assert.Equal(t, 1.0, gaugeValue(t, m.HealthCheckStatus, "redis"))
	RecordHealth(m, "redis", false)
	assert.Equal(t, 0.0, gaugeValue(t, m.HealthCheckStatus, "redis"))
}
