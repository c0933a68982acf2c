package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric druglike exports.  It satisfies the
// screening pipeline's Metrics interface.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// gRPC
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Dataset
	DatasetFetchTotal    CounterVec
	DatasetFetchDuration HistogramVec
	DatasetRows          GaugeVec

	// Annotation
	AnnotationDuration HistogramVec
	AnnotationFailures GaugeVec
	CacheHitsTotal     CounterVec
	CacheMissesTotal   CounterVec

	// Screening
	FilterRequestsTotal CounterVec
	FilterRetained      HistogramVec

	// System
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultFetchDurationBuckets = []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultSizeBuckets          = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultRowBuckets           = []float64{0, 1, 10, 50, 100, 250, 500, 1000, 2500, 5000}
)

const descriptorCacheName = "descriptors"

func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "method")

	m.DatasetFetchTotal = collector.RegisterCounter("dataset_fetch_total", "Dataset fetch attempts", "source", "status")
	m.DatasetFetchDuration = collector.RegisterHistogram("dataset_fetch_duration_seconds", "Dataset fetch duration", DefaultFetchDurationBuckets, "source")
	m.DatasetRows = collector.RegisterGauge("dataset_rows", "Rows in the annotated dataset", "state")

	m.AnnotationDuration = collector.RegisterHistogram("annotation_duration_seconds", "Descriptor annotation duration", DefaultFetchDurationBuckets)
	m.AnnotationFailures = collector.RegisterGauge("annotation_parse_failures", "Rows whose SMILES failed to parse in the last annotation pass")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.FilterRequestsTotal = collector.RegisterCounter("filter_requests_total", "Threshold filter evaluations", "rule")
	m.FilterRetained = collector.RegisterHistogram("filter_retained_rows", "Rows retained by a threshold filter", DefaultRowBuckets, "rule")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

func (m *AppMetrics) ObserveDatasetFetch(source string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		m.ErrorsTotal.WithLabelValues("dataset", "fetch").Inc()
	}
	m.DatasetFetchTotal.WithLabelValues(source, status).Inc()
	m.DatasetFetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (m *AppMetrics) ObserveAnnotation(rows, failures int, elapsed time.Duration) {
	m.AnnotationDuration.WithLabelValues().Observe(elapsed.Seconds())
	m.AnnotationFailures.WithLabelValues().Set(float64(failures))
	m.DatasetRows.WithLabelValues("annotated").Set(float64(rows))
	m.DatasetRows.WithLabelValues("parse_failed").Set(float64(failures))
}

func (m *AppMetrics) ObserveDescriptorCache(hit bool) {
	RecordCacheAccess(m, descriptorCacheName, hit)
}

func (m *AppMetrics) ObserveFilter(rule string, in, out int) {
	m.FilterRequestsTotal.WithLabelValues(rule).Inc()
	m.FilterRetained.WithLabelValues(rule).Observe(float64(out))
}

// Helpers

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if respSize >= 0 {
		m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
	}
}

func RecordGRPCRequest(m *AppMetrics, method, code string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordHealth(m *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}
