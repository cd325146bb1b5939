package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric family the service reports.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec
	HTTPRateLimited     CounterVec

	// gRPC
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Catalog
	CatalogEntries       GaugeVec
	CatalogSkippedFiles  GaugeVec
	CatalogBuildDuration HistogramVec

	// Datasets
	DatasetLoadsTotal CounterVec
	DatasetRows       GaugeVec

	// Queries
	QueryDuration    HistogramVec
	QueryResultCount HistogramVec

	// Similarity
	SimilarityLookupsTotal   CounterVec
	SimilarityTruncatedTotal CounterVec

	// Infrastructure
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// System Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultQueryDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultBuildDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60}
	DefaultSizeBuckets          = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultResultCountBuckets   = []float64{0, 1, 5, 10, 20, 50, 100, 200, 500, 1000}
)

// NewAppMetrics registers every family on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")
	m.HTTPRateLimited = collector.RegisterCounter("http_rate_limited_total", "Requests rejected by the rate limiter", "path")

	// gRPC
	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "service", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "service", "method")

	// Catalog
	m.CatalogEntries = collector.RegisterGauge("catalog_entries", "Identifier index sizes", "kind")
	m.CatalogSkippedFiles = collector.RegisterGauge("catalog_skipped_files", "Structure files skipped for a malformed identifier", "source")
	m.CatalogBuildDuration = collector.RegisterHistogram("catalog_build_duration_seconds", "Identifier index build time", DefaultBuildDurationBuckets, "source")

	// Datasets
	m.DatasetLoadsTotal = collector.RegisterCounter("dataset_loads_total", "Dataset load attempts", "dataset", "status")
	m.DatasetRows = collector.RegisterGauge("dataset_rows", "Rows in each loaded dataset", "dataset")

	// Queries
	m.QueryDuration = collector.RegisterHistogram("query_duration_seconds", "Catalog query duration", DefaultQueryDurationBuckets, "operation")
	m.QueryResultCount = collector.RegisterHistogram("query_result_count", "Results returned per query", DefaultResultCountBuckets, "operation")

	// Similarity
	m.SimilarityLookupsTotal = collector.RegisterCounter("similarity_lookups_total", "Similarity neighbor lookups", "mode", "outcome")
	m.SimilarityTruncatedTotal = collector.RegisterCounter("similarity_truncated_batches_total", "Batches cut short by the neighbor budget")

	// Infrastructure
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	// System Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// Helpers.  Every helper accepts a nil *AppMetrics and does nothing.

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int64) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if respSize >= 0 {
		metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
	}
}

func RecordRateLimited(metrics *AppMetrics, path string) {
	if metrics == nil {
		return
	}
	metrics.HTTPRateLimited.WithLabelValues(path).Inc()
}

func RecordGRPCRequest(metrics *AppMetrics, service, method, code string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.GRPCRequestsTotal.WithLabelValues(service, method, code).Inc()
	metrics.GRPCRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordCatalogBuild publishes the sizes of a freshly built identifier index.
func RecordCatalogBuild(metrics *AppMetrics, source string, bases, chains, sequences, skipped int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.CatalogEntries.WithLabelValues("bases").Set(float64(bases))
	metrics.CatalogEntries.WithLabelValues("chains").Set(float64(chains))
	metrics.CatalogEntries.WithLabelValues("sequences").Set(float64(sequences))
	metrics.CatalogSkippedFiles.WithLabelValues(source).Set(float64(skipped))
	metrics.CatalogBuildDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordDatasetLoad(metrics *AppMetrics, dataset string, rows int, err error) {
	if metrics == nil {
		return
	}
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(dataset, "failure").Inc()
		metrics.HealthCheckStatus.WithLabelValues(dataset).Set(0)
		return
	}
	metrics.DatasetLoadsTotal.WithLabelValues(dataset, "success").Inc()
	metrics.DatasetRows.WithLabelValues(dataset).Set(float64(rows))
	metrics.HealthCheckStatus.WithLabelValues(dataset).Set(1)
}

func RecordQuery(metrics *AppMetrics, operation string, duration time.Duration, results int) {
	if metrics == nil {
		return
	}
	metrics.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	metrics.QueryResultCount.WithLabelValues(operation).Observe(float64(results))
}

// RecordSimilarityLookup counts one lookup.  outcome is "ok" or an error code.
func RecordSimilarityLookup(metrics *AppMetrics, mode, outcome string) {
	if metrics == nil {
		return
	}
	metrics.SimilarityLookupsTotal.WithLabelValues(mode, outcome).Inc()
}

func RecordSimilarityTruncated(metrics *AppMetrics) {
	if metrics == nil {
		return
	}
	metrics.SimilarityTruncatedTotal.WithLabelValues().Inc()
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if metrics == nil {
		return
	}
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, code string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

func SetHealth(metrics *AppMetrics, component string, up bool) {
	if metrics == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
