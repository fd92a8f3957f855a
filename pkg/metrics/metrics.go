package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Treasury metrics
	AssetsStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_assets_stored_total",
			Help: "Total number of assets stored, by importer",
		},
		[]string{"importer"},
	)

	AssetsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "treasury_assets_total",
			Help: "Total number of records currently held in the index",
		},
	)

	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_fetches_total",
			Help: "Total number of Fetch/FetchUpdated calls by outcome",
		},
		[]string{"outcome"},
	)

	ReimportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treasury_reimports_total",
			Help: "Total number of stale-source re-imports by importer and outcome",
		},
		[]string{"importer", "outcome"},
	)

	ImportersLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "treasury_importers_loaded",
			Help: "Number of importers currently registered",
		},
	)

	// Importer operation metrics
	ImportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treasury_import_duration_seconds",
			Help:    "Time taken for an importer to produce a native artifact",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"importer"},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treasury_fetch_duration_seconds",
			Help:    "Time taken to serve a Fetch call, including any re-import",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Loader/cache metrics
	CacheHandlesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loader_cache_handles_total",
			Help: "Number of live coalesced handles in the cache, by asset type",
		},
		[]string{"asset_type"},
	)

	CacheLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_cache_loads_total",
			Help: "Total number of Load/LoadWithFormat calls by outcome (spawned or coalesced)",
		},
		[]string{"outcome"},
	)

	BuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loader_build_duration_seconds",
			Help:    "Time taken to decode and build an asset",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"asset_type"},
	)

	BuildsPoisonedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loader_builds_poisoned_total",
			Help: "Total number of builds that poisoned their handle, by asset type",
		},
		[]string{"asset_type"},
	)

	ProcessorQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loader_processor_queue_depth",
			Help: "Number of builds currently queued per context type",
		},
		[]string{"context_type"},
	)
)

func init() {
	prometheus.MustRegister(AssetsStoredTotal)
	prometheus.MustRegister(AssetsTotal)
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(ReimportsTotal)
	prometheus.MustRegister(ImportersLoaded)
	prometheus.MustRegister(ImportDuration)
	prometheus.MustRegister(FetchDuration)

	prometheus.MustRegister(CacheHandlesTotal)
	prometheus.MustRegister(CacheLoadsTotal)
	prometheus.MustRegister(BuildDuration)
	prometheus.MustRegister(BuildsPoisonedTotal)
	prometheus.MustRegister(ProcessorQueueDepth)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
