/*
Package metrics provides Prometheus metrics collection and exposition for
the treasury store and loader cache.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Treasury: stores, fetches, reimports       │          │
	│  │  Importers: duration, loaded count          │          │
	│  │  Loader: cache loads, build duration/poison │          │
	│  │  Processor: queue depth per context type    │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

treasury_assets_stored_total{importer}: Counter, one per successful Store.

treasury_assets_total: Gauge, current record count; kept accurate across
restarts by Collector polling Treasury.Stats.

treasury_fetches_total{outcome}: Counter, outcome one of ok, not_found,
not_modified, error.

treasury_reimports_total{importer, outcome}: Counter, outcome one of ok,
failed, importer_missing.

treasury_importers_loaded: Gauge, count of importers registered via
LoadImporters.

treasury_import_duration_seconds{importer}: Histogram.

treasury_fetch_duration_seconds: Histogram, covers the full Fetch call
including any re-import.

loader_cache_handles_total{asset_type}: Gauge, live coalesced handles.

loader_cache_loads_total{outcome}: Counter, outcome spawned or coalesced.

loader_build_duration_seconds{asset_type}: Histogram.

loader_builds_poisoned_total{asset_type}: Counter, incremented when a build
panics and poisons its handle.

loader_processor_queue_depth{context_type}: Gauge, jobs queued per context
type between Process calls.

# Usage

	timer := metrics.NewTimer()
	err := imp.Import(sourcePath, nativePath, reg)
	timer.ObserveDurationVec(metrics.ImportDuration, imp.Name())

	http.Handle("/metrics", metrics.Handler())

# Collector

Collector polls a stats callback on an interval and reconciles gauges that
are otherwise only adjusted incrementally (treasury_assets_total), so a
treasury opened against a pre-existing root reports correct counts instead
of starting from zero:

	c := metrics.NewCollector(func() (metrics.Stats, error) {
		s, err := t.Stats()
		return metrics.Stats{Records: s.Records, Sources: s.Sources}, err
	}, 15*time.Second)
	c.Start()
	defer c.Stop()
*/
package metrics
