package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/akozyrev/techdocs-qa/internal/core/respcache"
	"github.com/akozyrev/techdocs-qa/internal/core/telemetry"
)

// TelemetryCollector exports the rolling query window and cache
// counters as gauges, computed at scrape time from a snapshot.
type TelemetryCollector struct {
	aggregator *telemetry.Aggregator
	cache      *respcache.Cache

	windowCount    *prometheus.Desc
	successRate    *prometheus.Desc
	cacheHitRate   *prometheus.Desc
	meanConfidence *prometheus.Desc
	latency        *prometheus.Desc
	stageMean      *prometheus.Desc
	cacheCounter   *prometheus.Desc
	cacheSize      *prometheus.Desc
}

func NewTelemetryCollector(service string, aggregator *telemetry.Aggregator, cache *respcache.Cache) *TelemetryCollector {
	constLabels := prometheus.Labels{"service": service}
	return &TelemetryCollector{
		aggregator: aggregator,
		cache:      cache,
		windowCount: prometheus.NewDesc(
			"tdqa_telemetry_window_samples",
			"Number of query samples in the rolling window.",
			nil, constLabels,
		),
		successRate: prometheus.NewDesc(
			"tdqa_telemetry_success_rate",
			"Fraction of successful queries over the window.",
			nil, constLabels,
		),
		cacheHitRate: prometheus.NewDesc(
			"tdqa_telemetry_cache_hit_rate",
			"Fraction of cache-served queries over the window.",
			nil, constLabels,
		),
		meanConfidence: prometheus.NewDesc(
			"tdqa_telemetry_mean_confidence",
			"Mean confidence score over the window.",
			nil, constLabels,
		),
		latency: prometheus.NewDesc(
			"tdqa_telemetry_latency_seconds",
			"Total query latency over the window by statistic.",
			[]string{"stat"}, constLabels,
		),
		stageMean: prometheus.NewDesc(
			"tdqa_telemetry_stage_mean_seconds",
			"Mean per-stage latency over the window.",
			[]string{"stage"}, constLabels,
		),
		cacheCounter: prometheus.NewDesc(
			"tdqa_cache_events_total",
			"Lifetime cache events by kind.",
			[]string{"kind"}, constLabels,
		),
		cacheSize: prometheus.NewDesc(
			"tdqa_cache_entries",
			"Current number of cached answers.",
			nil, constLabels,
		),
	}
}

func (c *TelemetryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.windowCount
	ch <- c.successRate
	ch <- c.cacheHitRate
	ch <- c.meanConfidence
	ch <- c.latency
	ch <- c.stageMean
	ch <- c.cacheCounter
	ch <- c.cacheSize
}

func (c *TelemetryCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.aggregator.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.windowCount, prometheus.GaugeValue, float64(stats.Count))
	ch <- prometheus.MustNewConstMetric(c.successRate, prometheus.GaugeValue, stats.SuccessRate)
	ch <- prometheus.MustNewConstMetric(c.cacheHitRate, prometheus.GaugeValue, stats.CacheHitRate)
	ch <- prometheus.MustNewConstMetric(c.meanConfidence, prometheus.GaugeValue, stats.MeanConfidence)

	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, stats.Latency.Mean.Seconds(), "mean")
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, stats.Latency.Median.Seconds(), "median")
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, stats.Latency.P95.Seconds(), "p95")
	ch <- prometheus.MustNewConstMetric(c.latency, prometheus.GaugeValue, stats.Latency.P99.Seconds(), "p99")

	ch <- prometheus.MustNewConstMetric(c.stageMean, prometheus.GaugeValue, stats.StageMeans.Retrieval.Seconds(), "retrieval")
	ch <- prometheus.MustNewConstMetric(c.stageMean, prometheus.GaugeValue, stats.StageMeans.Fusion.Seconds(), "fusion")
	ch <- prometheus.MustNewConstMetric(c.stageMean, prometheus.GaugeValue, stats.StageMeans.Generation.Seconds(), "generation")
	ch <- prometheus.MustNewConstMetric(c.stageMean, prometheus.GaugeValue, stats.StageMeans.Scoring.Seconds(), "scoring")

	cacheStats := c.cache.Stats()
	ch <- prometheus.MustNewConstMetric(c.cacheCounter, prometheus.CounterValue, float64(cacheStats.Hits), "hit")
	ch <- prometheus.MustNewConstMetric(c.cacheCounter, prometheus.CounterValue, float64(cacheStats.Misses), "miss")
	ch <- prometheus.MustNewConstMetric(c.cacheCounter, prometheus.CounterValue, float64(cacheStats.Evictions), "eviction")
	ch <- prometheus.MustNewConstMetric(c.cacheCounter, prometheus.CounterValue, float64(cacheStats.Expirations), "expiration")
	ch <- prometheus.MustNewConstMetric(c.cacheSize, prometheus.GaugeValue, float64(cacheStats.Size))
}
