// Package metrics provides Prometheus metrics for the scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Analysis Metrics - similarity and rating-integrity batch jobs
	analysisRuns       *prometheus.CounterVec
	analysisDuration   *prometheus.HistogramVec
	pairsFlagged       prometheus.Counter
	reviewFlags        *prometheus.CounterVec
	zeroMADSkips       prometheus.Counter
	degradedCorpus     prometheus.Counter

	// Scoring Metrics - live round aggregation
	scoreSubmissions      prometheus.Counter
	scoreRejectedFinalize prometheus.Counter
	recomputeLatency      prometheus.Histogram
	roundsFinalized       prometheus.Counter

	// Broadcast Metrics - fan-out queue and delivery
	broadcastQueueSize     prometheus.Gauge
	broadcastQueueCapacity prometheus.Gauge
	broadcastDrops         prometheus.Counter
	broadcastDelivered     prometheus.Counter
	broadcastSkipped       prometheus.Counter
	subscriberCount        prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nexus",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}
	gaugeOpts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}
	histOpts := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
			Buckets:   m.histogramBuckets,
		}
	}

	m.analysisRuns = prometheus.NewCounterVec(
		factory("analysis_runs_total", "Completed analysis runs by kind"),
		[]string{"kind"},
	)
	m.analysisDuration = prometheus.NewHistogramVec(
		histOpts("analysis_duration_ms", "Analysis run duration in milliseconds"),
		[]string{"kind"},
	)
	m.pairsFlagged = prometheus.NewCounter(
		factory("similarity_pairs_flagged_total", "Similarity pairs flagged at or above threshold"),
	)
	m.reviewFlags = prometheus.NewCounterVec(
		factory("review_flags_total", "Review flags emitted by reason"),
		[]string{"reason"},
	)
	m.zeroMADSkips = prometheus.NewCounter(
		factory("zero_mad_skips_total", "Events skipped by outlier detection because MAD was zero"),
	)
	m.degradedCorpus = prometheus.NewCounter(
		factory("degraded_corpus_total", "Submissions analyzed with partial corpus text"),
	)

	m.scoreSubmissions = prometheus.NewCounter(
		factory("score_submissions_total", "Accepted evaluation score writes"),
	)
	m.scoreRejectedFinalize = prometheus.NewCounter(
		factory("score_rejected_finalized_total", "Score writes rejected because the round was finalized"),
	)
	m.recomputeLatency = prometheus.NewHistogram(
		histOpts("recompute_latency_ms", "Leaderboard recompute latency in milliseconds"),
	)
	m.roundsFinalized = prometheus.NewCounter(
		factory("rounds_finalized_total", "Rounds transitioned to FINALIZED"),
	)

	m.broadcastQueueSize = prometheus.NewGauge(
		gaugeOpts("broadcast_queue_size", "Current size of the broadcast envelope queue"),
	)
	m.broadcastQueueCapacity = prometheus.NewGauge(
		gaugeOpts("broadcast_queue_capacity", "Capacity of the broadcast envelope queue"),
	)
	m.broadcastDrops = prometheus.NewCounter(
		factory("broadcast_drops_total", "Envelopes dropped due to queue backpressure"),
	)
	m.broadcastDelivered = prometheus.NewCounter(
		factory("broadcast_delivered_total", "Envelopes delivered to subscribers"),
	)
	m.broadcastSkipped = prometheus.NewCounter(
		factory("broadcast_skipped_total", "Per-subscriber deliveries skipped because the client was slow"),
	)
	m.subscriberCount = prometheus.NewGauge(
		gaugeOpts("subscribers", "Currently connected broadcast subscribers"),
	)

	m.httpRequests = prometheus.NewCounterVec(
		factory("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		histOpts("http_request_duration_ms", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status"},
	)

	m.systemMemoryUsage = prometheus.NewGauge(
		gaugeOpts("system_memory_bytes", "Current allocated memory in bytes"),
	)
	m.systemGoroutineCount = prometheus.NewGauge(
		gaugeOpts("system_goroutines", "Current number of goroutines"),
	)

	m.registry.MustRegister(
		m.analysisRuns,
		m.analysisDuration,
		m.pairsFlagged,
		m.reviewFlags,
		m.zeroMADSkips,
		m.degradedCorpus,
		m.scoreSubmissions,
		m.scoreRejectedFinalize,
		m.recomputeLatency,
		m.roundsFinalized,
		m.broadcastQueueSize,
		m.broadcastQueueCapacity,
		m.broadcastDrops,
		m.broadcastDelivered,
		m.broadcastSkipped,
		m.subscriberCount,
		m.httpRequests,
		m.httpRequestDuration,
		m.systemMemoryUsage,
		m.systemGoroutineCount,
	)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Analysis metrics.

func RecordAnalysisRun(kind string)                  { globalManager.analysisRuns.WithLabelValues(kind).Inc() }
func RecordAnalysisDuration(kind string, ms float64) { globalManager.analysisDuration.WithLabelValues(kind).Observe(ms) }
func RecordPairsFlagged(n int)                       { globalManager.pairsFlagged.Add(float64(n)) }
func RecordReviewFlag(reason string)                 { globalManager.reviewFlags.WithLabelValues(reason).Inc() }
func RecordZeroMADSkip()                             { globalManager.zeroMADSkips.Inc() }
func RecordDegradedCorpus()                          { globalManager.degradedCorpus.Inc() }

// Scoring metrics.

func RecordScoreSubmission()            { globalManager.scoreSubmissions.Inc() }
func RecordScoreRejectedFinalized()     { globalManager.scoreRejectedFinalize.Inc() }
func RecordRecomputeLatency(ms float64) { globalManager.recomputeLatency.Observe(ms) }
func RecordRoundFinalized()             { globalManager.roundsFinalized.Inc() }

// Broadcast metrics.

func UpdateBroadcastQueueSize(n int)     { globalManager.broadcastQueueSize.Set(float64(n)) }
func UpdateBroadcastQueueCapacity(n int) { globalManager.broadcastQueueCapacity.Set(float64(n)) }
func RecordBroadcastDrop()               { globalManager.broadcastDrops.Inc() }
func RecordBroadcastDelivered(n int)     { globalManager.broadcastDelivered.Add(float64(n)) }
func RecordBroadcastSkipped()            { globalManager.broadcastSkipped.Inc() }
func UpdateSubscriberCount(n int)        { globalManager.subscriberCount.Set(float64(n)) }

// HTTP metrics.

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// System metrics.

func UpdateSystemMemoryUsage(bytes uint64)  { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int)  { globalManager.systemGoroutineCount.Set(float64(count)) }
