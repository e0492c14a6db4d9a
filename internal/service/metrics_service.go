package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/sma-results-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	resultsComputed  *prometheus.CounterVec
	rankingRuns      *prometheus.CounterVec
	rankingDuration  prometheus.Observer
	reportCards      *prometheus.CounterVec
	termCorrections  prometheus.Counter
	notifications    *prometheus.CounterVec
	identifiersIssue prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	computedCount        uint64
	rankingCount         uint64
	correctionCount      uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	resultsComputed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "results_computed_total",
		Help: "Results whose derived fields were computed, by outcome",
	}, []string{"outcome"})

	rankingRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_runs_total",
		Help: "Cohort ranking passes, by outcome",
	}, []string{"outcome"})

	rankingDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ranking_duration_seconds",
		Help:    "Duration of cohort ranking transactions",
		Buckets: prometheus.DefBuckets,
	})

	reportCards := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_card_transitions_total",
		Help: "Report card lifecycle transitions, by action",
	}, []string{"action"})

	termCorrections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "term_active_corrections_total",
		Help: "Times more than one active term was found and corrected",
	})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notification deliveries, by outcome",
	}, []string{"outcome"})

	identifiersIssue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "student_identifiers_allocated_total",
		Help: "Student identifiers allocated",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		resultsComputed, rankingRuns, rankingDuration, reportCards, termCorrections, notifications, identifiersIssue, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		resultsComputed:  resultsComputed,
		rankingRuns:      rankingRuns,
		rankingDuration:  rankingDuration,
		reportCards:      reportCards,
		termCorrections:  termCorrections,
		notifications:    notifications,
		identifiersIssue: identifiersIssue,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordCompute counts one derived-field computation.
func (m *MetricsService) RecordCompute(err error) {
	if m == nil {
		return
	}
	m.resultsComputed.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		atomic.AddUint64(&m.computedCount, 1)
	}
}

// ObserveRanking records one cohort ranking pass.
func (m *MetricsService) ObserveRanking(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.rankingRuns.WithLabelValues(outcome(err)).Inc()
	m.rankingDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.rankingCount, 1)
}

// RecordReportCard counts a lifecycle transition such as generate or publish.
func (m *MetricsService) RecordReportCard(action string) {
	if m == nil {
		return
	}
	m.reportCards.WithLabelValues(action).Inc()
}

// RecordTermCorrection counts a self-healed multiple-active-term state.
func (m *MetricsService) RecordTermCorrection() {
	if m == nil {
		return
	}
	m.termCorrections.Inc()
	atomic.AddUint64(&m.correctionCount, 1)
}

// RecordNotification counts a delivery attempt outcome.
func (m *MetricsService) RecordNotification(err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome(err)).Inc()
}

// RecordIdentifier counts an allocated student identifier.
func (m *MetricsService) RecordIdentifier() {
	if m == nil {
		return
	}
	m.identifiersIssue.Inc()
}

// Snapshot returns aggregated metrics suitable for the system endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ResultsComputed:          atomic.LoadUint64(&m.computedCount),
		RankingRuns:              atomic.LoadUint64(&m.rankingCount),
		TermCorrections:          atomic.LoadUint64(&m.correctionCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
