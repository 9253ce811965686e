package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/exam-allocation-api/internal/models"
)

// MetricsSnapshot is a lightweight view of the counters for the health endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	ExamsScheduled           uint64    `json:"examsScheduled"`
	SeatsAssigned            uint64    `json:"seatsAssigned"`
	StudentsUnseated         uint64    `json:"studentsUnseated"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation for HTTP, cache, scheduling and seating.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheHitRatio      prometheus.Gauge
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	generationDuration *prometheus.HistogramVec
	examsScheduled     *prometheus.CounterVec
	violations         *prometheus.CounterVec
	seatsAssigned      *prometheus.CounterVec
	unseated           prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	examCount            uint64
	seatCount            uint64
	unseatedCount        uint64
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

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exam_schedule_generation_seconds",
		Help:    "Duration of exam schedule generation",
		Buckets: prometheus.DefBuckets,
	}, []string{"policy"})

	examsScheduled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exams_scheduled_total",
		Help: "Total exams placed into a slot",
	}, []string{"policy"})

	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exam_schedule_violations_total",
		Help: "Soft scheduling violations by severity",
	}, []string{"kind", "severity"})

	seatsAssigned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seats_assigned_total",
		Help: "Total seats assigned",
	}, []string{"mode"})

	unseated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "students_unseated_total",
		Help: "Students left without a seat because halls ran out",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHitRatio, cacheHits, cacheMisses,
		generationDuration, examsScheduled, violations, seatsAssigned, unseated, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		cacheLatency:       cacheLatency,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		generationDuration: generationDuration,
		examsScheduled:     examsScheduled,
		violations:         violations,
		seatsAssigned:      seatsAssigned,
		unseated:           unseated,
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
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveSchedule records the outcome of one generation run.
func (m *MetricsService) ObserveSchedule(result *ScheduleResult, duration time.Duration) {
	if m == nil || result == nil {
		return
	}
	policy := string(result.Policy)
	m.generationDuration.WithLabelValues(policy).Observe(duration.Seconds())
	m.examsScheduled.WithLabelValues(policy).Add(float64(len(result.Exams)))
	atomic.AddUint64(&m.examCount, uint64(len(result.Exams)))
	for _, v := range result.Violations {
		m.violations.WithLabelValues(string(v.Kind), string(v.Severity)).Inc()
	}
}

// ObserveSeating records seats handed out and students left over for one slot.
func (m *MetricsService) ObserveSeating(mode models.OccupancyMode, seated, unseated int) {
	if m == nil {
		return
	}
	m.seatsAssigned.WithLabelValues(string(mode)).Add(float64(seated))
	atomic.AddUint64(&m.seatCount, uint64(seated))
	if unseated > 0 {
		m.unseated.Add(float64(unseated))
		atomic.AddUint64(&m.unseatedCount, uint64(unseated))
	}
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if hits+misses > 0 {
		cacheRatio = float64(hits) / float64(hits+misses)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHitRatio:            cacheRatio,
		ExamsScheduled:           atomic.LoadUint64(&m.examCount),
		SeatsAssigned:            atomic.LoadUint64(&m.seatCount),
		StudentsUnseated:         atomic.LoadUint64(&m.unseatedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
