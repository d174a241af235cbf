// Package metrics exposes Prometheus instrumentation for the response cache.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type cacheCollector struct {
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	hitRatio *prometheus.GaugeVec
}

var (
	collectorOnce   sync.Once
	globalCollector *cacheCollector
)

func getCollector() *cacheCollector {
	collectorOnce.Do(func() {
		globalCollector = &cacheCollector{
			hits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherbot_cache_hits_total",
					Help: "The total number of cache hits",
				},
				[]string{"cache_type"},
			),
			misses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherbot_cache_misses_total",
					Help: "The total number of cache misses",
				},
				[]string{"cache_type"},
			),
			requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weatherbot_cache_requests_total",
					Help: "The total number of cache requests",
				},
				[]string{"cache_type"},
			),
			latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "weatherbot_cache_duration_seconds",
					Help:    "Cache operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"cache_type", "operation"},
			),
			hitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "weatherbot_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total requests)",
				},
				[]string{"cache_type"},
			),
		}
	})
	return globalCollector
}

// CacheMetrics tracks hit/miss counts for one cache backend and mirrors them
// into the shared Prometheus collector.
type CacheMetrics struct {
	cacheType string
	hits      int64
	misses    int64
	total     int64
	collector *cacheCollector
	mu        sync.RWMutex
}

func NewCacheMetrics(cacheType string) *CacheMetrics {
	return &CacheMetrics{
		cacheType: cacheType,
		collector: getCollector(),
	}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.hits.WithLabelValues(m.cacheType).Inc()
	m.collector.requests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.misses.WithLabelValues(m.cacheType).Inc()
	m.collector.requests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordLatency(operation string, seconds float64) {
	m.collector.latency.WithLabelValues(m.cacheType, operation).Observe(seconds)
}

// updateHitRatio must be called while holding the mutex
func (m *CacheMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.hitRatio.WithLabelValues(m.cacheType).Set(ratio)
	}
}

// Stats is a point-in-time snapshot of one backend's counters
type Stats struct {
	CacheType string  `json:"cache_type"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Total     int64   `json:"total"`
	HitRatio  float64 `json:"hit_ratio"`
}

func (m *CacheMetrics) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return Stats{
		CacheType: m.cacheType,
		Hits:      m.hits,
		Misses:    m.misses,
		Total:     m.total,
		HitRatio:  hitRatio,
	}
}
