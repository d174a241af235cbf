package providers

import (
	"encoding/json"
	"time"

	"weatherbot.app/metrics"
	"weatherbot.app/providers/cache"
)

// InstrumentedCache wraps a cache backend with Prometheus hit/miss and
// latency instrumentation.
type InstrumentedCache struct {
	backend Cache
	metrics *metrics.CacheMetrics
}

func NewInstrumentedCache(backend Cache, cacheType string) *InstrumentedCache {
	return &InstrumentedCache{
		backend: backend,
		metrics: metrics.NewCacheMetrics(cacheType),
	}
}

func (c *InstrumentedCache) Lookup(kind cache.Kind, key cache.Key) (json.RawMessage, bool) {
	start := time.Now()
	payload, ok := c.backend.Lookup(kind, key)
	c.metrics.RecordLatency("lookup", time.Since(start).Seconds())

	if ok {
		c.metrics.RecordHit()
	} else {
		c.metrics.RecordMiss()
	}

	return payload, ok
}

func (c *InstrumentedCache) Upsert(kind cache.Kind, key cache.Key, payload json.RawMessage) error {
	start := time.Now()
	err := c.backend.Upsert(kind, key, payload)
	c.metrics.RecordLatency("upsert", time.Since(start).Seconds())
	return err
}

// Stats exposes the counter snapshot for diagnostics endpoints
func (c *InstrumentedCache) Stats() metrics.Stats {
	return c.metrics.GetStats()
}
