package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   json.RawMessage
	expiresAt time.Time
}

// MemoryCache is an in-process alternative to the file cache. It shares the
// (kind, key) addressing but keeps entries in a map and drops expired ones
// with a background janitor.
type MemoryCache struct {
	data   map[string]memoryEntry
	ttl    time.Duration
	mutex  sync.RWMutex
	ticker *time.Ticker
	stopCh chan struct{}
}

// NewMemoryCache creates an in-memory cache with the given entry time-to-live
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		data:   make(map[string]memoryEntry),
		ttl:    ttl,
		ticker: time.NewTicker(5 * time.Minute),
		stopCh: make(chan struct{}),
	}

	go c.cleanup()
	return c
}

func (c *MemoryCache) Lookup(kind Kind, key Key) (json.RawMessage, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[flatKey(kind, key)]
	if !exists {
		return nil, false
	}

	if !time.Now().Before(entry.expiresAt) {
		return nil, false
	}

	return entry.payload, true
}

func (c *MemoryCache) Upsert(kind Kind, key Key, payload json.RawMessage) error {
	if payload == nil {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[flatKey(kind, key)] = memoryEntry{
		payload:   payload,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Stop terminates the janitor goroutine
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}

func (c *MemoryCache) cleanup() {
	for {
		select {
		case <-c.ticker.C:
			c.removeExpiredEntries()
		case <-c.stopCh:
			c.ticker.Stop()
			return
		}
	}
}

func (c *MemoryCache) removeExpiredEntries() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.data {
		if now.After(entry.expiresAt) {
			delete(c.data, key)
		}
	}
}
