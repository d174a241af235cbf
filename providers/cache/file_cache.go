package cache

import (
	"encoding/json"
	"sync"
	"time"

	"weatherbot.app/models"
	"weatherbot.app/storage"
)

// FileCache keeps cached responses in a flat JSON document via a RecordStore.
// All operations are serialized behind one mutex: each call is a full
// load-modify-write cycle over the shared document, and unsynchronized
// concurrent upserts would silently lose updates (last replace wins).
type FileCache struct {
	store *storage.RecordStore
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
}

// NewFileCache creates a file-backed cache with the given document path and
// entry time-to-live.
func NewFileCache(path string, ttl time.Duration) *FileCache {
	return &FileCache{
		store: storage.NewRecordStore(path),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Lookup scans the document for the first entry structurally matching
// (kind, key) and returns its payload if the entry is younger than the TTL.
// A stale match is a miss; the stale record stays in place until the next
// upsert overwrites it.
func (c *FileCache) Lookup(kind Kind, key Key) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.store.Load()
	for i := range entries {
		e := &entries[i]
		if e.Kind != string(kind) || !key.Matches(e) {
			continue
		}
		if c.now().Sub(e.FetchedAt) < c.ttl {
			return e.Payload, true
		}
		// First structural match decides the outcome: one live entry per
		// (kind, key) is the document invariant.
		return nil, false
	}

	return nil, false
}

// Upsert replaces the entry for (kind, key) in place, preserving its
// position, or appends a new one, then writes the whole document back.
func (c *FileCache) Upsert(kind Kind, key Key, payload json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := newEntry(kind, key, payload, c.now())

	entries := c.store.Load()
	for i := range entries {
		if entries[i].Kind == string(kind) && key.Matches(&entries[i]) {
			entries[i] = entry
			return c.store.Replace(entries)
		}
	}

	return c.store.Replace(append(entries, entry))
}

func newEntry(kind Kind, key Key, payload json.RawMessage, fetchedAt time.Time) models.CacheEntry {
	entry := models.CacheEntry{
		Kind:      string(kind),
		FetchedAt: fetchedAt,
		Payload:   payload,
	}
	if key.IsCoords() {
		lat, lon := key.Coords()
		entry.Lat = &lat
		entry.Lon = &lon
	} else {
		entry.City = key.City()
	}
	return entry
}
