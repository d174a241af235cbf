// Package storage persists the weather cache document on disk.
package storage

import (
	"encoding/json"
	"log/slog"
	"os"

	"weatherbot.app/errors"
	"weatherbot.app/models"
)

// RecordStore holds the full collection of cache entries as a single
// human-readable JSON array. Reads and writes are document-granular: the
// expected entry count is small, so a whole-file replace is simpler than a
// real storage engine.
type RecordStore struct {
	path string
}

// NewRecordStore creates a store backed by the file at path. The file is
// created lazily on the first Replace.
func NewRecordStore(path string) *RecordStore {
	return &RecordStore{path: path}
}

// Path returns the location of the backing document
func (s *RecordStore) Path() string {
	return s.path
}

// Load returns every entry in the document. A missing, empty, or corrupt
// document is an empty cache, never an error.
func (s *RecordStore) Load() []models.CacheEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache store unreadable, treating as empty", "path", s.path, "error", err)
		}
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var entries []models.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("cache store corrupt, treating as empty", "path", s.path, "error", err)
		return nil
	}

	return entries
}

// Replace overwrites the whole document with the given entries. A write
// failure is returned as a PersistenceError; the caller's in-memory result
// is unaffected.
func (s *RecordStore) Replace(entries []models.CacheEntry) error {
	if entries == nil {
		entries = []models.CacheEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return errors.NewPersistenceError("encode cache store", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.NewPersistenceError("write cache store", err)
	}

	return nil
}
