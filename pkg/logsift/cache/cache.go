// Package cache stores extraction and analysis results in Badger, keyed by
// archive digest and request, so repeated queries over the same archive skip
// decompression.
package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// Cache provides high-level caching operations for logsift.
type Cache struct {
	store *Store
	ttl   time.Duration
}

// Open opens or creates a cache at the given path. Entries expire after ttl
// when it is positive.
func Open(path string, ttl time.Duration) (*Cache, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	return &Cache{store: store, ttl: ttl}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) get(key Key) (*CachedEntry, bool) {
	entry, err := c.store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Get("cache").Warn("cache read failed", "kind", key.Kind, "error", err)
		}
		return nil, false
	}
	if entry.Version != CacheVersion {
		return nil, false
	}
	return entry, true
}

func (c *Cache) put(key Key, entry *CachedEntry) error {
	entry.Version = CacheVersion
	entry.Created = time.Now().UnixNano()
	return c.store.Put(key, entry, c.ttl)
}

// Records returns cached extraction results for key.
func (c *Cache) Records(key Key) ([]types.LogRecord, bool) {
	key.Kind = KindExtract
	entry, ok := c.get(key)
	if !ok {
		return nil, false
	}
	if entry.Records == nil {
		return []types.LogRecord{}, true
	}
	return entry.Records, true
}

// PutRecords stores extraction results for key.
func (c *Cache) PutRecords(key Key, recs []types.LogRecord) error {
	key.Kind = KindExtract
	return c.put(key, &CachedEntry{Records: recs})
}

// Analysis returns a cached archive analysis for key.
func (c *Cache) Analysis(key Key) (*types.ArchiveAnalysis, bool) {
	key.Kind = KindAnalyze
	entry, ok := c.get(key)
	if !ok || entry.Analysis == nil {
		return nil, false
	}
	return entry.Analysis, true
}

// PutAnalysis stores an archive analysis for key.
func (c *Cache) PutAnalysis(key Key, a *types.ArchiveAnalysis) error {
	key.Kind = KindAnalyze
	return c.put(key, &CachedEntry{Analysis: a})
}

// Stats counts live entries per kind.
type Stats struct {
	Extractions int
	Analyses    int
}

func (c *Cache) Stats() (Stats, error) {
	x, err := c.store.Count(KindPrefix(KindExtract))
	if err != nil {
		return Stats{}, err
	}
	a, err := c.store.Count(KindPrefix(KindAnalyze))
	if err != nil {
		return Stats{}, err
	}
	return Stats{Extractions: x, Analyses: a}, nil
}

// Clear removes all cached entries.
func (c *Cache) Clear() error {
	return c.store.DeletePrefix(nil)
}
