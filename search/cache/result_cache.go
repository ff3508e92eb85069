// Package cache implements the in-memory result cache for ranked search
// responses: deterministic key derivation, per-entry TTL with lazy expiry
// and capacity-bounded eviction (expired entries first, then least
// recently accessed).
package cache

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
	"github.com/laxmanfhaneendra/savebucks-sub002/models"
)

// evictFraction is the share of entries removed by the LRU pass once
// expired entries alone do not bring the cache under capacity.
const evictFraction = 0.1

type cacheEntry struct {
	Payload      []byte
	Compressed   bool
	Size         int
	CreatedAt    time.Time
	ExpiresAt    time.Time
	AccessCount  int64
	LastAccessed time.Time
}

// ResultCache memoizes ranked search responses keyed by normalized query.
// A single mutex guards one map holding entry and expiry together, so a
// reader can never observe an entry without its TTL or vice versa.
type ResultCache struct {
	mu                   sync.Mutex
	entries              map[string]*cacheEntry
	maxEntries           int
	defaultTTL           time.Duration
	compressor           Compressor
	compressionThreshold int

	hits      int64
	misses    int64
	evictions int64
}

// NewResultCache creates a cache with a no-op compression strategy
func NewResultCache(cfg config.CacheConfig) *ResultCache {
	return NewResultCacheWithCompressor(cfg, NoopCompressor{})
}

// NewResultCacheWithCompressor creates a cache using the given compressor
// for payloads above the configured size threshold
func NewResultCacheWithCompressor(cfg config.CacheConfig, compressor Compressor) *ResultCache {
	return &ResultCache{
		entries:              make(map[string]*cacheEntry),
		maxEntries:           cfg.MaxEntries,
		defaultTTL:           cfg.DefaultTTL(),
		compressor:           compressor,
		compressionThreshold: cfg.CompressionThreshold,
	}
}

// Get returns the cached results for a query specification, or false on a
// miss. Expired entries are treated as misses and deleted on observation.
// Any internal failure degrades to a miss; the cache never errors out.
func (c *ResultCache) Get(spec *models.QuerySpec) (*models.SearchResults, bool) {
	key := Key(spec)

	payload, compressed, found := c.getRaw(key)
	if !found {
		return nil, false
	}

	if compressed {
		var err error
		payload, err = c.compressor.Decompress(payload)
		if err != nil {
			slog.Debug("cache decompress failed, treating as miss", "key", key, "error", err)
			c.Delete(key)
			return nil, false
		}
	}

	var results models.SearchResults
	if err := json.Unmarshal(payload, &results); err != nil {
		slog.Debug("cache payload unmarshal failed, treating as miss", "key", key, "error", err)
		c.Delete(key)
		return nil, false
	}

	return &results, true
}

func (c *ResultCache) getRaw(key string) ([]byte, bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, false, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		delete(c.entries, key)
		c.misses++
		return nil, false, false
	}

	entry.AccessCount++
	entry.LastAccessed = now
	c.hits++
	return entry.Payload, entry.Compressed, true
}

// Set stores ranked results for a query specification. The default TTL is
// used unless an explicit one is given. Serialization failures are logged
// and dropped; a broken cache must never block a search.
func (c *ResultCache) Set(spec *models.QuerySpec, results *models.SearchResults, ttl ...time.Duration) {
	if results == nil {
		return
	}

	payload, err := json.Marshal(results)
	if err != nil {
		slog.Debug("cache payload marshal failed, skipping set", "error", err)
		return
	}

	compressed := false
	size := len(payload)
	if c.compressionThreshold > 0 && size > c.compressionThreshold {
		encoded, err := c.compressor.Compress(payload)
		if err != nil {
			slog.Debug("cache compress failed, storing uncompressed", "error", err)
		} else {
			payload = encoded
			compressed = true
		}
	}

	entryTTL := c.defaultTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		entryTTL = ttl[0]
	}

	key := Key(spec)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		c.cleanupLocked(now)
	}

	c.entries[key] = &cacheEntry{
		Payload:      payload,
		Compressed:   compressed,
		Size:         size,
		CreatedAt:    now,
		ExpiresAt:    now.Add(entryTTL),
		AccessCount:  1,
		LastAccessed: now,
	}
}

// Delete removes a single key
func (c *ResultCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Cleanup removes expired entries, then evicts the least recently
// accessed 10% (minimum one) if the cache is still at or over capacity.
// Returns the number of entries removed.
func (c *ResultCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cleanupLocked(time.Now())
}

func (c *ResultCache) cleanupLocked(now time.Time) int {
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}

	if len(c.entries) >= c.maxEntries {
		type keyAccess struct {
			key          string
			lastAccessed time.Time
		}
		byAccess := make([]keyAccess, 0, len(c.entries))
		for key, entry := range c.entries {
			byAccess = append(byAccess, keyAccess{key, entry.LastAccessed})
		}
		sort.Slice(byAccess, func(i, j int) bool {
			return byAccess[i].lastAccessed.Before(byAccess[j].lastAccessed)
		})

		evict := int(float64(len(byAccess)) * evictFraction)
		if evict < 1 {
			evict = 1
		}
		for _, ka := range byAccess[:evict] {
			delete(c.entries, ka.key)
			removed++
		}
	}

	c.evictions += int64(removed)
	return removed
}

// InvalidatePattern removes every entry whose key contains the substring.
// Linear scan; intended for coarse invalidation, not the hot path.
func (c *ResultCache) InvalidatePattern(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if substr != "" && containsFold(key, substr) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops all entries. Hit/miss counters survive a clear.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
}

// Stats reports cache occupancy and effectiveness. Side effect free.
func (c *ResultCache) Stats() models.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	stats := models.CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			stats.Expired++
		}
		stats.TotalBytes += int64(entry.Size)
	}
	if stats.Entries > 0 {
		stats.AvgEntryBytes = float64(stats.TotalBytes) / float64(stats.Entries)
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Len returns the current entry count, counting not-yet-swept expired entries
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
