package cache

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/model"
)

// ResultCache is the content-addressed verdict store keyed by normalized
// claim. Capacity-bounded: eviction removes expired entries first, then the
// least recently used among the rest. An optional backing Cache persists
// entries across restarts.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[string]*resultEntry
	capacity int
	ttl      time.Duration
	backing  Cache
	logger   *zap.Logger
	hits     uint64
	misses   uint64
	now      func() time.Time
}

type resultEntry struct {
	result     model.FactCheckResult
	expiresAt  time.Time
	lastAccess time.Time
}

// NewResultCache creates a result cache. backing may be nil for a purely
// in-memory cache.
func NewResultCache(cfg model.CacheConfig, backing Cache, logger *zap.Logger) *ResultCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultCache{
		entries:  make(map[string]*resultEntry),
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
		backing:  backing,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the cached result for a claim key, if present and unexpired.
// The returned copy carries Cached=true.
func (c *ResultCache) Get(key string) (*model.FactCheckResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, found := c.entries[key]
	if found && now.Before(entry.expiresAt) {
		entry.lastAccess = now
		c.hits++
		result := entry.result
		result.Cached = true
		return &result, true
	}
	if found {
		delete(c.entries, key)
	}

	if result, ok := c.fromBacking(key, now); ok {
		c.hits++
		return result, true
	}

	c.misses++
	return nil, false
}

// fromBacking promotes a persisted entry into memory. Caller holds the lock.
func (c *ResultCache) fromBacking(key string, now time.Time) (*model.FactCheckResult, bool) {
	if c.backing == nil {
		return nil, false
	}

	data, found := c.backing.Get(key)
	if !found {
		return nil, false
	}

	var result model.FactCheckResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("discarding corrupt persisted result", zap.String("key", key), zap.Error(err))
		_ = c.backing.Delete(key)
		return nil, false
	}

	c.entries[key] = &resultEntry{
		result:     result,
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}
	c.evictLocked(now)

	copied := result
	copied.Cached = true
	return &copied, true
}

// Put stores a result under the claim key, replacing any previous entry
// whole. Persistence failures are logged, never propagated.
func (c *ResultCache) Put(key string, result *model.FactCheckResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = &resultEntry{
		result:     *result,
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}
	c.evictLocked(now)

	if c.backing != nil {
		data, err := json.Marshal(result)
		if err == nil {
			err = c.backing.Set(key, data, c.ttl)
		}
		if err != nil {
			c.logger.Warn("result persistence failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// evictLocked enforces the capacity bound: expired entries go first, then
// the least recently used. Caller holds the lock.
func (c *ResultCache) evictLocked(now time.Time) {
	if c.capacity <= 0 || len(c.entries) <= c.capacity {
		return
	}

	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}

	for len(c.entries) > c.capacity {
		var oldestKey string
		var oldest time.Time
		for key, entry := range c.entries {
			if oldestKey == "" || entry.lastAccess.Before(oldest) {
				oldestKey = key
				oldest = entry.lastAccess
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Len reports the number of in-memory entries, expired included
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports cumulative hit and miss counts and the current size
func (c *ResultCache) Stats() (hits, misses uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}
