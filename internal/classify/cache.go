package classify

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// CacheConfig tunes the result cache.
type CacheConfig struct {
	// MinConfidence gates admission. Low-confidence results are cheap to
	// recompute and likely to improve as rule tables evolve, so they are
	// not worth pinning.
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`

	// HighConfidenceTTL applies to results at or above HighConfidenceBar;
	// everything else admitted gets DefaultTTL.
	HighConfidenceBar float64       `yaml:"high_confidence_bar" json:"high_confidence_bar"`
	HighConfidenceTTL time.Duration `yaml:"high_confidence_ttl" json:"high_confidence_ttl"`
	DefaultTTL        time.Duration `yaml:"default_ttl" json:"default_ttl"`

	// MaxEntries caps the cache; admission beyond the cap evicts the
	// least-used entry.
	MaxEntries int `yaml:"max_entries" json:"max_entries"`

	// SweepInterval is how often the background sweeper drops expired
	// entries. Zero disables the sweeper; expired entries are then dropped
	// lazily on lookup.
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`
}

// DefaultCacheConfig returns the tuned defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MinConfidence:     70,
		HighConfidenceBar: 90,
		HighConfidenceTTL: 7 * 24 * time.Hour,
		DefaultTTL:        24 * time.Hour,
		MaxEntries:        10000,
		SweepInterval:     10 * time.Minute,
	}
}

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
	hits      int64
}

// Cache memoizes classification results keyed by a digest of the product
// text and context. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	config  CacheConfig
	entries map[string]*cacheEntry

	hits      int64
	misses    int64
	evictions int64

	stop     chan struct{}
	stopOnce sync.Once

	// Test hook for expiry checks.
	now func() time.Time
}

// NewCache builds a cache and starts its background sweeper when
// configured.
func NewCache(config CacheConfig) *Cache {
	c := &Cache{
		config:  config,
		entries: make(map[string]*cacheEntry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	if config.SweepInterval > 0 {
		go c.sweepLoop()
	}
	return c
}

// Key derives the deterministic cache key. Name and description are
// whitespace-normalized and lowercased first so trivial formatting
// differences between crawls hit the same entry.
func Key(name, description string, ctx *Context) string {
	var b strings.Builder
	b.WriteString(normalizeForKey(name))
	b.WriteByte('|')
	b.WriteString(normalizeForKey(description))
	b.WriteByte('|')
	if ctx != nil {
		b.WriteString(ctx.Vendor)
		b.WriteByte('|')
		b.WriteString(string(ctx.CategoryHint))
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func normalizeForKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Get returns a copy of the cached result, if present and unexpired.
func (c *Cache) Get(name, description string, ctx *Context) (*Result, bool) {
	key := Key(name, description, ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	entry.hits++
	c.hits++
	return entry.result.clone(), true
}

// Put admits a result when its confidence clears the admission bar. The
// TTL is tiered: high-confidence results live a week, the rest a day.
func (c *Cache) Put(name, description string, ctx *Context, result *Result) {
	if result == nil || result.Confidence < c.config.MinConfidence {
		return
	}

	ttl := c.config.DefaultTTL
	if result.Confidence >= c.config.HighConfidenceBar {
		ttl = c.config.HighConfidenceTTL
	}

	key := Key(name, description, ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.config.MaxEntries > 0 && len(c.entries) >= c.config.MaxEntries {
		c.evictLeastUsedLocked()
	}

	c.entries[key] = &cacheEntry{
		result:    result.clone(),
		expiresAt: c.now().Add(ttl),
	}
}

// evictLeastUsedLocked drops the entry with the fewest lookup hits,
// breaking ties by earliest expiry.
func (c *Cache) evictLeastUsedLocked() {
	var victim string
	var victimEntry *cacheEntry
	for key, entry := range c.entries {
		if victimEntry == nil ||
			entry.hits < victimEntry.hits ||
			(entry.hits == victimEntry.hits && entry.expiresAt.Before(victimEntry.expiresAt)) {
			victim = key
			victimEntry = entry
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		c.evictions++
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheStats is a snapshot of cache effectiveness counters.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Close stops the background sweeper. Idempotent.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
