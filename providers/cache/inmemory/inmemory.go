// Package inmemory provides a process-local semantic cache backed by a map.
// Lookups are a full scan over stored embeddings; the cache is meant to hold
// at most a few thousand entries, where a scan is cheaper than maintaining
// an index.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/saharlajmi1/recmooc4all/internal/vec"
	"github.com/saharlajmi1/recmooc4all/providers/cache"
)

// SemanticCache is a concurrency-safe in-memory [cache.Store]. Expired
// entries are removed lazily when a Lookup walks over them.
type SemanticCache struct {
	mu        sync.Mutex
	entries   map[string]cache.Entry
	threshold float64
	ttl       time.Duration
	now       func() time.Time
}

// Ensure SemanticCache implements cache.Store at compile time.
var _ cache.Store = (*SemanticCache)(nil)

// Option customizes a [SemanticCache].
type Option func(*SemanticCache)

// WithThreshold overrides the minimum similarity for a hit.
func WithThreshold(threshold float64) Option {
	return func(c *SemanticCache) {
		if threshold > 0 {
			c.threshold = threshold
		}
	}
}

// WithTTL overrides how long entries stay servable.
func WithTTL(ttl time.Duration) Option {
	return func(c *SemanticCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *SemanticCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns an empty cache with [cache.DefaultThreshold] and
// [cache.DefaultTTL], adjusted by the given options.
func New(opts ...Option) *SemanticCache {
	c := &SemanticCache{
		entries:   make(map[string]cache.Entry),
		threshold: cache.DefaultThreshold,
		ttl:       cache.DefaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup scans all live entries and returns the first whose embedding
// reaches the similarity threshold, or nil when nothing matches. Entries
// past their TTL are deleted as the scan passes over them.
func (c *SemanticCache) Lookup(_ context.Context, embedding []float32) (*cache.Entry, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if now.Sub(entry.StoredAt) > c.ttl {
			delete(c.entries, key)
			continue
		}
		if vec.Cosine(embedding, entry.Embedding) >= c.threshold {
			found := entry
			return &found, nil
		}
	}
	return nil, nil
}

// Put stores an entry under its key, stamping StoredAt when unset.
func (c *SemanticCache) Put(_ context.Context, entry cache.Entry) error {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = c.now()
	}

	c.mu.Lock()
	c.entries[entry.Key] = entry
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including any not yet expired
// lazily. Intended for tests and diagnostics.
func (c *SemanticCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
