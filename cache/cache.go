// Package cache keeps recently extracted listings per (source, locality) so
// repeated requests inside the TTL window skip the network.
package cache

import (
	"sync"
	"time"

	"github.com/CodePeacock/scraper/models"
)

// DefaultTTL is how long an extracted page stays fresh.
const DefaultTTL = time.Hour

type Key struct {
	SourceID string
	Locality string
}

// Entry is never modified after Set; a newer Set for the same key replaces it.
type Entry struct {
	Key      Key
	Value    []models.Listing
	StoredAt time.Time
	TTL      time.Duration
}

func (e *Entry) expired(now time.Time) bool {
	return now.Sub(e.StoredAt) >= e.TTL
}

// Cache is an in-memory listing cache safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Key]*Entry
	now     func() time.Time
}

// New creates a Cache whose entries live for ttl (DefaultTTL if ttl <= 0).
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[Key]*Entry),
		now:     time.Now,
	}
}

// SetClock replaces the time source. Tests use it to step past the TTL.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns a copy of the live entry for k. Expired entries count as absent.
func (c *Cache) Get(k Key) ([]models.Listing, bool) {
	c.mu.RLock()
	e, ok := c.entries[k]
	now := c.now()
	c.mu.RUnlock()

	if !ok || e.expired(now) {
		return nil, false
	}
	out := make([]models.Listing, len(e.Value))
	copy(out, e.Value)
	return out, true
}

// Set stores a copy of v under k with a fresh timestamp.
func (c *Cache) Set(k Key, v []models.Listing) {
	stored := make([]models.Listing, len(v))
	copy(stored, v)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = &Entry{Key: k, Value: stored, StoredAt: c.now(), TTL: c.ttl}
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, live or not yet purged.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
