package respcache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/akozyrev/techdocs-qa/internal/core/domain"
)

// Cache is a bounded, TTL-expiring LRU cache of finished answer
// records keyed by query fingerprint. All structural mutation happens
// behind one mutex; expiry is evaluated lazily on access rather than
// by a background sweep.
type Cache struct {
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	order   *list.List // front = most recently used
	entries map[string]*list.Element

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64
}

type entry struct {
	key        string
	record     domain.AnswerRecord
	storedAt   time.Time
	accessedAt time.Time
}

type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Size        int    `json:"size"`
	MaxSize     int    `json:"max_size"`
}

// New rejects non-positive capacity and TTL at construction.
func New(maxSize int, ttl time.Duration) (*Cache, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("respcache: max size must be positive, got %d", maxSize)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("respcache: ttl must be positive, got %v", ttl)
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		order:   list.New(),
		entries: make(map[string]*list.Element, maxSize),
	}, nil
}

// Get returns the cached record for key and refreshes its recency.
// An entry older than the TTL is deleted and reported as a miss; the
// deletion counts as an expiration, not an eviction.
func (c *Cache) Get(key string) (domain.AnswerRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		c.misses++
		return domain.AnswerRecord{}, false
	}

	ent := element.Value.(*entry)
	if c.now().Sub(ent.storedAt) > c.ttl {
		c.removeLocked(element)
		c.expirations++
		c.misses++
		return domain.AnswerRecord{}, false
	}

	ent.accessedAt = c.now()
	c.order.MoveToFront(element)
	c.hits++
	return ent.record, true
}

// Put inserts or overwrites the record for key. Overwriting an expired
// entry behaves as a fresh insert. When the cache is full and key is
// new, the least recently used entry is evicted first. Racing writers
// for the same key are safe; the last writer wins.
func (c *Cache) Put(key string, record domain.AnswerRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if element, ok := c.entries[key]; ok {
		ent := element.Value.(*entry)
		ent.record = record
		ent.storedAt = now
		ent.accessedAt = now
		c.order.MoveToFront(element)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
			c.evictions++
		}
	}

	element := c.order.PushFront(&entry{
		key:        key,
		record:     record,
		storedAt:   now,
		accessedAt: now,
	})
	c.entries[key] = element
}

// InvalidateAll clears every entry and resets the eviction/expiration
// counters. Hit/miss counters are lifetime totals and survive.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element, c.maxSize)
	c.evictions = 0
	c.expirations = 0
}

// Stats returns a point-in-time copy of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        c.order.Len(),
		MaxSize:     c.maxSize,
	}
}

func (c *Cache) removeLocked(element *list.Element) {
	ent := element.Value.(*entry)
	c.order.Remove(element)
	delete(c.entries, ent.key)
}
