package cache

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"jobsearch-engine/internal/domain"
	"jobsearch-engine/internal/storage"
)

const keyPrefix = "cache:"

// Defaults for the result cache.
const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxEntries = 50
)

type entry struct {
	Key      string       `json:"key"`
	Jobs     []domain.Job `json:"jobs"`
	StoredAt time.Time    `json:"storedAt"`
	size     int
}

// Stats is the cache half of the /stats surface.
type Stats struct {
	Entries     int   `json:"entries"`
	ApproxBytes int64 `json:"approxBytes"`
}

// Cache is a time-boxed, size-bounded store of prior search results. The
// in-memory map is authoritative; the KV store is a write-through so entries
// survive restarts.
type Cache struct {
	mu         sync.Mutex
	kv         storage.KV
	ttl        time.Duration
	maxEntries int
	entries    map[string]*entry
	now        func() time.Time
}

func New(kv storage.KV, ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &Cache{
		kv:         kv,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
		now:        time.Now,
	}
	c.restore()
	return c
}

func (c *Cache) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	keys, err := c.kv.ListKeys(ctx, keyPrefix)
	if err != nil {
		log.Printf("[cache] restore list failed: %v", err)
		return
	}
	for _, k := range keys {
		raw, ok, err := c.kv.Get(ctx, k)
		if err != nil || !ok {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Key == "" {
			log.Printf("[cache] dropping corrupt entry key=%q", k)
			_ = c.kv.Remove(ctx, k)
			continue
		}
		e.size = len(raw)
		c.entries[e.Key] = &e
	}
	if len(c.entries) > 0 {
		log.Printf("[cache] restored entries=%d", len(c.entries))
	}
}

// Get returns the cached jobs for key, or ok=false when absent or expired.
// Expired entries are deleted on the way out (lazy expiry). The returned
// slice is the caller's to mutate.
func (c *Cache) Get(key string) ([]domain.Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.StoredAt) >= c.ttl {
		c.removeLocked(key)
		return nil, false
	}
	return cloneJobs(e.Jobs), true
}

// Put upserts with a fresh storedAt and evicts oldest-by-storedAt entries
// until the bound holds. The slice is copied; the caller keeps ownership.
func (c *Cache) Put(key string, jobs []domain.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry{Key: key, Jobs: cloneJobs(jobs), StoredAt: c.now().UTC()}
	raw, err := json.Marshal(e)
	if err != nil {
		log.Printf("[cache] marshal failed key=%q: %v", key, err)
		return
	}
	e.size = len(raw)
	c.entries[key] = e
	c.persist(key, string(raw))

	c.evictLocked()
}

func (c *Cache) evictLocked() {
	if len(c.entries) <= c.maxEntries {
		return
	}
	all := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StoredAt.Before(all[j].StoredAt) })

	for _, e := range all[:len(all)-c.maxEntries] {
		c.removeLocked(e.Key)
	}
}

func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, keyPrefix+k)
	}
	c.entries = make(map[string]*entry)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.kv.RemoveAll(ctx, keys); err != nil {
		log.Printf("[cache] clear persist failed: %v", err)
	}
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var bytes int64
	for _, e := range c.entries {
		bytes += int64(e.size)
	}
	return Stats{Entries: len(c.entries), ApproxBytes: bytes}
}

func cloneJobs(jobs []domain.Job) []domain.Job {
	out := make([]domain.Job, len(jobs))
	copy(out, jobs)
	return out
}

func (c *Cache) removeLocked(key string) {
	delete(c.entries, key)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.kv.Remove(ctx, keyPrefix+key); err != nil {
		log.Printf("[cache] remove persist failed key=%q: %v", key, err)
	}
}

func (c *Cache) persist(key, raw string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.kv.Set(ctx, keyPrefix+key, raw); err != nil {
		log.Printf("[cache] persist failed key=%q: %v", key, err)
	}
}
