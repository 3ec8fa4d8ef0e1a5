// Package cache provides a small in-memory TTL cache used for
// line-item lookups. A Redis-backed implementation could replace it
// behind the same port without touching the services.
package cache

import (
	"sync"
	"time"
)

// defaultCapacity bounds New caches so an unbounded key space (one key
// per analysis window) cannot grow the map without limit.
const defaultCapacity = 1024

type item[T any] struct {
	value     T
	expiresAt time.Time
	seq       uint64
}

// InMemory is a thread-safe in-memory cache with a fixed TTL and a
// capacity bound. When full, the oldest entry is evicted first.
type InMemory[T any] struct {
	mu       sync.RWMutex
	items    map[string]item[T]
	ttl      time.Duration
	capacity int
	seq      uint64
}

// New creates an in-memory cache with the default capacity. A
// background goroutine sweeps expired entries once per TTL.
func New[T any](ttl time.Duration) *InMemory[T] {
	return NewWithCapacity[T](ttl, defaultCapacity)
}

// NewWithCapacity creates an in-memory cache holding at most capacity
// entries.
func NewWithCapacity[T any](ttl time.Duration, capacity int) *InMemory[T] {
	c := &InMemory[T]{
		items:    make(map[string]item[T]),
		ttl:      ttl,
		capacity: capacity,
	}
	go c.sweep()
	return c
}

// Get returns false when the key is absent or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Set stores a value with the configured TTL, evicting the oldest
// entry when the cache is at capacity.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.capacity {
		c.evictOldest()
	}

	c.seq++
	c.items[key] = item[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
		seq:       c.seq,
	}
}

// Delete removes a key.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// evictOldest removes the entry with the lowest insertion sequence.
// Caller holds the write lock.
func (c *InMemory[T]) evictOldest() {
	var oldestKey string
	var oldestSeq uint64
	for k, it := range c.items {
		if oldestKey == "" || it.seq < oldestSeq {
			oldestKey = k
			oldestSeq = it.seq
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *InMemory[T]) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for k, it := range c.items {
			if now.After(it.expiresAt) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
