package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	v   []byte
	exp time.Time
}

// TTLCache is an in-process BytesCache.
type TTLCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

func NewTTLCache() *TTLCache {
	return &TTLCache{m: make(map[string]entry), now: time.Now}
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// GetBytes returns a live entry. An expired entry is deleted only if the
// entry found under the write lock is still expired.
func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	now := c.now()
	if !e.expired(now) {
		return e.v, true, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok = c.m[key]
	if !ok {
		return nil, false, nil
	}
	if e.expired(now) {
		delete(c.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{v: value, exp: exp}
	c.mu.Unlock()
	return nil
}

// Sweep removes expired entries.
func (c *TTLCache) Sweep() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *TTLCache) Close() error { return nil }
