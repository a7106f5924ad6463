package cache

import (
	"context"
	"sync"
)

// Trigger names a pipeline event that invalidates cached values.
// Cached report artifacts go stale in exactly two cases: new raw data was
// ingested, or a simulation run produced new results. Callers tag each
// entry with the triggers that should evict it.
type Trigger string

// Invalidation triggers.
const (
	OnIngestComplete     Trigger = "ingest_complete"
	OnSimulationComplete Trigger = "simulation_complete"
)

type entry[V any] struct {
	value    V
	triggers map[Trigger]struct{}
}

// Cache is a read-through cache with trigger-based invalidation.
// Values are stored as given; callers must not mutate a value after
// handing it to the cache.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
	}
}

// GetOrLoad returns the cached value for key, loading and storing it on a
// miss. invalidateOn tags the entry with the triggers that evict it.
// The loader runs outside the cache lock; concurrent misses on the same
// key may load more than once, last write wins.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, invalidateOn []Trigger, load func(context.Context) (V, error)) (V, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e.value, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	triggers := make(map[Trigger]struct{}, len(invalidateOn))
	for _, t := range invalidateOn {
		triggers[t] = struct{}{}
	}

	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, triggers: triggers}
	c.mu.Unlock()

	return value, nil
}

// Get returns the cached value for key without loading.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e.value, ok
}

// Fire evicts all entries tagged with the trigger and returns how many
// were removed.
func (c *Cache[V]) Fire(trigger Trigger) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, e := range c.entries {
		if _, tagged := e.triggers[trigger]; tagged {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
