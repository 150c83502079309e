// Package cache holds identity-keyed collections of one entity kind.
package cache

import (
	"sort"
	"sync"
)

// Entity is anything with a stable identity.
type Entity interface {
	ID() string
}

// EventKind tells observers what changed.
type EventKind int

const (
	Upserted EventKind = iota
	Replaced
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Upserted:
		return "upserted"
	case Replaced:
		return "replaced"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes one completed cache mutation.
type Event[T Entity] struct {
	Kind   EventKind
	ID     string // Upserted, Removed
	Entity T      // Upserted
	Count  int    // Replaced: number of entries after the replace
}

// Cache is a concurrency-safe map from ID to entity. Every stored value's own
// ID equals its key. Observers run synchronously after each mutation, outside
// the lock, in subscription order. A closed cache ignores writes.
type Cache[T Entity] struct {
	mu      sync.RWMutex
	entries map[string]T
	closed  bool

	obsMu     sync.Mutex
	nextObs   int
	observers map[int]func(Event[T])
}

// New returns an empty cache.
func New[T Entity]() *Cache[T] {
	return &Cache[T]{
		entries:   make(map[string]T),
		observers: make(map[int]func(Event[T])),
	}
}

// Upsert inserts or overwrites the entry at v.ID().
func (c *Cache[T]) Upsert(v T) {
	id := v.ID()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.entries[id] = v
	c.mu.Unlock()
	c.notify(Event[T]{Kind: Upserted, ID: id, Entity: v})
}

// ReplaceAll clears every entry and inserts vs in one step. When vs holds
// duplicate IDs the last one wins.
func (c *Cache[T]) ReplaceAll(vs []T) {
	next := make(map[string]T, len(vs))
	for _, v := range vs {
		next[v.ID()] = v
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.entries = next
	c.mu.Unlock()
	c.notify(Event[T]{Kind: Replaced, Count: len(next)})
}

// Remove deletes the entry at id. Removing an absent id is a no-op and emits
// no event.
func (c *Cache[T]) Remove(id string) {
	c.mu.Lock()
	_, ok := c.entries[id]
	if ok && !c.closed {
		delete(c.entries, id)
	} else {
		ok = false
	}
	c.mu.Unlock()
	if ok {
		c.notify(Event[T]{Kind: Removed, ID: id})
	}
}

// Close freezes the cache. Entries stay readable; every later write is a
// no-op and emits no event. Close waits for a write already holding the lock.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Get returns the entry at id.
func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[id]
	return v, ok
}

// Values returns a copy of every entry. Order is unspecified; callers that
// display values sort them.
func (c *Cache[T]) Values() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.entries))
	for _, v := range c.entries {
		out = append(out, v)
	}
	return out
}

// SortedValues returns a copy of every entry ordered by less.
func (c *Cache[T]) SortedValues(less func(a, b T) bool) []T {
	out := c.Values()
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Subscribe registers fn for change events and returns a function that
// removes it. Calling the returned function more than once is harmless.
func (c *Cache[T]) Subscribe(fn func(Event[T])) (cancel func()) {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	return func() {
		c.obsMu.Lock()
		delete(c.observers, id)
		c.obsMu.Unlock()
	}
}

func (c *Cache[T]) notify(ev Event[T]) {
	c.obsMu.Lock()
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event[T]), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.observers[id])
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
