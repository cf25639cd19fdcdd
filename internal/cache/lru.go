package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRUCache bounds memory two ways: entries expire after a TTL and the
// least recently used entry is evicted once max is exceeded.
type LRUCache[T any] struct {
	mu    sync.Mutex
	max   int
	ttl   time.Duration
	index map[string]*list.Element
	order *list.List
}

type entry[T any] struct {
	key      string
	val      T
	deadline time.Time
}

// NewLRUCache returns an empty cache holding at most max entries for
// at most ttl each.
func NewLRUCache[T any](max int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		max:   max,
		ttl:   ttl,
		index: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the cached value for key. Expired entries are removed on
// the spot and reported as missing.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.index[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[T])
	if e.deadline.Before(time.Now()) {
		c.evict(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return e.val, true
}

// Set stores val under key with a fresh TTL, evicting the least
// recently used entry when the cache is full.
func (c *LRUCache[T]) Set(key string, val T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		e := elem.Value.(*entry[T])
		e.val = val
		e.deadline = time.Now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return
	}

	c.index[key] = c.order.PushFront(&entry[T]{
		key:      key,
		val:      val,
		deadline: time.Now().Add(c.ttl),
	})
	for len(c.index) > c.max {
		c.evict(c.order.Back())
	}
}

// InvalidatePrefix drops every key starting with prefix, however the
// cached view was parameterized. Returns the number of removed entries.
func (c *LRUCache[T]) InvalidatePrefix(prefix string) int {
	return c.sweep(func(e *entry[T]) bool {
		return strings.HasPrefix(e.key, prefix)
	})
}

// CleanExpired drops entries past their deadline and returns how many
// went.
func (c *LRUCache[T]) CleanExpired() int {
	now := time.Now()
	return c.sweep(func(e *entry[T]) bool {
		return e.deadline.Before(now)
	})
}

// Len returns the number of live entries, expired or not.
func (c *LRUCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRUCache[T]) sweep(drop func(*entry[T]) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var victims []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if drop(elem.Value.(*entry[T])) {
			victims = append(victims, elem)
		}
	}
	for _, elem := range victims {
		c.evict(elem)
	}
	return len(victims)
}

func (c *LRUCache[T]) evict(elem *list.Element) {
	delete(c.index, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}
