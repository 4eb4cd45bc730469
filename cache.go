package s3fifo

import (
	"iter"

	"github.com/skipor/s3fifo/internal/tag"
	"github.com/skipor/s3fifo/log"
)

// Cache is an S3-FIFO cache of at most Capacity entries.
//
// It is not safe for concurrent use: every operation mutates shared state
// (even Get bumps counters). Wrap it in Locked or Sharded, or guard it with
// a caller-owned lock.
type Cache[K comparable, V any] struct {
	capacity      int
	smallCapacity int
	mainCapacity  int

	small *queue[K, V]
	main  *queue[K, V]
	ghost *ghost[K]
	index map[K]*node[K, V]

	counters counters
	onEvict  func(K, V, EvictReason)
	log      log.Logger
}

// New builds a Cache for conf. A nil logger discards debug output.
func New[K comparable, V any](l log.Logger, conf Config[K, V]) (*Cache[K, V], error) {
	smallCapacity, mainCapacity, err := conf.queueCapacities()
	if err != nil {
		return nil, err
	}
	if l == nil {
		l = log.Discard()
	}
	c := &Cache[K, V]{
		capacity:      conf.Capacity,
		smallCapacity: smallCapacity,
		mainCapacity:  mainCapacity,
		small:         newQueue[K, V](),
		main:          newQueue[K, V](),
		ghost:         newGhost[K](mainCapacity),
		index:         make(map[K]*node[K, V], conf.Capacity),
		counters:      newCounters(conf.Metrics, conf.metricsPrefix),
		onEvict:       conf.OnEvict,
		log:           l,
	}
	c.log.Debugf("new cache: capacity %v, small %v, main %v",
		c.capacity, c.smallCapacity, c.mainCapacity)
	return c, nil
}

// Get returns the value cached for key. A hit bumps the entry frequency but
// never relinks it: queue order is untouched on the read path.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	defer c.checkInvariants()
	n, ok := c.index[key]
	if !ok {
		c.counters.miss()
		return value, false
	}
	n.touch()
	c.counters.hit()
	return n.value, true
}

// Contains reports whether key is cached. Side effects are the same as Get.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.Get(key)
	return ok
}

// Put inserts or updates key.
func (c *Cache[K, V]) Put(key K, value V) {
	defer c.checkInvariants()
	if n, ok := c.index[key]; ok {
		n.value = value
		n.touch()
		return
	}
	if c.ghost.contains(key) {
		// The key came back while still remembered as evicted: that alone
		// is evidence of repeat interest, so it is admitted straight into
		// main without re-earning its place through the small filter.
		c.ghost.remove(key)
		if c.main.len() == c.mainCapacity {
			c.evictMain()
		}
		n := newNode(key, value)
		c.index[key] = n
		c.main.push(n)
		c.log.Debugf("re-admit %v into main", key)
		return
	}
	if c.small.len() == c.smallCapacity {
		c.evictSmall()
	}
	n := newNode(key, value)
	c.index[key] = n
	c.small.push(n)
}

// Remove deletes key and reports whether it was cached.
// No ghost record is left: an explicit removal is not a visit worth
// remembering.
func (c *Cache[K, V]) Remove(key K) bool {
	defer c.checkInvariants()
	n, ok := c.index[key]
	if !ok {
		return false
	}
	n.owner.remove(n)
	delete(c.index, key)
	if tag.Debug {
		c.scrub(n)
	}
	return true
}

// Clear empties the queues, the index and the ghost records, and resets the
// counters. The result is indistinguishable from a freshly constructed
// cache of the same configuration.
func (c *Cache[K, V]) Clear() {
	defer c.checkInvariants()
	c.small = newQueue[K, V]()
	c.main = newQueue[K, V]()
	c.ghost.clear()
	c.index = make(map[K]*node[K, V], c.capacity)
	c.counters.reset()
}

func (c *Cache[K, V]) Len() int      { return len(c.index) }
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats returns a snapshot of the lifetime counters.
func (c *Cache[K, V]) Stats() Stats { return c.counters.snapshot() }

func (c *Cache[K, V]) HitRate() float64  { return c.Stats().HitRate() }
func (c *Cache[K, V]) MissRate() float64 { return c.Stats().MissRate() }

// ResetStats zeroes the hit/miss/eviction counters. Cache content is untouched.
func (c *Cache[K, V]) ResetStats() { c.counters.reset() }

// All yields the cached entries: small queue first, then main, each oldest
// first. The sequence is lazy and not a snapshot; mutating the cache during
// iteration is undefined, as with map iteration.
func (c *Cache[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, q := range []*queue[K, V]{c.small, c.main} {
			for n := q.head(); !q.end(n); n = n.next {
				if !yield(n.key, n.value) {
					return
				}
			}
		}
	}
}

// Keys yields the cached keys in the same order as All.
func (c *Cache[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for key := range c.All() {
			if !yield(key) {
				return
			}
		}
	}
}

// evictSmall makes room for one insertion into the small queue.
func (c *Cache[K, V]) evictSmall() {
	n := c.small.popHead()
	if n == nil {
		return
	}
	if n.frequency() > 0 {
		// Lazy promotion: the entry was hit while waiting in small, so it
		// has earned a place in main. The counter starts over there.
		n.setFrequency(0)
		if c.main.len() == c.mainCapacity {
			c.evictMain()
		}
		c.main.push(n)
		c.log.Debugf("promote %v into main", n.key)
		return
	}
	// One-time visitor: quick demotion to a ghost record, never
	// reaching main.
	c.drop(n, EvictedFromSmall)
}

// evictMain frees one slot in the main queue with a CLOCK-like scan:
// a head with non-zero frequency pays one count for another lap at the
// tail. The scan is bounded to one full lap; if everything looks hot the
// head is forced out anyway so Put terminates.
func (c *Cache[K, V]) evictMain() {
	for attempts := c.main.len(); attempts > 0; attempts-- {
		n := c.main.popHead()
		if n == nil {
			return
		}
		if f := n.frequency(); f > 0 {
			n.setFrequency(f - 1)
			c.main.push(n)
			continue
		}
		c.drop(n, EvictedFromMain)
		return
	}
	if n := c.main.popHead(); n != nil {
		c.log.Debugf("main queue all hot, force evicting %v", n.key)
		c.drop(n, EvictedFromMain)
	}
}

// drop destroys a detached entry, leaving only a ghost record of its key.
func (c *Cache[K, V]) drop(n *node[K, V], reason EvictReason) {
	delete(c.index, n.key)
	c.ghost.push(n.key)
	c.counters.evict()
	c.log.Debugf("evict %v from %v", n.key, reason)
	if c.onEvict != nil {
		c.onEvict(n.key, n.value, reason)
	}
	if tag.Debug {
		c.scrub(n)
	}
}

// scrub poisons a destroyed node so debug builds fail fast on misuse.
func (c *Cache[K, V]) scrub(n *node[K, V]) {
	var zero V
	n.value = zero
	n.prev = nil
	n.next = nil
	n.owner = nil
}
