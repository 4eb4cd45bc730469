package s3fifo

import (
	"iter"
	"sync"

	"github.com/skipor/s3fifo/log"
)

// Locked guards one Cache with a single RWMutex.
//
// Lookups take the read lock: a hit only bumps atomic state (the node
// frequency and the metrics counters) and never relinks queue nodes, so
// readers share the lock. Mutators take the write lock.
type Locked[K comparable, V any] struct {
	mu sync.RWMutex
	c  *Cache[K, V]
}

// NewLocked builds a Cache for conf and wraps it.
func NewLocked[K comparable, V any](l log.Logger, conf Config[K, V]) (*Locked[K, V], error) {
	c, err := New(l, conf)
	if err != nil {
		return nil, err
	}
	return &Locked[K, V]{c: c}, nil
}

func (l *Locked[K, V]) Get(key K) (V, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Get(key)
}

func (l *Locked[K, V]) Contains(key K) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Contains(key)
}

func (l *Locked[K, V]) Put(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Put(key, value)
}

func (l *Locked[K, V]) Remove(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Remove(key)
}

func (l *Locked[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Clear()
}

func (l *Locked[K, V]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Len()
}

func (l *Locked[K, V]) Capacity() int { return l.c.Capacity() }

func (l *Locked[K, V]) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.c.Stats()
}

func (l *Locked[K, V]) HitRate() float64  { return l.Stats().HitRate() }
func (l *Locked[K, V]) MissRate() float64 { return l.Stats().MissRate() }

func (l *Locked[K, V]) ResetStats() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.ResetStats()
}

// All holds the read lock for the whole iteration: do not mutate the cache
// from the loop body.
func (l *Locked[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		l.mu.RLock()
		defer l.mu.RUnlock()
		for key, value := range l.c.All() {
			if !yield(key, value) {
				return
			}
		}
	}
}
