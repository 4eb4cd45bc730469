package s3fifo

import (
	"fmt"
	"hash/maphash"
	"runtime"

	"github.com/pkg/errors"

	"github.com/skipor/s3fifo/log"
)

// ErrNilHash is returned by NewSharded when no hash function is given.
var ErrNilHash = errors.New("sharded cache needs a hash function")

type ShardedConfig[K comparable, V any] struct {
	// Config applies to every shard, except that Capacity is the total
	// entry limit over all shards and is split evenly between them.
	// Metrics, if set, gets each shard's counters under a "shard.N."
	// prefix; Sharded.Stats aggregates them.
	Config[K, V]

	// Shards is rounded up to a power of two. Zero picks a heuristic
	// based on GOMAXPROCS.
	Shards int

	// Hash spreads keys over shards. Required; StringHash serves string
	// keys.
	Hash func(K) uint64
}

// Sharded partitions the keyspace over independently locked caches to cut
// write contention: each key lives in exactly one shard, and operations on
// different shards never share a lock.
//
// Len, Stats and Clear touch every shard in turn without a global lock, so
// their results are approximate under concurrent writes.
type Sharded[K comparable, V any] struct {
	shards []*Locked[K, V]
	hash   func(K) uint64
	mask   uint64
}

func NewSharded[K comparable, V any](l log.Logger, conf ShardedConfig[K, V]) (*Sharded[K, V], error) {
	if conf.Hash == nil {
		return nil, errors.WithStack(ErrNilHash)
	}
	if l == nil {
		l = log.Discard()
	}
	shards := conf.Shards
	if shards <= 0 {
		shards = reasonableShardCount()
	}
	shards = nextPowerOfTwo(shards)
	perShard := conf.Config
	perShard.Capacity = conf.Capacity / shards
	if perShard.Capacity < MinCapacity {
		return nil, errors.Wrapf(ErrTooSmallCapacity,
			"capacity %d over %d shards leaves %d per shard, minimum %d",
			conf.Capacity, shards, perShard.Capacity, MinCapacity)
	}
	s := &Sharded[K, V]{
		hash: conf.Hash,
		mask: uint64(shards - 1),
	}
	for i := 0; i < shards; i++ {
		perShard.metricsPrefix = fmt.Sprintf("shard.%d.", i)
		shard, err := NewLocked(l.WithFields(log.Fields{"shard": i}), perShard)
		if err != nil {
			return nil, err
		}
		s.shards = append(s.shards, shard)
	}
	return s, nil
}

// StringHash returns a per-process seeded hash for string keys.
func StringHash() func(string) uint64 {
	seed := maphash.MakeSeed()
	return func(s string) uint64 {
		return maphash.String(seed, s)
	}
}

func (s *Sharded[K, V]) shard(key K) *Locked[K, V] {
	return s.shards[s.hash(key)&s.mask]
}

func (s *Sharded[K, V]) Get(key K) (V, bool) { return s.shard(key).Get(key) }
func (s *Sharded[K, V]) Contains(key K) bool { return s.shard(key).Contains(key) }
func (s *Sharded[K, V]) Put(key K, value V)  { s.shard(key).Put(key, value) }
func (s *Sharded[K, V]) Remove(key K) bool   { return s.shard(key).Remove(key) }

func (s *Sharded[K, V]) Clear() {
	for _, shard := range s.shards {
		shard.Clear()
	}
}

func (s *Sharded[K, V]) Len() int {
	var n int
	for _, shard := range s.shards {
		n += shard.Len()
	}
	return n
}

func (s *Sharded[K, V]) Capacity() int {
	var n int
	for _, shard := range s.shards {
		n += shard.Capacity()
	}
	return n
}

func (s *Sharded[K, V]) Shards() int { return len(s.shards) }

func (s *Sharded[K, V]) Stats() Stats {
	var total Stats
	for _, shard := range s.shards {
		st := shard.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Evictions += st.Evictions
	}
	return total
}

func (s *Sharded[K, V]) HitRate() float64  { return s.Stats().HitRate() }
func (s *Sharded[K, V]) MissRate() float64 { return s.Stats().MissRate() }

func (s *Sharded[K, V]) ResetStats() {
	for _, shard := range s.shards {
		shard.ResetStats()
	}
}

func reasonableShardCount() int {
	return 4 * runtime.GOMAXPROCS(0)
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
