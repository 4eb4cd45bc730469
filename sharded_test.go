package s3fifo

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sharded", func() {
	newSharded := func(capacity, shards int) *Sharded[string, int] {
		s, err := NewSharded(testLogger(), ShardedConfig[string, int]{
			Config: Config[string, int]{Capacity: capacity},
			Shards: shards,
			Hash:   StringHash(),
		})
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	It("requires a hash function", func() {
		_, err := NewSharded(testLogger(), ShardedConfig[string, int]{
			Config: Config[string, int]{Capacity: 100},
			Shards: 4,
		})
		Expect(errors.Is(err, ErrNilHash)).To(BeTrue())
	})

	It("rejects capacity too small to split", func() {
		_, err := NewSharded(testLogger(), ShardedConfig[string, int]{
			Config: Config[string, int]{Capacity: 20},
			Shards: 4,
			Hash:   StringHash(),
		})
		Expect(errors.Is(err, ErrTooSmallCapacity)).To(BeTrue())
	})

	It("rounds the shard count up to a power of two", func() {
		s := newSharded(1000, 3)
		Expect(s.Shards()).To(Equal(4))
		Expect(s.Capacity()).To(Equal(1000))
	})

	It("picks a default shard count", func() {
		s, err := NewSharded(testLogger(), ShardedConfig[string, int]{
			Config: Config[string, int]{Capacity: 1 << 16},
			Hash:   StringHash(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Shards()).To(BeNumerically(">=", 1))
		Expect(s.Shards() & (s.Shards() - 1)).To(BeZero())
	})

	It("keeps a key on a single shard", func() {
		s := newSharded(400, 4)
		s.Put("a", 1)
		var holders int
		for _, shard := range s.shards {
			if _, ok := shard.c.index["a"]; ok {
				holders++
			}
		}
		Expect(holders).To(Equal(1))
		v, ok := s.Get("a")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))
	})

	It("aggregates length and stats over shards", func() {
		s := newSharded(400, 4)
		const keys = 50
		for i := 0; i < keys; i++ {
			s.Put(fmt.Sprintf("key-%d", i), i)
		}
		// A shard that took more one-time keys than its small queue holds
		// demotes the extras, so only the survivors are counted.
		var present int64
		for i := 0; i < keys; i++ {
			if _, ok := s.Get(fmt.Sprintf("key-%d", i)); ok {
				present++
			}
		}
		Expect(present).To(BeNumerically(">", 0))
		Expect(s.Len()).To(BeEquivalentTo(present))
		s.Get("absent")
		stats := s.Stats()
		Expect(stats.Hits).To(Equal(present))
		Expect(stats.Misses).To(Equal(keys - present + 1))
		s.ResetStats()
		Expect(s.Stats()).To(Equal(Stats{}))
	})

	It("registers per-shard counters in a shared registry", func() {
		registry := metrics.NewRegistry()
		s, err := NewSharded(testLogger(), ShardedConfig[string, int]{
			Config: Config[string, int]{Capacity: 400, Metrics: registry},
			Shards: 4,
			Hash:   StringHash(),
		})
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 30; i++ {
			key := fmt.Sprintf("key-%d", i)
			s.Put(key, i)
			s.Get(key)
		}
		var hits int64
		for i := 0; i < s.Shards(); i++ {
			name := fmt.Sprintf("shard.%d.cache.hit", i)
			counter, ok := registry.Get(name).(metrics.Counter)
			Expect(ok).To(BeTrue(), name)
			hits += counter.Count()
		}
		Expect(hits).To(Equal(s.Stats().Hits))
		Expect(hits).To(BeEquivalentTo(30))
	})

	It("clears every shard", func() {
		s := newSharded(400, 4)
		for i := 0; i < 50; i++ {
			s.Put(fmt.Sprintf("key-%d", i), i)
		}
		s.Clear()
		Expect(s.Len()).To(BeZero())
	})

	It("removes only from the owning shard", func() {
		s := newSharded(400, 4)
		s.Put("a", 1)
		s.Put("b", 2)
		Expect(s.Remove("a")).To(BeTrue())
		Expect(s.Remove("a")).To(BeFalse())
		Expect(s.Contains("b")).To(BeTrue())
	})

	It("survives concurrent use", func() {
		s := newSharded(1600, 8)
		const (
			workers = 8
			ops     = 2000
		)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(seed int) {
				defer GinkgoRecover()
				defer wg.Done()
				for i := 0; i < ops; i++ {
					key := fmt.Sprintf("key-%d", (seed*31+i)%500)
					if i%2 == 0 {
						s.Put(key, i)
					} else {
						s.Get(key)
					}
				}
			}(w)
		}
		wg.Wait()
		Expect(s.Len()).To(BeNumerically("<=", s.Capacity()))
	})
})

var _ = Describe("StringHash", func() {
	It("is deterministic within a process", func() {
		h := StringHash()
		Expect(h("key")).To(Equal(h("key")))
	})

	It("spreads distinct keys", func() {
		h := StringHash()
		seen := map[uint64]struct{}{}
		for i := 0; i < 100; i++ {
			seen[h(fmt.Sprintf("key-%d", i))] = struct{}{}
		}
		Expect(len(seen)).To(BeNumerically(">", 90))
	})
})
