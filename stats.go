package s3fifo

import (
	"github.com/rcrowley/go-metrics"
)

// Stats is a point-in-time snapshot of the cache counters.
// Hits and Misses count Get and Contains calls since construction or the
// last ResetStats. Evictions counts entries destroyed by the policy; it
// excludes explicit Remove and Clear.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Accesses returns the total number of lookups.
func (s Stats) Accesses() int64 { return s.Hits + s.Misses }

// HitRate returns Hits/Accesses in [0, 1], or 0 with no accesses.
func (s Stats) HitRate() float64 {
	total := s.Accesses()
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// MissRate returns Misses/Accesses in [0, 1], or 0 with no accesses.
func (s Stats) MissRate() float64 {
	total := s.Accesses()
	if total == 0 {
		return 0
	}
	return float64(s.Misses) / float64(total)
}

// counters backs the statistics surface with go-metrics counters, which are
// safe to bump from the Locked wrapper's read path.
type counters struct {
	hits      metrics.Counter
	misses    metrics.Counter
	evictions metrics.Counter
}

func newCounters(r metrics.Registry, prefix string) counters {
	if r == nil {
		return counters{
			hits:      metrics.NewCounter(),
			misses:    metrics.NewCounter(),
			evictions: metrics.NewCounter(),
		}
	}
	return counters{
		hits:      metrics.NewRegisteredCounter(prefix+"cache.hit", r),
		misses:    metrics.NewRegisteredCounter(prefix+"cache.miss", r),
		evictions: metrics.NewRegisteredCounter(prefix+"cache.evict", r),
	}
}

func (c counters) hit()   { c.hits.Inc(1) }
func (c counters) miss()  { c.misses.Inc(1) }
func (c counters) evict() { c.evictions.Inc(1) }

func (c counters) reset() {
	c.hits.Clear()
	c.misses.Clear()
	c.evictions.Clear()
}

func (c counters) snapshot() Stats {
	return Stats{
		Hits:      c.hits.Count(),
		Misses:    c.misses.Count(),
		Evictions: c.evictions.Count(),
	}
}
