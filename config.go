package s3fifo

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
)

const (
	// MinCapacity is the smallest total capacity New accepts: below it the
	// small queue rounds to the whole cache and the main queue degenerates.
	MinCapacity = 10

	// DefaultSmallRatio is the share of capacity given to the small filter
	// queue when Config.SmallRatio is zero.
	DefaultSmallRatio = 0.1
)

var (
	// ErrTooSmallCapacity is returned by New when Config.Capacity < MinCapacity.
	ErrTooSmallCapacity = errors.New("cache capacity is below the minimum")
	// ErrInvalidSmallRatio is returned by New when Config.SmallRatio leaves
	// either queue without room.
	ErrInvalidSmallRatio = errors.New("invalid small queue ratio")
)

// EvictReason tells an OnEvict callback which policy path destroyed the entry.
type EvictReason int

const (
	// EvictedFromSmall: a one-time visitor dropped when its eviction turn
	// came up in the small queue.
	EvictedFromSmall EvictReason = iota
	// EvictedFromMain: aged out of the main queue after its frequency
	// drained to zero (or was forced out on an all-hot scan).
	EvictedFromMain
)

func (r EvictReason) String() string {
	switch r {
	case EvictedFromSmall:
		return "small"
	case EvictedFromMain:
		return "main"
	}
	return "unknown"
}

type Config[K comparable, V any] struct {
	// Capacity is the total entry limit, small and main queues together.
	// Must be at least MinCapacity.
	Capacity int

	// SmallRatio is the share of Capacity given to the small filter queue.
	// Zero means DefaultSmallRatio. The small queue always gets at least
	// one slot.
	SmallRatio float64

	// OnEvict, if set, is called when the eviction policy destroys an
	// entry: quick demotion out of the small queue or eviction out of the
	// main queue. It is not called on explicit Remove or Clear, and not
	// when a ghost record is forgotten.
	OnEvict func(key K, value V, reason EvictReason)

	// Metrics, if set, receives the hit/miss/eviction counters under the
	// "cache." prefix. Nil keeps the counters unregistered.
	Metrics metrics.Registry

	// metricsPrefix namespaces the registered counter names. Sharded sets
	// it per shard so a shared registry does not silently drop duplicate
	// registrations.
	metricsPrefix string
}

// queueCapacities validates the config and splits Capacity between the
// small and main queues. Both results are at least 1, and small+main
// equals Capacity.
func (c *Config[K, V]) queueCapacities() (small, main int, err error) {
	if c.Capacity < MinCapacity {
		return 0, 0, errors.Wrapf(ErrTooSmallCapacity, "capacity %d, minimum %d", c.Capacity, MinCapacity)
	}
	ratio := c.SmallRatio
	if ratio == 0 {
		ratio = DefaultSmallRatio
	}
	if ratio < 0 || ratio >= 1 {
		return 0, 0, errors.Wrapf(ErrInvalidSmallRatio, "ratio %v not in (0, 1)", ratio)
	}
	small = int(math.Round(float64(c.Capacity) * ratio))
	if small < 1 {
		small = 1
	}
	main = c.Capacity - small
	if main < 1 {
		return 0, 0, errors.Wrapf(ErrInvalidSmallRatio, "ratio %v leaves no room for the main queue", ratio)
	}
	return small, main, nil
}
