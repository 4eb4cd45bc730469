package s3fifo

// ghost is a bounded FIFO of keys recently dropped from the cache.
// No values: membership alone is the re-admission signal.
//
// Deletion on re-admission is lazy: the key leaves the set immediately, but
// its buffer slot stays behind and is skipped when it reaches the front.
// Slots carry the sequence number of their push, and the set maps each live
// key to its latest sequence, so a slot left by an older push of the same
// key is recognized as stale. The set is authoritative for membership and
// length; the buffer only keeps FIFO order. A compaction pass rebuilds the
// buffer when stale slots outnumber live ones, so memory stays proportional
// to capacity.
type ghost[K comparable] struct {
	capacity int
	fifo     []ghostSlot[K]
	set      map[K]uint64
	seq      uint64
}

type ghostSlot[K comparable] struct {
	key K
	seq uint64
}

func newGhost[K comparable](capacity int) *ghost[K] {
	return &ghost[K]{
		capacity: capacity,
		set:      make(map[K]uint64, capacity),
	}
}

// push records key as recently evicted, dropping the oldest records
// to stay within capacity.
func (g *ghost[K]) push(key K) {
	if _, ok := g.set[key]; ok {
		return
	}
	for len(g.set) >= g.capacity {
		g.dropOldest()
	}
	g.seq++
	g.fifo = append(g.fifo, ghostSlot[K]{key: key, seq: g.seq})
	g.set[key] = g.seq
	g.maybeCompact()
}

func (g *ghost[K]) contains(key K) bool {
	_, ok := g.set[key]
	return ok
}

// remove forgets key. The buffer slot becomes stale and is skipped later.
func (g *ghost[K]) remove(key K) {
	delete(g.set, key)
}

func (g *ghost[K]) len() int { return len(g.set) }

func (g *ghost[K]) clear() {
	g.fifo = nil
	g.set = make(map[K]uint64, g.capacity)
}

// keys returns live keys in FIFO order. For tests and invariant checks.
func (g *ghost[K]) keys() []K {
	live := make([]K, 0, len(g.set))
	for _, slot := range g.fifo {
		if g.live(slot) {
			live = append(live, slot.key)
		}
	}
	return live
}

func (g *ghost[K]) live(slot ghostSlot[K]) bool {
	seq, ok := g.set[slot.key]
	return ok && seq == slot.seq
}

func (g *ghost[K]) dropOldest() {
	for len(g.fifo) > 0 {
		slot := g.fifo[0]
		g.fifo = g.fifo[1:]
		if g.live(slot) {
			delete(g.set, slot.key)
			return
		}
		// Stale slot of a re-admitted or re-pushed key. Skip.
	}
}

func (g *ghost[K]) maybeCompact() {
	if len(g.fifo) <= 2*g.capacity {
		return
	}
	compact := make([]ghostSlot[K], 0, len(g.set))
	for _, slot := range g.fifo {
		if g.live(slot) {
			compact = append(compact, slot)
		}
	}
	g.fifo = compact
}
