package s3fifo

import (
	"fmt"
	"sync/atomic"

	"github.com/skipor/s3fifo/internal/tag"
)

// maxFreq is the saturation point of the per-node access counter.
// Two bits of state are enough for S3-FIFO; larger counters only make the
// main queue slower to drain.
const maxFreq = 3

// Pre and post conditions (invariants) for push, popHead and remove methods:
// * queue owns nodes between fakeHead and fakeTail.
// * {fakeHead, all owned nodes, fakeTail} are correct doubly linked list.
// * all nodes owned by queue have field node.owner equal to &queue
// * queue.length equals the number of owned nodes.
type queue[K comparable, V any] struct {
	length int

	// Fake nodes. Real nodes are between them.
	// nil <- fakeHead <-> node_0 <-> ... <-> node_(n-1) <-> fakeTail -> nil
	// Such structure prevent nil checks in code.

	// fakeHead.next is the oldest node, the first eviction candidate.
	fakeHead *node[K, V]

	// fakeTail.prev is the newest node. All pushes attach before fakeTail.
	fakeTail *node[K, V]
}

func newQueue[K comparable, V any]() *queue[K, V] {
	q := &queue[K, V]{}
	q.fakeHead, q.fakeTail = &node[K, V]{}, &node[K, V]{}
	link(q.fakeHead, q.fakeTail)
	return q
}

// push attaches n at the tail. n must be detached.
func (q *queue[K, V]) push(n *node[K, V]) {
	n.owner = q
	q.length++
	link(q.tail(), n)
	link(n, q.fakeTail)
}

// popHead detaches and disowns the oldest node.
// Returns nil when the queue is empty.
func (q *queue[K, V]) popHead() *node[K, V] {
	if q.empty() {
		return nil
	}
	n := q.head()
	q.remove(n)
	return n
}

// remove unlinks an owned node. O(1) pointer surgery, no scan.
func (q *queue[K, V]) remove(n *node[K, V]) {
	q.assertOwned(n)
	link(n.prev, n.next)
	n.disown()
	q.length--
	if tag.Debug {
		n.prev = nil
		n.next = nil
	}
}

func (q *queue[K, V]) head() *node[K, V]      { return q.fakeHead.next }
func (q *queue[K, V]) tail() *node[K, V]      { return q.fakeTail.prev }
func (q *queue[K, V]) end(n *node[K, V]) bool { return n == q.fakeTail }
func (q *queue[K, V]) len() int               { return q.length }
func (q *queue[K, V]) empty() bool            { return q.length == 0 }

func (q *queue[K, V]) assertOwned(n *node[K, V]) {
	if tag.Debug {
		if n.owner != q {
			panic("remove of not owned node")
		}
	}
}

// node is the entry record: jointly referenced by the cache index and by
// exactly one of the small/main queues.
type node[K comparable, V any] struct {
	key   K
	value V
	// freq has concurrent atomic access with read lock acquired,
	// or exclusive access with write lock acquired.
	freq  int32
	owner *queue[K, V]
	prev  *node[K, V]
	next  *node[K, V]
}

func newNode[K comparable, V any](key K, value V) *node[K, V] {
	return &node[K, V]{key: key, value: value}
}

func (n *node[K, V]) disown() {
	n.owner = nil
}

// touch bumps the access counter, saturating at maxFreq.
// Safe under read lock: the CAS loop never exceeds the cap even when
// concurrent readers race.
func (n *node[K, V]) touch() {
	for {
		f := atomic.LoadInt32(&n.freq)
		if f >= maxFreq {
			return
		}
		if atomic.CompareAndSwapInt32(&n.freq, f, f+1) {
			return
		}
	}
}

// frequency, setFrequency require write lock be acquired.
func (n *node[K, V]) frequency() int32     { return atomic.LoadInt32(&n.freq) }
func (n *node[K, V]) setFrequency(f int32) { atomic.StoreInt32(&n.freq, f) }

func link[K comparable, V any](a, b *node[K, V]) { a.next, b.prev = b, a }

func (n *node[K, V]) GoString() string {
	key := func(n *node[K, V]) interface{} {
		if n == nil {
			return nil
		}
		return n.key
	}
	return fmt.Sprintf("{key:%v, value:%v, freq:%v, owner:%p, prev:%v, next:%v}",
		n.key, n.value, n.frequency(), n.owner, key(n.prev), key(n.next))
}

var _ fmt.GoStringer = (*node[string, int])(nil)
