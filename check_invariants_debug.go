//go:build debug
// +build debug

// Gomega should not be dependency in non-debug build.

package s3fifo

import (
	"errors"
	"log"

	"github.com/facebookgo/stackerr"
	. "github.com/onsi/gomega"
)

var _ = func() (_ struct{}) {
	RegisterFailHandler(GomegaFailHandler)
	return
}()

func GomegaFailHandler(message string, callerSkip ...int) {
	skip := callerSkip[0] + 1
	log.Fatal("FATAL: invariants are broken:", stackerr.WrapSkip(errors.New(message), skip))
}

func (q *queue[K, V]) checkInvariants() {
	Expect(q.fakeHead.prev).To(BeNil())
	Expect(q.fakeTail.next).To(BeNil())
	Expect(q.fakeHead.owner).To(BeNil())
	Expect(q.fakeTail.owner).To(BeNil())
	var length int
	for n := q.head(); !q.end(n); n = n.next {
		length++
		Expect(n.prev.next).To(BeIdenticalTo(n))
		Expect(n.owner).To(BeIdenticalTo(q))
		Expect(n.frequency()).To(BeNumerically(">=", 0))
		Expect(n.frequency()).To(BeNumerically("<=", maxFreq))
	}
	Expect(q.tail().next).To(BeIdenticalTo(q.fakeTail))
	Expect(length).To(Equal(q.len()))
}

func (c *Cache[K, V]) checkInvariants() {
	c.small.checkInvariants()
	c.main.checkInvariants()
	Expect(c.small.len()).To(BeNumerically("<=", c.smallCapacity), "small overflow")
	Expect(c.main.len()).To(BeNumerically("<=", c.mainCapacity), "main overflow")
	Expect(c.ghost.len()).To(BeNumerically("<=", c.mainCapacity), "ghost overflow")
	Expect(c.smallCapacity + c.mainCapacity).To(Equal(c.capacity))

	var items int
	for _, q := range []*queue[K, V]{c.small, c.main} {
		for n := q.head(); !q.end(n); n = n.next {
			items++
			in, ok := c.index[n.key]
			Expect(ok).To(BeTrue(), "no index ref to entry")
			Expect(in).To(BeIdenticalTo(n), "index refs another node")
			Expect(c.ghost.contains(n.key)).To(BeFalse(), "cached key has ghost record")
		}
	}
	ExpectWithOffset(1, items).To(Equal(len(c.index)), "too many items in index")
	ExpectWithOffset(1, len(c.index)).To(BeNumerically("<=", c.capacity), "total overflow")
}
