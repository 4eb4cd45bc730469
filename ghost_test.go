package s3fifo

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("ghost", func() {
	var g *ghost[int]
	BeforeEach(func() {
		g = newGhost[int](3)
	})

	It("init", func() {
		Expect(g.len()).To(BeZero())
		Expect(g.contains(1)).To(BeFalse())
	})

	It("push and contains", func() {
		g.push(1)
		Expect(g.contains(1)).To(BeTrue())
		Expect(g.len()).To(Equal(1))
	})

	It("push of remembered key is no-op", func() {
		g.push(1)
		g.push(1)
		Expect(g.len()).To(Equal(1))
		Expect(g.keys()).To(Equal([]int{1}))
	})

	It("overflow drops oldest", func() {
		for i := 1; i <= 4; i++ {
			g.push(i)
		}
		Expect(g.len()).To(Equal(3))
		Expect(g.contains(1)).To(BeFalse())
		Expect(g.keys()).To(Equal([]int{2, 3, 4}))
	})

	It("remove forgets a key", func() {
		g.push(1)
		g.push(2)
		g.remove(1)
		Expect(g.contains(1)).To(BeFalse())
		Expect(g.len()).To(Equal(1))
		Expect(g.keys()).To(Equal([]int{2}))
	})

	It("overflow skips removed slots", func() {
		g.push(1)
		g.push(2)
		g.push(3)
		g.remove(1)
		g.remove(2)
		g.push(4)
		g.push(5)
		g.push(6) // 3 is the oldest live key and must go.
		Expect(g.contains(3)).To(BeFalse())
		Expect(g.keys()).To(Equal([]int{4, 5, 6}))
	})

	It("re-pushed key queues at the tail, not at its stale slot", func() {
		g.push(1)
		g.push(2)
		g.remove(1)
		g.push(3)
		g.push(1) // Back again: now the newest, not the oldest.
		g.push(4) // Overflow must drop 2, not 1.
		Expect(g.contains(2)).To(BeFalse())
		Expect(g.keys()).To(Equal([]int{3, 1, 4}))
	})

	It("compaction keeps live keys and order", func() {
		for i := 1; i <= 100; i++ {
			g.push(i)
			if i%2 == 0 {
				g.remove(i)
			}
		}
		Expect(len(g.fifo)).To(BeNumerically("<=", 2*g.capacity+1))
		Expect(g.len()).To(BeNumerically("<=", 3))
		Expect(g.keys()).To(HaveLen(g.len()))
	})

	It("clear", func() {
		g.push(1)
		g.push(2)
		g.clear()
		Expect(g.len()).To(BeZero())
		Expect(g.contains(1)).To(BeFalse())
		Expect(g.fifo).To(BeEmpty())
	})
})
