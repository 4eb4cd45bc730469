package s3fifo

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	. "github.com/skipor/s3fifo/testutil"
)

type MockEvictCallback struct {
	mock.Mock
}

func (m *MockEvictCallback) OnEvict(key int, value string, reason EvictReason) {
	Byf("OnEvict %v=%q from %v", key, value, reason)
	m.Called(key, value, reason)
}

var _ = Describe("eviction callback", func() {
	var (
		mc *MockEvictCallback
		c  *Cache[int, string]
	)
	BeforeEach(func() {
		mc = &MockEvictCallback{}
		var err error
		c, err = New(testLogger(), Config[int, string]{Capacity: 20, OnEvict: mc.OnEvict})
		Expect(err).NotTo(HaveOccurred())
	})
	AfterEach(func() {
		mc.AssertExpectations(GinkgoT())
		c.ExpectInvariantsOk()
	})

	It("reports quick demotion from small", func() {
		mc.On("OnEvict", 1, "one", EvictedFromSmall).Once()
		c.Put(1, "one")
		c.Put(2, "two")
		c.Put(3, "three")
	})

	It("reports eviction from main", func() {
		mc.On("OnEvict", 1, "one", EvictedFromMain).Once()
		n := newNode(1, "one")
		c.index[1] = n
		c.main.push(n)
		c.evictMain()
	})

	It("is not called on promotion", func() {
		c.Put(1, "one")
		c.Put(2, "two")
		c.Get(1)
		mc.On("OnEvict", 2, "two", EvictedFromSmall).Once()
		c.Put(3, "three") // promotes 1, demotes 2
		c.Put(4, "four")
	})

	It("is not called on explicit remove", func() {
		c.Put(1, "one")
		c.Remove(1)
	})

	It("is not called on clear", func() {
		c.Put(1, "one")
		c.Clear()
	})
})
