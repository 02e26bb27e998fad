package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FramePool", func() {
	var pool *FramePool

	BeforeEach(func() {
		pool = NewFramePool(3)
	})

	It("should panic with no frames", func() {
		Expect(func() { NewFramePool(0) }).To(Panic())
	})

	It("should find the first free frame", func() {
		i, ok := pool.FindFree()
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(0))

		pool.Load(0, 10, Read, 1)
		pool.Load(2, 12, Read, 2)

		i, ok = pool.FindFree()
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(1))
	})

	It("should report no free frame when full", func() {
		for i := 0; i < 3; i++ {
			pool.Load(i, uint64(i), Read, uint64(i))
		}

		_, ok := pool.FindFree()
		Expect(ok).To(BeFalse())
	})

	It("should reset a frame on load", func() {
		pool.Load(1, 7, Write, 3)
		pool.Touch(1, Read, 4)
		pool.Load(1, 8, Read, 5)

		Expect(pool.Frame(1)).To(Equal(Frame{
			Occupied:   true,
			VPN:        8,
			Dirty:      false,
			LastAccess: 5,
			Frequency:  1,
		}))
	})

	It("should record hits", func() {
		pool.Load(0, 7, Read, 1)
		pool.Touch(0, Read, 2)
		pool.Touch(0, Write, 3)
		pool.Touch(0, Read, 4)

		f := pool.Frame(0)
		Expect(f.Frequency).To(Equal(uint64(4)))
		Expect(f.LastAccess).To(Equal(uint64(4)))
		Expect(f.Dirty).To(BeTrue())
	})

	It("should list resident pages in frame order", func() {
		pool.Load(2, 30, Read, 1)
		pool.Load(0, 10, Read, 2)

		Expect(pool.ResidentPages()).To(Equal([]uint64{10, 30}))
	})
})

var _ = Describe("AccessType", func() {
	It("should parse trace operations", func() {
		a, ok := ParseAccessType('R')
		Expect(ok).To(BeTrue())
		Expect(a).To(Equal(Read))

		a, ok = ParseAccessType('W')
		Expect(ok).To(BeTrue())
		Expect(a).To(Equal(Write))

		_, ok = ParseAccessType('x')
		Expect(ok).To(BeFalse())
	})

	It("should print as the trace character", func() {
		Expect(Write.String()).To(Equal("W"))
		Expect(Read.Byte()).To(Equal(byte('R')))
	})
})
