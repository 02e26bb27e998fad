package vm

import (
	"errors"
	"unsafe"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MultiLevelPageTable", func() {
	entrySize := uint64(unsafe.Sizeof(levelEntry{}))

	It("should reject unsupported level counts", func() {
		_, err := NewMultiLevelPageTable(4, 12)
		Expect(errors.Is(err, ErrInvalidLevels)).To(BeTrue())
	})

	DescribeTable("bit split",
		func(levels int, log2PageSize uint64, bits []int) {
			pt, err := NewMultiLevelPageTable(levels, log2PageSize)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt.LevelBits()).To(Equal(bits))
		},
		Entry("2 levels, 20 bits", 2, uint64(12), []int{10, 10}),
		Entry("2 levels, 21 bits", 2, uint64(11), []int{11, 10}),
		Entry("3 levels, 20 bits", 3, uint64(12), []int{6, 6, 8}),
		Entry("3 levels, 22 bits", 3, uint64(10), []int{7, 7, 8}),
		Entry("1 level, 16 bits", 1, uint64(16), []int{16}),
	)

	Context("two levels", func() {
		var pt *MultiLevelPageTable

		BeforeEach(func() {
			var err error
			pt, err = NewMultiLevelPageTable(2, 12)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should only hold the root at first", func() {
			Expect(pt.NumTables()).To(Equal(1))
			Expect(pt.MemoryCost()).To(Equal(1024 * entrySize))
		})

		It("should cost 1 for a root miss", func() {
			_, found, cost := pt.Lookup(0x12345)
			Expect(found).To(BeFalse())
			Expect(cost).To(Equal(1))
		})

		It("should cost 2 for a leaf miss", func() {
			pt.Update(0x12345, MapTo(1))

			_, found, cost := pt.Lookup(0x12346)
			Expect(found).To(BeFalse())
			Expect(cost).To(Equal(2))
		})

		It("should cost 2 for a hit", func() {
			pt.Update(0x12345, MapTo(1))

			frame, found, cost := pt.Lookup(0x12345)
			Expect(found).To(BeTrue())
			Expect(frame).To(Equal(1))
			Expect(cost).To(Equal(2))
		})

		It("should grow only on a new path", func() {
			base := pt.MemoryCost()

			pt.Update(0x00001, MapTo(0))
			afterFirst := pt.MemoryCost()
			Expect(afterFirst).To(Equal(base + 1024*entrySize))

			pt.Update(0x00002, MapTo(1))
			Expect(pt.MemoryCost()).To(Equal(afterFirst))

			for i := 0; i < 10; i++ {
				pt.Lookup(0x00001)
				pt.Lookup(0x00002)
			}
			Expect(pt.MemoryCost()).To(Equal(afterFirst))

			pt.Update(0xFFC01, MapTo(2))
			Expect(pt.MemoryCost()).To(Equal(afterFirst + 1024*entrySize))
			Expect(pt.NumTables()).To(Equal(3))
		})

		It("should keep sub-tables after invalidation", func() {
			pt.Update(0x00001, MapTo(0))
			cost := pt.MemoryCost()

			pt.Update(0x00001, Unmapped)

			Expect(pt.MemoryCost()).To(Equal(cost))
			_, found, lookupCost := pt.Lookup(0x00001)
			Expect(found).To(BeFalse())
			Expect(lookupCost).To(Equal(2))
		})

		It("should not allocate when invalidating an absent path", func() {
			pt.Update(0x54321, Unmapped)

			Expect(pt.NumTables()).To(Equal(1))
		})

		It("should ignore pages beyond the address space", func() {
			pt.Update(1<<20, MapTo(0))

			_, found, cost := pt.Lookup(1 << 20)
			Expect(found).To(BeFalse())
			Expect(cost).To(Equal(1))
			Expect(pt.NumTables()).To(Equal(1))
		})
	})

	Context("three levels", func() {
		var pt *MultiLevelPageTable

		BeforeEach(func() {
			var err error
			pt, err = NewMultiLevelPageTable(3, 12)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should cost 3 for a hit", func() {
			pt.Update(0xABCDE, MapTo(4))

			frame, found, cost := pt.Lookup(0xABCDE)
			Expect(found).To(BeTrue())
			Expect(frame).To(Equal(4))
			Expect(cost).To(Equal(3))
		})

		It("should stop at the first missing level", func() {
			pt.Update(0xABCDE, MapTo(4))

			_, _, cost := pt.Lookup(0x00000)
			Expect(cost).To(Equal(1))

			// Same root slot, different middle slot.
			_, _, cost = pt.Lookup(0xAB000 ^ 0x01000)
			Expect(cost).To(Equal(2))

			_, _, cost = pt.Lookup(0xABCDF)
			Expect(cost).To(Equal(3))
		})

		It("should size each level by its own bits", func() {
			pt.Update(0xABCDE, MapTo(4))

			Expect(pt.NumTables()).To(Equal(3))
			Expect(pt.MemoryCost()).To(Equal((64 + 64 + 256) * entrySize))
		})

		It("should release all levels", func() {
			pt.Update(0xABCDE, MapTo(4))
			pt.Update(0x12345, MapTo(5))

			pt.Release()

			Expect(pt.NumTables()).To(Equal(0))
			Expect(pt.MemoryCost()).To(BeZero())
		})
	})

	Context("one level", func() {
		It("should cost 1 for a hit", func() {
			pt, err := NewMultiLevelPageTable(1, 16)
			Expect(err).NotTo(HaveOccurred())

			pt.Update(0x1234, MapTo(9))

			frame, found, cost := pt.Lookup(0x1234)
			Expect(found).To(BeTrue())
			Expect(frame).To(Equal(9))
			Expect(cost).To(Equal(1))
		})
	})
})
