package vm

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FrameRef", func() {
	It("should be unmapped by default", func() {
		var r FrameRef
		Expect(r).To(Equal(Unmapped))
		Expect(r.IsValid()).To(BeFalse())
	})

	It("should refer to frame 0", func() {
		i, ok := MapTo(0).Index()
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(0))
		Expect(MapTo(0)).NotTo(Equal(Unmapped))
	})

	It("should reject negative frames", func() {
		Expect(func() { MapTo(-1) }).To(Panic())
	})
})

var _ = Describe("ParseKind", func() {
	DescribeTable("names",
		func(name string, kind Kind) {
			k, err := ParseKind(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(k).To(Equal(kind))
		},
		Entry("default", "", KindMultiLevel2),
		Entry("flat", "flat", KindFlat),
		Entry("densa", "densa", KindFlat),
		Entry("multilevel-2", "multilevel-2", KindMultiLevel2),
		Entry("hierarquica3", "hierarquica3", KindMultiLevel3),
		Entry("upper case", "INVERTED", KindInverted),
		Entry("invertida", "invertida", KindInverted),
	)

	It("should reject unknown names", func() {
		_, err := ParseKind("btree")
		Expect(errors.Is(err, ErrUnknownKind)).To(BeTrue())
	})
})

var _ = Describe("NewPageTable", func() {
	It("should build every kind", func() {
		for _, kind := range Kinds() {
			pt, err := NewPageTable(kind, 16, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(pt).NotTo(BeNil())
		}
	})

	It("should reject unknown kinds", func() {
		_, err := NewPageTable(Kind("btree"), 12, 4)
		Expect(errors.Is(err, ErrUnknownKind)).To(BeTrue())
	})

	It("should reject an inverted table without frames", func() {
		_, err := NewPageTable(KindInverted, 12, 0)
		Expect(errors.Is(err, ErrInvalidNumFrames)).To(BeTrue())
	})

	It("should reject invalid page sizes", func() {
		_, err := NewPageTable(KindMultiLevel2, 32, 4)
		Expect(errors.Is(err, ErrInvalidPageSize)).To(BeTrue())
	})

	It("should refuse to allocate a huge flat table", func() {
		_, err := NewPageTable(KindFlat, 4, 4)
		Expect(errors.Is(err, ErrTableTooLarge)).To(BeTrue())
	})
})

var _ = Describe("PageTable contract", func() {
	for _, kind := range Kinds() {
		kind := kind

		Context(string(kind), func() {
			var pt PageTable

			BeforeEach(func() {
				var err error
				pt, err = NewPageTable(kind, 16, 8)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should fault on an empty table", func() {
				_, found, cost := pt.Lookup(5)
				Expect(found).To(BeFalse())
				Expect(cost).To(BeNumerically(">=", 1))
			})

			It("should find a mapped page", func() {
				pt.Update(5, MapTo(3))

				frame, found, _ := pt.Lookup(5)
				Expect(found).To(BeTrue())
				Expect(frame).To(Equal(3))
			})

			It("should overwrite a previous mapping", func() {
				pt.Update(5, MapTo(3))
				pt.Update(5, MapTo(6))

				frame, found, _ := pt.Lookup(5)
				Expect(found).To(BeTrue())
				Expect(frame).To(Equal(6))
			})

			It("should fault after invalidation, repeatedly", func() {
				pt.Update(5, MapTo(0))
				pt.Update(5, Unmapped)

				_, found, _ := pt.Lookup(5)
				Expect(found).To(BeFalse())

				cost := pt.MemoryCost()
				pt.Update(5, Unmapped)

				_, found, _ = pt.Lookup(5)
				Expect(found).To(BeFalse())
				Expect(pt.MemoryCost()).To(Equal(cost))
			})

			It("should not touch other pages on invalidation", func() {
				pt.Update(5, MapTo(0))
				pt.Update(6, MapTo(1))
				pt.Update(5, Unmapped)

				frame, found, _ := pt.Lookup(6)
				Expect(found).To(BeTrue())
				Expect(frame).To(Equal(1))
			})

			It("should fault everything after release", func() {
				pt.Update(5, MapTo(0))
				pt.Release()

				_, found, _ := pt.Lookup(5)
				Expect(found).To(BeFalse())
				Expect(pt.MemoryCost()).To(BeZero())

				Expect(func() { pt.Update(5, MapTo(0)) }).NotTo(Panic())
			})
		})
	}
})
