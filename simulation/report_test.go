package simulation_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/simulation"
)

var _ = Describe("Report", func() {
	It("should print the final report", func() {
		s, err := simulation.MakeBuilder().WithConfig(simulation.Config{
			Algorithm:    "lru",
			TableKind:    "flat",
			PageSizeKB:   4,
			MemorySizeKB: 16,
		}).Build()
		Expect(err).NotTo(HaveOccurred())
		defer s.Terminate()

		Expect(s.Run(strings.NewReader(
			"00001000 R\n00001004 W\n00002000 R\n"))).To(Succeed())

		buf := new(bytes.Buffer)
		n, err := s.Report().WriteTo(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(buf.Len())))

		out := buf.String()
		Expect(out).To(ContainSubstring("--- Final Report ---"))
		Expect(out).To(ContainSubstring("  Memory size: 16 KB\n"))
		Expect(out).To(ContainSubstring("  Page size: 4 KB\n"))
		Expect(out).To(ContainSubstring("  Physical frames: 4\n"))
		Expect(out).To(ContainSubstring("  Replacement algorithm: lru\n"))
		Expect(out).To(ContainSubstring("  Page table structure: flat\n"))
		Expect(out).To(ContainSubstring("  Total memory accesses: 3\n"))
		Expect(out).To(ContainSubstring("  Total page faults (pages read): 2\n"))
		Expect(out).To(ContainSubstring("  Total pages written (dirty pages): 0\n"))
		Expect(out).To(ContainSubstring("  Table memory cost: 8192.00 KB\n"))
		Expect(out).To(ContainSubstring(
			"  Average lookup cost: 1.00 accesses/operation\n"))
	})

	It("should convert the memory cost to KB", func() {
		Expect(simulation.Report{MemoryCost: 1536}.MemoryCostKB()).To(Equal(1.5))
	})
})
