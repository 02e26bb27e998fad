package simulation

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// Report summarizes a finished run.
type Report struct {
	Input        string
	MemorySizeKB int
	PageSizeKB   int
	NumFrames    int
	Algorithm    replacement.Algorithm
	TableKind    vm.Kind

	Accesses      uint64
	Faults        uint64
	WriteBacks    uint64
	MemoryCost    uint64
	AverageCost   float64
	ResidentPages int
}

// MemoryCostKB returns the memory cost of the page table in KB.
func (r Report) MemoryCostKB() float64 {
	return float64(r.MemoryCost) / 1024.0
}

// WriteTo prints the final report.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "\n--- Final Report ---\n")
	fmt.Fprintf(buf, "Configuration:\n")
	fmt.Fprintf(buf, "  Input file: %s\n", r.Input)
	fmt.Fprintf(buf, "  Memory size: %d KB\n", r.MemorySizeKB)
	fmt.Fprintf(buf, "  Page size: %d KB\n", r.PageSizeKB)
	fmt.Fprintf(buf, "  Physical frames: %d\n", r.NumFrames)
	fmt.Fprintf(buf, "  Replacement algorithm: %s\n", r.Algorithm)
	fmt.Fprintf(buf, "  Page table structure: %s\n\n", r.TableKind)
	fmt.Fprintf(buf, "Simulation results:\n")
	fmt.Fprintf(buf, "  Total memory accesses: %d\n", r.Accesses)
	fmt.Fprintf(buf, "  Total page faults (pages read): %d\n", r.Faults)
	fmt.Fprintf(buf, "  Total pages written (dirty pages): %d\n\n", r.WriteBacks)
	fmt.Fprintf(buf, "Page table analysis:\n")
	fmt.Fprintf(buf, "  Table memory cost: %.2f KB\n", r.MemoryCostKB())
	fmt.Fprintf(buf, "  Average lookup cost: %.2f accesses/operation\n", r.AverageCost)
	fmt.Fprintf(buf, "-----------------------\n")

	return buf.WriteTo(w)
}
