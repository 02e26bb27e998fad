// Package simulation wires a page table, a replacement policy and an MMU into
// a run over a trace, with optional recording and monitoring.
package simulation

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/monitoring"
)

// RunSummaryTable is the name of the table that holds one row per run.
const RunSummaryTable = "run_summary"

// publishInterval is the number of accesses between two monitor updates.
const publishInterval = 4096

type runSummaryEntry struct {
	ID           string
	Input        string
	Algorithm    string
	TableKind    string
	PageSizeKB   int
	MemorySizeKB int
	NumFrames    int
	Accesses     uint64
	Faults       uint64
	WriteBacks   uint64
	MemoryCost   uint64
	AverageCost  float64
}

// statisticsSnapshot is what the monitor shows about the MMU.
type statisticsSnapshot struct {
	Accesses        uint64
	Faults          uint64
	WriteBacks      uint64
	TranslationCost uint64
	AverageCost     float64
	FaultRate       float64
	ResidentPages   int
	MemoryCost      uint64
}

// A Simulation replays traces through an MMU.
type Simulation struct {
	id     string
	config Config
	input  string

	mmu          *mmu.MMU
	dataRecorder datarecording.DataRecorder
	ownsRecorder bool
	monitor      *monitoring.Monitor
	ownsMonitor  bool

	terminated  bool
	finalReport Report
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration of the run.
func (s *Simulation) Config() Config {
	return s.config
}

// MMU returns the MMU that translates the accesses.
func (s *Simulation) MMU() *mmu.MMU {
	return s.mmu
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// when nothing is recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when the
// simulation is not monitored.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Run processes every record of the trace. The trace ends at the end of the
// stream or at the first line that is not a record.
func (s *Simulation) Run(r io.Reader) error {
	if s.terminated {
		return fmt.Errorf("simulation %s already terminated", s.id)
	}

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Accesses", 0)
		defer s.monitor.CompleteProgressBar(bar)
	}

	log2PageSize := s.config.Log2PageSize()
	reader := trace.NewReader(r)

	for {
		rec, ok, err := reader.Next()
		if err != nil {
			return err
		}

		if !ok {
			break
		}

		s.mmu.Access(rec.VPN(log2PageSize), rec.Access)

		if bar != nil && reader.Count()%publishInterval == 0 {
			bar.IncrementFinished(publishInterval)
			bar.SetTotal(reader.Count())
			s.publish()
		}
	}

	if bar != nil {
		bar.SetTotal(reader.Count())
		bar.IncrementFinished(reader.Count() % publishInterval)
		s.publish()
	}

	return nil
}

// RunFile runs the trace stored in a file. Compressed traces are recognized
// by their extension.
func (s *Simulation) RunFile(path string) error {
	f, err := trace.Open(path)
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()

	s.input = path

	return s.Run(f)
}

func (s *Simulation) publish() {
	if s.monitor == nil {
		return
	}

	stats := s.mmu.Statistics()
	s.monitor.Publish(s.mmu.Name(), &statisticsSnapshot{
		Accesses:        stats.Accesses,
		Faults:          stats.Faults,
		WriteBacks:      stats.WriteBacks,
		TranslationCost: stats.TranslationCost,
		AverageCost:     stats.AverageCost(),
		FaultRate:       stats.FaultRate(),
		ResidentPages:   len(s.mmu.ResidentPages()),
		MemoryCost:      s.mmu.PageTable().MemoryCost(),
	})
}

// Report returns the results so far. After Terminate it returns the results
// at the time of termination.
func (s *Simulation) Report() Report {
	if s.terminated {
		return s.finalReport
	}

	stats := s.mmu.Statistics()

	return Report{
		Input:         s.input,
		MemorySizeKB:  s.config.MemorySizeKB,
		PageSizeKB:    s.config.PageSizeKB,
		NumFrames:     s.mmu.NumFrames(),
		Algorithm:     s.config.AlgorithmName(),
		TableKind:     s.config.Kind(),
		Accesses:      stats.Accesses,
		Faults:        stats.Faults,
		WriteBacks:    stats.WriteBacks,
		MemoryCost:    s.mmu.PageTable().MemoryCost(),
		AverageCost:   stats.AverageCost(),
		ResidentPages: len(s.mmu.ResidentPages()),
	}
}

func (s *Simulation) recordSummary(r Report) {
	if s.dataRecorder == nil {
		return
	}

	s.dataRecorder.InsertData(RunSummaryTable, runSummaryEntry{
		ID:           s.id,
		Input:        r.Input,
		Algorithm:    string(r.Algorithm),
		TableKind:    string(r.TableKind),
		PageSizeKB:   r.PageSizeKB,
		MemorySizeKB: r.MemorySizeKB,
		NumFrames:    r.NumFrames,
		Accesses:     r.Accesses,
		Faults:       r.Faults,
		WriteBacks:   r.WriteBacks,
		MemoryCost:   r.MemoryCost,
		AverageCost:  r.AverageCost,
	})
}

// abort releases what a partly built simulation holds. Nothing is recorded
// and a recorder given by the caller is left untouched.
func (s *Simulation) abort() {
	s.terminated = true
	s.mmu.Release()

	if s.ownsRecorder {
		if err := s.dataRecorder.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close recorder: %s\n", err)
		}
	}
}

// Terminate records the summary of the run, releases the page table and the
// frames, and closes what the simulation opened. Calling it again does
// nothing.
func (s *Simulation) Terminate() {
	if s.terminated {
		return
	}

	s.finalReport = s.Report()
	s.terminated = true

	s.recordSummary(s.finalReport)
	s.mmu.Release()

	if s.dataRecorder != nil {
		if s.ownsRecorder {
			if err := s.dataRecorder.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to close recorder: %s\n", err)
			}
		} else {
			s.dataRecorder.Flush()
		}
	}

	if s.ownsMonitor {
		if err := s.monitor.StopServer(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to stop monitor: %s\n", err)
		}
	}
}
