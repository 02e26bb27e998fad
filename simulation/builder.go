package simulation

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/monitoring"
)

// Builder can be used to build a simulation.
type Builder struct {
	config       Config
	debugOutput  io.Writer
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		debugOutput: os.Stdout,
	}
}

// WithConfig sets the configuration of the run.
func (b Builder) WithConfig(config Config) Builder {
	b.config = config
	return b
}

// WithDebugOutput sets where the per-access lines of the debug mode go.
func (b Builder) WithDebugOutput(w io.Writer) Builder {
	b.debugOutput = w
	return b
}

// WithDataRecorder records into the given recorder instead of the file named
// by the configuration.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.dataRecorder = r
	return b
}

// WithMonitor publishes to the given monitor instead of starting one. The
// caller owns the server of the monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// Build validates the configuration and builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     xid.New().String(),
		config: b.config,
	}

	pageTable, err := vm.NewPageTable(
		b.config.Kind(), b.config.Log2PageSize(), b.config.NumFrames())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	victimFinder, err := replacement.NewVictimFinder(
		b.config.AlgorithmName(), b.config.Seed)
	if err != nil {
		pageTable.Release()
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	mmuBuilder := mmu.MakeBuilder().
		WithNumFrames(b.config.NumFrames()).
		WithPageTable(pageTable).
		WithVictimFinder(victimFinder)

	if b.config.Debug {
		logger := log.New(b.debugOutput, "", 0)
		mmuBuilder = mmuBuilder.WithHook(mmu.NewLogHook(logger))
	}

	s.dataRecorder = b.dataRecorder
	if s.dataRecorder == nil && b.config.RecordPath != "" {
		s.dataRecorder, err = datarecording.New(b.config.RecordPath)
		if err != nil {
			pageTable.Release()
			return nil, err
		}

		s.ownsRecorder = true
	}

	if s.dataRecorder != nil {
		s.dataRecorder.CreateTable(RunSummaryTable, runSummaryEntry{})
		mmuBuilder = mmuBuilder.WithHook(trace.NewDBTracer(s.dataRecorder))
	}

	s.mmu = mmuBuilder.Build("MMU")

	if err := b.buildMonitor(s); err != nil {
		s.abort()
		return nil, err
	}

	return s, nil
}

func (b Builder) buildMonitor(s *Simulation) error {
	s.monitor = b.monitor
	if s.monitor == nil && b.config.Monitor {
		s.monitor = monitoring.NewMonitor().WithPortNumber(b.config.MonitorPort)
		if err := s.monitor.StartServer(); err != nil {
			s.monitor = nil
			return err
		}

		s.ownsMonitor = true
	}

	if s.monitor == nil {
		return nil
	}

	if b.config.OpenBrowser {
		if err := s.monitor.OpenBrowser(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open browser: %s\n", err)
		}
	}

	s.publish()

	return nil
}
