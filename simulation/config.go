package simulation

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
)

// ErrInvalidConfig is returned when a configuration cannot describe a
// simulation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes one simulation run.
type Config struct {
	Algorithm    string
	TableKind    string
	PageSizeKB   int
	MemorySizeKB int
	Seed         int64
	Debug        bool

	// RecordPath enables recording into RecordPath + ".sqlite3".
	RecordPath string

	Monitor     bool
	MonitorPort int
	OpenBrowser bool
}

// Validate checks the configuration before anything is built.
func (c Config) Validate() error {
	if _, err := replacement.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, err := vm.ParseKind(c.TableKind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.PageSizeKB <= 0 || bits.OnesCount(uint(c.PageSizeKB)) != 1 {
		return fmt.Errorf("%w: page size must be a positive power of two, got %d KB",
			ErrInvalidConfig, c.PageSizeKB)
	}

	if _, err := vm.PageNumberBits(c.Log2PageSize()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.MemorySizeKB <= 0 {
		return fmt.Errorf("%w: memory size must be positive, got %d KB",
			ErrInvalidConfig, c.MemorySizeKB)
	}

	if c.NumFrames() < 1 {
		return fmt.Errorf("%w: memory of %d KB holds no page of %d KB",
			ErrInvalidConfig, c.MemorySizeKB, c.PageSizeKB)
	}

	if c.NumFrames() > vm.MaxTableEntries {
		return fmt.Errorf("%w: %w: %d frames", ErrInvalidConfig,
			vm.ErrTableTooLarge, c.NumFrames())
	}

	if c.MonitorPort < 0 {
		return fmt.Errorf("%w: monitor port %d", ErrInvalidConfig, c.MonitorPort)
	}

	if c.OpenBrowser && !c.Monitor {
		return fmt.Errorf("%w: opening a browser requires the monitor",
			ErrInvalidConfig)
	}

	return nil
}

// AlgorithmName returns the parsed replacement algorithm.
func (c Config) AlgorithmName() replacement.Algorithm {
	alg, _ := replacement.ParseAlgorithm(c.Algorithm)
	return alg
}

// Kind returns the parsed page table kind.
func (c Config) Kind() vm.Kind {
	kind, _ := vm.ParseKind(c.TableKind)
	return kind
}

// Log2PageSize returns log2 of the page size in bytes.
func (c Config) Log2PageSize() uint64 {
	if c.PageSizeKB <= 0 {
		return 0
	}

	return uint64(bits.Len(uint(c.PageSizeKB*1024)) - 1)
}

// NumFrames returns how many pages fit in the memory.
func (c Config) NumFrames() int {
	if c.PageSizeKB <= 0 {
		return 0
	}

	return c.MemorySizeKB / c.PageSizeKB
}
