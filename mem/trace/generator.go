package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"

	"github.com/sarchlab/vmsim/mem/vm"
)

// ErrUnknownPattern is returned for access pattern names that are not
// supported.
var ErrUnknownPattern = errors.New("unknown access pattern")

// Pattern selects how generated addresses are distributed.
type Pattern string

// Enumeration of access patterns.
const (
	Sequential Pattern = "sequential"
	Uniform    Pattern = "random"
	Temporal   Pattern = "temporal"
	Spatial    Pattern = "spatial"
)

// Generator parameters.
const (
	DefaultNumAccesses = 1000000
	SequentialStride   = 4
	HotspotSize        = 250
	SpatialWindow      = 4096
)

// Patterns lists all the access patterns.
func Patterns() []Pattern {
	return []Pattern{Sequential, Uniform, Temporal, Spatial}
}

// ParsePattern converts a pattern name, or its 1-based menu number, into a
// Pattern.
func ParsePattern(name string) (Pattern, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	for i, p := range Patterns() {
		if name == string(p) || name == fmt.Sprint(i+1) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownPattern, name)
}

// DefaultFileName returns the file name traces of the pattern are written to
// when no name is given.
func DefaultFileName(p Pattern) string {
	return string(p) + "_log.log"
}

// A Generator produces synthetic traces.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. The same seed produces the same traces.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) randomAddress() uint32 {
	return uint32(g.rng.Int31())<<17 ^ uint32(g.rng.Int31())
}

func (g *Generator) randomAccess() vm.AccessType {
	if g.rng.Int31()%2 == 0 {
		return vm.Read
	}

	return vm.Write
}

func (g *Generator) spatialBase() uint32 {
	base := g.randomAddress()
	if base > math.MaxUint32-SpatialWindow {
		base = math.MaxUint32 - SpatialWindow
	}

	return base
}

// Records returns n records following the pattern.
func (g *Generator) Records(p Pattern, n int) ([]Record, error) {
	next, err := g.addressSource(p, n)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		addr := next(i)
		records = append(records, Record{Address: addr, Access: g.randomAccess()})
	}

	return records, nil
}

// Generate writes n records following the pattern to w.
func (g *Generator) Generate(w io.Writer, p Pattern, n int) error {
	next, err := g.addressSource(p, n)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		addr := next(i)

		err := WriteRecord(bw, Record{Address: addr, Access: g.randomAccess()})
		if err != nil {
			return err
		}
	}

	return bw.Flush()
}

func (g *Generator) addressSource(p Pattern, n int) (func(i int) uint32, error) {
	switch p {
	case Sequential:
		return func(i int) uint32 {
			return uint32(i) * SequentialStride
		}, nil
	case Uniform:
		return func(int) uint32 {
			return g.randomAddress()
		}, nil
	case Temporal:
		hotspot := make([]uint32, HotspotSize)
		for i := range hotspot {
			hotspot[i] = g.randomAddress()
		}

		return func(int) uint32 {
			return hotspot[g.rng.Intn(HotspotSize)]
		}, nil
	case Spatial:
		return g.spatialSource(n), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, string(p))
	}
}

// spatialSource draws offsets in a small window above a base address. The
// base moves every quarter of the trace.
func (g *Generator) spatialSource(n int) func(i int) uint32 {
	quarter := n / 4
	base := g.spatialBase()

	return func(i int) uint32 {
		if quarter > 0 && i > 0 && i%quarter == 0 {
			base = g.spatialBase()
		}

		return base + uint32(g.rng.Intn(SpatialWindow))
	}
}
