package mmu

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/sim"
)

// A Builder can build an MMU.
type Builder struct {
	numFrames    int
	pageTable    vm.PageTable
	victimFinder replacement.VictimFinder
	hooks        []sim.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithPageTable sets the page table that the MMU uses.
func (b Builder) WithPageTable(pageTable vm.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// WithVictimFinder sets the policy that picks the frame to replace.
func (b Builder) WithVictimFinder(finder replacement.VictimFinder) Builder {
	b.victimFinder = finder
	return b
}

// WithHook registers a hook on the MMU to build.
func (b Builder) WithHook(hook sim.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.numFrames <= 0 {
		panic("the MMU needs at least one frame")
	}

	if b.pageTable == nil {
		panic("page table is not set")
	}

	if b.victimFinder == nil {
		panic("victim finder is not set")
	}
}

// Build returns a newly created MMU.
func (b Builder) Build(name string) *MMU {
	b.parametersMustBeValid()

	m := &MMU{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		pageTable:    b.pageTable,
		victimFinder: b.victimFinder,
		frames:       vm.NewFramePool(b.numFrames),
	}

	for _, h := range b.hooks {
		m.AcceptHook(h)
	}

	return m
}
