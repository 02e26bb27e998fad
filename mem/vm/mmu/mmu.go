// Package mmu replays memory accesses against a page table and a fixed pool
// of frames, replacing frames when the pool is full.
package mmu

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/replacement"
	"github.com/sarchlab/vmsim/sim"
)

// Hook positions of the MMU. The item of the hook context is an Outcome.
var (
	// HookPosPageHit is triggered when the page is already resident.
	HookPosPageHit = &sim.HookPos{Name: "PageHit"}

	// HookPosPageFault is triggered when a fault is detected, before any
	// frame is chosen.
	HookPosPageFault = &sim.HookPos{Name: "PageFault"}

	// HookPosEviction is triggered after a victim frame has been unmapped.
	HookPosEviction = &sim.HookPos{Name: "Eviction"}

	// HookPosAfterAccess is triggered once the access is complete.
	HookPosAfterAccess = &sim.HookPos{Name: "AfterAccess"}
)

// An Outcome describes what happened during one access.
type Outcome struct {
	Time       uint64
	VPN        uint64
	Access     vm.AccessType
	Cost       int
	Hit        bool
	Frame      int
	Evicted    bool
	EvictedVPN uint64
	WroteBack  bool
}

// MMU processes accesses one at a time. It is not safe for concurrent use.
type MMU struct {
	*sim.HookableBase

	name         string
	pageTable    vm.PageTable
	victimFinder replacement.VictimFinder
	frames       *vm.FramePool

	clock uint64
	stats Statistics
}

// Name returns the name of the MMU.
func (m *MMU) Name() string {
	return m.name
}

// PageTable returns the page table used by the MMU.
func (m *MMU) PageTable() vm.PageTable {
	return m.pageTable
}

// Frames returns a copy of the frames.
func (m *MMU) Frames() []vm.Frame {
	frames := make([]vm.Frame, m.frames.Len())
	copy(frames, m.frames.Frames())

	return frames
}

// NumFrames returns the number of physical frames.
func (m *MMU) NumFrames() int {
	return m.frames.Len()
}

// ResidentPages returns the pages currently held by the frames.
func (m *MMU) ResidentPages() []uint64 {
	return m.frames.ResidentPages()
}

// Statistics returns the counters accumulated so far.
func (m *MMU) Statistics() Statistics {
	return m.stats
}

// Access translates one page access, loading the page on a fault.
func (m *MMU) Access(vpn uint64, access vm.AccessType) Outcome {
	m.clock++
	m.stats.Accesses++

	frame, found, cost := m.pageTable.Lookup(vpn)
	m.stats.TranslationCost += uint64(cost)

	out := Outcome{
		Time:   m.clock,
		VPN:    vpn,
		Access: access,
		Cost:   cost,
	}

	if found {
		m.frames.Touch(frame, access, m.clock)

		out.Hit = true
		out.Frame = frame
		m.invoke(HookPosPageHit, out)
		m.invoke(HookPosAfterAccess, out)

		return out
	}

	m.stats.Faults++
	m.invoke(HookPosPageFault, out)

	target, free := m.frames.FindFree()
	if !free {
		target = m.evict(&out)
	}

	m.frames.Load(target, vpn, access, m.clock)
	m.pageTable.Update(vpn, vm.MapTo(target))

	out.Frame = target
	m.invoke(HookPosAfterAccess, out)

	return out
}

func (m *MMU) evict(out *Outcome) int {
	victim := m.victimFinder.FindVictim(m.frames.Frames())
	old := m.frames.Frame(victim)

	m.pageTable.Update(old.VPN, vm.Unmapped)

	out.Frame = victim
	out.Evicted = true
	out.EvictedVPN = old.VPN

	if old.Dirty {
		m.stats.WriteBacks++
		out.WroteBack = true
	}

	m.invoke(HookPosEviction, *out)

	return victim
}

func (m *MMU) invoke(pos *sim.HookPos, out Outcome) {
	if m.NumHooks() == 0 {
		return
	}

	m.InvokeHook(sim.HookCtx{
		Domain: m,
		Pos:    pos,
		Item:   out,
	})
}

// Release frees the page table and the frames. The MMU cannot be used
// afterwards.
func (m *MMU) Release() {
	m.pageTable.Release()
	m.frames.Release()
}
