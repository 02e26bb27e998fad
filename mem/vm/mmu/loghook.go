package mmu

import (
	"log"

	"github.com/sarchlab/vmsim/sim"
)

// LogHook prints one line for every hit, fault and replacement.
type LogHook struct {
	sim.LogHookBase
}

// NewLogHook creates a LogHook that writes to the logger.
func NewLogHook(logger *log.Logger) *LogHook {
	h := new(LogHook)
	h.Logger = logger

	return h
}

// Func writes the line of the event.
func (h *LogHook) Func(ctx sim.HookCtx) {
	out, ok := ctx.Item.(Outcome)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosPageHit:
		h.Printf("Hit on page %d (frame %d)\n", out.VPN, out.Frame)
	case HookPosPageFault:
		h.Printf("Page fault on page %d\n", out.VPN)
	case HookPosEviction:
		h.Printf("Replacing frame %d (page %d)\n", out.Frame, out.EvictedVPN)
	}
}
