package trace

import (
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm/mmu"
	"github.com/sarchlab/vmsim/sim"
)

// EvictionTable is the name of the table that holds one row per replacement.
const EvictionTable = "eviction"

// evictionEntry represents a replacement in the database
type evictionEntry struct {
	AccessIndex uint64 `json:"access_index"`
	Frame       int    `json:"frame"`
	EvictedVPN  uint64 `json:"evicted_vpn"`
	NewVPN      uint64 `json:"new_vpn"`
	WroteBack   bool   `json:"wrote_back"`
}

// A dbTracer is a hook that records the replacements performed by an MMU
// into a database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBTracer creates a hook that records every replacement into the
// data recorder. Attach it to an MMU with AcceptHook.
func NewDBTracer(dataRecorder datarecording.DataRecorder) sim.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(EvictionTable, evictionEntry{})

	return t
}

// Func records the replacement if the hook is triggered by an eviction.
func (t *dbTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != mmu.HookPosEviction {
		return
	}

	out, ok := ctx.Item.(mmu.Outcome)
	if !ok {
		return
	}

	t.dataRecorder.InsertData(EvictionTable, evictionEntry{
		AccessIndex: out.Time,
		Frame:       out.Frame,
		EvictedVPN:  out.EvictedVPN,
		NewVPN:      out.VPN,
		WroteBack:   out.WroteBack,
	})
}
