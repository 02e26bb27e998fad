package vm

import (
	"fmt"
	"unsafe"
)

// MaxTableEntries is the largest number of entries a single table array may
// have.
const MaxTableEntries = 1 << 24

type flatEntry struct {
	frame int32
	valid bool
}

// FlatPageTable holds one entry for every possible virtual page, indexed
// directly by the page number.
type FlatPageTable struct {
	entries []flatEntry
}

// NewFlatPageTable creates a flat table covering the whole 32-bit address
// space.
func NewFlatPageTable(log2PageSize uint64) (*FlatPageTable, error) {
	bits, err := PageNumberBits(log2PageSize)
	if err != nil {
		return nil, err
	}

	numEntries := uint64(1) << bits
	if numEntries > MaxTableEntries {
		return nil, fmt.Errorf("%w: %d flat entries", ErrTableTooLarge, numEntries)
	}

	return &FlatPageTable{
		entries: make([]flatEntry, numEntries),
	}, nil
}

// NumEntries returns the number of entries of the table.
func (t *FlatPageTable) NumEntries() int {
	return len(t.entries)
}

// Lookup always costs a single access.
func (t *FlatPageTable) Lookup(vpn uint64) (int, bool, int) {
	if vpn >= uint64(len(t.entries)) || !t.entries[vpn].valid {
		return 0, false, 1
	}

	return int(t.entries[vpn].frame), true, 1
}

// Update sets or clears the entry of the page. Pages outside the table are
// ignored.
func (t *FlatPageTable) Update(vpn uint64, frame FrameRef) {
	if vpn >= uint64(len(t.entries)) {
		return
	}

	index, ok := frame.Index()
	t.entries[vpn] = flatEntry{frame: int32(index), valid: ok}
}

// MemoryCost counts every entry, occupied or not.
func (t *FlatPageTable) MemoryCost() uint64 {
	return uint64(len(t.entries)) * uint64(unsafe.Sizeof(flatEntry{}))
}

// Release drops the entry array.
func (t *FlatPageTable) Release() {
	t.entries = nil
}
