package vm

import (
	"fmt"
	"unsafe"
)

type levelEntry struct {
	next  *levelTable
	frame int32
	valid bool
}

type levelTable struct {
	entries []levelEntry
}

// MultiLevelPageTable is a hierarchical page table. The page number is split
// into one index per level. Tables below the root are only allocated when a
// mapping first needs them and are kept once allocated.
type MultiLevelPageTable struct {
	levels    int
	bits      []int
	shifts    []uint
	numPages  uint64
	root      *levelTable
	numTables []int
}

// NewMultiLevelPageTable creates a page table with 1 to 3 levels.
func NewMultiLevelPageTable(
	levels int,
	log2PageSize uint64,
) (*MultiLevelPageTable, error) {
	if levels < 1 || levels > 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevels, levels)
	}

	pageBits, err := PageNumberBits(log2PageSize)
	if err != nil {
		return nil, err
	}

	t := &MultiLevelPageTable{
		levels:    levels,
		bits:      splitPageNumberBits(pageBits, levels),
		shifts:    make([]uint, levels),
		numPages:  uint64(1) << pageBits,
		numTables: make([]int, levels),
	}

	shift := uint(0)
	for level := levels - 1; level >= 0; level-- {
		if uint64(1)<<t.bits[level] > MaxTableEntries {
			return nil, fmt.Errorf("%w: %d bits at level %d",
				ErrTableTooLarge, t.bits[level], level)
		}

		t.shifts[level] = shift
		shift += uint(t.bits[level])
	}

	t.root = t.newTable(0)

	return t, nil
}

// splitPageNumberBits assigns the page number bits to the levels, from the
// most significant to the least significant.
func splitPageNumberBits(pageBits, levels int) []int {
	switch levels {
	case 1:
		return []int{pageBits}
	case 2:
		high := (pageBits + 1) / 2
		return []int{high, pageBits - high}
	default:
		third := pageBits / 3
		return []int{third, third, pageBits - 2*third}
	}
}

func (t *MultiLevelPageTable) newTable(level int) *levelTable {
	t.numTables[level]++

	return &levelTable{
		entries: make([]levelEntry, 1<<t.bits[level]),
	}
}

func (t *MultiLevelPageTable) index(vpn uint64, level int) uint64 {
	mask := uint64(1)<<t.bits[level] - 1
	return (vpn >> t.shifts[level]) & mask
}

// Levels returns the number of levels of the table.
func (t *MultiLevelPageTable) Levels() int {
	return t.levels
}

// LevelBits returns how many page number bits each level indexes.
func (t *MultiLevelPageTable) LevelBits() []int {
	bits := make([]int, len(t.bits))
	copy(bits, t.bits)

	return bits
}

// NumTables returns the number of tables allocated so far, the root included.
func (t *MultiLevelPageTable) NumTables() int {
	n := 0
	for _, c := range t.numTables {
		n += c
	}

	return n
}

// Lookup walks down the levels. Each level visited costs one access, and the
// walk stops at the first invalid entry.
func (t *MultiLevelPageTable) Lookup(vpn uint64) (int, bool, int) {
	if t.root == nil || vpn >= t.numPages {
		return 0, false, 1
	}

	table := t.root
	cost := 0

	for level := 0; ; level++ {
		cost++

		entry := &table.entries[t.index(vpn, level)]
		if !entry.valid {
			return 0, false, cost
		}

		if level == t.levels-1 {
			return int(entry.frame), true, cost
		}

		table = entry.next
	}
}

// Update maps or unmaps the page. Missing tables on the path are allocated
// for a mapping. An unmapping never allocates and never frees tables.
func (t *MultiLevelPageTable) Update(vpn uint64, frame FrameRef) {
	if t.root == nil || vpn >= t.numPages {
		return
	}

	index, ok := frame.Index()
	table := t.root

	for level := 0; level < t.levels-1; level++ {
		entry := &table.entries[t.index(vpn, level)]
		if !entry.valid {
			if !ok {
				return
			}

			entry.next = t.newTable(level + 1)
			entry.valid = true
		}

		table = entry.next
	}

	leaf := &table.entries[t.index(vpn, t.levels-1)]
	leaf.frame = int32(index)
	leaf.valid = ok
}

// MemoryCost sums the size of all the tables allocated so far.
func (t *MultiLevelPageTable) MemoryCost() uint64 {
	entrySize := uint64(unsafe.Sizeof(levelEntry{}))

	cost := uint64(0)
	for level, n := range t.numTables {
		cost += uint64(n) * (uint64(1) << t.bits[level]) * entrySize
	}

	return cost
}

// Release frees the tables of every level.
func (t *MultiLevelPageTable) Release() {
	if t.root != nil {
		t.releaseTable(t.root, 0)
	}

	t.root = nil
	for i := range t.numTables {
		t.numTables[i] = 0
	}
}

func (t *MultiLevelPageTable) releaseTable(table *levelTable, level int) {
	if level < t.levels-1 {
		for i := range table.entries {
			if table.entries[i].valid {
				t.releaseTable(table.entries[i].next, level+1)
			}
		}
	}

	table.entries = nil
}
