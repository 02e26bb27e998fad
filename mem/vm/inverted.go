package vm

import "unsafe"

type invertedNode struct {
	vpn   uint64
	frame int
	next  *invertedNode
}

// InvertedPageTable hashes page numbers into buckets of chained nodes. Each
// resident page has one node, so the table grows with the number of frames
// rather than with the address space.
type InvertedPageTable struct {
	buckets  []*invertedNode
	numNodes int

	// owners maps a frame to the page whose node holds it.
	owners map[int]uint64
}

// NewInvertedPageTable creates an inverted table with two buckets per frame.
func NewInvertedPageTable(numFrames int) *InvertedPageTable {
	numBuckets := 2 * numFrames
	if numBuckets < 1 {
		numBuckets = 1
	}

	return &InvertedPageTable{
		buckets: make([]*invertedNode, numBuckets),
		owners:  make(map[int]uint64),
	}
}

// NumBuckets returns the number of hash buckets.
func (t *InvertedPageTable) NumBuckets() int {
	return len(t.buckets)
}

// NumNodes returns the number of live mappings.
func (t *InvertedPageTable) NumNodes() int {
	return t.numNodes
}

func (t *InvertedPageTable) bucketOf(vpn uint64) int {
	return int(vpn % uint64(len(t.buckets)))
}

// Lookup costs one access for the hash and the bucket head, plus one for
// every node passed over.
func (t *InvertedPageTable) Lookup(vpn uint64) (int, bool, int) {
	if len(t.buckets) == 0 {
		return 0, false, 1
	}

	cost := 1
	for n := t.buckets[t.bucketOf(vpn)]; n != nil; n = n.next {
		if n.vpn == vpn {
			return n.frame, true, cost
		}

		cost++
	}

	return 0, false, cost
}

// Update removes the current mapping of the page. For a valid frame, it also
// removes the mapping of whichever page held that frame before, and then
// adds the new node at the head of the bucket.
func (t *InvertedPageTable) Update(vpn uint64, frame FrameRef) {
	if len(t.buckets) == 0 {
		return
	}

	t.remove(vpn)

	index, ok := frame.Index()
	if !ok {
		return
	}

	if stale, found := t.owners[index]; found {
		t.remove(stale)
	}

	b := t.bucketOf(vpn)
	t.buckets[b] = &invertedNode{vpn: vpn, frame: index, next: t.buckets[b]}
	t.owners[index] = vpn
	t.numNodes++
}

func (t *InvertedPageTable) remove(vpn uint64) {
	b := t.bucketOf(vpn)

	var prev *invertedNode
	for n := t.buckets[b]; n != nil; n = n.next {
		if n.vpn != vpn {
			prev = n
			continue
		}

		if prev == nil {
			t.buckets[b] = n.next
		} else {
			prev.next = n.next
		}

		if owner, found := t.owners[n.frame]; found && owner == vpn {
			delete(t.owners, n.frame)
		}

		t.numNodes--

		return
	}
}

// MemoryCost counts the bucket heads and the live nodes.
func (t *InvertedPageTable) MemoryCost() uint64 {
	headSize := uint64(unsafe.Sizeof((*invertedNode)(nil)))
	nodeSize := uint64(unsafe.Sizeof(invertedNode{}))

	return uint64(len(t.buckets))*headSize + uint64(t.numNodes)*nodeSize
}

// Release unlinks every chain and drops the buckets.
func (t *InvertedPageTable) Release() {
	for i, n := range t.buckets {
		for n != nil {
			next := n.next
			n.next = nil
			n = next
		}

		t.buckets[i] = nil
	}

	t.buckets = nil
	t.owners = nil
	t.numNodes = 0
}
