package vm

import "fmt"

// AccessType tells if a memory access reads or writes the page.
type AccessType uint8

// Enumeration of access types.
const (
	Read AccessType = iota
	Write
)

// ParseAccessType converts the trace operation character into an AccessType.
func ParseAccessType(c byte) (AccessType, bool) {
	switch c {
	case 'R':
		return Read, true
	case 'W':
		return Write, true
	default:
		return Read, false
	}
}

// Byte returns the trace operation character of the access type.
func (a AccessType) Byte() byte {
	if a == Write {
		return 'W'
	}

	return 'R'
}

func (a AccessType) String() string {
	return string(a.Byte())
}

// A Frame is a physical memory slot that can hold one resident page.
type Frame struct {
	Occupied   bool
	VPN        uint64
	Dirty      bool
	LastAccess uint64
	Frequency  uint64
}

// A FramePool is the fixed set of physical frames of a simulation.
type FramePool struct {
	frames []Frame
}

// NewFramePool creates a pool of numFrames empty frames.
func NewFramePool(numFrames int) *FramePool {
	if numFrames <= 0 {
		panic(fmt.Sprintf("invalid number of frames %d", numFrames))
	}

	return &FramePool{
		frames: make([]Frame, numFrames),
	}
}

// Len returns the number of frames in the pool.
func (p *FramePool) Len() int {
	return len(p.frames)
}

// Frames returns the frames of the pool. Victim finders read it; only the
// pool changes it.
func (p *FramePool) Frames() []Frame {
	return p.frames
}

// Frame returns a copy of the frame at the given index.
func (p *FramePool) Frame(index int) Frame {
	return p.frames[index]
}

// FindFree returns the lowest index of an unoccupied frame.
func (p *FramePool) FindFree() (int, bool) {
	for i := range p.frames {
		if !p.frames[i].Occupied {
			return i, true
		}
	}

	return 0, false
}

// Load places a page into a frame, replacing whatever was there.
func (p *FramePool) Load(index int, vpn uint64, access AccessType, now uint64) {
	f := &p.frames[index]
	f.Occupied = true
	f.VPN = vpn
	f.Dirty = access == Write
	f.LastAccess = now
	f.Frequency = 1
}

// Touch records a hit on the frame.
func (p *FramePool) Touch(index int, access AccessType, now uint64) {
	f := &p.frames[index]
	f.LastAccess = now
	f.Frequency++

	if access == Write {
		f.Dirty = true
	}
}

// ResidentPages returns the pages of all the occupied frames, in frame order.
func (p *FramePool) ResidentPages() []uint64 {
	pages := make([]uint64, 0, len(p.frames))
	for _, f := range p.frames {
		if f.Occupied {
			pages = append(pages, f.VPN)
		}
	}

	return pages
}

// Release drops the frames. The pool cannot be used afterwards.
func (p *FramePool) Release() {
	p.frames = nil
}
