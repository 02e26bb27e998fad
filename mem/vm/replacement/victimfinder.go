// Package replacement provides the policies that pick which frame to evict
// when every frame is occupied.
package replacement

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/sarchlab/vmsim/mem/vm"
)

// ErrUnknownAlgorithm is returned for replacement algorithm names that are
// not supported.
var ErrUnknownAlgorithm = errors.New("unknown replacement algorithm")

// A VictimFinder decides which frame should be evicted.
type VictimFinder interface {
	// FindVictim returns the index of the frame to evict. It does not change
	// the frames.
	FindVictim(frames []vm.Frame) int
}

// Algorithm names a replacement policy.
type Algorithm string

// Enumeration of replacement algorithms.
const (
	LRU    Algorithm = "lru"
	LFU    Algorithm = "lfu"
	FIFO   Algorithm = "fifo"
	Random Algorithm = "random"
)

// Algorithms lists all the supported replacement algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{LRU, LFU, FIFO, Random}
}

// ParseAlgorithm converts an algorithm name, in any case, into an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	for _, a := range Algorithms() {
		if a == alg {
			return a, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// NewVictimFinder creates the victim finder of the algorithm. The seed is only
// used by the random finder.
func NewVictimFinder(alg Algorithm, seed int64) (VictimFinder, error) {
	switch alg {
	case LRU:
		return NewLRUVictimFinder(), nil
	case LFU:
		return NewLFUVictimFinder(), nil
	case FIFO:
		return NewFIFOVictimFinder(), nil
	case Random:
		return NewRandomVictimFinder(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
	}
}

func framesMustNotBeEmpty(frames []vm.Frame) {
	if len(frames) == 0 {
		panic("no frame to evict")
	}
}

// LRUVictimFinder evicts the least recently used frame.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the frame with the oldest access. The lowest index wins
// a tie.
func (e *LRUVictimFinder) FindVictim(frames []vm.Frame) int {
	framesMustNotBeEmpty(frames)

	victim := 0
	for i := 1; i < len(frames); i++ {
		if frames[i].LastAccess < frames[victim].LastAccess {
			victim = i
		}
	}

	return victim
}

// LFUVictimFinder evicts the least frequently used frame, falling back to the
// least recently used one among equally used frames.
type LFUVictimFinder struct {
}

// NewLFUVictimFinder returns a newly constructed lfu evictor.
func NewLFUVictimFinder() *LFUVictimFinder {
	return &LFUVictimFinder{}
}

// FindVictim returns the frame with the lowest frequency.
func (e *LFUVictimFinder) FindVictim(frames []vm.Frame) int {
	framesMustNotBeEmpty(frames)

	victim := 0
	for i := 1; i < len(frames); i++ {
		f, v := frames[i], frames[victim]

		switch {
		case f.Frequency < v.Frequency:
			victim = i
		case f.Frequency == v.Frequency && f.LastAccess < v.LastAccess:
			victim = i
		}
	}

	return victim
}

// FIFOVictimFinder evicts frames in a round-robin order. Since frames are only
// replaced when all of them are full, the order is also the load order.
type FIFOVictimFinder struct {
	cursor int
}

// NewFIFOVictimFinder returns a newly constructed fifo evictor.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the frame under the cursor and advances the cursor.
func (e *FIFOVictimFinder) FindVictim(frames []vm.Frame) int {
	framesMustNotBeEmpty(frames)

	victim := e.cursor % len(frames)
	e.cursor = (victim + 1) % len(frames)

	return victim
}

// Cursor returns the frame that the next call evicts.
func (e *FIFOVictimFinder) Cursor() int {
	return e.cursor
}

// Reset moves the cursor back to the first frame.
func (e *FIFOVictimFinder) Reset() {
	e.cursor = 0
}

// RandomVictimFinder evicts a uniformly chosen frame.
type RandomVictimFinder struct {
	rng *rand.Rand
}

// NewRandomVictimFinder returns a random evictor with its own source.
func NewRandomVictimFinder(seed int64) *RandomVictimFinder {
	return &RandomVictimFinder{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// FindVictim returns a frame index in [0, len(frames)).
func (e *RandomVictimFinder) FindVictim(frames []vm.Frame) int {
	framesMustNotBeEmpty(frames)

	return e.rng.Intn(len(frames))
}
