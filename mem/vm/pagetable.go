// Package vm defines the physical frames and the page tables that translate
// virtual pages into frames.
package vm

import (
	"errors"
	"fmt"
	"strings"
)

// AddressBits is the width of the simulated virtual addresses.
const AddressBits = 32

// Errors returned when a page table cannot be created.
var (
	ErrUnknownKind      = errors.New("unknown page table type")
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrTableTooLarge    = errors.New("page table too large")
	ErrInvalidNumFrames = errors.New("invalid number of frames")
	ErrInvalidLevels    = errors.New("invalid number of page table levels")
)

// A FrameRef optionally refers to a physical frame. The zero value refers to
// no frame.
type FrameRef struct {
	index int
	valid bool
}

// Unmapped is the FrameRef used to invalidate a mapping.
var Unmapped = FrameRef{}

// MapTo returns a reference to the frame at the given index.
func MapTo(index int) FrameRef {
	if index < 0 {
		panic(fmt.Sprintf("invalid frame index %d", index))
	}

	return FrameRef{index: index, valid: true}
}

// Index returns the frame index and whether the reference is valid.
func (r FrameRef) Index() (int, bool) {
	return r.index, r.valid
}

// IsValid tells if the reference points to a frame.
func (r FrameRef) IsValid() bool {
	return r.valid
}

func (r FrameRef) String() string {
	if !r.valid {
		return "unmapped"
	}

	return fmt.Sprintf("frame %d", r.index)
}

// A PageTable translates virtual page numbers into frame indices.
type PageTable interface {
	// Lookup returns the frame that holds the page, whether the page is
	// mapped, and the number of memory accesses the translation took.
	Lookup(vpn uint64) (frame int, found bool, cost int)

	// Update maps the page to the frame, or removes the mapping of the page
	// if the frame is Unmapped. Removing an absent mapping does nothing.
	Update(vpn uint64, frame FrameRef)

	// MemoryCost returns the number of bytes the table currently occupies.
	MemoryCost() uint64

	// Release frees all the structure owned by the table.
	Release()
}

// Kind selects one of the page table structures.
type Kind string

// Enumeration of page table kinds.
const (
	KindFlat        Kind = "flat"
	KindMultiLevel2 Kind = "multilevel-2"
	KindMultiLevel3 Kind = "multilevel-3"
	KindInverted    Kind = "inverted"
)

// DefaultKind is used when no page table type is configured.
const DefaultKind = KindMultiLevel2

var kindAliases = map[string]Kind{
	"flat":         KindFlat,
	"dense":        KindFlat,
	"densa":        KindFlat,
	"multilevel-2": KindMultiLevel2,
	"multilevel2":  KindMultiLevel2,
	"hierarquica2": KindMultiLevel2,
	"multilevel-3": KindMultiLevel3,
	"multilevel3":  KindMultiLevel3,
	"hierarquica3": KindMultiLevel3,
	"inverted":     KindInverted,
	"invertida":    KindInverted,
}

// ParseKind converts a page table type name into a Kind. An empty name
// selects DefaultKind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultKind, nil
	}

	kind, ok := kindAliases[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	return kind, nil
}

// Kinds lists all the supported page table kinds.
func Kinds() []Kind {
	return []Kind{KindFlat, KindMultiLevel2, KindMultiLevel3, KindInverted}
}

// PageNumberBits returns the number of bits of a virtual page number for the
// given page size.
func PageNumberBits(log2PageSize uint64) (int, error) {
	if log2PageSize >= AddressBits {
		return 0, fmt.Errorf("%w: 2^%d bytes", ErrInvalidPageSize, log2PageSize)
	}

	return AddressBits - int(log2PageSize), nil
}

// NewPageTable creates a page table of the given kind. The number of frames
// sizes the inverted table.
func NewPageTable(
	kind Kind,
	log2PageSize uint64,
	numFrames int,
) (PageTable, error) {
	switch kind {
	case KindFlat:
		return NewFlatPageTable(log2PageSize)
	case KindMultiLevel2:
		return NewMultiLevelPageTable(2, log2PageSize)
	case KindMultiLevel3:
		return NewMultiLevelPageTable(3, log2PageSize)
	case KindInverted:
		if numFrames <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidNumFrames, numFrames)
		}

		return NewInvertedPageTable(numFrames), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
}
