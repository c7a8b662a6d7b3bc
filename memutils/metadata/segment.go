package metadata

import (
	"fmt"
	"math"
)

// SegmentHandle is a stable numeric handle used to identify a single segment descriptor within a
// SegmentPool. The low 32 bits are the descriptor's slot, and the high 32 bits are the slot's
// generation, which changes every time the descriptor is recycled. A handle whose generation no
// longer matches its slot is stale and will be rejected.
type SegmentHandle uint64

const (
	// NoSegment is used in place of a handle wherever there is no segment, such as the previous
	// link of the first segment in a region.
	NoSegment SegmentHandle = math.MaxUint64
)

func makeHandle(index uint32, generation uint32) SegmentHandle {
	return SegmentHandle(uint64(generation)<<32 | uint64(index))
}

func (h SegmentHandle) index() uint32 {
	return uint32(h)
}

func (h SegmentHandle) generation() uint32 {
	return uint32(h >> 32)
}

func (h SegmentHandle) String() string {
	if h == NoSegment {
		return "NoSegment"
	}

	return fmt.Sprintf("%d:%d", h.index(), h.generation())
}

// SegmentDescriptor holds the state of one contiguous byte range inside a region. Descriptors are
// owned by a SegmentPool and mutated only by the metadata that issued them. The previous and next
// links are handles used for navigation, not ownership.
type SegmentDescriptor struct {
	offset       int
	byteCount    int
	elementCount int
	stride       int
	free         bool
	prev         SegmentHandle
	next         SegmentHandle
	version      uint64
	owner        any
}

// Reset clears every field of the descriptor. SegmentPool implementations must call this before
// reissuing a descriptor so that no stale links survive recycling.
func (d *SegmentDescriptor) Reset() {
	d.offset = 0
	d.byteCount = 0
	d.elementCount = 0
	d.stride = 0
	d.free = false
	d.prev = NoSegment
	d.next = NoSegment
	d.version = 0
	d.owner = nil
}

func (d *SegmentDescriptor) Offset() int       { return d.offset }
func (d *SegmentDescriptor) ByteCount() int    { return d.byteCount }
func (d *SegmentDescriptor) ElementCount() int { return d.elementCount }
func (d *SegmentDescriptor) Stride() int       { return d.stride }
func (d *SegmentDescriptor) IsFree() bool      { return d.free }
func (d *SegmentDescriptor) Version() uint64   { return d.version }
func (d *SegmentDescriptor) Owner() any        { return d.owner }

func (d *SegmentDescriptor) invalidate() {
	d.version++
}

// SegmentInfo is a read-only snapshot of a segment, safe to hold after the segment changes
type SegmentInfo struct {
	Handle       SegmentHandle
	Offset       int
	ByteCount    int
	ElementCount int
	Stride       int
	Free         bool
	Version      uint64
}

// End returns the offset one byte past the end of the segment
func (i SegmentInfo) End() int {
	return i.Offset + i.ByteCount
}

func (d *SegmentDescriptor) info(handle SegmentHandle) SegmentInfo {
	return SegmentInfo{
		Handle:       handle,
		Offset:       d.offset,
		ByteCount:    d.byteCount,
		ElementCount: d.elementCount,
		Stride:       d.stride,
		Free:         d.free,
		Version:      d.version,
	}
}
