package subbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
)

// Segment identifies one allocated range of a Region. It is a small value that may be copied freely. Its
// accessors always report the segment's current state, so a Segment held across a Resize observes the
// new size, and one held across a relocating Resize or a Deallocate becomes invalid.
//
// Segments may only be read by their holders: all changes go through the owning Region.
type Segment struct {
	region *Region
	handle metadata.SegmentHandle
}

// Region returns the region that issued this segment, or nil for the zero Segment
func (s Segment) Region() *Region {
	return s.region
}

// Handle returns the segment's stable handle within its region's segment pool
func (s Segment) Handle() metadata.SegmentHandle {
	if s.region == nil {
		return metadata.NoSegment
	}
	return s.handle
}

// Info returns a snapshot of the segment's current state
func (s Segment) Info() (metadata.SegmentInfo, error) {
	if s.region == nil || s.region.metadata == nil {
		return metadata.SegmentInfo{Handle: metadata.NoSegment}, errors.Wrap(memutils.InvalidUsageError, "segment does not belong to a live region")
	}

	return s.region.metadata.Segment(s.handle)
}

func (s Segment) infoOrZero() metadata.SegmentInfo {
	info, err := s.Info()
	if err != nil {
		return metadata.SegmentInfo{Handle: metadata.NoSegment}
	}
	return info
}

// Valid returns true if the segment is still allocated in a live region
func (s Segment) Valid() bool {
	info, err := s.Info()
	return err == nil && !info.Free
}

func (s Segment) Offset() int       { return s.infoOrZero().Offset }
func (s Segment) ByteCount() int    { return s.infoOrZero().ByteCount }
func (s Segment) ElementCount() int { return s.infoOrZero().ElementCount }
func (s Segment) Stride() int       { return s.infoOrZero().Stride }

// Version changes every time the segment's offset, size, or stride change. Derived views built for one
// version must be recreated when it changes.
func (s Segment) Version() uint64 { return s.infoOrZero().Version }

// IsFree returns true if the segment's range has been released. A Segment whose handle has been
// recycled reports false from both IsFree and Valid.
func (s Segment) IsFree() bool { return s.infoOrZero().Free }
