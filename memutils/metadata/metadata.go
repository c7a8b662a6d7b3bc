package metadata

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
)

// RegionMetadata tracks the layout of a single fixed-capacity region of memory. It partitions the region
// into segments, each either free or allocated, and allows segments to be allocated, freed, and resized
// in place. Implementations are not synchronized: all calls for a single region must come from the
// thread that owns the region.
type RegionMetadata interface {
	// Init must be called before the RegionMetadata is used. It sizes the region in bytes and creates a
	// single free segment spanning the whole capacity.
	Init(capacity int)
	// Capacity retrieves the size in bytes that the region was initialized with
	Capacity() int

	// Validate performs internal consistency checks on the metadata: the segments must partition the
	// region exactly, in ascending offset order, with no two adjacent free segments, and every allocated
	// segment's element count and stride must multiply to its byte count. When the implementation is
	// functioning correctly, it should not be possible for this method to return an error.
	Validate() error
	// AllocationCount returns the number of allocated segments in the region
	AllocationCount() int
	// FreeRegionsCount returns the number of free segments in the region
	FreeRegionsCount() int
	// SumFreeSize returns the number of free bytes in the region
	SumFreeSize() int
	// IsEmpty will return true if this region has no allocated segments
	IsEmpty() bool

	// Allocate finds room for elementCount elements of the provided stride and returns the handle of a
	// newly-allocated segment. If no free segment is large enough, a memutils.AllocationFailureError is
	// returned: the region is never grown or compacted.
	Allocate(elementCount, stride int) (SegmentHandle, error)
	// Deallocate frees an allocated segment, merging it with any free neighbors
	Deallocate(handle SegmentHandle) error
	// Resize changes the element count of an allocated segment, in place when the surrounding free space
	// permits and by relocation otherwise. The returned ResizeResult describes how the segment moved so
	// that the consumer can migrate content.
	Resize(handle SegmentHandle, newElementCount int) (ResizeResult, error)

	// Segment returns a snapshot of a live segment owned by this region
	Segment(handle SegmentHandle) (SegmentInfo, error)
	// VisitAllSegments calls the provided callback once for each segment in ascending offset order
	VisitAllSegments(visit func(segment SegmentInfo) error) error

	// AddDetailedStatistics sums this region's statistics into the provided memutils.DetailedStatistics
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// AddStatistics sums this region's statistics into the provided memutils.Statistics
	AddStatistics(stats *memutils.Statistics)
	// BlockJsonData populates a json object with summary information about this region
	BlockJsonData(json jwriter.ObjectState)

	// Clear instantly frees all segments, leaving a single free segment spanning the region
	Clear()
	// Release returns every descriptor to the SegmentPool. The metadata may not be used afterward
	// unless Init is called again.
	Release()
}

// ResizeResult describes the outcome of RegionMetadata.Resize
type ResizeResult struct {
	// Handle is the segment's handle after the resize. It differs from the original handle only when
	// Relocated is true.
	Handle SegmentHandle
	// OldOffset is the segment's offset before the resize
	OldOffset int
	// OldByteCount is the segment's size in bytes before the resize
	OldByteCount int
	// Moved indicates that the segment kept its handle but its offset moved backward, because it grew
	// into a free range before it
	Moved bool
	// Relocated indicates that there was no room to grow in place, and the content now belongs in a
	// newly-allocated segment identified by Handle. The original handle is stale.
	Relocated bool
}

func writeRegionJson(json jwriter.ObjectState, capacity, unusedBytes, allocationCount, unusedRangeCount int) {
	json.Name("TotalBytes").Int(capacity)
	json.Name("UnusedBytes").Int(unusedBytes)
	json.Name("Allocations").Int(allocationCount)
	json.Name("UnusedRanges").Int(unusedRangeCount)
}
