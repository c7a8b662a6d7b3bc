package subbuf

import "github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"

//go:generate mockgen -source context.go -destination ./mocks/context.go -package mocks

// Backing is the physical allocation a Region partitions, such as a device buffer. The Region never
// inspects it beyond its capacity: it is only passed back to the ExecutionContext.
type Backing interface {
	// Capacity is the size of the backing allocation in bytes
	Capacity() int
}

// ViewHandle is an opaque derived view object created by an ExecutionContext for one segment
type ViewHandle any

// MappedRange is a CPU-visible window over part of a Backing, returned by ExecutionContext.MapRegion
type MappedRange struct {
	Backing Backing
	Offset  int
	Mode    MapMode
	// Data has exactly the size that was requested from MapRegion
	Data []byte
}

// ExecutionContext is the capability through which a Region touches its backing memory. Regions call
// into the context while draining operations, resizing segments and creating views, but never construct
// it. Calls are only made from the thread that owns the context.
type ExecutionContext interface {
	// MapRegion makes the range [offset, offset+size) of the backing visible to the CPU
	MapRegion(backing Backing, offset, size int, mode MapMode) (MappedRange, error)
	// Unmap ends a mapping returned by MapRegion, publishing any writes made through it
	Unmap(mapped MappedRange) error
	// CopyRegion copies size bytes from src at srcOffset to dst at dstOffset on the device. src and dst may
	// be the same backing, in which case the two ranges will not overlap.
	CopyRegion(src, dst Backing, srcOffset, size, dstOffset int) error
	// CreateView creates a derived view over the provided segment of the backing
	CreateView(backing Backing, segment metadata.SegmentInfo) (ViewHandle, error)
}

// ViewReleaser may optionally be implemented by an ExecutionContext whose views hold resources. Views
// are released when the segment they were created for changes or is freed.
type ViewReleaser interface {
	ReleaseView(view ViewHandle) error
}

// SegmentObserver may optionally be implemented by an ExecutionContext that tracks how often the segments
// of a backing change, such as one that keeps mappings alive between operations
type SegmentObserver interface {
	SegmentsChanged(backing Backing)
}
