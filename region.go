package subbuf

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Region is a fixed-capacity range of device memory, partitioned into segments that are allocated, freed
// and resized on demand, together with the queue of operations waiting to mutate it.
//
// Allocate, AllocateTyped, Deallocate, Resize, View, Apply, and Destroy may only be called from the
// thread that owns the region and its ExecutionContext: they take no locks. SetData, GetData,
// CopyRegion, and StreamWrite at PriorityQueued may be called from any thread, unless the region was
// created with RegionCreateExternallySynchronized.
type Region struct {
	logger  *slog.Logger
	name    string
	mode    AccessMode
	flags   RegionCreateFlags
	stride  int
	backing Backing
	context ExecutionContext

	capacity   int
	metadata   metadata.RegionMetadata
	ringCursor int
	queue      *OperationQueue
	views      *swiss.Map[metadata.SegmentHandle, cachedView]
	callbacks  memoryCallbacks

	// Ranges of staging regions claimed by staged writes into this region since the last Apply
	stagingClaims []Segment
}

func (r *Region) Name() string              { return r.name }
func (r *Region) Mode() AccessMode          { return r.mode }
func (r *Region) Flags() RegionCreateFlags  { return r.flags }
func (r *Region) Stride() int               { return r.stride }
func (r *Region) Backing() Backing          { return r.backing }
func (r *Region) Context() ExecutionContext { return r.context }
func (r *Region) Queue() *OperationQueue    { return r.queue }
func (r *Region) Capacity() int             { return r.capacity }
func (r *Region) RingCursor() int           { return r.ringCursor }
func (r *Region) PendingCount() int         { return r.queue.Len() }
func (r *Region) IsDestroyed() bool         { return r.metadata == nil }

func (r *Region) SumFreeSize() int {
	if r.metadata == nil {
		return 0
	}
	return r.metadata.SumFreeSize()
}

func (r *Region) AllocationCount() int {
	if r.metadata == nil {
		return 0
	}
	return r.metadata.AllocationCount()
}

func (r *Region) IsEmpty() bool {
	return r.metadata == nil || r.metadata.IsEmpty()
}

func (r *Region) segment(handle metadata.SegmentHandle) Segment {
	return Segment{region: r, handle: handle}
}

// Allocate creates a segment of elementCount elements using the region's stride
func (r *Region) Allocate(elementCount int) (Segment, error) {
	return r.AllocateTyped(elementCount, r.stride)
}

// AllocateTyped creates a segment of elementCount elements of the provided stride. Regions created with
// RegionCreateStructured only accept their own stride.
func (r *Region) AllocateTyped(elementCount, stride int) (Segment, error) {
	if r.metadata == nil {
		return Segment{}, errors.Wrap(memutils.InvalidUsageError, "region has been destroyed")
	}

	if r.flags&RegionCreateStructured != 0 && stride != r.stride {
		return Segment{}, errors.Wrapf(memutils.TypeMismatchError, "stride %d requested from a structured region with stride %d", stride, r.stride)
	}

	handle, err := r.metadata.Allocate(elementCount, stride)
	if err != nil {
		return Segment{}, err
	}

	r.segmentsChanged()
	return r.segment(handle), nil
}

func (r *Region) segmentsChanged() {
	observer, ok := r.context.(SegmentObserver)
	if ok {
		observer.SegmentsChanged(r.backing)
	}
}

func (r *Region) checkOwnership(segment Segment) (metadata.SegmentInfo, error) {
	if r.metadata == nil {
		return metadata.SegmentInfo{}, errors.Wrap(memutils.InvalidUsageError, "region has been destroyed")
	}
	if segment.region != r {
		return metadata.SegmentInfo{}, errors.Wrapf(memutils.InvalidUsageError, "segment %s does not belong to region %q", segment.Handle(), r.name)
	}

	info, err := r.metadata.Segment(segment.handle)
	if err != nil {
		return info, err
	}
	if info.Free {
		return info, errors.Wrapf(memutils.InvalidUsageError, "segment %s is not allocated", segment.handle)
	}

	return info, nil
}

// Deallocate returns a segment's range to the region. The segment, and any copies of it, become invalid.
func (r *Region) Deallocate(segment Segment) error {
	_, err := r.checkOwnership(segment)
	if err != nil {
		return err
	}

	err = r.metadata.Deallocate(segment.handle)
	if err != nil {
		return err
	}

	r.evictView(segment.handle)
	r.segmentsChanged()
	return nil
}

// Resize changes the element count of a segment. The returned Segment should be used in place of the
// original from then on: it is the same segment unless there was no room to grow in place, in which case
// the segment was relocated and the original is invalid.
//
// Content is preserved up to the smaller of the old and new sizes. When the segment grows backward into
// the free range before it, or is relocated, the content is copied to its new position through the
// region's ExecutionContext before Resize returns. Operations already queued against a relocated segment
// will fail when drained.
func (r *Region) Resize(segment Segment, newElementCount int) (Segment, error) {
	_, err := r.checkOwnership(segment)
	if err != nil {
		return segment, err
	}

	result, err := r.metadata.Resize(segment.handle, newElementCount)
	if err != nil {
		return segment, err
	}

	resized := r.segment(result.Handle)
	r.segmentsChanged()
	if !result.Moved && !result.Relocated {
		return resized, nil
	}

	info, err := r.metadata.Segment(result.Handle)
	if err != nil {
		panic(errors.Wrap(err, "resized segment has an invalid handle"))
	}

	if result.Relocated {
		r.evictView(segment.handle)
		r.logger.LogAttrs(context.Background(), slog.LevelDebug, "relocated segment",
			slog.String("region", r.name),
			slog.Int("oldOffset", result.OldOffset),
			slog.Int("newOffset", info.Offset),
			slog.Int("size", info.ByteCount),
		)
	}

	err = r.migrate(result.OldOffset, info.Offset, min(result.OldByteCount, info.ByteCount))
	if err != nil {
		return resized, errors.Wrapf(err, "segment %s was resized, but its content could not be migrated", result.Handle)
	}

	return resized, nil
}

// migrate copies content from a segment's old position to its new one. The new position is either a
// disjoint range or a lower offset overlapping the old one.
//
// Regions the CPU can write move their content through a single mapping, so it is in place before any
// later write to the new range. Device-only regions record device copies, which execute in order with
// the staged copies that later writes record. Overlapping device moves are split into chunks no larger
// than the shift distance, copied in ascending order, so no chunk overlaps its own source.
func (r *Region) migrate(oldOffset, newOffset, size int) error {
	if size == 0 || oldOffset == newOffset {
		return nil
	}

	if r.mode.CPUWritable() {
		start := min(oldOffset, newOffset)
		end := max(oldOffset, newOffset) + size
		return mapAndTransfer(r.context, r.backing, start, end-start, MapReadWrite, func(data []byte) error {
			copy(data[newOffset-start:], data[oldOffset-start:oldOffset-start+size])
			return nil
		})
	}

	if newOffset > oldOffset || newOffset+size <= oldOffset {
		return r.context.CopyRegion(r.backing, r.backing, oldOffset, size, newOffset)
	}

	shift := oldOffset - newOffset
	for position := 0; position < size; position += shift {
		chunk := min(shift, size-position)
		err := r.context.CopyRegion(r.backing, r.backing, oldOffset+position, chunk, newOffset+position)
		if err != nil {
			return err
		}
	}

	return nil
}

// Layout returns a snapshot of every segment in the region in ascending offset order. A destroyed region
// has no segments.
func (r *Region) Layout() []metadata.SegmentInfo {
	if r.metadata == nil {
		return nil
	}

	var layout []metadata.SegmentInfo
	_ = r.metadata.VisitAllSegments(func(segment metadata.SegmentInfo) error {
		layout = append(layout, segment)
		return nil
	})

	return layout
}

func (r *Region) AddStatistics(stats *memutils.Statistics) {
	if r.metadata != nil {
		r.metadata.AddStatistics(stats)
	}
}

func (r *Region) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	if r.metadata != nil {
		r.metadata.AddDetailedStatistics(stats)
	}
}

// Validate checks the region's segment layout for internal consistency
func (r *Region) Validate() error {
	if r.metadata == nil {
		return errors.New("region has been destroyed")
	}
	if r.metadata.Capacity() != r.capacity {
		return errors.Newf("region capacity %d does not match metadata capacity %d", r.capacity, r.metadata.Capacity())
	}
	if r.backing.Capacity() < r.capacity {
		return errors.Newf("region capacity %d exceeds backing capacity %d", r.capacity, r.backing.Capacity())
	}
	if r.ringCursor < 0 || r.ringCursor > r.capacity {
		return errors.Newf("ring cursor %d is outside the region", r.ringCursor)
	}

	return r.metadata.Validate()
}

// PrintDetailedMap writes a json object describing the region and every one of its segments
func (r *Region) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("Name").String(r.name)
	objState.Name("Mode").String(r.mode.String())
	objState.Name("Flags").String(r.flags.String())
	objState.Name("Stride").Int(r.stride)
	objState.Name("RingCursor").Int(r.ringCursor)
	objState.Name("PendingOperations").Int(r.queue.Len())
	if r.metadata == nil {
		objState.Name("Destroyed").Bool(true)
		return
	}
	r.metadata.BlockJsonData(objState)

	arrayState := objState.Name("Segments").Array()
	defer arrayState.End()

	_ = r.metadata.VisitAllSegments(func(segment metadata.SegmentInfo) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(segment.Offset)
		obj.Name("Size").Int(segment.ByteCount)
		if segment.Free {
			obj.Name("Type").String("Free")
			return nil
		}

		obj.Name("Type").String("Allocated")
		obj.Name("Elements").Int(segment.ElementCount)
		obj.Name("Stride").Int(segment.Stride)
		obj.Name("Version").Int(int(segment.Version))
		return nil
	})
}

// Clear frees every segment and discards every pending operation. All outstanding Segments become
// invalid. Clearing a destroyed region does nothing.
func (r *Region) Clear() {
	if r.metadata == nil {
		return
	}

	dropped := r.queue.Clear()
	if dropped > 0 {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "discarded pending operations",
			slog.String("region", r.name),
			slog.Int("count", dropped),
		)
	}

	r.releaseStagingOrLog()
	r.releaseViews()
	r.metadata.Clear()
	r.ringCursor = 0
}

// Destroy releases the region's capacity. Pending operations are discarded. If any segments are still
// allocated, they are logged and an error is returned, and the region remains usable.
func (r *Region) Destroy() error {
	if r.metadata == nil {
		return errors.Wrap(memutils.InvalidUsageError, "region has already been destroyed")
	}

	if !r.metadata.IsEmpty() {
		err := r.metadata.VisitAllSegments(func(segment metadata.SegmentInfo) error {
			if segment.Free {
				return nil
			}

			r.logUnreleasedMemory(segment)
			return nil
		})
		if err != nil {
			r.logger.LogAttrs(context.Background(),
				slog.LevelError,
				"[UNRELEASED MEMORY] error while iterating unreleased memory",
				slog.Any("error", err))
		}

		return errors.New("some segments were not freed before the destruction of this region!")
	}

	dropped := r.queue.Clear()
	if dropped > 0 {
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "discarded pending operations",
			slog.String("region", r.name),
			slog.Int("count", dropped),
		)
	}

	r.releaseStagingOrLog()
	r.releaseViews()

	r.metadata.Release()
	r.metadata = nil
	r.callbacks.Free(r.capacity)

	return nil
}

func (r *Region) logUnreleasedMemory(segment metadata.SegmentInfo) {
	name := r.name
	if name == "" {
		name = "empty"
	}

	r.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed segment",
		slog.Int("offset", segment.Offset),
		slog.Int("size", segment.ByteCount),
		slog.Int("elements", segment.ElementCount),
		slog.Int("stride", segment.Stride),
		slog.String("region", name),
	)
}
