package metadata

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
)

// FreeListMetadata is a RegionMetadata implementation that keeps an address-ordered chain of segments
// alongside an unsorted collection of the currently-free ones. Allocation is first-fit: the free
// collection is scanned in insertion order and the first segment large enough is used, splitting it
// if necessary. Frees coalesce with both neighbors, so no two adjacent segments are ever free.
//
// Every successful Allocate returns a handle that has never identified an allocated segment before,
// even when an exactly-sized free segment is reused.
//
// New segments are carved from the low end of a free segment, and excess space from a shrink is carved
// from the high end of the allocated segment, so a shrink never changes a segment's offset.
type FreeListMetadata struct {
	pool     SegmentPool
	owner    any
	capacity int

	head        SegmentHandle
	freeList    []SegmentHandle
	allocCount  int
	sumFreeSize int
}

var _ RegionMetadata = &FreeListMetadata{}

// NewFreeListMetadata creates a FreeListMetadata that draws its descriptors from the provided pool.
// owner is stored in every descriptor this metadata issues and is used to reject handles that belong
// to other regions sharing the same pool. If owner is nil, the metadata itself is used.
func NewFreeListMetadata(pool SegmentPool, owner any) *FreeListMetadata {
	m := &FreeListMetadata{
		pool:  pool,
		owner: owner,
		head:  NoSegment,
	}
	if m.owner == nil {
		m.owner = m
	}

	return m
}

// Init prepares this structure for allocations and creates a single free segment spanning capacity
func (m *FreeListMetadata) Init(capacity int) {
	if capacity < 1 {
		panic(fmt.Sprintf("invalid region capacity: %d", capacity))
	}
	if m.head != NoSegment {
		panic("attempting to initialize region metadata that is already in use")
	}

	m.capacity = capacity
	m.head = m.newSegment(0, capacity)
	m.freeList = append(m.freeList[:0], m.head)
	m.allocCount = 0
	m.sumFreeSize = capacity
}

func (m *FreeListMetadata) Capacity() int         { return m.capacity }
func (m *FreeListMetadata) AllocationCount() int  { return m.allocCount }
func (m *FreeListMetadata) FreeRegionsCount() int { return len(m.freeList) }
func (m *FreeListMetadata) SumFreeSize() int      { return m.sumFreeSize }
func (m *FreeListMetadata) IsEmpty() bool         { return m.allocCount == 0 }

func (m *FreeListMetadata) get(handle SegmentHandle) *SegmentDescriptor {
	descriptor, err := m.pool.Descriptor(handle)
	if err != nil {
		panic(fmt.Sprintf("region metadata holds an invalid link: %+v", err))
	}

	return descriptor
}

// lookup resolves a handle received from a consumer
func (m *FreeListMetadata) lookup(handle SegmentHandle) (*SegmentDescriptor, error) {
	descriptor, err := m.pool.Descriptor(handle)
	if err != nil {
		return nil, errors.Wrap(memutils.InvalidUsageError, err.Error())
	}

	if descriptor.owner != m.owner {
		return nil, errors.Wrapf(memutils.InvalidUsageError, "segment %s belongs to a different region", handle)
	}

	return descriptor, nil
}

func (m *FreeListMetadata) lookupAllocated(handle SegmentHandle) (*SegmentDescriptor, error) {
	descriptor, err := m.lookup(handle)
	if err != nil {
		return nil, err
	}

	if descriptor.free {
		return nil, errors.Wrapf(memutils.InvalidUsageError, "segment %s is not allocated", handle)
	}

	return descriptor, nil
}

func (m *FreeListMetadata) newSegment(offset, byteCount int) SegmentHandle {
	handle := m.pool.GetSegment()
	descriptor := m.get(handle)
	descriptor.owner = m.owner
	descriptor.offset = offset
	descriptor.byteCount = byteCount
	descriptor.free = true

	return handle
}

func (m *FreeListMetadata) removeFree(handle SegmentHandle) {
	for i, freeHandle := range m.freeList {
		if freeHandle == handle {
			m.freeList = append(m.freeList[:i], m.freeList[i+1:]...)
			return
		}
	}

	panic(fmt.Sprintf("segment %s was not in the free list", handle))
}

func (m *FreeListMetadata) replaceFree(oldHandle, newHandle SegmentHandle) {
	for i, freeHandle := range m.freeList {
		if freeHandle == oldHandle {
			m.freeList[i] = newHandle
			return
		}
	}

	panic(fmt.Sprintf("segment %s was not in the free list", oldHandle))
}

// insertAfter links a detached segment into the chain directly after handle
func (m *FreeListMetadata) insertAfter(handle SegmentHandle, newHandle SegmentHandle) {
	descriptor := m.get(handle)
	newDescriptor := m.get(newHandle)

	newDescriptor.prev = handle
	newDescriptor.next = descriptor.next
	if descriptor.next != NoSegment {
		m.get(descriptor.next).prev = newHandle
	}
	descriptor.next = newHandle
}

// insertBefore links a detached segment into the chain directly before handle
func (m *FreeListMetadata) insertBefore(handle SegmentHandle, newHandle SegmentHandle) {
	descriptor := m.get(handle)
	newDescriptor := m.get(newHandle)

	newDescriptor.next = handle
	newDescriptor.prev = descriptor.prev
	if descriptor.prev != NoSegment {
		m.get(descriptor.prev).next = newHandle
	} else {
		m.head = newHandle
	}
	descriptor.prev = newHandle
}

// unlink removes a segment from the chain and returns it to the pool
func (m *FreeListMetadata) unlink(handle SegmentHandle) {
	descriptor := m.get(handle)

	if descriptor.prev != NoSegment {
		m.get(descriptor.prev).next = descriptor.next
	} else {
		m.head = descriptor.next
	}

	if descriptor.next != NoSegment {
		m.get(descriptor.next).prev = descriptor.prev
	}

	m.pool.Recycle(handle)
}

// reissue moves a segment to a fresh handle in place, so that handles held for an earlier
// allocation of the same range go stale
func (m *FreeListMetadata) reissue(handle SegmentHandle) SegmentHandle {
	descriptor := m.get(handle)
	newHandle := m.pool.GetSegment()
	newDescriptor := m.get(newHandle)
	*newDescriptor = *descriptor

	if descriptor.prev != NoSegment {
		m.get(descriptor.prev).next = newHandle
	} else {
		m.head = newHandle
	}

	if descriptor.next != NoSegment {
		m.get(descriptor.next).prev = newHandle
	}

	m.pool.Recycle(handle)
	return newHandle
}

// absorbNext merges the segment after survivor into survivor
func (m *FreeListMetadata) absorbNext(survivor SegmentHandle) {
	descriptor := m.get(survivor)
	next := descriptor.next
	if next == NoSegment {
		panic(fmt.Sprintf("segment %s has no next segment to absorb", survivor))
	}

	descriptor.byteCount += m.get(next).byteCount
	descriptor.invalidate()
	m.unlink(next)
}

func (m *FreeListMetadata) Allocate(elementCount, stride int) (SegmentHandle, error) {
	if elementCount < 1 || stride < 1 {
		return NoSegment, errors.Wrapf(memutils.InvalidUsageError, "invalid allocation of %d elements with stride %d", elementCount, stride)
	}

	if elementCount > m.capacity/stride {
		return NoSegment, errors.Wrapf(memutils.AllocationFailureError,
			"requested %d elements with stride %d from a region of %d bytes", elementCount, stride, m.capacity)
	}

	size := elementCount * stride

	for i, freeHandle := range m.freeList {
		freeDescriptor := m.get(freeHandle)
		if freeDescriptor.byteCount < size {
			continue
		}

		var handle SegmentHandle
		if freeDescriptor.byteCount == size {
			m.freeList = append(m.freeList[:i], m.freeList[i+1:]...)
			handle = m.reissue(freeHandle)
		} else {
			handle = m.pool.GetSegment()
			descriptor := m.get(handle)
			descriptor.owner = m.owner
			descriptor.offset = freeDescriptor.offset
			descriptor.byteCount = size
			m.insertBefore(freeHandle, handle)

			freeDescriptor.offset += size
			freeDescriptor.byteCount -= size
			freeDescriptor.invalidate()
		}

		descriptor := m.get(handle)
		descriptor.free = false
		descriptor.elementCount = elementCount
		descriptor.stride = stride
		descriptor.invalidate()

		m.allocCount++
		m.sumFreeSize -= size

		memutils.DebugValidate(m)
		return handle, nil
	}

	return NoSegment, errors.Wrapf(memutils.AllocationFailureError,
		"requested %d bytes with %d bytes free across %d ranges", size, m.sumFreeSize, len(m.freeList))
}

func (m *FreeListMetadata) Deallocate(handle SegmentHandle) error {
	descriptor, err := m.lookupAllocated(handle)
	if err != nil {
		return err
	}

	m.allocCount--
	m.sumFreeSize += descriptor.byteCount

	descriptor.free = true
	descriptor.elementCount = 0
	descriptor.stride = 0
	descriptor.invalidate()

	prev := descriptor.prev
	next := descriptor.next
	prevFree := prev != NoSegment && m.get(prev).free
	nextFree := next != NoSegment && m.get(next).free

	switch {
	case prevFree && nextFree:
		m.removeFree(next)
		m.absorbNext(prev)
		m.absorbNext(prev)
	case prevFree:
		m.absorbNext(prev)
	case nextFree:
		m.replaceFree(next, handle)
		m.absorbNext(handle)
	default:
		m.freeList = append(m.freeList, handle)
	}

	memutils.DebugValidate(m)
	return nil
}

func (m *FreeListMetadata) Resize(handle SegmentHandle, newElementCount int) (ResizeResult, error) {
	descriptor, err := m.lookupAllocated(handle)
	if err != nil {
		return ResizeResult{Handle: handle}, err
	}

	result := ResizeResult{
		Handle:       handle,
		OldOffset:    descriptor.offset,
		OldByteCount: descriptor.byteCount,
	}

	if newElementCount < 1 {
		return result, errors.Wrapf(memutils.InvalidUsageError, "cannot resize segment %s to %d elements", handle, newElementCount)
	}

	if newElementCount == descriptor.elementCount {
		return result, nil
	}
	if newElementCount > m.capacity/descriptor.stride {
		return result, errors.Wrapf(memutils.AllocationFailureError,
			"cannot resize segment %s to %d elements with stride %d in a region of %d bytes", handle, newElementCount, descriptor.stride, m.capacity)
	}

	newSize := newElementCount * descriptor.stride
	if newSize < descriptor.byteCount {
		m.shrink(handle, newSize)
	} else {
		need := newSize - descriptor.byteCount

		var nextFreeBytes, prevFreeBytes int
		if descriptor.next != NoSegment && m.get(descriptor.next).free {
			nextFreeBytes = m.get(descriptor.next).byteCount
		}
		if descriptor.prev != NoSegment && m.get(descriptor.prev).free {
			prevFreeBytes = m.get(descriptor.prev).byteCount
		}

		switch {
		case nextFreeBytes >= need:
			m.takeFromNext(handle, need)
		case prevFreeBytes >= need:
			m.takeFromPrev(handle, need)
			result.Moved = true
		case nextFreeBytes > 0 && prevFreeBytes > 0 && nextFreeBytes+prevFreeBytes >= need:
			m.takeFromNext(handle, nextFreeBytes)
			m.takeFromPrev(handle, need-nextFreeBytes)
			result.Moved = true
		default:
			newHandle, err := m.Allocate(newElementCount, descriptor.stride)
			if err != nil {
				return result, errors.Wrapf(err, "failed to relocate segment %s", handle)
			}

			err = m.Deallocate(handle)
			if err != nil {
				panic(fmt.Sprintf("failed to free relocated segment: %+v", err))
			}

			result.Handle = newHandle
			result.Relocated = true
			return result, nil
		}

		m.sumFreeSize -= need
	}

	descriptor.elementCount = newElementCount
	descriptor.invalidate()

	memutils.DebugValidate(m)
	return result, nil
}

func (m *FreeListMetadata) shrink(handle SegmentHandle, newSize int) {
	descriptor := m.get(handle)
	excess := descriptor.byteCount - newSize
	descriptor.byteCount = newSize
	m.sumFreeSize += excess

	if descriptor.next != NoSegment && m.get(descriptor.next).free {
		next := m.get(descriptor.next)
		next.offset -= excess
		next.byteCount += excess
		next.invalidate()
		return
	}

	freeHandle := m.newSegment(descriptor.offset+newSize, excess)
	m.insertAfter(handle, freeHandle)
	m.freeList = append(m.freeList, freeHandle)
}

func (m *FreeListMetadata) takeFromNext(handle SegmentHandle, amount int) {
	descriptor := m.get(handle)
	nextHandle := descriptor.next
	next := m.get(nextHandle)

	if next.byteCount == amount {
		m.removeFree(nextHandle)
		m.unlink(nextHandle)
	} else {
		next.offset += amount
		next.byteCount -= amount
		next.invalidate()
	}

	descriptor.byteCount += amount
}

func (m *FreeListMetadata) takeFromPrev(handle SegmentHandle, amount int) {
	descriptor := m.get(handle)
	prevHandle := descriptor.prev
	prev := m.get(prevHandle)

	if prev.byteCount == amount {
		m.removeFree(prevHandle)
		m.unlink(prevHandle)
	} else {
		prev.byteCount -= amount
		prev.invalidate()
	}

	descriptor.offset -= amount
	descriptor.byteCount += amount
}

func (m *FreeListMetadata) Segment(handle SegmentHandle) (SegmentInfo, error) {
	descriptor, err := m.lookup(handle)
	if err != nil {
		return SegmentInfo{Handle: handle}, err
	}

	return descriptor.info(handle), nil
}

func (m *FreeListMetadata) VisitAllSegments(visit func(segment SegmentInfo) error) error {
	for handle := m.head; handle != NoSegment; {
		descriptor := m.get(handle)
		next := descriptor.next

		err := visit(descriptor.info(handle))
		if err != nil {
			return err
		}

		handle = next
	}

	return nil
}

// Layout returns a snapshot of every segment in ascending offset order
func (m *FreeListMetadata) Layout() []SegmentInfo {
	var layout []SegmentInfo
	_ = m.VisitAllSegments(func(segment SegmentInfo) error {
		layout = append(layout, segment)
		return nil
	})

	return layout
}

func (m *FreeListMetadata) Validate() error {
	if m.head == NoSegment {
		return errors.New("region metadata has not been initialized")
	}

	if m.sumFreeSize > m.capacity {
		return errors.New("invalid metadata free size")
	}

	freeInChain := make(map[SegmentHandle]struct{}, len(m.freeList))
	var calculatedSize, calculatedFreeSize, allocCount int
	nextOffset := 0
	prevHandle := NoSegment
	prevFree := false

	for handle := m.head; handle != NoSegment; {
		descriptor, err := m.pool.Descriptor(handle)
		if err != nil {
			return errors.Wrapf(err, "segment chain is broken after offset %d", nextOffset)
		}

		if descriptor.owner != m.owner {
			return errors.Errorf("segment at offset %d belongs to a different region", descriptor.offset)
		}

		if descriptor.prev != prevHandle {
			return errors.Errorf("segment at offset %d lists a previous segment, but the reverse reference is broken", descriptor.offset)
		}

		if descriptor.offset != nextOffset {
			return errors.Errorf("segment at offset %d does not begin at the previous segment's end offset %d", descriptor.offset, nextOffset)
		}

		if descriptor.byteCount < 1 {
			return errors.Errorf("segment at offset %d has invalid size %d", descriptor.offset, descriptor.byteCount)
		}

		if descriptor.free {
			if prevFree {
				return errors.Errorf("segment at offset %d is free, but so is the segment before it", descriptor.offset)
			}

			freeInChain[handle] = struct{}{}
			calculatedFreeSize += descriptor.byteCount
		} else {
			if descriptor.elementCount*descriptor.stride != descriptor.byteCount {
				return errors.Errorf("segment at offset %d has %d elements of stride %d, but a size of %d", descriptor.offset, descriptor.elementCount, descriptor.stride, descriptor.byteCount)
			}

			allocCount++
		}

		calculatedSize += descriptor.byteCount
		nextOffset = descriptor.offset + descriptor.byteCount
		prevFree = descriptor.free
		prevHandle = handle
		handle = descriptor.next
	}

	if calculatedSize != m.capacity {
		return errors.Errorf("the full size of the region is %d, but the segments only added up to %d", m.capacity, calculatedSize)
	}

	if len(freeInChain) != len(m.freeList) {
		return errors.Errorf("the number of free segments in the chain and the number of segments in the free list do not match! free list size: %d, chain free segments: %d", len(m.freeList), len(freeInChain))
	}

	for _, handle := range m.freeList {
		_, ok := freeInChain[handle]
		if !ok {
			return errors.Errorf("segment %s is in the free list, but is not a free segment in the chain", handle)
		}
	}

	if calculatedFreeSize != m.sumFreeSize {
		return errors.Errorf("the free size of the region is %d, but the free segments only added up to %d", m.sumFreeSize, calculatedFreeSize)
	}

	if allocCount != m.allocCount {
		return errors.Errorf("the allocation count of the region is %d, but the allocated segments only added up to %d", m.allocCount, allocCount)
	}

	return nil
}

func (m *FreeListMetadata) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.RegionCount++
	stats.RegionBytes += m.capacity

	_ = m.VisitAllSegments(func(segment SegmentInfo) error {
		if segment.Free {
			stats.AddFreeRange(segment.ByteCount)
		} else {
			stats.AddAllocation(segment.ByteCount)
		}
		return nil
	})
}

func (m *FreeListMetadata) AddStatistics(stats *memutils.Statistics) {
	stats.RegionCount++
	stats.AllocationCount += m.allocCount
	stats.RegionBytes += m.capacity
	stats.AllocationBytes += m.capacity - m.sumFreeSize
}

func (m *FreeListMetadata) BlockJsonData(json jwriter.ObjectState) {
	writeRegionJson(json, m.capacity, m.sumFreeSize, m.allocCount, len(m.freeList))
}

func (m *FreeListMetadata) Clear() {
	m.Release()
	m.Init(m.capacity)
}

func (m *FreeListMetadata) Release() {
	for handle := m.head; handle != NoSegment; {
		next := m.get(handle).next
		m.pool.Recycle(handle)
		handle = next
	}

	m.head = NoSegment
	m.freeList = m.freeList[:0]
	m.allocCount = 0
	m.sumFreeSize = 0
}
