package metadata_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
)

func newFreeList(t *testing.T, capacity int) (*metadata.FreeListMetadata, *metadata.SegmentArena) {
	t.Helper()

	arena := metadata.NewSegmentArena()
	freeList := metadata.NewFreeListMetadata(arena, nil)
	freeList.Init(capacity)
	require.NoError(t, freeList.Validate())

	return freeList, arena
}

func requireSegment(t *testing.T, freeList *metadata.FreeListMetadata, handle metadata.SegmentHandle, offset, byteCount int, free bool) metadata.SegmentInfo {
	t.Helper()

	info, err := freeList.Segment(handle)
	require.NoError(t, err)
	require.Equal(t, offset, info.Offset)
	require.Equal(t, byteCount, info.ByteCount)
	require.Equal(t, free, info.Free)

	return info
}

func TestFreeListBasicAlloc(t *testing.T) {
	freeList, _ := newFreeList(t, 1000)

	var stats memutils.DetailedStatistics
	stats.Clear()
	freeList.AddDetailedStatistics(&stats)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			RegionCount:     1,
			RegionBytes:     1000,
			AllocationCount: 0,
			AllocationBytes: 0,
		},
		FreeRangeCount:    1,
		AllocationSizeMin: math.MaxInt,
		AllocationSizeMax: 0,
		FreeRangeSizeMin:  1000,
		FreeRangeSizeMax:  1000,
	}, stats)

	alloc1, err := freeList.Allocate(25, 4)
	require.NoError(t, err)

	stats.Clear()
	freeList.AddDetailedStatistics(&stats)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			RegionCount:     1,
			RegionBytes:     1000,
			AllocationCount: 1,
			AllocationBytes: 100,
		},
		FreeRangeCount:    1,
		AllocationSizeMin: 100,
		AllocationSizeMax: 100,
		FreeRangeSizeMin:  900,
		FreeRangeSizeMax:  900,
	}, stats)

	err = freeList.Deallocate(alloc1)
	require.NoError(t, err)

	stats.Clear()
	freeList.AddDetailedStatistics(&stats)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			RegionCount:     1,
			RegionBytes:     1000,
			AllocationCount: 0,
			AllocationBytes: 0,
		},
		FreeRangeCount:    1,
		AllocationSizeMin: math.MaxInt,
		AllocationSizeMax: 0,
		FreeRangeSizeMin:  1000,
		FreeRangeSizeMax:  1000,
	}, stats)
	require.NoError(t, freeList.Validate())
}

func TestFreeListSequentialAllocations(t *testing.T) {
	freeList, _ := newFreeList(t, 1024)

	first, err := freeList.Allocate(100, 4)
	require.NoError(t, err)
	info := requireSegment(t, freeList, first, 0, 400, false)
	require.Equal(t, 100, info.ElementCount)
	require.Equal(t, 4, info.Stride)

	second, err := freeList.Allocate(50, 4)
	require.NoError(t, err)
	info = requireSegment(t, freeList, second, 400, 200, false)
	require.Equal(t, 50, info.ElementCount)

	layout := freeList.Layout()
	require.Len(t, layout, 3)
	require.True(t, layout[2].Free)
	require.Equal(t, 600, layout[2].Offset)
	require.Equal(t, 424, layout[2].ByteCount)
	require.Equal(t, 424, freeList.SumFreeSize())
	require.NoError(t, freeList.Validate())
}

func TestFreeListFreeWithoutNeighbors(t *testing.T) {
	freeList, _ := newFreeList(t, 1024)

	first, err := freeList.Allocate(100, 4)
	require.NoError(t, err)
	_, err = freeList.Allocate(50, 4)
	require.NoError(t, err)

	err = freeList.Deallocate(first)
	require.NoError(t, err)

	// The freed segment has an allocated next neighbor, so it stands alone
	requireSegment(t, freeList, first, 0, 400, true)
	require.Equal(t, 2, freeList.FreeRegionsCount())
	require.Len(t, freeList.Layout(), 3)
	require.NoError(t, freeList.Validate())
}

func TestFreeListMergeAdjacent(t *testing.T) {
	freeList, _ := newFreeList(t, 1024)

	a, err := freeList.Allocate(128, 4)
	require.NoError(t, err)
	b, err := freeList.Allocate(128, 4)
	require.NoError(t, err)
	require.Equal(t, 0, freeList.SumFreeSize())
	require.Equal(t, 0, freeList.FreeRegionsCount())

	require.NoError(t, freeList.Deallocate(a))
	require.NoError(t, freeList.Validate())
	require.NoError(t, freeList.Deallocate(b))
	require.NoError(t, freeList.Validate())

	layout := freeList.Layout()
	require.Len(t, layout, 1)
	require.True(t, layout[0].Free)
	require.Equal(t, 0, layout[0].Offset)
	require.Equal(t, 1024, layout[0].ByteCount)
	require.Equal(t, a, layout[0].Handle)
}

func TestFreeListMergeBothNeighbors(t *testing.T) {
	freeList, arena := newFreeList(t, 1000)

	a, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	b, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	c, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	d, err := freeList.Allocate(100, 1)
	require.NoError(t, err)

	require.NoError(t, freeList.Deallocate(a))
	require.NoError(t, freeList.Deallocate(c))
	require.Equal(t, 3, freeList.FreeRegionsCount())
	require.Equal(t, 5, arena.LiveCount())

	// b is between two free segments: a absorbs b and c
	require.NoError(t, freeList.Deallocate(b))
	require.NoError(t, freeList.Validate())
	require.Equal(t, 2, freeList.FreeRegionsCount())
	require.Equal(t, 3, arena.LiveCount())
	requireSegment(t, freeList, a, 0, 300, true)

	_, err = freeList.Segment(b)
	require.Error(t, err)
	_, err = freeList.Segment(c)
	require.Error(t, err)

	// d is between a free segment and the free tail
	require.NoError(t, freeList.Deallocate(d))
	require.NoError(t, freeList.Validate())
	require.Equal(t, 1, freeList.FreeRegionsCount())
	require.Equal(t, 1, arena.LiveCount())
	requireSegment(t, freeList, a, 0, 1000, true)
}

func TestFreeListMergeNextOnly(t *testing.T) {
	freeList, _ := newFreeList(t, 1000)

	a, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	b, err := freeList.Allocate(100, 1)
	require.NoError(t, err)

	// b's next neighbor is the free tail, which b absorbs
	require.NoError(t, freeList.Deallocate(b))
	require.NoError(t, freeList.Validate())
	requireSegment(t, freeList, b, 100, 900, true)
	require.Equal(t, 1, freeList.FreeRegionsCount())
	requireSegment(t, freeList, a, 0, 100, false)
}

func TestFreeListRoundTrip(t *testing.T) {
	freeList, arena := newFreeList(t, 4096)

	handle, err := freeList.Allocate(17, 12)
	require.NoError(t, err)
	require.NoError(t, freeList.Deallocate(handle))

	layout := freeList.Layout()
	require.Len(t, layout, 1)
	require.True(t, layout[0].Free)
	require.Equal(t, 0, layout[0].Offset)
	require.Equal(t, 4096, layout[0].ByteCount)
	require.Equal(t, 1, arena.LiveCount())
	require.True(t, freeList.IsEmpty())
}

func TestFreeListExactFitReissuesHandle(t *testing.T) {
	freeList, _ := newFreeList(t, 1000)

	a, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(100, 1)
	require.NoError(t, err)
	require.NoError(t, freeList.Deallocate(a))

	before, err := freeList.Segment(a)
	require.NoError(t, err)

	// Both allocations below exactly fit a free segment, so neither splits
	again, err := freeList.Allocate(800, 1)
	require.NoError(t, err)
	requireSegment(t, freeList, again, 200, 800, false)

	exact, err := freeList.Allocate(50, 2)
	require.NoError(t, err)
	require.NotEqual(t, a, exact)
	info := requireSegment(t, freeList, exact, 0, 100, false)
	require.Greater(t, info.Version, before.Version)
	require.Equal(t, 0, freeList.FreeRegionsCount())

	// The handle from the earlier allocation of this range must not alias the new one
	_, err = freeList.Segment(a)
	require.Error(t, err)
	require.Error(t, freeList.Deallocate(a))
	require.NoError(t, freeList.Validate())
}

func TestFreeListFirstFitNotBestFit(t *testing.T) {
	freeList, _ := newFreeList(t, 1000)

	a, err := freeList.Allocate(300, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(100, 1)
	require.NoError(t, err)
	b, err := freeList.Allocate(200, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(100, 1)
	require.NoError(t, err)

	// Free list: [tail 300@700, a 300@0, b 200@400]
	require.NoError(t, freeList.Deallocate(a))
	require.NoError(t, freeList.Deallocate(b))

	handle, err := freeList.Allocate(150, 1)
	require.NoError(t, err)
	requireSegment(t, freeList, handle, 700, 150, false)
	require.NoError(t, freeList.Validate())
}

func TestFreeListAllocationFailure(t *testing.T) {
	freeList, _ := newFreeList(t, 256)

	_, err := freeList.Allocate(64, 4)
	require.NoError(t, err)

	_, err = freeList.Allocate(1, 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.AllocationFailureError))
	require.NoError(t, freeList.Validate())
}

func TestFreeListFragmentedFailure(t *testing.T) {
	freeList, _ := newFreeList(t, 400)

	handles := make([]metadata.SegmentHandle, 4)
	for i := range handles {
		var err error
		handles[i], err = freeList.Allocate(100, 1)
		require.NoError(t, err)
	}

	require.NoError(t, freeList.Deallocate(handles[0]))
	require.NoError(t, freeList.Deallocate(handles[2]))
	require.Equal(t, 200, freeList.SumFreeSize())

	// 200 bytes are free, but never contiguously; no compaction is attempted
	_, err := freeList.Allocate(200, 1)
	require.True(t, errors.Is(err, memutils.AllocationFailureError))
}

func TestFreeListInvalidAllocations(t *testing.T) {
	freeList, _ := newFreeList(t, 256)

	_, err := freeList.Allocate(0, 4)
	require.True(t, errors.Is(err, memutils.InvalidUsageError))

	_, err = freeList.Allocate(4, 0)
	require.True(t, errors.Is(err, memutils.InvalidUsageError))
}

func TestFreeListOversizedCounts(t *testing.T) {
	freeList, _ := newFreeList(t, 256)

	// elementCount*stride wraps to 0 for this request
	_, err := freeList.Allocate(1<<62, 4)
	require.True(t, errors.Is(err, memutils.AllocationFailureError))

	_, err = freeList.Allocate(math.MaxInt, 2)
	require.True(t, errors.Is(err, memutils.AllocationFailureError))

	_, err = freeList.Allocate(65, 4)
	require.True(t, errors.Is(err, memutils.AllocationFailureError))
	require.Equal(t, 0, freeList.AllocationCount())
	require.NoError(t, freeList.Validate())

	handle, err := freeList.Allocate(10, 4)
	require.NoError(t, err)

	before := freeList.Layout()
	_, err = freeList.Resize(handle, 1<<62)
	require.True(t, errors.Is(err, memutils.AllocationFailureError))
	require.Equal(t, before, freeList.Layout())
	requireSegment(t, freeList, handle, 0, 40, false)
	require.NoError(t, freeList.Validate())
}

func TestFreeListDoubleFree(t *testing.T) {
	freeList, _ := newFreeList(t, 256)

	a, err := freeList.Allocate(16, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(16, 1)
	require.NoError(t, err)

	require.NoError(t, freeList.Deallocate(a))
	err = freeList.Deallocate(a)
	require.True(t, errors.Is(err, memutils.InvalidUsageError))
	require.NoError(t, freeList.Validate())
}

func TestFreeListForeignHandle(t *testing.T) {
	arena := metadata.NewSegmentArena()
	first := metadata.NewFreeListMetadata(arena, nil)
	first.Init(256)
	second := metadata.NewFreeListMetadata(arena, nil)
	second.Init(256)

	handle, err := first.Allocate(16, 1)
	require.NoError(t, err)

	err = second.Deallocate(handle)
	require.True(t, errors.Is(err, memutils.InvalidUsageError))

	_, err = second.Resize(handle, 4)
	require.True(t, errors.Is(err, memutils.InvalidUsageError))

	require.NoError(t, first.Validate())
	require.NoError(t, second.Validate())
}

func TestFreeListResizeSameCount(t *testing.T) {
	freeList, _ := newFreeList(t, 1024)

	_, err := freeList.Allocate(10, 4)
	require.NoError(t, err)
	handle, err := freeList.Allocate(10, 4)
	require.NoError(t, err)

	before := freeList.Layout()
	info, err := freeList.Segment(handle)
	require.NoError(t, err)

	result, err := freeList.Resize(handle, 10)
	require.NoError(t, err)
	require.Equal(t, handle, result.Handle)
	require.False(t, result.Moved)
	require.False(t, result.Relocated)

	after, err := freeList.Segment(handle)
	require.NoError(t, err)
	require.Equal(t, info, after)
	require.Equal(t, before, freeList.Layout())
}

func TestFreeListResizeShrink(t *testing.T) {
	freeList, _ := newFreeList(t, 1024)

	handle, err := freeList.Allocate(100, 4)
	require.NoError(t, err)
	blocker, err := freeList.Allocate(10, 4)
	require.NoError(t, err)

	before, err := freeList.Segment(handle)
	require.NoError(t, err)

	result, err := freeList.Resize(handle, 60)
	require.NoError(t, err)
	require.Equal(t, handle, result.Handle)
	require.Equal(t, 0, result.OldOffset)
	require.Equal(t, 400, result.OldByteCount)

	after := requireSegment(t, freeList, handle, 0, 240, false)
	require.Equal(t, 60, after.ElementCount)
	require.Greater(t, after.Version, before.Version)

	layout := freeList.Layout()
	require.Len(t, layout, 4)
	require.True(t, layout[1].Free)
	require.Equal(t, 240, layout[1].Offset)
	require.Equal(t, 160, layout[1].ByteCount)
	require.Equal(t, blocker, layout[2].Handle)
	require.NoError(t, freeList.Validate())
}

func TestFreeListResizeShrinkMergesIntoFreeNext(t *testing.T) {
	freeList, _ := newFreeList(t, 1024)

	handle, err := freeList.Allocate(100, 4)
	require.NoError(t, err)

	_, err = freeList.Resize(handle, 50)
	require.NoError(t, err)

	layout := freeList.Layout()
	require.Len(t, layout, 2)
	require.Equal(t, 200, layout[1].Offset)
	require.Equal(t, 824, layout[1].ByteCount)
	require.Equal(t, 1, freeList.FreeRegionsCount())
	require.NoError(t, freeList.Validate())
}

func TestFreeListResizeGrowIntoNext(t *testing.T) {
	freeList, _ := newFreeList(t, 1024)

	handle, err := freeList.Allocate(100, 4)
	require.NoError(t, err)

	result, err := freeList.Resize(handle, 150)
	require.NoError(t, err)
	require.Equal(t, handle, result.Handle)
	require.False(t, result.Moved)
	require.False(t, result.Relocated)

	requireSegment(t, freeList, handle, 0, 600, false)
	layout := freeList.Layout()
	require.Len(t, layout, 2)
	require.Equal(t, 600, layout[1].Offset)
	require.Equal(t, 424, layout[1].ByteCount)
	require.NoError(t, freeList.Validate())
}

func TestFreeListResizeGrowConsumesNext(t *testing.T) {
	freeList, arena := newFreeList(t, 1024)

	handle, err := freeList.Allocate(100, 4)
	require.NoError(t, err)
	next, err := freeList.Allocate(50, 4)
	require.NoError(t, err)
	_, err = freeList.Allocate(106, 4)
	require.NoError(t, err)
	require.NoError(t, freeList.Deallocate(next))

	result, err := freeList.Resize(handle, 150)
	require.NoError(t, err)
	require.False(t, result.Relocated)

	requireSegment(t, freeList, handle, 0, 600, false)
	require.Equal(t, 0, freeList.FreeRegionsCount())
	require.Equal(t, 2, arena.LiveCount())
	require.NoError(t, freeList.Validate())
}

func TestFreeListResizeGrowIntoPrevious(t *testing.T) {
	freeList, _ := newFreeList(t, 1000)

	prev, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	handle, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(800, 1)
	require.NoError(t, err)
	require.NoError(t, freeList.Deallocate(prev))

	result, err := freeList.Resize(handle, 160)
	require.NoError(t, err)
	require.Equal(t, handle, result.Handle)
	require.True(t, result.Moved)
	require.False(t, result.Relocated)
	require.Equal(t, 100, result.OldOffset)
	require.Equal(t, 100, result.OldByteCount)

	requireSegment(t, freeList, handle, 40, 160, false)
	requireSegment(t, freeList, prev, 0, 40, true)
	require.NoError(t, freeList.Validate())
}

func TestFreeListResizeGrowIntoBoth(t *testing.T) {
	freeList, arena := newFreeList(t, 1000)

	prev, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	handle, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	next, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(700, 1)
	require.NoError(t, err)
	require.NoError(t, freeList.Deallocate(prev))
	require.NoError(t, freeList.Deallocate(next))

	result, err := freeList.Resize(handle, 250)
	require.NoError(t, err)
	require.Equal(t, handle, result.Handle)
	require.True(t, result.Moved)

	// All of next (100) and 50 bytes of prev
	requireSegment(t, freeList, handle, 50, 250, false)
	requireSegment(t, freeList, prev, 0, 50, true)
	_, err = freeList.Segment(next)
	require.Error(t, err)
	require.Equal(t, 1, freeList.FreeRegionsCount())
	require.Equal(t, 3, arena.LiveCount())
	require.NoError(t, freeList.Validate())
}

func TestFreeListResizeRelocate(t *testing.T) {
	freeList, _ := newFreeList(t, 1000)

	handle, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(100, 1)
	require.NoError(t, err)

	result, err := freeList.Resize(handle, 300)
	require.NoError(t, err)
	require.True(t, result.Relocated)
	require.NotEqual(t, handle, result.Handle)
	require.Equal(t, 0, result.OldOffset)
	require.Equal(t, 100, result.OldByteCount)

	requireSegment(t, freeList, result.Handle, 200, 300, false)
	requireSegment(t, freeList, handle, 0, 100, true)
	require.NoError(t, freeList.Validate())
}

func TestFreeListResizeRelocateFailure(t *testing.T) {
	freeList, _ := newFreeList(t, 300)

	handle, err := freeList.Allocate(100, 1)
	require.NoError(t, err)
	_, err = freeList.Allocate(100, 1)
	require.NoError(t, err)

	before := freeList.Layout()
	_, err = freeList.Resize(handle, 250)
	require.True(t, errors.Is(err, memutils.AllocationFailureError))
	require.Equal(t, before, freeList.Layout())
	require.NoError(t, freeList.Validate())
}

func TestFreeListClear(t *testing.T) {
	freeList, arena := newFreeList(t, 1000)

	for i := 0; i < 5; i++ {
		_, err := freeList.Allocate(10, 3)
		require.NoError(t, err)
	}

	freeList.Clear()
	require.NoError(t, freeList.Validate())
	require.True(t, freeList.IsEmpty())
	require.Equal(t, 1000, freeList.SumFreeSize())
	require.Equal(t, 1, arena.LiveCount())

	freeList.Release()
	require.Equal(t, 0, arena.LiveCount())
}

func TestFreeListRandomOperationsHoldInvariants(t *testing.T) {
	freeList, arena := newFreeList(t, 64*1024)

	rng := rand.New(rand.NewSource(42))
	var live []metadata.SegmentHandle

	for step := 0; step < 2000; step++ {
		switch rng.Intn(3) {
		case 0:
			handle, err := freeList.Allocate(1+rng.Intn(256), 1+rng.Intn(16))
			if err == nil {
				live = append(live, handle)
			} else {
				require.True(t, errors.Is(err, memutils.AllocationFailureError), "step %d", step)
			}
		case 1:
			if len(live) == 0 {
				continue
			}
			index := rng.Intn(len(live))
			require.NoError(t, freeList.Deallocate(live[index]), "step %d", step)
			live = append(live[:index], live[index+1:]...)
		case 2:
			if len(live) == 0 {
				continue
			}
			index := rng.Intn(len(live))
			result, err := freeList.Resize(live[index], 1+rng.Intn(512))
			if err != nil {
				require.True(t, errors.Is(err, memutils.AllocationFailureError), "step %d", step)
				continue
			}
			live[index] = result.Handle
		}

		require.NoError(t, freeList.Validate(), "step %d", step)

		var stats memutils.Statistics
		freeList.AddStatistics(&stats)
		require.Equal(t, len(live), stats.AllocationCount, "step %d", step)

		layout := freeList.Layout()
		total := 0
		for i, segment := range layout {
			total += segment.ByteCount
			if i > 0 {
				require.False(t, segment.Free && layout[i-1].Free, "step %d", step)
			}
		}
		require.Equal(t, 64*1024, total, "step %d", step)
		require.Equal(t, len(layout), arena.LiveCount(), "step %d", step)
	}
}
