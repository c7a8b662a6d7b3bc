package metadata

import (
	"sync"

	"github.com/pkg/errors"
)

// SegmentPool is a reuse allocator for segment descriptors. Metadata implementations request
// descriptors from the pool when splitting and return them when coalescing, so that steady-state
// allocation does not produce heap churn. A pool may be shared by many regions.
type SegmentPool interface {
	// GetSegment issues a descriptor whose fields have all been reset
	GetSegment() SegmentHandle
	// Recycle returns a descriptor to the pool. The handle, and any copies of it, become stale.
	Recycle(handle SegmentHandle)
	// Descriptor resolves a live handle. It must return an error for stale or unknown handles.
	Descriptor(handle SegmentHandle) (*SegmentDescriptor, error)
}

const arenaPageSize = 256

type arenaSlot struct {
	generation uint32
	live       bool
	descriptor SegmentDescriptor
}

// SegmentArena is the default SegmentPool. Descriptors live in fixed-size pages, so pointers
// returned from Descriptor remain valid while the arena grows. Each recycle bumps the slot
// generation, so handles held past a recycle are detected rather than silently aliasing a new
// segment.
type SegmentArena struct {
	mutex    sync.RWMutex
	pages    []*[arenaPageSize]arenaSlot
	issued   uint32
	recycled []uint32
	live     int
}

var _ SegmentPool = &SegmentArena{}

func NewSegmentArena() *SegmentArena {
	return &SegmentArena{}
}

func (a *SegmentArena) slot(index uint32) *arenaSlot {
	return &a.pages[index/arenaPageSize][index%arenaPageSize]
}

func (a *SegmentArena) GetSegment() SegmentHandle {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var index uint32
	if count := len(a.recycled); count > 0 {
		index = a.recycled[count-1]
		a.recycled = a.recycled[:count-1]
	} else {
		index = a.issued
		a.issued++
		if int(index/arenaPageSize) >= len(a.pages) {
			a.pages = append(a.pages, &[arenaPageSize]arenaSlot{})
		}
	}

	slot := a.slot(index)
	slot.live = true
	slot.descriptor.Reset()
	a.live++

	return makeHandle(index, slot.generation)
}

func (a *SegmentArena) Recycle(handle SegmentHandle) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	slot, err := a.lookup(handle)
	if err != nil {
		panic(errors.Wrap(err, "attempted to recycle a segment"))
	}

	slot.live = false
	slot.generation++
	slot.descriptor.Reset()
	a.recycled = append(a.recycled, handle.index())
	a.live--
}

func (a *SegmentArena) Descriptor(handle SegmentHandle) (*SegmentDescriptor, error) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	slot, err := a.lookup(handle)
	if err != nil {
		return nil, err
	}

	return &slot.descriptor, nil
}

func (a *SegmentArena) lookup(handle SegmentHandle) (*arenaSlot, error) {
	if handle == NoSegment || handle.index() >= a.issued {
		return nil, errors.Errorf("segment handle %s was never issued by this pool", handle)
	}

	slot := a.slot(handle.index())
	if !slot.live || slot.generation != handle.generation() {
		return nil, errors.Errorf("segment handle %s is stale", handle)
	}

	return slot, nil
}

// LiveCount returns the number of descriptors currently issued and not yet recycled
func (a *SegmentArena) LiveCount() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.live
}
