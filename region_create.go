package subbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CreateOptions contains the settings used to create a Region
type CreateOptions struct {
	// Capacity is the size of the region in bytes. It must be greater than zero and no larger than the
	// capacity of Backing.
	Capacity int
	// Stride is the element size used by Allocate. If it is 0, a stride of 1 is used.
	Stride int
	Mode   AccessMode
	Flags  RegionCreateFlags

	// Backing is the physical allocation that the region partitions
	Backing Backing
	// Context is the capability used to map, copy, and create views over Backing
	Context ExecutionContext

	// SegmentPool is the pool that segment descriptors are drawn from. It may be shared between many regions.
	// If it is nil, the region creates a private metadata.SegmentArena.
	SegmentPool metadata.SegmentPool

	// Accounting, if provided, is notified when the region claims and releases its capacity
	Accounting MemoryAccounting
	// MemoryCallbackOptions is an optional set of callbacks that will be executed when the region claims and
	// releases its capacity
	MemoryCallbackOptions *MemoryCallbackOptions

	// Name is used to identify the region in logs and detailed maps
	Name string
}

// New creates a Region from the provided options. The whole capacity begins as a single free segment.
func New(logger *slog.Logger, options CreateOptions) (*Region, error) {
	if logger == nil {
		return nil, errors.New("a logger is required to create a region")
	}
	if options.Capacity < 1 {
		return nil, errors.Newf("invalid region capacity %d", options.Capacity)
	}
	if options.Stride < 0 {
		return nil, errors.Newf("invalid region stride %d", options.Stride)
	}
	if options.Backing == nil {
		return nil, errors.New("a backing allocation is required to create a region")
	}
	if options.Backing.Capacity() < options.Capacity {
		return nil, errors.Wrapf(memutils.BoundsOverflowError, "region capacity %d exceeds backing capacity %d",
			options.Capacity, options.Backing.Capacity())
	}
	if options.Context == nil {
		return nil, errors.New("an execution context is required to create a region")
	}
	if _, ok := accessModeNames[options.Mode]; !ok {
		return nil, errors.Newf("unknown access mode %s", options.Mode)
	}

	stride := options.Stride
	if stride == 0 {
		stride = 1
	}

	pool := options.SegmentPool
	if pool == nil {
		pool = metadata.NewSegmentArena()
	}

	region := &Region{
		logger:   logger,
		name:     options.Name,
		mode:     options.Mode,
		flags:    options.Flags,
		stride:   stride,
		capacity: options.Capacity,
		backing:  options.Backing,
		context:  options.Context,
		queue:    NewOperationQueue(options.Flags&RegionCreateExternallySynchronized == 0),
		views:    swiss.NewMap[metadata.SegmentHandle, cachedView](0),
	}

	freeList := metadata.NewFreeListMetadata(pool, region)
	freeList.Init(options.Capacity)
	region.metadata = freeList

	region.callbacks = memoryCallbacks{
		Accounting: options.Accounting,
		Callbacks:  options.MemoryCallbackOptions,
		Region:     region,
	}
	region.callbacks.Allocate(options.Capacity)

	return region, nil
}
