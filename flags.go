package subbuf

import (
	"fmt"

	"github.com/vkngwrapper/core/v2/common"
)

// AccessMode describes which processors may read and write a Region's backing memory. It decides which
// write strategy is used to realize SetData and StreamWrite operations, and whether reads are possible.
type AccessMode int32

const (
	// AccessModeImmutable regions are only read by the device. Their content may be established by device-side
	// copies, but CPU writes are rejected with memutils.InvalidUsageError
	AccessModeImmutable AccessMode = iota
	// AccessModeDefault regions are read and written by the device. The CPU cannot touch them, so writes are
	// staged through a caller-supplied staging Region and then copied device-side
	AccessModeDefault
	// AccessModeDynamic regions are CPU-writable. Every write is a discard write.
	AccessModeDynamic
	// AccessModeDynamicRing regions are CPU-writable and, when created with RegionCreateSequentialConsumption,
	// are written as a ring: each write is appended after the last one without waiting on the device
	AccessModeDynamicRing
	// AccessModeStaging regions are CPU-readable and CPU-writable. They are the only regions GetData can
	// read from, and the usual staging source for AccessModeDefault regions
	AccessModeStaging
)

var accessModeNames = map[AccessMode]string{
	AccessModeImmutable:   "Immutable",
	AccessModeDefault:     "Default",
	AccessModeDynamic:     "Dynamic",
	AccessModeDynamicRing: "DynamicRing",
	AccessModeStaging:     "Staging",
}

func (m AccessMode) String() string {
	str, ok := accessModeNames[m]
	if !ok {
		return fmt.Sprintf("AccessMode(%d)", int32(m))
	}
	return str
}

// CPUWritable returns true if the CPU can map this mode's memory for writing
func (m AccessMode) CPUWritable() bool {
	return m == AccessModeDynamic || m == AccessModeDynamicRing || m == AccessModeStaging
}

// CPUReadable returns true if the CPU can map this mode's memory for reading
func (m AccessMode) CPUReadable() bool {
	return m == AccessModeStaging
}

// RegionCreateFlags indicate specific region behaviors to activate
type RegionCreateFlags int32

var regionCreateFlagsMapping = common.NewFlagStringMapping[RegionCreateFlags]()

func (f RegionCreateFlags) Register(str string) {
	regionCreateFlagsMapping.Register(f, str)
}
func (f RegionCreateFlags) String() string {
	return regionCreateFlagsMapping.FlagsToString(f)
}

const (
	// RegionCreateSequentialConsumption declares that the region's consumers always read data in the order
	// it was written and never reread earlier data out of order. AccessModeDynamicRing regions only use
	// no-overwrite ring writes when this flag is present. Without it they fall back to discard writes.
	RegionCreateSequentialConsumption RegionCreateFlags = 1 << iota
	// RegionCreateStructured requires every segment allocated from the region to use the region's stride,
	// and every typed operation against the region to match it. Mismatches fail with
	// memutils.TypeMismatchError
	RegionCreateStructured
	// RegionCreateExternallySynchronized ensures that the region's operation queue will not be synchronized
	// internally. The consumer must guarantee that operations are only ever enqueued from the thread that
	// drains them, but performance may improve because the queue mutex is not used.
	RegionCreateExternallySynchronized
)

func init() {
	RegionCreateSequentialConsumption.Register("RegionCreateSequentialConsumption")
	RegionCreateStructured.Register("RegionCreateStructured")
	RegionCreateExternallySynchronized.Register("RegionCreateExternallySynchronized")
}

// MapMode tells an ExecutionContext how a mapped range will be used
type MapMode int32

const (
	// MapWriteDiscard maps for writing, and the previous content of the range may be thrown away
	MapWriteDiscard MapMode = iota
	// MapWriteNoOverwrite maps for writing, and promises that the range is not in use by the device
	MapWriteNoOverwrite
	// MapWrite maps for writing and preserves the previous content
	MapWrite
	// MapRead maps for reading
	MapRead
	// MapReadWrite maps for reading and writing. The previous content is visible and preserved.
	MapReadWrite
)

var mapModeNames = map[MapMode]string{
	MapWriteDiscard:     "MapWriteDiscard",
	MapWriteNoOverwrite: "MapWriteNoOverwrite",
	MapWrite:            "MapWrite",
	MapRead:             "MapRead",
	MapReadWrite:        "MapReadWrite",
}

func (m MapMode) String() string {
	str, ok := mapModeNames[m]
	if !ok {
		return fmt.Sprintf("MapMode(%d)", int32(m))
	}
	return str
}

// IsWrite returns true for all modes that write to the mapped range
func (m MapMode) IsWrite() bool {
	return m != MapRead
}

// IsRead returns true for modes that read the previous content of the mapped range
func (m MapMode) IsRead() bool {
	return m == MapRead || m == MapReadWrite
}

// WriteStrategy is the way a write was realized against the backing memory
type WriteStrategy int32

const (
	// WriteStrategyNone is reported for operations that are not writes
	WriteStrategyNone WriteStrategy = iota
	// WriteStrategyDiscard writes through a MapWriteDiscard mapping
	WriteStrategyDiscard
	// WriteStrategyNoOverwrite appends at the ring cursor through a MapWriteNoOverwrite mapping
	WriteStrategyNoOverwrite
	// WriteStrategyStaged writes into a staging region and then copies device-side into the target
	WriteStrategyStaged
	// WriteStrategyDirect writes through a plain MapWrite mapping
	WriteStrategyDirect
)

var writeStrategyNames = map[WriteStrategy]string{
	WriteStrategyNone:        "None",
	WriteStrategyDiscard:     "Discard",
	WriteStrategyNoOverwrite: "NoOverwrite",
	WriteStrategyStaged:      "Staged",
	WriteStrategyDirect:      "Direct",
}

func (s WriteStrategy) String() string {
	str, ok := writeStrategyNames[s]
	if !ok {
		return fmt.Sprintf("WriteStrategy(%d)", int32(s))
	}
	return str
}

// Priority decides whether an operation is queued for the next apply or executed immediately
type Priority int32

const (
	// PriorityQueued operations are appended to the region's operation queue and run at the next apply point
	PriorityQueued Priority = iota
	// PriorityImmediate operations bypass the queue and run synchronously on the calling thread. The caller
	// must already have exclusive use of the region's ExecutionContext.
	PriorityImmediate
)

func (p Priority) String() string {
	switch p {
	case PriorityQueued:
		return "Queued"
	case PriorityImmediate:
		return "Immediate"
	}

	return fmt.Sprintf("Priority(%d)", int32(p))
}
