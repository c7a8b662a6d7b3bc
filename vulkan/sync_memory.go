package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/subbuf/internal/utils"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

//go:generate mockgen -destination ./mocks/device_memory.go -package mocks github.com/vkngwrapper/core/v2/core1_0 DeviceMemory

// SynchronizedMemory wraps a core1_0.DeviceMemory shared by one or more Buffers. The whole memory object is
// mapped at most once, and the mapping is reference counted across every range mapped through it.
type SynchronizedMemory struct {
	// Mapping data
	mapReferences int
	mapData       unsafe.Pointer

	// Hysteresis data- if we're calling map/unmap a lot more than segments are allocated and freed, then
	// maintain a persistent mapping to save time
	delayCounter  uint32
	statusCounter int32
	extraMapping  bool

	mapMutex utils.OptionalMutex
	memory   core1_0.DeviceMemory
	size     int
}

// NewSynchronizedMemory wraps memory, which must be size bytes. If useMutex is false, the consumer must
// ensure the memory is only mapped and unmapped from one thread at a time.
func NewSynchronizedMemory(memory core1_0.DeviceMemory, size int, useMutex bool) *SynchronizedMemory {
	return &SynchronizedMemory{
		memory: memory,
		size:   size,
		mapMutex: utils.OptionalMutex{
			UseMutex: useMutex,
		},
	}
}

func (m *SynchronizedMemory) VulkanDeviceMemory() core1_0.DeviceMemory {
	return m.memory
}

func (m *SynchronizedMemory) Size() int {
	return m.size
}

func (m *SynchronizedMemory) References() int {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	return m.references()
}

func (m *SynchronizedMemory) references() int {
	refs := m.mapReferences
	if m.extraMapping {
		refs++
	}
	return refs
}

// MapDelay is the number of map, unmap, and segment change events between hysteresis decisions
const MapDelay uint32 = 7

func (m *SynchronizedMemory) postMapUnmap() bool {
	m.delayCounter++
	m.statusCounter++

	if m.delayCounter >= MapDelay {
		m.delayCounter = 0
		if m.statusCounter >= 1 {
			m.statusCounter = 0
			m.extraMapping = true
			return true
		}
	}

	return false
}

// RecordSegmentChange counts a segment allocation, free, or resize against the mapping hysteresis. When
// segment changes outnumber mappings, the persistent mapping is dropped.
func (m *SynchronizedMemory) RecordSegmentChange() bool {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	m.delayCounter++
	m.statusCounter--

	if m.delayCounter >= MapDelay {
		m.delayCounter = 0
		if m.statusCounter <= -2 {
			m.statusCounter = 0
			m.dropExtraMapping()
			return true
		}
	}

	return false
}

func (m *SynchronizedMemory) dropExtraMapping() {
	if !m.extraMapping {
		return
	}

	m.extraMapping = false
	if m.mapReferences == 0 && m.mapData != nil {
		m.memory.Unmap()
		m.mapData = nil
	}
}

// Map adds references to the memory's mapping, mapping it if it is not already mapped, and returns a
// pointer to the start of the memory
func (m *SynchronizedMemory) Map(references int) (unsafe.Pointer, common.VkResult, error) {
	if references == 0 {
		return nil, core1_0.VKSuccess, nil
	}

	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	oldRefCount := m.references()
	_ = m.postMapUnmap()

	if oldRefCount > 0 {
		m.mapReferences += references
		if m.mapData == nil {
			return nil, core1_0.VKErrorUnknown, errors.New("the memory is showing existing memory mapping references, but no mapped memory")
		}

		return m.mapData, core1_0.VKSuccess, nil
	}

	mappedData, result, err := m.memory.Map(0, -1, 0)
	if err != nil {
		m.extraMapping = false
		return nil, result, err
	}

	m.mapData = mappedData
	m.mapReferences = references
	return mappedData, result, nil
}

// Unmap removes references from the memory's mapping, unmapping it when none remain
func (m *SynchronizedMemory) Unmap(references int) error {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if m.mapReferences == 0 {
		return nil
	}

	if m.mapReferences < references {
		return errors.New("device memory has more references being unmapped than are currently mapped")
	}

	m.mapReferences -= references
	m.postMapUnmap()

	if m.references() <= 0 {
		m.memory.Unmap()
		m.mapData = nil
	}

	return nil
}

// Release drops the persistent mapping, if there is one. It returns an error if ranges are still mapped.
func (m *SynchronizedMemory) Release() error {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	m.dropExtraMapping()

	if m.mapReferences > 0 {
		return errors.Newf("device memory still has %d mapped ranges", m.mapReferences)
	}

	return nil
}
