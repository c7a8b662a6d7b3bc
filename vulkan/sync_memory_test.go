package vulkan

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/arsenal/subbuf/vulkan/mocks"
	"go.uber.org/mock/gomock"
)

func TestSynchronizedMemoryReferenceCounting(t *testing.T) {
	ctrl := gomock.NewController(t)

	data := make([]byte, 256)
	dataPtr := unsafe.Pointer(&data[0])

	memory := mocks.NewMockDeviceMemory(ctrl)
	memory.EXPECT().Map(0, -1, core1_0.MemoryMapFlags(0)).Return(dataPtr, core1_0.VKSuccess, nil)
	memory.EXPECT().Unmap()

	syncMemory := NewSynchronizedMemory(memory, 256, true)
	require.Equal(t, 256, syncMemory.Size())
	require.Equal(t, memory, syncMemory.VulkanDeviceMemory())

	ptr, _, err := syncMemory.Map(1)
	require.NoError(t, err)
	require.Equal(t, dataPtr, ptr)

	ptr, _, err = syncMemory.Map(1)
	require.NoError(t, err)
	require.Equal(t, dataPtr, ptr)
	require.Equal(t, 2, syncMemory.References())

	require.NoError(t, syncMemory.Unmap(1))
	require.Equal(t, 1, syncMemory.References())
	require.NoError(t, syncMemory.Unmap(1))
	require.Equal(t, 0, syncMemory.References())

	require.NoError(t, syncMemory.Release())
}

func TestSynchronizedMemoryMapZeroReferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	memory := mocks.NewMockDeviceMemory(ctrl)

	syncMemory := NewSynchronizedMemory(memory, 256, false)
	ptr, _, err := syncMemory.Map(0)
	require.NoError(t, err)
	require.Nil(t, ptr)
	require.Equal(t, 0, syncMemory.References())
}

func TestSynchronizedMemoryMapFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	memory := mocks.NewMockDeviceMemory(ctrl)
	memory.EXPECT().Map(0, -1, core1_0.MemoryMapFlags(0)).Return(nil, core1_0.VKErrorMemoryMapFailed, errors.New("map failed"))

	syncMemory := NewSynchronizedMemory(memory, 256, true)
	_, result, err := syncMemory.Map(1)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorMemoryMapFailed, result)
	require.Equal(t, 0, syncMemory.References())
}

func TestSynchronizedMemoryUnmapTooManyReferences(t *testing.T) {
	ctrl := gomock.NewController(t)

	data := make([]byte, 64)
	memory := mocks.NewMockDeviceMemory(ctrl)
	memory.EXPECT().Map(0, -1, core1_0.MemoryMapFlags(0)).Return(unsafe.Pointer(&data[0]), core1_0.VKSuccess, nil)

	syncMemory := NewSynchronizedMemory(memory, 64, true)
	_, _, err := syncMemory.Map(1)
	require.NoError(t, err)

	require.Error(t, syncMemory.Unmap(2))
	require.Error(t, syncMemory.Release())
}

func TestSynchronizedMemoryHysteresis(t *testing.T) {
	ctrl := gomock.NewController(t)

	data := make([]byte, 256)
	dataPtr := unsafe.Pointer(&data[0])

	memory := mocks.NewMockDeviceMemory(ctrl)
	// The 7th map or unmap turns on the persistent mapping, so the 4th unmap leaves the memory mapped
	memory.EXPECT().Map(0, -1, core1_0.MemoryMapFlags(0)).Return(dataPtr, core1_0.VKSuccess, nil).Times(4)
	memory.EXPECT().Unmap().Times(4)

	syncMemory := NewSynchronizedMemory(memory, 256, true)
	for i := 0; i < 4; i++ {
		_, _, err := syncMemory.Map(1)
		require.NoError(t, err)
		require.NoError(t, syncMemory.Unmap(1))
	}
	require.Equal(t, 1, syncMemory.References())

	// Segment changes outnumbering mappings drop the persistent mapping again
	for i := 0; i < 5; i++ {
		require.False(t, syncMemory.RecordSegmentChange())
	}
	require.True(t, syncMemory.RecordSegmentChange())
	require.Equal(t, 0, syncMemory.References())
}

func TestSynchronizedMemoryReleaseDropsPersistentMapping(t *testing.T) {
	ctrl := gomock.NewController(t)

	data := make([]byte, 256)
	dataPtr := unsafe.Pointer(&data[0])

	memory := mocks.NewMockDeviceMemory(ctrl)
	memory.EXPECT().Map(0, -1, core1_0.MemoryMapFlags(0)).Return(dataPtr, core1_0.VKSuccess, nil).Times(4)
	memory.EXPECT().Unmap().Times(4)

	syncMemory := NewSynchronizedMemory(memory, 256, false)
	for i := 0; i < 4; i++ {
		_, _, err := syncMemory.Map(1)
		require.NoError(t, err)
		require.NoError(t, syncMemory.Unmap(1))
	}
	require.Equal(t, 1, syncMemory.References())

	require.NoError(t, syncMemory.Release())
	require.Equal(t, 0, syncMemory.References())
}
