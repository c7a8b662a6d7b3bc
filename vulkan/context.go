package vulkan

import (
	"context"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/subbuf"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/exp/slog"
)

//go:generate mockgen -source context.go -destination ./mocks/context.go -package mocks

// Device is the subset of core1_0.Device used by Context
type Device interface {
	FlushMappedMemoryRanges(ranges []core1_0.MappedMemoryRange) (common.VkResult, error)
	InvalidateMappedMemoryRanges(ranges []core1_0.MappedMemoryRange) (common.VkResult, error)
	CreateBufferView(allocationCallbacks *driver.AllocationCallbacks, o core1_0.BufferViewCreateInfo) (core1_0.BufferView, common.VkResult, error)
}

// CommandRecorder is the subset of core1_0.CommandBuffer used by Context. Copies are recorded, not
// executed: they take effect when the consumer submits the command buffer.
type CommandRecorder interface {
	CmdCopyBuffer(srcBuffer core1_0.Buffer, dstBuffer core1_0.Buffer, copyRegions []core1_0.BufferCopy) error
	CmdPipelineBarrier(srcStageMask, dstStageMask core1_0.PipelineStageFlags, dependencies core1_0.DependencyFlags, memoryBarriers []core1_0.MemoryBarrier, bufferMemoryBarriers []core1_0.BufferMemoryBarrier, imageMemoryBarriers []core1_0.ImageMemoryBarrier) error
}

// Buffer is a subbuf.Backing made of a core1_0.Buffer bound to a range of a SynchronizedMemory
type Buffer struct {
	buffer       core1_0.Buffer
	memory       *SynchronizedMemory
	memoryOffset int
	size         int
	hostCoherent bool
}

var _ subbuf.Backing = &Buffer{}

// NewBuffer describes buffer, which is size bytes and bound to memory at memoryOffset. hostCoherent should
// be true if memory was allocated from a memory type with core1_0.MemoryPropertyHostCoherent.
func NewBuffer(buffer core1_0.Buffer, memory *SynchronizedMemory, memoryOffset, size int, hostCoherent bool) (*Buffer, error) {
	if buffer == nil {
		return nil, errors.New("a vulkan buffer is required")
	}
	if memory == nil {
		return nil, errors.New("device memory is required")
	}
	if size < 1 {
		return nil, errors.Newf("invalid buffer size %d", size)
	}

	err := memutils.CheckRange(memoryOffset, size, memory.Size(), "buffer binding")
	if err != nil {
		return nil, err
	}

	return &Buffer{
		buffer:       buffer,
		memory:       memory,
		memoryOffset: memoryOffset,
		size:         size,
		hostCoherent: hostCoherent,
	}, nil
}

func (b *Buffer) Capacity() int                { return b.size }
func (b *Buffer) VulkanBuffer() core1_0.Buffer { return b.buffer }
func (b *Buffer) Memory() *SynchronizedMemory  { return b.memory }
func (b *Buffer) MemoryOffset() int            { return b.memoryOffset }
func (b *Buffer) HostCoherent() bool           { return b.hostCoherent }

// ContextOptions contains the settings used to create a Context
type ContextOptions struct {
	// NonCoherentAtomSize is the device's core1_0.PhysicalDeviceLimits.NonCoherentAtomSize. Flushed and
	// invalidated ranges of non-coherent memory are widened to multiples of it. It must be a power of two.
	NonCoherentAtomSize int
	// ViewFormat is the texel format of the buffer views created by CreateView. Views cannot be created if it
	// is core1_0.FormatUndefined.
	ViewFormat          core1_0.Format
	AllocationCallbacks *driver.AllocationCallbacks
}

type copyRange struct {
	buffer core1_0.Buffer
	offset int
	size   int
}

func (r copyRange) overlaps(other copyRange) bool {
	return r.buffer == other.buffer && r.offset < other.offset+other.size && other.offset < r.offset+r.size
}

// Context is a subbuf.ExecutionContext over vulkan buffers. Mapping goes through each Buffer's
// SynchronizedMemory, and copies are recorded into a CommandRecorder. Vulkan has no equivalent of
// discarding a mapped range, so every write mode maps the range as-is: the consumer must not write to
// ranges the device is still reading.
type Context struct {
	logger   *slog.Logger
	device   Device
	commands CommandRecorder
	options  ContextOptions

	recordedCopies []copyRange
}

var _ subbuf.ExecutionContext = &Context{}
var _ subbuf.ViewReleaser = &Context{}
var _ subbuf.SegmentObserver = &Context{}

func NewContext(logger *slog.Logger, device Device, commands CommandRecorder, options ContextOptions) (*Context, error) {
	if logger == nil {
		return nil, errors.New("a logger is required to create a context")
	}
	if device == nil {
		return nil, errors.New("a device is required to create a context")
	}
	if commands == nil {
		return nil, errors.New("a command recorder is required to create a context")
	}
	if options.NonCoherentAtomSize < 1 {
		options.NonCoherentAtomSize = 1
	}

	err := memutils.CheckPow2(options.NonCoherentAtomSize, "NonCoherentAtomSize")
	if err != nil {
		return nil, err
	}

	return &Context{
		logger:   logger,
		device:   device,
		commands: commands,
		options:  options,
	}, nil
}

func (c *Context) buffer(backing subbuf.Backing) (*Buffer, error) {
	buffer, ok := backing.(*Buffer)
	if !ok || buffer == nil {
		return nil, errors.Wrapf(memutils.InvalidUsageError, "backing of type %T is not a vulkan buffer", backing)
	}

	return buffer, nil
}

// memoryRange widens the range [offset, offset+size) of buffer to the non-coherent atom size, clamped to
// the end of the buffer's memory
func (c *Context) memoryRange(buffer *Buffer, offset, size int) core1_0.MappedMemoryRange {
	atomSize := uint(c.options.NonCoherentAtomSize)

	absoluteOffset := buffer.memoryOffset + offset
	alignedOffset := memutils.AlignDown(absoluteOffset, atomSize)
	alignedSize := memutils.AlignUp(size+(absoluteOffset-alignedOffset), atomSize)

	restOfMemory := buffer.memory.Size() - alignedOffset
	if alignedSize > restOfMemory {
		alignedSize = restOfMemory
	}

	return core1_0.MappedMemoryRange{
		Memory: buffer.memory.VulkanDeviceMemory(),
		Offset: alignedOffset,
		Size:   alignedSize,
	}
}

func (c *Context) MapRegion(backing subbuf.Backing, offset, size int, mode subbuf.MapMode) (subbuf.MappedRange, error) {
	buffer, err := c.buffer(backing)
	if err != nil {
		return subbuf.MappedRange{}, err
	}

	err = memutils.CheckRange(offset, size, buffer.size, "mapped range")
	if err != nil {
		return subbuf.MappedRange{}, err
	}

	ptr, _, err := buffer.memory.Map(1)
	if err != nil {
		return subbuf.MappedRange{}, errors.Wrap(err, "failed to map device memory")
	}

	if mode.IsRead() && !buffer.hostCoherent {
		_, err = c.device.InvalidateMappedMemoryRanges([]core1_0.MappedMemoryRange{c.memoryRange(buffer, offset, size)})
		if err != nil {
			unmapErr := buffer.memory.Unmap(1)
			if unmapErr != nil {
				c.logger.LogAttrs(context.Background(), slog.LevelError, "failed to unmap device memory", slog.Any("error", unmapErr))
			}
			return subbuf.MappedRange{}, errors.Wrap(err, "failed to invalidate mapped range")
		}
	}

	data := unsafe.Slice((*byte)(unsafe.Add(ptr, buffer.memoryOffset+offset)), size)

	return subbuf.MappedRange{
		Backing: buffer,
		Offset:  offset,
		Mode:    mode,
		Data:    data,
	}, nil
}

func (c *Context) Unmap(mapped subbuf.MappedRange) error {
	buffer, err := c.buffer(mapped.Backing)
	if err != nil {
		return err
	}

	var flushErr error
	if mapped.Mode.IsWrite() && !buffer.hostCoherent {
		_, flushErr = c.device.FlushMappedMemoryRanges([]core1_0.MappedMemoryRange{c.memoryRange(buffer, mapped.Offset, len(mapped.Data))})
		if flushErr != nil {
			flushErr = errors.Wrap(flushErr, "failed to flush mapped range")
		}
	}

	err = buffer.memory.Unmap(1)
	if err != nil {
		return errors.CombineErrors(flushErr, err)
	}

	return flushErr
}

// CopyRegion records a copy into the context's CommandRecorder. If the copy touches bytes that a copy
// recorded earlier also touched, a transfer barrier is recorded first.
func (c *Context) CopyRegion(src, dst subbuf.Backing, srcOffset, size, dstOffset int) error {
	srcBuffer, err := c.buffer(src)
	if err != nil {
		return err
	}
	dstBuffer, err := c.buffer(dst)
	if err != nil {
		return err
	}

	err = memutils.CheckRange(srcOffset, size, srcBuffer.size, "copy source")
	if err != nil {
		return err
	}
	err = memutils.CheckRange(dstOffset, size, dstBuffer.size, "copy destination")
	if err != nil {
		return err
	}

	srcRange := copyRange{buffer: srcBuffer.buffer, offset: srcOffset, size: size}
	dstRange := copyRange{buffer: dstBuffer.buffer, offset: dstOffset, size: size}
	if srcRange.overlaps(dstRange) {
		return errors.Wrapf(memutils.InvalidUsageError, "copy ranges at %d and %d of size %d overlap", srcOffset, dstOffset, size)
	}

	for _, recorded := range c.recordedCopies {
		if recorded.overlaps(srcRange) || recorded.overlaps(dstRange) {
			err = c.transferBarrier()
			if err != nil {
				return err
			}
			break
		}
	}

	err = c.commands.CmdCopyBuffer(srcBuffer.buffer, dstBuffer.buffer, []core1_0.BufferCopy{
		{
			SrcOffset: srcOffset,
			DstOffset: dstOffset,
			Size:      size,
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to record buffer copy")
	}

	c.recordedCopies = append(c.recordedCopies, srcRange, dstRange)
	return nil
}

func (c *Context) transferBarrier() error {
	err := c.commands.CmdPipelineBarrier(core1_0.PipelineStageTransfer, core1_0.PipelineStageTransfer, 0,
		[]core1_0.MemoryBarrier{
			{
				SrcAccessMask: core1_0.AccessTransferWrite | core1_0.AccessTransferRead,
				DstAccessMask: core1_0.AccessTransferWrite | core1_0.AccessTransferRead,
			},
		}, nil, nil)
	if err != nil {
		return errors.Wrap(err, "failed to record transfer barrier")
	}

	c.recordedCopies = c.recordedCopies[:0]
	return nil
}

// ResetRecording should be called when the CommandRecorder is reset or replaced, so that copies recorded
// into it are no longer considered when deciding whether a barrier is needed
func (c *Context) ResetRecording(commands CommandRecorder) {
	if commands != nil {
		c.commands = commands
	}
	c.recordedCopies = c.recordedCopies[:0]
}

// RecordedCopies returns the number of copies recorded since the last barrier or reset
func (c *Context) RecordedCopies() int {
	return len(c.recordedCopies) / 2
}

func (c *Context) CreateView(backing subbuf.Backing, segment metadata.SegmentInfo) (subbuf.ViewHandle, error) {
	buffer, err := c.buffer(backing)
	if err != nil {
		return nil, err
	}

	if c.options.ViewFormat == core1_0.FormatUndefined {
		return nil, errors.Wrap(memutils.InvalidUsageError, "buffer views cannot be created without a view format")
	}

	err = memutils.CheckRange(segment.Offset, segment.ByteCount, buffer.size, "view")
	if err != nil {
		return nil, err
	}

	view, _, err := c.device.CreateBufferView(c.options.AllocationCallbacks, core1_0.BufferViewCreateInfo{
		Buffer: buffer.buffer,
		Format: c.options.ViewFormat,
		Offset: segment.Offset,
		Range:  segment.ByteCount,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create buffer view at offset %d", segment.Offset)
	}

	return view, nil
}

func (c *Context) ReleaseView(view subbuf.ViewHandle) error {
	bufferView, ok := view.(core1_0.BufferView)
	if !ok || bufferView == nil {
		return errors.Newf("view of type %T is not a vulkan buffer view", view)
	}

	bufferView.Destroy(c.options.AllocationCallbacks)
	return nil
}

// SegmentsChanged feeds the mapping hysteresis of the backing's memory
func (c *Context) SegmentsChanged(backing subbuf.Backing) {
	buffer, ok := backing.(*Buffer)
	if !ok || buffer == nil {
		return
	}

	buffer.memory.RecordSegmentChange()
}
