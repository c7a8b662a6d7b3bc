package hostmem

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/arsenal/subbuf"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Buffer is a subbuf.Backing held in host memory
type Buffer struct {
	data []byte
}

var _ subbuf.Backing = &Buffer{}

func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

func (b *Buffer) Capacity() int { return len(b.data) }

// Bytes exposes the buffer's content directly, bypassing mapping
func (b *Buffer) Bytes() []byte { return b.data }

// View is the subbuf.ViewHandle created by Context
type View struct {
	Buffer  *Buffer
	Offset  int
	Size    int
	Stride  int
	Version uint64
}

// MapRecord describes one call to Context.MapRegion
type MapRecord struct {
	Offset int
	Size   int
	Mode   subbuf.MapMode
}

// Statistics counts the calls a Context has served
type Statistics struct {
	Maps          int
	Unmaps        int
	Copies        int
	CopiedBytes   int
	ViewsCreated  int
	ViewsReleased int
}

type mappingKey struct {
	buffer *Buffer
	offset int
	size   int
}

// Context is a subbuf.ExecutionContext over host byte slices. It performs every operation synchronously,
// which makes it suitable for software rendering paths and for tests. Like every ExecutionContext, it must
// only be used from one thread.
type Context struct {
	logger   *slog.Logger
	mappings *swiss.Map[mappingKey, int]
	history  []MapRecord
	stats    Statistics

	keepHistory bool
}

var _ subbuf.ExecutionContext = &Context{}
var _ subbuf.ViewReleaser = &Context{}

// NewContext creates a Context. If keepHistory is true, every MapRegion call is recorded and can be
// retrieved with MapHistory.
func NewContext(logger *slog.Logger, keepHistory bool) *Context {
	return &Context{
		logger:      logger,
		mappings:    swiss.NewMap[mappingKey, int](8),
		keepHistory: keepHistory,
	}
}

func (c *Context) buffer(backing subbuf.Backing) (*Buffer, error) {
	buffer, ok := backing.(*Buffer)
	if !ok || buffer == nil {
		return nil, errors.Wrapf(memutils.InvalidUsageError, "backing of type %T is not a host memory buffer", backing)
	}

	return buffer, nil
}

func (c *Context) MapRegion(backing subbuf.Backing, offset, size int, mode subbuf.MapMode) (subbuf.MappedRange, error) {
	buffer, err := c.buffer(backing)
	if err != nil {
		return subbuf.MappedRange{}, err
	}

	err = memutils.CheckRange(offset, size, len(buffer.data), "mapped range")
	if err != nil {
		return subbuf.MappedRange{}, err
	}

	key := mappingKey{buffer: buffer, offset: offset, size: size}
	count, _ := c.mappings.Get(key)
	c.mappings.Put(key, count+1)

	c.stats.Maps++
	if c.keepHistory {
		c.history = append(c.history, MapRecord{Offset: offset, Size: size, Mode: mode})
	}

	return subbuf.MappedRange{
		Backing: buffer,
		Offset:  offset,
		Mode:    mode,
		Data:    buffer.data[offset : offset+size : offset+size],
	}, nil
}

func (c *Context) Unmap(mapped subbuf.MappedRange) error {
	buffer, err := c.buffer(mapped.Backing)
	if err != nil {
		return err
	}

	key := mappingKey{buffer: buffer, offset: mapped.Offset, size: len(mapped.Data)}
	count, ok := c.mappings.Get(key)
	if !ok {
		return errors.Newf("range of %d bytes at offset %d was unmapped, but it was never mapped", len(mapped.Data), mapped.Offset)
	}

	if count <= 1 {
		c.mappings.Delete(key)
	} else {
		c.mappings.Put(key, count-1)
	}

	c.stats.Unmaps++
	return nil
}

func (c *Context) CopyRegion(src, dst subbuf.Backing, srcOffset, size, dstOffset int) error {
	srcBuffer, err := c.buffer(src)
	if err != nil {
		return err
	}
	dstBuffer, err := c.buffer(dst)
	if err != nil {
		return err
	}

	err = memutils.CheckRange(srcOffset, size, len(srcBuffer.data), "copy source")
	if err != nil {
		return err
	}
	err = memutils.CheckRange(dstOffset, size, len(dstBuffer.data), "copy destination")
	if err != nil {
		return err
	}

	if srcBuffer == dstBuffer && srcOffset < dstOffset+size && dstOffset < srcOffset+size {
		return errors.Wrapf(memutils.InvalidUsageError, "copy ranges at %d and %d of size %d overlap", srcOffset, dstOffset, size)
	}

	copy(dstBuffer.data[dstOffset:dstOffset+size], srcBuffer.data[srcOffset:srcOffset+size])

	c.stats.Copies++
	c.stats.CopiedBytes += size
	return nil
}

func (c *Context) CreateView(backing subbuf.Backing, segment metadata.SegmentInfo) (subbuf.ViewHandle, error) {
	buffer, err := c.buffer(backing)
	if err != nil {
		return nil, err
	}

	err = memutils.CheckRange(segment.Offset, segment.ByteCount, len(buffer.data), "view")
	if err != nil {
		return nil, err
	}

	c.stats.ViewsCreated++
	return &View{
		Buffer:  buffer,
		Offset:  segment.Offset,
		Size:    segment.ByteCount,
		Stride:  segment.Stride,
		Version: segment.Version,
	}, nil
}

func (c *Context) ReleaseView(view subbuf.ViewHandle) error {
	if _, ok := view.(*View); !ok {
		return errors.Newf("view of type %T was not created by a host memory context", view)
	}

	c.stats.ViewsReleased++
	return nil
}

// OutstandingMappings returns the number of mappings that have not been unmapped
func (c *Context) OutstandingMappings() int {
	total := 0
	c.mappings.Iter(func(key mappingKey, count int) bool {
		total += count
		return false
	})

	return total
}

func (c *Context) MapHistory() []MapRecord {
	return c.history
}

func (c *Context) Statistics() Statistics {
	return c.stats
}

// Close reports mappings that were never unmapped
func (c *Context) Close() error {
	outstanding := c.OutstandingMappings()
	if outstanding == 0 {
		return nil
	}

	c.mappings.Iter(func(key mappingKey, count int) bool {
		c.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MAPPING] range was never unmapped",
			slog.Int("offset", key.offset),
			slog.Int("size", key.size),
			slog.Int("references", count),
		)
		return false
	})

	return errors.Newf("%d mappings were not unmapped before the context was closed", outstanding)
}
