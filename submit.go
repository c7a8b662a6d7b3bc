package subbuf

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
)

func (r *Region) submit(op PendingOperation, priority Priority) error {
	err := r.validateRequest(&op)
	if err != nil {
		return err
	}

	switch priority {
	case PriorityQueued:
		r.queue.Enqueue(op)
		return nil
	case PriorityImmediate:
		return r.run(&op)
	}

	return errors.Wrapf(memutils.InvalidUsageError, "unknown priority %s", priority)
}

// SetData writes data into the target segment at info.DestinationOffset. The data is copied before SetData
// returns, so the caller may reuse the slice immediately.
func (r *Region) SetData(target Segment, data []byte, info WriteInfo) error {
	owned := make([]byte, len(data))
	copy(owned, data)

	return r.submit(PendingOperation{
		Kind:         OperationSetData,
		Target:       target,
		Completion:   info.Completion,
		Data:         owned,
		Stride:       info.Stride,
		Staging:      info.Staging,
		TargetOffset: info.DestinationOffset,
	}, info.Priority)
}

// StreamWrite maps size bytes of the target segment at info.DestinationOffset and passes them to writer
// when the operation executes. For staged regions, writer fills the staging region instead.
func (r *Region) StreamWrite(target Segment, size int, writer StreamWriteFunc, info WriteInfo) error {
	if writer == nil {
		return errors.Wrap(memutils.InvalidUsageError, "a writer is required for StreamWrite")
	}

	return r.submit(PendingOperation{
		Kind:         OperationStreamWrite,
		Target:       target,
		Completion:   info.Completion,
		Writer:       writer,
		Size:         size,
		Stride:       info.Stride,
		Staging:      info.Staging,
		TargetOffset: info.DestinationOffset,
	}, info.Priority)
}

// GetData reads len(destination) bytes of the target segment, starting at info.SourceOffset, into
// destination. Only AccessModeStaging regions can be read. For queued reads, destination is not filled
// until the operation is drained.
func (r *Region) GetData(target Segment, destination []byte, info ReadInfo) error {
	return r.submit(PendingOperation{
		Kind:         OperationGetData,
		Target:       target,
		Completion:   info.Completion,
		Destination:  destination,
		TargetOffset: info.SourceOffset,
	}, info.Priority)
}

// CopyRegion copies bytes from source, which may belong to another region, into destination, which must
// belong to this region. The copy is performed device-side.
func (r *Region) CopyRegion(source Segment, destination Segment, info CopyInfo) error {
	return r.submit(PendingOperation{
		Kind:         OperationCopyRegion,
		Target:       destination,
		Completion:   info.Completion,
		Size:         info.Size,
		Source:       source,
		SourceOffset: info.SourceOffset,
		TargetOffset: info.DestinationOffset,
	}, info.Priority)
}

// Upload allocates a segment large enough for data with the provided stride and writes data into it. It
// must be called on the thread that owns the region. If the write cannot be submitted, the segment is
// freed and the error returned.
func (r *Region) Upload(data []byte, stride int, info WriteInfo) (Segment, error) {
	if stride < 1 {
		stride = r.stride
	}
	if len(data) == 0 || len(data)%stride != 0 {
		return Segment{}, errors.Wrapf(memutils.TypeMismatchError, "upload of %d bytes is not a whole number of %d-byte elements", len(data), stride)
	}

	segment, err := r.AllocateTyped(len(data)/stride, stride)
	if err != nil {
		return Segment{}, err
	}

	info.DestinationOffset = 0
	info.Stride = stride
	err = r.SetData(segment, data, info)
	if err != nil {
		freeErr := r.Deallocate(segment)
		if freeErr != nil {
			panic(errors.Wrap(freeErr, "failed to free a segment that was just allocated"))
		}
		return Segment{}, err
	}

	return segment, nil
}
