package subbuf

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/arsenal/subbuf/memutils"
	"github.com/vkngwrapper/arsenal/subbuf/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Strategy returns the strategy used for writes to this region. AccessModeDynamicRing regions with
// RegionCreateSequentialConsumption report WriteStrategyNoOverwrite, though individual writes that do not
// fit after the ring cursor fall back to a discard write at the start of the region.
func (r *Region) Strategy() (WriteStrategy, error) {
	switch r.mode {
	case AccessModeDynamic:
		return WriteStrategyDiscard, nil
	case AccessModeDynamicRing:
		if r.flags&RegionCreateSequentialConsumption != 0 {
			return WriteStrategyNoOverwrite, nil
		}
		return WriteStrategyDiscard, nil
	case AccessModeStaging:
		return WriteStrategyDirect, nil
	case AccessModeDefault:
		return WriteStrategyStaged, nil
	}

	return WriteStrategyNone, errors.Wrapf(memutils.InvalidUsageError, "regions with access mode %s cannot be written by the cpu", r.mode)
}

// validateRequest performs every check that does not depend on the current state of the target's
// segments. It may be called from any thread.
func (r *Region) validateRequest(op *PendingOperation) error {
	if op.Target.region != r {
		return errors.Wrapf(memutils.InvalidUsageError, "segment %s does not belong to region %q", op.Target.Handle(), r.name)
	}

	size := op.byteCount()
	wholeSource := op.Kind == OperationCopyRegion && op.Size == 0
	if size < 1 && !wholeSource {
		return errors.Wrapf(memutils.InvalidUsageError, "%s operation has an empty range", op.Kind)
	}
	if op.TargetOffset < 0 || op.SourceOffset < 0 {
		return errors.Wrapf(memutils.BoundsOverflowError, "%s operation has a negative offset", op.Kind)
	}

	switch op.Kind {
	case OperationSetData, OperationStreamWrite:
		err := r.validateWriteRequest(op, size)
		if err != nil {
			return err
		}
	case OperationGetData:
		if !r.mode.CPUReadable() {
			return errors.Wrapf(memutils.InvalidUsageError, "regions with access mode %s cannot be read by the cpu", r.mode)
		}
	case OperationCopyRegion:
		if op.Source.region == nil {
			return errors.Wrap(memutils.InvalidUsageError, "copy source does not belong to a region")
		}
		err := memutils.CheckRange(op.SourceOffset, size, op.Source.region.capacity, "copy source")
		if err != nil {
			return err
		}
	default:
		return errors.Wrapf(memutils.InvalidUsageError, "unknown operation kind %s", op.Kind)
	}

	return memutils.CheckRange(op.TargetOffset, size, r.capacity, op.Kind.String())
}

func (r *Region) validateWriteRequest(op *PendingOperation, size int) error {
	strategy, err := r.Strategy()
	if err != nil {
		return err
	}

	if op.Stride < 0 {
		return errors.Wrapf(memutils.InvalidUsageError, "invalid write stride %d", op.Stride)
	}
	if op.Stride > 0 && size%op.Stride != 0 {
		return errors.Wrapf(memutils.TypeMismatchError, "write of %d bytes is not a whole number of %d-byte elements", size, op.Stride)
	}
	if op.Stride > 0 && r.flags&RegionCreateStructured != 0 && op.Stride != r.stride {
		return errors.Wrapf(memutils.TypeMismatchError, "write stride %d does not match region stride %d", op.Stride, r.stride)
	}

	if strategy != WriteStrategyStaged {
		return nil
	}

	if op.Staging == nil {
		return errors.Wrapf(memutils.StagingRequiredError, "regions with access mode %s can only be written through a staging region", r.mode)
	}
	if !op.Staging.mode.CPUWritable() {
		return errors.Wrapf(memutils.InvalidUsageError, "staging region %q has access mode %s and cannot be written by the cpu", op.Staging.name, op.Staging.mode)
	}
	if op.Staging.capacity < size {
		return errors.Wrapf(memutils.StagingRequiredError, "staging region %q holds %d bytes, but %d are being written", op.Staging.name, op.Staging.capacity, size)
	}

	return nil
}

// validateState performs the checks that depend on the current state of the segments an operation
// touches, and resolves the operation's size. It must be called on the thread that owns the region.
func (r *Region) validateState(op *PendingOperation) (state operationState, err error) {
	state.target, err = r.checkOwnership(op.Target)
	if err != nil {
		return state, err
	}

	state.size = op.byteCount()

	if op.Kind == OperationCopyRegion {
		state.source, err = op.Source.region.checkOwnership(op.Source)
		if err != nil {
			return state, errors.Wrap(err, "invalid copy source")
		}

		if op.Size == 0 {
			state.size = state.source.ByteCount - op.SourceOffset
			if state.size < 1 {
				return state, errors.Wrapf(memutils.BoundsOverflowError, "copy source offset %d is past the end of the source segment", op.SourceOffset)
			}
		}

		err = memutils.CheckRange(op.SourceOffset, state.size, state.source.ByteCount, "copy source")
		if err != nil {
			return state, err
		}
	}

	err = memutils.CheckRange(op.TargetOffset, state.size, state.target.ByteCount, op.Kind.String())
	if err != nil {
		return state, err
	}

	if op.isWrite() && op.Stride > 0 && op.Stride != state.target.Stride {
		return state, errors.Wrapf(memutils.TypeMismatchError, "write stride %d does not match segment stride %d", op.Stride, state.target.Stride)
	}

	if op.isWrite() && op.Staging != nil && op.Staging.metadata == nil {
		return state, errors.Wrapf(memutils.StagingRequiredError, "staging region %q has been destroyed", op.Staging.name)
	}

	if op.Kind == OperationCopyRegion && op.Source.region.backing == r.backing {
		srcStart := state.source.Offset + op.SourceOffset
		dstStart := state.target.Offset + op.TargetOffset
		if srcStart < dstStart+state.size && dstStart < srcStart+state.size {
			return state, errors.Wrapf(memutils.InvalidUsageError, "copy ranges [%d, %d) and [%d, %d) overlap",
				srcStart, srcStart+state.size, dstStart, dstStart+state.size)
		}
	}

	return state, nil
}

type operationState struct {
	target metadata.SegmentInfo
	source metadata.SegmentInfo
	size   int
}

func mapAndTransfer(ctx ExecutionContext, backing Backing, offset, size int, mode MapMode, transfer func(data []byte) error) (err error) {
	mapped, err := ctx.MapRegion(backing, offset, size, mode)
	if err != nil {
		return err
	}
	defer func() {
		unmapErr := ctx.Unmap(mapped)
		if err == nil && unmapErr != nil {
			err = unmapErr
		}
	}()

	if len(mapped.Data) < size {
		return errors.Wrapf(memutils.BoundsOverflowError, "mapped %d bytes, but %d were requested", len(mapped.Data), size)
	}

	return transfer(mapped.Data[:size])
}

// execute validates the operation against current segment state and carries it out
func (r *Region) execute(op *PendingOperation) (OperationResult, error) {
	state, err := r.validateState(op)
	if err != nil {
		return OperationResult{}, err
	}

	size := state.size
	offset := state.target.Offset + op.TargetOffset
	result := OperationResult{
		Kind:   op.Kind,
		Offset: offset,
		Size:   size,
	}

	switch op.Kind {
	case OperationSetData, OperationStreamWrite:
		fill := func(data []byte) error {
			if op.Writer != nil {
				return op.Writer(data)
			}

			copy(data, op.Data)
			return nil
		}

		result.Offset, result.Strategy, err = r.write(op.Staging, offset, size, fill)
	case OperationGetData:
		err = mapAndTransfer(r.context, r.backing, offset, size, MapRead, func(data []byte) error {
			copy(op.Destination, data)
			return nil
		})
	case OperationCopyRegion:
		err = r.context.CopyRegion(op.Source.region.backing, r.backing, state.source.Offset+op.SourceOffset, size, offset)
	}

	return result, err
}

// write realizes a write of size bytes at offset with the region's write strategy and returns where the
// data landed
func (r *Region) write(staging *Region, offset, size int, fill func(data []byte) error) (int, WriteStrategy, error) {
	strategy, err := r.Strategy()
	if err != nil {
		return offset, strategy, err
	}

	switch strategy {
	case WriteStrategyDiscard:
		return offset, strategy, mapAndTransfer(r.context, r.backing, offset, size, MapWriteDiscard, fill)
	case WriteStrategyDirect:
		return offset, strategy, mapAndTransfer(r.context, r.backing, offset, size, MapWrite, fill)
	case WriteStrategyNoOverwrite:
		return r.writeRing(size, fill)
	}

	// Staged
	stagingMode := MapWriteDiscard
	if staging.mode == AccessModeStaging {
		stagingMode = MapWrite
	}

	claim, err := staging.claimStaging(size)
	if err != nil {
		return offset, strategy, err
	}

	stagingOffset := claim.Offset()
	err = mapAndTransfer(staging.context, staging.backing, stagingOffset, size, stagingMode, fill)
	if err != nil {
		_ = staging.Deallocate(claim)
		return offset, strategy, errors.Wrapf(err, "failed to write staging region %q", staging.name)
	}

	r.stagingClaims = append(r.stagingClaims, claim)
	return offset, strategy, r.context.CopyRegion(staging.backing, r.backing, stagingOffset, size, offset)
}

// writeRing appends after the ring cursor when the write fits entirely before the end of the region, and
// otherwise discards and restarts the ring at offset 0
func (r *Region) writeRing(size int, fill func(data []byte) error) (int, WriteStrategy, error) {
	if r.ringCursor > 0 && r.ringCursor+size < r.capacity {
		offset := r.ringCursor
		err := mapAndTransfer(r.context, r.backing, offset, size, MapWriteNoOverwrite, fill)
		if err != nil {
			return offset, WriteStrategyNoOverwrite, err
		}

		r.ringCursor += size
		return offset, WriteStrategyNoOverwrite, nil
	}

	err := mapAndTransfer(r.context, r.backing, 0, size, MapWriteDiscard, fill)
	if err != nil {
		return 0, WriteStrategyDiscard, err
	}

	r.ringCursor = size
	return 0, WriteStrategyDiscard, nil
}

func (r *Region) run(op *PendingOperation) error {
	result, err := r.execute(op)
	if err != nil {
		return errors.Wrapf(err, "failed to execute %s operation", op.Kind)
	}

	if op.Completion != nil {
		op.Completion(result)
	}

	return nil
}

// Apply drains the operation queue in FIFO order. If an operation fails, draining stops and the error is
// returned: the failing operation and everything after it stay queued for the next Apply.
//
// Apply first releases the staging ranges claimed by the previous Apply and by immediate staged writes
// since then. Copies recorded by a deferred ExecutionContext must have been executed before Apply is
// called again.
func (r *Region) Apply() error {
	if r.metadata == nil {
		return errors.Wrap(memutils.InvalidUsageError, "region has been destroyed")
	}

	r.releaseStagingOrLog()

	for {
		op, ok := r.queue.Peek()
		if !ok {
			return nil
		}

		result, err := r.execute(&op)
		if err != nil {
			err = errors.Wrapf(err, "failed to execute %s operation", op.Kind)
			r.logger.LogAttrs(context.Background(), slog.LevelDebug, "aborted operation drain",
				slog.String("region", r.name),
				slog.String("kind", op.Kind.String()),
				slog.Int("remaining", r.queue.Len()),
				slog.Any("error", err),
			)
			return err
		}

		_, _ = r.queue.Pop()

		if op.Completion != nil {
			op.Completion(result)
		}
	}
}

// Flush is an explicit apply point
func (r *Region) Flush() error {
	return r.Apply()
}

// Acquire applies every pending operation and returns the backing for downstream consumption. It should be
// called immediately before the region's contents are consumed.
func (r *Region) Acquire() (Backing, error) {
	err := r.Apply()
	if err != nil {
		return nil, err
	}

	return r.backing, nil
}
