package subbuf

import "fmt"

// OperationKind identifies the variant held by a PendingOperation
type OperationKind int32

const (
	OperationSetData OperationKind = iota + 1
	OperationGetData
	OperationCopyRegion
	OperationStreamWrite
)

var operationKindNames = map[OperationKind]string{
	OperationSetData:     "SetData",
	OperationGetData:     "GetData",
	OperationCopyRegion:  "CopyRegion",
	OperationStreamWrite: "StreamWrite",
}

func (k OperationKind) String() string {
	str, ok := operationKindNames[k]
	if !ok {
		return fmt.Sprintf("OperationKind(%d)", int32(k))
	}
	return str
}

// OperationResult is passed to an operation's CompletionFunc after the operation executes successfully
type OperationResult struct {
	Kind OperationKind
	// Offset is the byte offset within the region's backing that the operation wrote or read. For ring
	// writes this is where the data actually landed.
	Offset int
	// Size is the number of bytes written, read, or copied
	Size     int
	Strategy WriteStrategy
}

// CompletionFunc is invoked on the draining thread after an operation executes successfully. It is never
// invoked for operations that fail.
type CompletionFunc func(result OperationResult)

// StreamWriteFunc fills a mapped range with data. The slice is only valid for the duration of the call.
type StreamWriteFunc func(data []byte) error

// WriteInfo carries the optional parameters of SetData, StreamWrite and Upload
type WriteInfo struct {
	// DestinationOffset is the byte offset within the target segment at which the data will be written
	DestinationOffset int
	// Stride may be set to the element size of the data being written. If it is nonzero, it must match the
	// target segment's stride and evenly divide the data.
	Stride int
	Priority Priority
	// Staging is the region that staged writes pass through. It is required when writing to an
	// AccessModeDefault region and ignored otherwise.
	Staging    *Region
	Completion CompletionFunc
}

// ReadInfo carries the optional parameters of GetData
type ReadInfo struct {
	// SourceOffset is the byte offset within the target segment at which the read begins
	SourceOffset int
	Priority     Priority
	Completion   CompletionFunc
}

// CopyInfo carries the optional parameters of CopyRegion
type CopyInfo struct {
	// SourceOffset is the byte offset within the source segment
	SourceOffset int
	// DestinationOffset is the byte offset within the destination segment
	DestinationOffset int
	// Size is the number of bytes to copy. If it is 0, everything from SourceOffset to the end of the source
	// segment is copied.
	Size       int
	Priority   Priority
	Completion CompletionFunc
}

// PendingOperation is a queued mutation against one region. It is a closed union: Kind decides which of
// the remaining fields are meaningful, and every field holds data owned by the operation.
type PendingOperation struct {
	Kind       OperationKind
	Target     Segment
	Completion CompletionFunc

	// SetData, StreamWrite
	Data    []byte
	Writer  StreamWriteFunc
	Size    int
	Stride  int
	Staging *Region

	// GetData
	Destination []byte

	// CopyRegion
	Source       Segment
	SourceOffset int

	// TargetOffset is the byte offset within Target for every kind
	TargetOffset int
}

// byteCount returns the size of the operation's range. A CopyRegion with no size copies to the end of its
// source segment, so its size is only known once the source is resolved and is reported as 0 here.
func (o *PendingOperation) byteCount() int {
	switch o.Kind {
	case OperationSetData:
		return len(o.Data)
	case OperationGetData:
		return len(o.Destination)
	case OperationCopyRegion, OperationStreamWrite:
		return o.Size
	}

	panic(fmt.Sprintf("unknown operation kind: %s", o.Kind))
}

func (o *PendingOperation) isWrite() bool {
	return o.Kind == OperationSetData || o.Kind == OperationStreamWrite
}
