package memutils

import "github.com/cockroachdb/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// AllocationFailureError is returned when no free segment in a region is large enough to satisfy an
// allocation. Regions never grow or compact to satisfy a request.
var AllocationFailureError error = errors.New("no free segment is large enough for the allocation")

// BoundsOverflowError is returned when a requested write, read, or copy range extends past the end of
// a segment or region
var BoundsOverflowError error = errors.New("requested range exceeds the bounds of the segment")

// InvalidUsageError is returned when an operation requires a capability that the region's access mode
// does not have, or when a segment or handle is used with a region that does not own it
var InvalidUsageError error = errors.New("operation is not permitted for this region")

// StagingRequiredError is returned when a staged write was attempted without a staging region, or with
// a staging region that is too small to hold the data being written
var StagingRequiredError error = errors.New("a staging region large enough for the write is required")

// TypeMismatchError is returned when a typed operation's stride disagrees with the stride of the segment
// or region it targets
var TypeMismatchError error = errors.New("operation stride does not match the region stride")
