package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// CheckRange returns a BoundsOverflowError if the range [offset, offset+size) does not fit within
// a span of the given length.
func CheckRange(offset, size, length int, name string) error {
	if offset < 0 || size < 0 {
		return cerrors.Wrapf(BoundsOverflowError, "%s has negative offset %d or size %d", name, offset, size)
	}
	if offset+size > length {
		return cerrors.Wrapf(BoundsOverflowError, "%s range [%d, %d) exceeds length %d", name, offset, offset+size, length)
	}
	return nil
}
