package vm

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrInvalidRange is returned when a memory offset or length derived from
// stack values cannot be represented as a machine-addressable range, rather
// than silently wrapping. Bytecode that pushes out-of-range offsets (e.g.
// a 300-bit MSTORE offset) always exhausts gas or hits this error; it never
// produces a truncated, wrapped-around memory access.
var ErrInvalidRange = errors.New("invalid memory range")

// toUint64Checked converts a *big.Int stack value to a uint64, reporting
// overflow instead of wrapping. Stack slots hold arbitrary 256-bit values;
// any value above 2^64-1 can never be a realizable offset or length given
// realistic gas limits, so it is treated as an out-of-range access.
func toUint64Checked(v *big.Int) (uint64, bool) {
	if v.Sign() < 0 {
		return 0, false
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return 0, false
	}
	if !u.IsUint64() {
		return 0, false
	}
	return u.Uint64(), true
}

// memoryRangeSize computes offset+length for a memory access, checked for
// both individual overflow and overflow of the sum. A zero length always
// requires zero additional memory, even when offset itself is huge.
func memoryRangeSize(offset, length *big.Int) (uint64, bool) {
	if length.Sign() == 0 {
		return 0, true
	}
	off, ok := toUint64Checked(offset)
	if !ok {
		return 0, false
	}
	l, ok := toUint64Checked(length)
	if !ok {
		return 0, false
	}
	end := off + l
	if end < off {
		return 0, false
	}
	return end, true
}
