package internal

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

const (
	DefaultCapacity = 10 // first block when growing from nothing.
	GrowthFactor    = 2
	ShrinkDivisor   = 4 // trim once at most 1/ShrinkDivisor of the slots are live.

	// Largest block in bytes handed out, well under the runtime's own limit so
	// the request fails with an error instead of a fatal out of memory.
	MaxAllocBytes uint64 = 1 << 40
)

var ErrExhausted = errors.New("storage exhausted")

// Block of exactly n zeroed slots, len == cap == n. Nil for n == 0.
// Requests over MaxAllocBytes return ErrExhausted.
func Allocate[T any](n int) (s []T, err error) {
	if n < 0 {
		panic("n < 0")
	}
	if n == 0 {
		return nil, nil
	}

	var zero T
	hi, lo := bits.Mul64(uint64(n), uint64(unsafe.Sizeof(zero)))
	if hi != 0 || lo > MaxAllocBytes {
		return nil, fmt.Errorf("%d slots of %d bytes: %w", n, unsafe.Sizeof(zero), ErrExhausted)
	}

	defer func() {
		// makeslice panics when the platform can't address the block.
		if r := recover(); r != nil {
			s = nil
			err = fmt.Errorf("%d slots: %v: %w", n, r, ErrExhausted)
		}
	}()
	return make([]T, n), nil
}

// New block of n slots holding the first live elements of old. old is not
// modified, the caller releases it once the new block is adopted.
// live must be <= n.
func Reallocate[T any](old []T, live, n int) ([]T, error) {
	if live > n {
		panic("live > n")
	}
	s, err := Allocate[T](n)
	if err != nil {
		return nil, err
	}
	copy(s, old[:live])
	return s, nil
}

// Zeroes the live prefix so nothing stays reachable through a dropped block.
func Release[T any](block []T, live int) {
	clear(block[:live])
}

// Capacity following c when a full block needs room. max <= 0 is unbounded.
// False when c is already at max or growing would overflow.
func GrowCapacity(c, max int) (int, bool) {
	if max > 0 && c >= max {
		return c, false
	}

	n := DefaultCapacity
	if c > 0 {
		if c > math.MaxInt/GrowthFactor {
			return c, false
		}
		n = c * GrowthFactor
	}
	if max > 0 && n > max {
		n = max
	}
	return n, true
}

// Capacity to trim c down to given size live elements and the floor.
// False when the block is within the default or floor, or is occupied enough.
func ShrinkCapacity(c, size, floor int) (int, bool) {
	if c <= max(DefaultCapacity, floor) || size > c/ShrinkDivisor {
		return c, false
	}
	return max(floor, size), true
}
