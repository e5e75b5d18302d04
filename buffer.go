// Package growbuf provides Buffer, a growable contiguous container that owns
// its storage block and resizes it by fixed growth and trim rules.
package growbuf

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/graxinc/growbuf/internal"
)

const (
	DefaultCapacity = internal.DefaultCapacity
	GrowthFactor    = internal.GrowthFactor
	ShrinkDivisor   = internal.ShrinkDivisor

	// Largest block in bytes a Buffer requests.
	MaxAllocBytes = internal.MaxAllocBytes
)

var (
	// Index not within the live elements.
	ErrOutOfRange = errors.New("index out of range")

	// Storage could not be allocated or the capacity ceiling was reached.
	ErrExhausted = internal.ErrExhausted
)

// Elements implementing Cloner are copied with Clone whenever a value enters
// the buffer from outside its own storage (Insert, Clone, CopyFrom, Values).
type Cloner[T any] interface {
	Clone() T
}

type Options struct {
	MinCapacity int // allocated up front and never trimmed below. Defaults to 0.
	MaxCapacity int // growth stops here with ErrExhausted. 0 is unbounded.
}

// Buffer holds its live elements in the first Size slots of a block of
// Capacity slots. Slots past Size are vacant and hold the zero value.
//
// The zero value is an empty buffer without storage, ready to use.
// A Buffer must not be copied by assignment, as both would share the same
// block. Use Clone or Move. Not safe for concurrent use.
type Buffer[T comparable] struct {
	data   []T // len(data) is the capacity.
	size   int
	minCap int
	maxCap int
}

// Empty buffer without storage. Allocates on the first Insert.
func New[T comparable]() *Buffer[T] {
	return new(Buffer[T])
}

// Buffer with minCapacity slots allocated and kept as the trim floor.
// minCapacity must be >= 0. Blocks over MaxAllocBytes fail with ErrExhausted,
// smaller blocks the host can't back end the process with a fatal out of
// memory. Use Options.MaxCapacity to bound growth below that.
func NewSized[T comparable](minCapacity int) (*Buffer[T], error) {
	return NewWithOptions[T](Options{MinCapacity: minCapacity})
}

// MinCapacity must be >= 0. MaxCapacity must be 0 or >= MinCapacity.
func NewWithOptions[T comparable](o Options) (*Buffer[T], error) {
	if o.MinCapacity < 0 {
		panic("MinCapacity < 0")
	}
	if o.MaxCapacity < 0 {
		panic("MaxCapacity < 0")
	}
	if o.MaxCapacity > 0 && o.MaxCapacity < o.MinCapacity {
		panic("MaxCapacity < MinCapacity")
	}

	data, err := internal.Allocate[T](o.MinCapacity)
	if err != nil {
		return nil, fmt.Errorf("allocating %d slots: %w", o.MinCapacity, err)
	}
	return &Buffer[T]{
		data:   data,
		minCap: o.MinCapacity,
		maxCap: o.MaxCapacity,
	}, nil
}

// Number of live elements.
func (b *Buffer[T]) Size() int {
	return b.size
}

// Number of allocated slots, live or vacant.
func (b *Buffer[T]) Capacity() int {
	return len(b.data)
}

func (b *Buffer[T]) MinCapacity() int {
	return b.minCap
}

// Zero when unbounded.
func (b *Buffer[T]) MaxCapacity() int {
	return b.maxCap
}

// Appends v, growing the block first when full: to DefaultCapacity from
// nothing, otherwise by GrowthFactor, clamped to MaxCapacity.
// On ErrExhausted the buffer is unchanged. Only blocks over MaxAllocBytes or
// MaxCapacity report ErrExhausted, the runtime can't recover from a host out
// of memory below that.
func (b *Buffer[T]) Insert(v T) error {
	if b.size == len(b.data) {
		if err := b.grow(); err != nil {
			return err
		}
	}
	b.data[b.size] = copyOf(v)
	b.size++
	return nil
}

// Ensures room for n more inserts without reallocating. Grows to exactly
// Size+n when the block is smaller. n can be <= 0.
// On ErrExhausted, including Size+n over MaxCapacity, the buffer is unchanged.
func (b *Buffer[T]) Grow(n int) error {
	if n > math.MaxInt-b.size {
		return fmt.Errorf("growing %d slots past size %d: %w", n, b.size, ErrExhausted)
	}
	want := b.size + n
	if want <= len(b.data) {
		return nil
	}
	if b.maxCap > 0 && want > b.maxCap {
		return fmt.Errorf("growing to %d slots: %w", want, ErrExhausted)
	}
	return b.resize(want)
}

// Removes the first element equal to v, shifting later elements left.
// False when v is absent. Never shrinks the block.
func (b *Buffer[T]) Remove(v T) bool {
	i := slices.Index(b.data[:b.size], v)
	if i < 0 {
		return false
	}
	b.removeAt(i)
	return true
}

// Like Remove for the first element match reports true for.
func (b *Buffer[T]) RemoveFunc(match func(T) bool) bool {
	i := slices.IndexFunc(b.data[:b.size], match)
	if i < 0 {
		return false
	}
	b.removeAt(i)
	return true
}

// Removes and returns the element at i, shifting later elements left.
func (b *Buffer[T]) RemoveAt(i int) (T, error) {
	if err := b.checkIndex(i); err != nil {
		var zero T
		return zero, err
	}
	return b.removeAt(i), nil
}

// Reallocates to max(MinCapacity, Size) once Capacity is above both
// DefaultCapacity and MinCapacity, and at most 1/ShrinkDivisor of it is live.
// Otherwise a no-op. Size and elements are unchanged either way.
func (b *Buffer[T]) TrimExcess() error {
	c, ok := internal.ShrinkCapacity(len(b.data), b.size, b.minCap)
	if !ok {
		return nil
	}
	return b.resize(c)
}

// Unchecked access to slot i. Only indices below Size are meaningful, a vacant
// slot's content is unspecified. Panics past Capacity.
func (b *Buffer[T]) Index(i int) *T {
	return &b.data[i]
}

// Checked access to the live element at i. The pointer is valid until the
// next call that reallocates or shifts elements.
func (b *Buffer[T]) At(i int) (*T, error) {
	if err := b.checkIndex(i); err != nil {
		return nil, err
	}
	return &b.data[i], nil
}

// Copy of the live element at i.
func (b *Buffer[T]) Get(i int) (T, error) {
	if err := b.checkIndex(i); err != nil {
		var zero T
		return zero, err
	}
	return b.data[i], nil
}

// Live elements in index order. Mutating the buffer while iterating is
// not supported.
func (b *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range b.data[:b.size] {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Independent copy of the live elements. Nil when empty.
func (b *Buffer[T]) Values() []T {
	if b.size == 0 {
		return nil
	}
	s := make([]T, b.size)
	for i, v := range b.data[:b.size] {
		s[i] = copyOf(v)
	}
	return s
}

// Deep copy with its own block of the same capacity, floor and ceiling.
func (b *Buffer[T]) Clone() (*Buffer[T], error) {
	c := new(Buffer[T])
	if err := c.CopyFrom(b); err != nil {
		return nil, err
	}
	return c, nil
}

// Replaces the contents of b with a deep copy of src. On error b is unchanged.
func (b *Buffer[T]) CopyFrom(src *Buffer[T]) error {
	if b == src {
		return nil
	}

	data, err := internal.Allocate[T](len(src.data))
	if err != nil {
		return fmt.Errorf("copying %d slots: %w", len(src.data), err)
	}
	for i, v := range src.data[:src.size] {
		data[i] = copyOf(v)
	}

	b.Release()
	b.data = data
	b.size = src.size
	b.minCap = src.minCap
	b.maxCap = src.maxCap
	return nil
}

// Transfers the block and settings to a new Buffer, leaving b empty without
// storage, floor or ceiling.
func (b *Buffer[T]) Move() *Buffer[T] {
	m := &Buffer[T]{}
	m.MoveFrom(b)
	return m
}

// Releases the block of b then takes over the block and settings of src,
// leaving src empty without storage, floor or ceiling.
func (b *Buffer[T]) MoveFrom(src *Buffer[T]) {
	if b == src {
		return
	}
	b.Release()
	b.data, src.data = src.data, nil
	b.size, src.size = src.size, 0
	b.minCap, src.minCap = src.minCap, 0
	b.maxCap, src.maxCap = src.maxCap, 0
}

// Destroys the live elements and drops the block. The floor and ceiling are
// kept, so the buffer can be reused. Safe to call repeatedly.
func (b *Buffer[T]) Release() {
	internal.Release(b.data, b.size)
	b.data = nil
	b.size = 0
}

func (b *Buffer[T]) grow() error {
	c, ok := internal.GrowCapacity(len(b.data), b.maxCap)
	if !ok {
		return fmt.Errorf("growing from capacity %d: %w", len(b.data), ErrExhausted)
	}
	return b.resize(c)
}

// Adopts a block of c slots, releasing the old one only after the live
// elements were transferred. c must be >= size.
func (b *Buffer[T]) resize(c int) error {
	data, err := internal.Reallocate(b.data, b.size, c)
	if err != nil {
		return fmt.Errorf("resizing to %d slots: %w", c, err)
	}
	internal.Release(b.data, b.size)
	b.data = data
	return nil
}

// i must be a live index.
func (b *Buffer[T]) removeAt(i int) T {
	v := b.data[i]
	copy(b.data[i:], b.data[i+1:b.size])
	b.size--
	var zero T
	b.data[b.size] = zero
	return v
}

func (b *Buffer[T]) checkIndex(i int) error {
	if i < 0 || i >= b.size {
		return fmt.Errorf("index %d with size %d: %w", i, b.size, ErrOutOfRange)
	}
	return nil
}

func copyOf[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
