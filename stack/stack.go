// Package stack provides a bounded LIFO stack on a fixed growbuf.Buffer block.
package stack

import (
	"errors"

	"github.com/graxinc/growbuf"
)

var (
	ErrFull  = errors.New("stack is full")
	ErrEmpty = errors.New("stack is empty")
)

// Stack never reallocates: its block is allocated once with capacity slots,
// which is both the floor and the ceiling of the underlying Buffer.
type Stack[T comparable] struct {
	buf *growbuf.Buffer[T]
}

// capacity must be >= 1.
func New[T comparable](capacity int) (*Stack[T], error) {
	if capacity < 1 {
		panic("capacity < 1")
	}
	buf, err := growbuf.NewWithOptions[T](growbuf.Options{
		MinCapacity: capacity,
		MaxCapacity: capacity,
	})
	if err != nil {
		return nil, err
	}
	return &Stack[T]{buf: buf}, nil
}

func (s *Stack[T]) Push(v T) error {
	if s.Full() {
		return ErrFull
	}
	return s.buf.Insert(v)
}

func (s *Stack[T]) Pop() (T, error) {
	if s.Empty() {
		var zero T
		return zero, ErrEmpty
	}
	return s.buf.RemoveAt(s.buf.Size() - 1)
}

func (s *Stack[T]) Top() (T, error) {
	if s.Empty() {
		var zero T
		return zero, ErrEmpty
	}
	return s.buf.Get(s.buf.Size() - 1)
}

func (s *Stack[T]) Full() bool {
	return s.buf.Size() == s.buf.Capacity()
}

func (s *Stack[T]) Empty() bool {
	return s.buf.Size() == 0
}

func (s *Stack[T]) Size() int {
	return s.buf.Size()
}

func (s *Stack[T]) Capacity() int {
	return s.buf.Capacity()
}

// Independent copy with its own block.
func (s *Stack[T]) Clone() (*Stack[T], error) {
	buf, err := s.buf.Clone()
	if err != nil {
		return nil, err
	}
	return &Stack[T]{buf: buf}, nil
}

// Transfers the elements to a new Stack. s is left empty with zero capacity,
// so every Push on it fails with ErrFull.
func (s *Stack[T]) Move() *Stack[T] {
	return &Stack[T]{buf: s.buf.Move()}
}

// Drops the elements and the block. Same state as after Move.
func (s *Stack[T]) Release() {
	s.buf.MoveFrom(growbuf.New[T]())
}
