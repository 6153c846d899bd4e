// Package bitfield extracts and packs sub-word bit ranges of unsigned
// integers, such as the binding/type nibbles of an ELF symbol or the
// symbol/type halves of a relocation info word.
package bitfield

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrInvalidField is returned when a field definition does not fit its
// integer type.
var ErrInvalidField = errors.New("invalid bit field")

type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Field describes the bit range [Begin, End) of a T. Extracted values are
// placed at bit Offset of the result.
type Field[T Unsigned] struct {
	begin  uint
	end    uint
	offset uint
	mask   T // width-sized, unshifted
}

// Width returns the bit width of T.
func Width[T Unsigned]() uint {
	return uint(bits.Len64(uint64(^T(0))))
}

// New validates and builds a field. It fails unless end > begin, end fits in
// T and the extracted value, once moved to offset, still fits in T.
func New[T Unsigned](begin, end, offset uint) (Field[T], error) {
	size := Width[T]()
	switch {
	case end <= begin:
		return Field[T]{}, fmt.Errorf("%w: end %d must be greater than begin %d", ErrInvalidField, end, begin)
	case end > size:
		return Field[T]{}, fmt.Errorf("%w: end %d exceeds %d-bit type", ErrInvalidField, end, size)
	case end-begin+offset > size:
		return Field[T]{}, fmt.Errorf("%w: result [%d,%d) exceeds %d-bit type", ErrInvalidField, offset, offset+end-begin, size)
	}
	w := end - begin
	mask := ^T(0)
	if w < size {
		mask = T(1)<<w - 1
	}
	return Field[T]{begin: begin, end: end, offset: offset, mask: mask}, nil
}

// Must is like New but panics on an invalid definition. It is meant for
// package-level field tables built from constants.
func Must[T Unsigned](begin, end, offset uint) Field[T] {
	f, err := New[T](begin, end, offset)
	if err != nil {
		panic(err)
	}
	return f
}

// Get returns bits [begin, end) of v moved to [offset, offset+end-begin),
// all other bits zero.
func (f Field[T]) Get(v T) T {
	return (v >> f.begin & f.mask) << f.offset
}

// Put is the inverse of Get: it takes bits [offset, offset+end-begin) of v and
// stores them into bits [begin, end) of dst, leaving dst's other bits alone.
func (f Field[T]) Put(dst, v T) T {
	val := v >> f.offset & f.mask
	return dst&^(f.mask<<f.begin) | val<<f.begin
}

// Bits returns the width of the field.
func (f Field[T]) Bits() uint {
	return f.end - f.begin
}

// Extract is a one-shot form of New(begin, end, offset).Get(v).
func Extract[T Unsigned](v T, begin, end, offset uint) (T, error) {
	f, err := New[T](begin, end, offset)
	if err != nil {
		return 0, err
	}
	return f.Get(v), nil
}
