package elfview

import (
	"fmt"
	"iter"

	"goelfview/bytebuf"
	"goelfview/common"
)

// Stride is a lazy, restartable sequence of fixed-format records laid out
// every stride bytes from base. The stride comes from the file, not from the
// decoded size, so newer producers may append fields we do not know about.
// The whole region was bounds-checked when the Stride was built; At only
// rejects indices past Len.
type Stride[T any] struct {
	buf    *bytebuf.Buffer
	base   uint64
	stride uint64
	record uint64 // bytes handed to decode, <= stride
	count  int
	decode func(index int, rec []byte) T
}

func newStride[T any](buf *bytebuf.Buffer, base, stride, record uint64, count int, decode func(int, []byte) T) Stride[T] {
	return Stride[T]{buf: buf, base: base, stride: stride, record: record, count: count, decode: decode}
}

// Len returns the number of records.
func (s Stride[T]) Len() int {
	return s.count
}

// Offset returns the file offset of record i.
func (s Stride[T]) Offset(i int) uint64 {
	return s.base + uint64(i)*s.stride
}

// At decodes record i.
func (s Stride[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= s.count {
		return zero, fmt.Errorf("%w: %d not in [0, %d)", common.ErrIndexOutOfRange, i, s.count)
	}
	rec, err := s.buf.Slice(s.Offset(i), s.record)
	if err != nil {
		return zero, err
	}
	return s.decode(i, rec), nil
}

// All yields every record in order. If a record cannot be read (the buffer
// was released) the error is yielded once and iteration ends.
func (s Stride[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i := 0; i < s.count; i++ {
			v, err := s.At(i)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}
