// Package bytebuf provides the read-only byte range that ELF views borrow
// from, backed either by memory or by a private read-only file mapping.
package bytebuf

import (
	"fmt"
	"sync"
	"sync/atomic"

	"goelfview/common"
)

// Buffer is an immutable, fixed-length byte range. Views obtained from it
// must go through Slice, which stops handing out memory once the buffer is
// closed. Concurrent readers are fine; Close must not race with them.
type Buffer struct {
	data     []byte
	released atomic.Bool
	once     sync.Once
	release  func() error
}

// New wraps an in-memory byte slice. The caller must not modify data while
// the buffer is in use.
func New(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Len returns the buffer size in bytes.
func (b *Buffer) Len() uint64 {
	return uint64(len(b.data))
}

// BoundsCheck reports whether [off, off+n) lies within the buffer. It does
// not overflow for any input.
func (b *Buffer) BoundsCheck(off, n uint64) bool {
	size := uint64(len(b.data))
	return n <= size && off <= size-n
}

// Slice returns the n bytes at off. The returned memory is only valid until
// Close; callers must not retain it.
func (b *Buffer) Slice(off, n uint64) ([]byte, error) {
	if b.released.Load() {
		return nil, common.ErrReleased
	}
	if !b.BoundsCheck(off, n) {
		return nil, fmt.Errorf("%w: [%#x, +%#x) exceeds %#x bytes", common.ErrOutOfBounds, off, n, len(b.data))
	}
	return b.data[off : off+n : off+n], nil
}

// Released reports whether Close has been called.
func (b *Buffer) Released() bool {
	return b.released.Load()
}

// Close releases the backing storage. It is safe to call more than once.
func (b *Buffer) Close() error {
	var err error
	b.once.Do(func() {
		b.released.Store(true)
		if b.release != nil {
			err = b.release()
		}
		b.data = nil
	})
	return err
}
