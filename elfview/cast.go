package elfview

import (
	"fmt"

	"goelfview/common"
)

// refinement is implemented by the typed section views. entrySize is the
// canonical record size, or 0 for tables that are not arrays of records.
type refinement[W Word, T any] interface {
	*T
	accepts(SectionType) bool
	entrySize() uint64
	bind(Section[W])
}

// Cast reinterprets a generic section as the typed view T after checking the
// type tag, that the declared entry size can hold T's record, that the total
// size is a whole number of entries, and that the contents lie within the
// buffer. It is the only way to obtain a typed view:
//
//	strs, err := elfview.Cast[elfview.StringTable[uint64]](sec)
func Cast[T any, W Word, PT refinement[W, T]](sec Section[W]) (*T, error) {
	var view T
	p := PT(&view)
	if !p.accepts(sec.Type) {
		return nil, fmt.Errorf("%w: section %d has type %s", common.ErrTypeMismatch, sec.Index, sec.Type)
	}
	need := p.entrySize()
	entsize := uint64(sec.EntrySize)
	if entsize < need {
		return nil, fmt.Errorf("%w: section %d entry size %d < %d", common.ErrSizeMismatch, sec.Index, entsize, need)
	}
	if need != 0 && uint64(sec.Size)%entsize != 0 {
		return nil, fmt.Errorf("%w: section %d size %d is not a multiple of %d", common.ErrSizeMismatch, sec.Index, uint64(sec.Size), entsize)
	}
	buf := sec.hdr.buf
	if buf.Released() {
		return nil, common.ErrReleased
	}
	if !buf.BoundsCheck(uint64(sec.Offset), uint64(sec.Size)) {
		return nil, fmt.Errorf("%w: section %d [%#x, +%#x) exceeds %#x bytes",
			common.ErrOutOfBounds, sec.Index, uint64(sec.Offset), uint64(sec.Size), buf.Len())
	}
	p.bind(sec)
	return &view, nil
}

// records returns a stride over the fixed-size records of a cast section.
func records[T any, W Word](sec Section[W], record uint64, decode func(int, []byte) T) Stride[T] {
	entsize := uint64(sec.EntrySize)
	count := 0
	if entsize != 0 {
		count = int(uint64(sec.Size) / entsize)
	}
	return newStride(sec.hdr.buf, uint64(sec.Offset), entsize, record, count, decode)
}
