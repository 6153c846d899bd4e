package elfview

import "encoding/binary"

// Word is the address/offset/size width of an ELF class: uint32 for
// ELFCLASS32, uint64 for ELFCLASS64.
type Word interface {
	uint32 | uint64
}

// layout holds the canonical record sizes of one ELF class. Declared entry
// sizes in a file may be larger, never smaller.
type layout struct {
	class       Class
	word        uint64
	header      uint64
	program     uint64
	section     uint64
	symbol      uint64
	rel         uint64
	rela        uint64
	dynamic     uint64
	relocSymBit uint
}

var (
	layout32 = layout{
		class:       Class32,
		word:        4,
		header:      52,
		program:     32,
		section:     40,
		symbol:      16,
		rel:         8,
		rela:        12,
		dynamic:     8,
		relocSymBit: 8,
	}
	layout64 = layout{
		class:       Class64,
		word:        8,
		header:      64,
		program:     56,
		section:     64,
		symbol:      24,
		rel:         16,
		rela:        24,
		dynamic:     16,
		relocSymBit: 32,
	}
)

func layoutOf[W Word]() *layout {
	var w W
	if _, ok := any(w).(uint64); ok {
		return &layout64
	}
	return &layout32
}

// decoder reads fixed-width integers in the file's byte order. Offsets are
// relative to the record slice and always in range: callers slice exactly
// the canonical record size first.
type decoder[W Word] struct {
	order binary.ByteOrder
}

func (d decoder[W]) u16(b []byte, off int) uint16 {
	return d.order.Uint16(b[off:])
}

func (d decoder[W]) u32(b []byte, off int) uint32 {
	return d.order.Uint32(b[off:])
}

func (d decoder[W]) u64(b []byte, off int) uint64 {
	return d.order.Uint64(b[off:])
}

// word reads an address-sized field.
func (d decoder[W]) word(b []byte, off int) W {
	var w W
	if _, ok := any(w).(uint64); ok {
		return W(d.order.Uint64(b[off:]))
	}
	return W(d.order.Uint32(b[off:]))
}

// sword reads an address-sized field as a signed value (addends, tags).
func (d decoder[W]) sword(b []byte, off int) int64 {
	var w W
	if _, ok := any(w).(uint64); ok {
		return int64(d.order.Uint64(b[off:]))
	}
	return int64(int32(d.order.Uint32(b[off:])))
}
