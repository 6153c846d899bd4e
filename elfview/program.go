package elfview

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"

	"goelfview/common"
)

// Program is one program header (segment descriptor).
type Program[W Word] struct {
	hdr *Header[W]

	Index    int
	Type     ProgramType
	Flags    ProgramFlag
	Offset   W
	VAddr    W
	PAddr    W
	FileSize W
	MemSize  W
	Align    W
}

func (h *Header[W]) decodeProgram(i int, b []byte) Program[W] {
	d := h.dec
	p := Program[W]{hdr: h, Index: i, Type: ProgramType(d.u32(b, 0))}
	if layoutOf[W]().class == Class64 {
		p.Flags = ProgramFlag(d.u32(b, 4))
		p.Offset = d.word(b, 8)
		p.VAddr = d.word(b, 16)
		p.PAddr = d.word(b, 24)
		p.FileSize = d.word(b, 32)
		p.MemSize = d.word(b, 40)
		p.Align = d.word(b, 48)
		return p
	}
	p.Offset = d.word(b, 4)
	p.VAddr = d.word(b, 8)
	p.PAddr = d.word(b, 12)
	p.FileSize = d.word(b, 16)
	p.MemSize = d.word(b, 20)
	p.Flags = ProgramFlag(d.u32(b, 24))
	p.Align = d.word(b, 28)
	return p
}

func (p Program[W]) IsExecute() bool {
	return p.Flags&ProgramFlagExecute != 0
}

func (p Program[W]) IsWrite() bool {
	return p.Flags&ProgramFlagWrite != 0
}

func (p Program[W]) IsRead() bool {
	return p.Flags&ProgramFlagRead != 0
}

// CheckAlignment verifies a loadable segment's alignment: 0, 1 or a power of
// two, with the virtual address congruent to the file offset modulo it.
// Other segment types always pass.
func (p Program[W]) CheckAlignment() error {
	if p.Type != ProgramLoad || p.Align <= 1 {
		return nil
	}
	if bits.OnesCount64(uint64(p.Align)) != 1 {
		return fmt.Errorf("%w: segment %d alignment %#x is not a power of two", common.ErrBadAlignment, p.Index, uint64(p.Align))
	}
	if p.VAddr%p.Align != p.Offset%p.Align {
		return fmt.Errorf("%w: segment %d vaddr %#x and offset %#x differ modulo %#x",
			common.ErrBadAlignment, p.Index, uint64(p.VAddr), uint64(p.Offset), uint64(p.Align))
	}
	return nil
}

// ReadAt copies the segment's file image starting at off into p. It
// implements io.ReaderAt.
func (p Program[W]) ReadAt(b []byte, off int64) (int, error) {
	return readRegion(p.hdr, uint64(p.Offset), uint64(p.FileSize), b, off)
}

// Open returns a reader over the segment's file image.
func (p Program[W]) Open() *io.SectionReader {
	return io.NewSectionReader(p, 0, int64(p.FileSize))
}

// Interpreter is a PT_INTERP segment.
type Interpreter[W Word] struct {
	Program[W]
}

// Interpreter checks that p is a PT_INTERP segment within the buffer.
func (p Program[W]) Interpreter() (*Interpreter[W], error) {
	if p.Type != ProgramInterp {
		return nil, fmt.Errorf("%w: segment %d has type %s", common.ErrTypeMismatch, p.Index, p.Type)
	}
	buf := p.hdr.buf
	if buf.Released() {
		return nil, common.ErrReleased
	}
	if !buf.BoundsCheck(uint64(p.Offset), uint64(p.FileSize)) {
		return nil, fmt.Errorf("%w: segment %d [%#x, +%#x) exceeds %#x bytes",
			common.ErrOutOfBounds, p.Index, uint64(p.Offset), uint64(p.FileSize), buf.Len())
	}
	return &Interpreter[W]{Program: p}, nil
}

// PathName returns the interpreter path. The segment must hold exactly the
// path followed by one NUL.
func (ip *Interpreter[W]) PathName() (string, error) {
	b, err := ip.hdr.buf.Slice(uint64(ip.Offset), uint64(ip.FileSize))
	if err != nil {
		return "", err
	}
	if len(b) == 0 || bytes.IndexByte(b, 0) != len(b)-1 {
		return "", fmt.Errorf("%w: interpreter path in segment %d", common.ErrUnterminatedString, ip.Index)
	}
	return string(b[:len(b)-1]), nil
}

// Interpreter returns the path in the first PT_INTERP segment, or "" when
// there is none.
func (h *Header[W]) Interpreter() (string, error) {
	for p, err := range h.Programs().All() {
		if err != nil {
			return "", err
		}
		if p.Type != ProgramInterp {
			continue
		}
		ip, err := p.Interpreter()
		if err != nil {
			return "", err
		}
		return ip.PathName()
	}
	return "", nil
}
