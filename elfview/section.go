package elfview

import (
	"fmt"
	"io"

	"goelfview/common"
)

// Section is a generic section header. Typed access to its contents goes
// through Cast.
type Section[W Word] struct {
	hdr *Header[W]

	Index     int
	NameIndex uint32
	Type      SectionType
	Flags     SectionFlag
	Addr      W
	Offset    W
	Size      W
	Link      uint32
	Info      uint32
	Align     W
	EntrySize W
}

func (h *Header[W]) decodeSection(i int, b []byte) Section[W] {
	d, w := h.dec, int(layoutOf[W]().word)
	return Section[W]{
		hdr:       h,
		Index:     i,
		NameIndex: d.u32(b, 0),
		Type:      SectionType(d.u32(b, 4)),
		Flags:     SectionFlag(d.word(b, 8)),
		Addr:      d.word(b, 8+w),
		Offset:    d.word(b, 8+2*w),
		Size:      d.word(b, 8+3*w),
		Link:      d.u32(b, 8+4*w),
		Info:      d.u32(b, 12+4*w),
		Align:     d.word(b, 16+4*w),
		EntrySize: d.word(b, 16+5*w),
	}
}

func (s Section[W]) IsWrite() bool {
	return s.Flags&SectionFlagWrite != 0
}

func (s Section[W]) IsAllocate() bool {
	return s.Flags&SectionFlagAlloc != 0
}

func (s Section[W]) IsExecutable() bool {
	return s.Flags&SectionFlagExecInstr != 0
}

// InFile reports whether the section's contents lie within the buffer.
// NOBITS sections occupy no file space and are always in the file.
func (s Section[W]) InFile() bool {
	if s.Type == SectionNoBits {
		return true
	}
	return s.hdr.buf.BoundsCheck(uint64(s.Offset), uint64(s.Size))
}

// Name resolves the section name through the section-name string table.
func (s Section[W]) Name() (string, error) {
	return s.hdr.SectionName(s)
}

// ReadAt copies section contents starting at off into p. It implements
// io.ReaderAt.
func (s Section[W]) ReadAt(p []byte, off int64) (int, error) {
	if s.Type == SectionNoBits {
		return 0, fmt.Errorf("%w: section %d is NOBITS", common.ErrTypeMismatch, s.Index)
	}
	return readRegion(s.hdr, uint64(s.Offset), uint64(s.Size), p, off)
}

// Open returns a reader over the section contents.
func (s Section[W]) Open() *io.SectionReader {
	return io.NewSectionReader(s, 0, int64(s.Size))
}

// contents borrows the section bytes. The slice must not leave the package.
func (s Section[W]) contents() ([]byte, error) {
	if s.Type == SectionNoBits {
		return nil, nil
	}
	return s.hdr.buf.Slice(uint64(s.Offset), uint64(s.Size))
}

// readRegion implements ReadAt for a file region [base, base+size).
func readRegion[W Word](h *Header[W], base, size uint64, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", common.ErrOutOfBounds, off)
	}
	region, err := h.buf.Slice(base, size)
	if err != nil {
		return 0, err
	}
	if uint64(off) >= size {
		return 0, io.EOF
	}
	n := copy(p, region[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
