// Package elfview decodes ELF files in place. Every table is a view over a
// bytebuf.Buffer, checked against the buffer before any field inside it is
// trusted.
package elfview

import (
	"fmt"

	"goelfview/bytebuf"
	"goelfview/common"
)

// Header is the validated ELF file header. It is the entry point to every
// other view and borrows buf for its whole life.
type Header[W Word] struct {
	buf *bytebuf.Buffer
	dec decoder[W]

	Ident            Ident
	Type             FileType
	Machine          Machine
	Version          uint32
	Entry            W
	ProgramOffset    W
	SectionOffset    W
	Flags            uint32
	HeaderSize       uint16
	ProgramEntrySize uint16
	ProgramCount     uint16
	SectionEntrySize uint16
	SectionCount     uint16
	StringTableIndex uint16
}

// ReadHeader validates the file header in buf and returns it. Validation is
// all or nothing: magic, class, declared record sizes and both header tables
// must be sound, and the section-name table index must not exceed the section
// count. The class in the identification block must match W.
func ReadHeader[W Word](buf *bytebuf.Buffer) (*Header[W], error) {
	l := layoutOf[W]()
	b, err := buf.Slice(0, l.header)
	if err != nil {
		if buf.Released() {
			return nil, err
		}
		return nil, fmt.Errorf("%w: need %d bytes, have %d", common.ErrTruncatedHeader, l.header, buf.Len())
	}
	id, err := ReadIdent(buf)
	if err != nil {
		return nil, err
	}
	if id.Class != l.class {
		return nil, fmt.Errorf("%w: file is %s, decoding as %s", common.ErrTypeMismatch, id.Class, l.class)
	}

	d := decoder[W]{order: id.ByteOrder()}
	w := int(l.word)
	h := &Header[W]{
		buf:           buf,
		dec:           d,
		Ident:         id,
		Type:          FileType(d.u16(b, 16)),
		Machine:       Machine(d.u16(b, 18)),
		Version:       d.u32(b, 20),
		Entry:         d.word(b, 24),
		ProgramOffset: d.word(b, 24+w),
		SectionOffset: d.word(b, 24+2*w),
		Flags:         d.u32(b, 24+3*w),
	}
	tail := 28 + 3*w
	h.HeaderSize = d.u16(b, tail)
	h.ProgramEntrySize = d.u16(b, tail+2)
	h.ProgramCount = d.u16(b, tail+4)
	h.SectionEntrySize = d.u16(b, tail+6)
	h.SectionCount = d.u16(b, tail+8)
	h.StringTableIndex = d.u16(b, tail+10)

	if uint64(h.HeaderSize) < l.header {
		return nil, fmt.Errorf("%w: e_ehsize %d < %d", common.ErrSizeMismatch, h.HeaderSize, l.header)
	}
	if err := h.checkTable("program", uint64(h.ProgramOffset), h.ProgramEntrySize, h.ProgramCount, l.program); err != nil {
		return nil, err
	}
	if err := h.checkTable("section", uint64(h.SectionOffset), h.SectionEntrySize, h.SectionCount, l.section); err != nil {
		return nil, err
	}
	if h.StringTableIndex > h.SectionCount {
		return nil, fmt.Errorf("%w: e_shstrndx %d > e_shnum %d", common.ErrOutOfBounds, h.StringTableIndex, h.SectionCount)
	}
	return h, nil
}

// checkTable validates one header table. The entry size minimum only applies
// to non-empty tables: relocatable objects carry e_phentsize 0.
func (h *Header[W]) checkTable(what string, off uint64, entsize, count uint16, min uint64) error {
	if count == 0 {
		return nil
	}
	if uint64(entsize) < min {
		return fmt.Errorf("%w: %s header entry size %d < %d", common.ErrSizeMismatch, what, entsize, min)
	}
	if !h.buf.BoundsCheck(off, uint64(entsize)*uint64(count)) {
		return fmt.Errorf("%w: %s header table [%#x, +%d*%d) exceeds %#x bytes",
			common.ErrOutOfBounds, what, off, count, entsize, h.buf.Len())
	}
	return nil
}

// Class returns the word width the header was decoded with.
func (h *Header[W]) Class() Class {
	return layoutOf[W]().class
}

// Len returns the size of the underlying buffer.
func (h *Header[W]) Len() uint64 {
	return h.buf.Len()
}

// Programs returns the program header table. Entries are addressed with the
// declared e_phentsize.
func (h *Header[W]) Programs() Stride[Program[W]] {
	l := layoutOf[W]()
	return newStride(h.buf, uint64(h.ProgramOffset), uint64(h.ProgramEntrySize), l.program, int(h.ProgramCount),
		func(i int, b []byte) Program[W] { return h.decodeProgram(i, b) })
}

// Sections returns the section header table. Entries are addressed with the
// declared e_shentsize.
func (h *Header[W]) Sections() Stride[Section[W]] {
	l := layoutOf[W]()
	return newStride(h.buf, uint64(h.SectionOffset), uint64(h.SectionEntrySize), l.section, int(h.SectionCount),
		func(i int, b []byte) Section[W] { return h.decodeSection(i, b) })
}

// Section returns section i. Unlike Sections().At, an index the file itself
// supplied (sh_link, e_shstrndx) that is out of range is reported as
// ErrOutOfBounds, a data error.
func (h *Header[W]) Section(i int) (Section[W], error) {
	if i < 0 || i >= int(h.SectionCount) {
		return Section[W]{}, fmt.Errorf("%w: section index %d, have %d", common.ErrOutOfBounds, i, h.SectionCount)
	}
	return h.Sections().At(i)
}

// SectionStringTable returns the section-name string table (e_shstrndx).
func (h *Header[W]) SectionStringTable() (*StringTable[W], error) {
	sec, err := h.Section(int(h.StringTableIndex))
	if err != nil {
		return nil, fmt.Errorf("section name table: %w", err)
	}
	return Cast[StringTable[W]](sec)
}

// SectionName resolves sec's name through the section-name string table.
func (h *Header[W]) SectionName(sec Section[W]) (string, error) {
	names, err := h.SectionStringTable()
	if err != nil {
		return "", err
	}
	return names.Get(sec.NameIndex, "")
}

// sectionsNamed returns every section whose name resolves to name. Sections
// whose names do not resolve are skipped.
func (h *Header[W]) sectionsNamed(name string) ([]Section[W], error) {
	names, err := h.SectionStringTable()
	if err != nil {
		return nil, err
	}
	var found []Section[W]
	for sec, err := range h.Sections().All() {
		if err != nil {
			return nil, err
		}
		n, err := names.Get(sec.NameIndex, "")
		if err != nil || n != name {
			continue
		}
		found = append(found, sec)
	}
	return found, nil
}

// SectionByName returns the unique section called name.
func (h *Header[W]) SectionByName(name string) (Section[W], error) {
	found, err := h.sectionsNamed(name)
	if err != nil {
		return Section[W]{}, err
	}
	switch len(found) {
	case 0:
		return Section[W]{}, fmt.Errorf("%w: %q", common.ErrNoSuchSection, name)
	case 1:
		return found[0], nil
	default:
		return Section[W]{}, fmt.Errorf("%w: %d sections named %q", common.ErrDuplicateSection, len(found), name)
	}
}

// SymbolStringTable returns the .strtab section as a string table. A file
// with no .strtab and a file with several are reported with different errors.
func (h *Header[W]) SymbolStringTable() (*StringTable[W], error) {
	found, err := h.sectionsNamed(".strtab")
	if err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, common.ErrMissingStringTable
	case 1:
		return Cast[StringTable[W]](found[0])
	default:
		return nil, fmt.Errorf("%w: %d sections named .strtab", common.ErrAmbiguousStringTable, len(found))
	}
}

// linkedStrings casts the section at link, as found in sh_link, to a string
// table.
func (h *Header[W]) linkedStrings(link uint32) (*StringTable[W], error) {
	sec, err := h.Section(int(link))
	if err != nil {
		return nil, fmt.Errorf("linked string table: %w", err)
	}
	return Cast[StringTable[W]](sec)
}
