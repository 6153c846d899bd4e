// Package elftest builds small ELF images for tests, including deliberately
// broken ones. It writes raw numbers and does not depend on the decoder it
// is used to test.
package elftest

import (
	"encoding/binary"
	"strings"
)

// Section is a section to emit. User sections get indices starting at 1;
// index 0 is always the null section.
type Section struct {
	Name    string
	Type    uint32
	Flags   uint64
	Addr    uint64
	Link    uint32
	Info    uint32
	Align   uint64
	EntSize uint64
	Data    []byte

	// Size and Offset override the computed values when non-zero.
	Size   uint64
	Offset uint64
}

// Program is a program header to emit. If Data is set it is placed in the
// file and Offset/FileSize are filled in unless already non-zero.
type Program struct {
	Type     uint32
	Flags    uint32
	Offset   uint64
	VAddr    uint64
	PAddr    uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
	Data     []byte
}

// File describes an ELF image.
type File struct {
	Class64   bool
	BigEndian bool
	Type      uint16
	Machine   uint16
	Entry     uint64
	Sections  []Section
	Programs  []Program

	// NoSectionNames omits .shstrtab and leaves e_shstrndx at 0.
	NoSectionNames bool

	// PhPad and ShPad append unused bytes to every program and section
	// header record, as a newer producer might.
	PhPad int
	ShPad int
}

// Image is a built file plus what is needed to patch its header.
type Image struct {
	Data  []byte
	Order binary.ByteOrder
	Is64  bool

	// SectionOffsets holds the file offset of each section's contents,
	// indexed like the section table.
	SectionOffsets []uint64
}

func (f *File) order() binary.ByteOrder {
	if f.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (f *File) word() int {
	if f.Class64 {
		return 8
	}
	return 4
}

func (f *File) sizes() (ehdr, phdr, shdr int) {
	if f.Class64 {
		return 64, 56, 64
	}
	return 52, 32, 40
}

func align(n, a int) int {
	return (n + a - 1) / a * a
}

// Build lays out the header, program headers, section contents, the section
// name table and finally the section header table.
func (f *File) Build() *Image {
	order, w := f.order(), f.word()
	ehdrSize, phdrSize, shdrSize := f.sizes()
	phdrSize += f.PhPad
	shdrSize += f.ShPad

	sections := append([]Section{{}}, f.Sections...)
	shstrndx := 0
	if !f.NoSectionNames {
		sections = append(sections, Section{Name: ".shstrtab", Type: 3, Align: 1})
		shstrndx = len(sections) - 1
	}
	var names []string
	for _, s := range sections[1:] {
		names = append(names, s.Name)
	}
	nameData, nameIdx := StrTab(names...)
	if !f.NoSectionNames {
		sections[shstrndx].Data = nameData
	}

	buf := make([]byte, ehdrSize)
	phoff := 0
	if len(f.Programs) > 0 {
		phoff = len(buf)
		buf = append(buf, make([]byte, phdrSize*len(f.Programs))...)
	}

	progs := append([]Program(nil), f.Programs...)
	for i := range progs {
		p := &progs[i]
		if p.Data == nil {
			continue
		}
		buf = append(buf, make([]byte, align(len(buf), 8)-len(buf))...)
		if p.Offset == 0 {
			p.Offset = uint64(len(buf))
		}
		if p.FileSize == 0 {
			p.FileSize = uint64(len(p.Data))
		}
		buf = append(buf, p.Data...)
	}

	offsets := make([]uint64, len(sections))
	for i := 1; i < len(sections); i++ {
		s := &sections[i]
		if s.Type == 8 {
			offsets[i] = uint64(len(buf))
			continue
		}
		buf = append(buf, make([]byte, align(len(buf), 8)-len(buf))...)
		offsets[i] = uint64(len(buf))
		buf = append(buf, s.Data...)
	}

	buf = append(buf, make([]byte, align(len(buf), 8)-len(buf))...)
	shoff := len(buf)
	buf = append(buf, make([]byte, shdrSize*len(sections))...)

	e := &encoder{order: order, w: w}
	for i, p := range progs {
		b := buf[phoff+i*phdrSize:]
		e.u32(b, 0, p.Type)
		if f.Class64 {
			e.u32(b, 4, p.Flags)
			e.word(b, 8, p.Offset)
			e.word(b, 16, p.VAddr)
			e.word(b, 24, p.PAddr)
			e.word(b, 32, p.FileSize)
			e.word(b, 40, p.MemSize)
			e.word(b, 48, p.Align)
		} else {
			e.word(b, 4, p.Offset)
			e.word(b, 8, p.VAddr)
			e.word(b, 12, p.PAddr)
			e.word(b, 16, p.FileSize)
			e.word(b, 20, p.MemSize)
			e.u32(b, 24, p.Flags)
			e.word(b, 28, p.Align)
		}
	}

	for i := 1; i < len(sections); i++ {
		s := sections[i]
		b := buf[shoff+i*shdrSize:]
		off, size := offsets[i], uint64(len(s.Data))
		if s.Offset != 0 {
			off = s.Offset
		}
		if s.Size != 0 {
			size = s.Size
		}
		e.u32(b, 0, nameIdx[i-1])
		e.u32(b, 4, s.Type)
		e.word(b, 8, s.Flags)
		e.word(b, 8+w, s.Addr)
		e.word(b, 8+2*w, off)
		e.word(b, 8+3*w, size)
		e.u32(b, 8+4*w, s.Link)
		e.u32(b, 12+4*w, s.Info)
		e.word(b, 16+4*w, s.Align)
		e.word(b, 16+5*w, s.EntSize)
	}

	copy(buf, "\x7fELF")
	buf[4] = 1
	if f.Class64 {
		buf[4] = 2
	}
	buf[5] = 1
	if f.BigEndian {
		buf[5] = 2
	}
	buf[6] = 1
	order.PutUint16(buf[16:], f.Type)
	order.PutUint16(buf[18:], f.Machine)
	order.PutUint32(buf[20:], 1)
	e.word(buf, 24, f.Entry)
	e.word(buf, 24+w, uint64(phoff))
	e.word(buf, 24+2*w, uint64(shoff))
	img := &Image{Data: buf, Order: order, Is64: f.Class64, SectionOffsets: offsets}
	img.SetEhSize(uint16(ehdrSize))
	if len(progs) > 0 {
		img.SetPhEntSize(uint16(phdrSize))
	}
	img.SetPhNum(uint16(len(progs)))
	img.SetShEntSize(uint16(shdrSize))
	img.SetShNum(uint16(len(sections)))
	img.SetShStrNdx(uint16(shstrndx))
	return img
}

// Bytes is shorthand for Build().Data.
func (f *File) Bytes() []byte {
	return f.Build().Data
}

func (img *Image) word() int {
	if img.Is64 {
		return 8
	}
	return 4
}

func (img *Image) tail() int {
	return 28 + 3*img.word()
}

func (img *Image) SetEhSize(v uint16)    { img.Order.PutUint16(img.Data[img.tail():], v) }
func (img *Image) SetPhEntSize(v uint16) { img.Order.PutUint16(img.Data[img.tail()+2:], v) }
func (img *Image) SetPhNum(v uint16)     { img.Order.PutUint16(img.Data[img.tail()+4:], v) }
func (img *Image) SetShEntSize(v uint16) { img.Order.PutUint16(img.Data[img.tail()+6:], v) }
func (img *Image) SetShNum(v uint16)     { img.Order.PutUint16(img.Data[img.tail()+8:], v) }
func (img *Image) SetShStrNdx(v uint16)  { img.Order.PutUint16(img.Data[img.tail()+10:], v) }

func (img *Image) SetPhOff(v uint64) {
	(&encoder{order: img.Order, w: img.word()}).word(img.Data, 24+img.word(), v)
}

func (img *Image) SetShOff(v uint64) {
	(&encoder{order: img.Order, w: img.word()}).word(img.Data, 24+2*img.word(), v)
}

// StrTab builds string table contents: a leading NUL, then each string with
// its terminator. It returns the index of each string; the empty string
// maps to 0.
func StrTab(strs ...string) ([]byte, []uint32) {
	var sb strings.Builder
	sb.WriteByte(0)
	idx := make([]uint32, len(strs))
	for i, s := range strs {
		if s == "" {
			continue
		}
		idx[i] = uint32(sb.Len())
		sb.WriteString(s)
		sb.WriteByte(0)
	}
	return []byte(sb.String()), idx
}

// Symbol is a raw symbol table entry.
type Symbol struct {
	Name  uint32
	Value uint64
	Size  uint64
	Info  uint8
	Other uint8
	Shndx uint16
}

// Symbols encodes symbol table contents for f's class and byte order.
func (f *File) Symbols(syms ...Symbol) []byte {
	e := &encoder{order: f.order(), w: f.word()}
	size := 16
	if f.Class64 {
		size = 24
	}
	out := make([]byte, size*len(syms))
	for i, s := range syms {
		b := out[i*size:]
		e.u32(b, 0, s.Name)
		if f.Class64 {
			b[4], b[5] = s.Info, s.Other
			e.u16(b, 6, s.Shndx)
			e.word(b, 8, s.Value)
			e.word(b, 16, s.Size)
		} else {
			e.word(b, 4, s.Value)
			e.word(b, 8, s.Size)
			b[12], b[13] = s.Info, s.Other
			e.u16(b, 14, s.Shndx)
		}
	}
	return out
}

// Reloc is a raw relocation entry.
type Reloc struct {
	Offset uint64
	Info   uint64
	Addend int64
}

// Rels encodes REL contents.
func (f *File) Rels(rels ...Reloc) []byte {
	return f.relocs(false, rels)
}

// Relas encodes RELA contents.
func (f *File) Relas(rels ...Reloc) []byte {
	return f.relocs(true, rels)
}

func (f *File) relocs(addend bool, rels []Reloc) []byte {
	w := f.word()
	e := &encoder{order: f.order(), w: w}
	size := 2 * w
	if addend {
		size = 3 * w
	}
	out := make([]byte, size*len(rels))
	for i, r := range rels {
		b := out[i*size:]
		e.word(b, 0, r.Offset)
		e.word(b, w, r.Info)
		if addend {
			e.word(b, 2*w, uint64(r.Addend))
		}
	}
	return out
}

// Dyn is a raw dynamic entry.
type Dyn struct {
	Tag int64
	Val uint64
}

// Dynamic encodes SHT_DYNAMIC contents.
func (f *File) Dynamic(entries ...Dyn) []byte {
	w := f.word()
	e := &encoder{order: f.order(), w: w}
	out := make([]byte, 2*w*len(entries))
	for i, d := range entries {
		b := out[i*2*w:]
		e.word(b, 0, uint64(d.Tag))
		e.word(b, w, d.Val)
	}
	return out
}

type encoder struct {
	order binary.ByteOrder
	w     int
}

func (e *encoder) u16(b []byte, off int, v uint16) { e.order.PutUint16(b[off:], v) }
func (e *encoder) u32(b []byte, off int, v uint32) { e.order.PutUint32(b[off:], v) }

// word truncates v to 32 bits for ELF32.
func (e *encoder) word(b []byte, off int, v uint64) {
	if e.w == 8 {
		e.order.PutUint64(b[off:], v)
		return
	}
	e.order.PutUint32(b[off:], uint32(v))
}
