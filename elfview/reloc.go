package elfview

import (
	"goelfview/bitfield"
)

// r_info splits at bit 8 for ELF32 and at bit 32 for ELF64.
var (
	reloc32Symbol = bitfield.Must[uint64](8, 32, 0)
	reloc32Type   = bitfield.Must[uint64](0, 8, 0)
	reloc64Symbol = bitfield.Must[uint64](32, 64, 0)
	reloc64Type   = bitfield.Must[uint64](0, 32, 0)
)

func relocFields[W Word]() (sym, typ bitfield.Field[uint64]) {
	if layoutOf[W]().class == Class64 {
		return reloc64Symbol, reloc64Type
	}
	return reloc32Symbol, reloc32Type
}

// Relocation is one REL or RELA entry. Addend is zero for REL entries.
type Relocation[W Word] struct {
	Index  int
	Offset W
	Info   W
	Addend int64
}

// SymbolIndex is the symbol table index packed in Info.
func (r Relocation[W]) SymbolIndex() uint32 {
	sym, _ := relocFields[W]()
	return uint32(sym.Get(uint64(r.Info)))
}

// Type is the machine-specific relocation type packed in Info.
func (r Relocation[W]) Type() uint32 {
	_, typ := relocFields[W]()
	return uint32(typ.Get(uint64(r.Info)))
}

// RelocationInfo packs a symbol index and type into r_info. Bits that do not
// fit the width's fields are dropped.
func RelocationInfo[W Word](sym, typ uint32) W {
	fs, ft := relocFields[W]()
	return W(ft.Put(fs.Put(0, uint64(sym)), uint64(typ)))
}

// RelocationTable is a SHT_REL section.
type RelocationTable[W Word] struct {
	Section[W]
}

func (*RelocationTable[W]) accepts(t SectionType) bool { return t == SectionRel }
func (*RelocationTable[W]) entrySize() uint64          { return layoutOf[W]().rel }
func (rt *RelocationTable[W]) bind(s Section[W])       { rt.Section = s }

func (rt *RelocationTable[W]) Relocations() Stride[Relocation[W]] {
	d, w := rt.hdr.dec, int(layoutOf[W]().word)
	return records(rt.Section, layoutOf[W]().rel, func(i int, b []byte) Relocation[W] {
		return Relocation[W]{Index: i, Offset: d.word(b, 0), Info: d.word(b, w)}
	})
}

// Symbols returns the symbol table named by sh_link.
func (rt *RelocationTable[W]) Symbols() (*SymbolTable[W], error) {
	return linkedSymbols(rt.Section)
}

// RelocationAddendTable is a SHT_RELA section.
type RelocationAddendTable[W Word] struct {
	Section[W]
}

func (*RelocationAddendTable[W]) accepts(t SectionType) bool { return t == SectionRela }
func (*RelocationAddendTable[W]) entrySize() uint64          { return layoutOf[W]().rela }
func (rt *RelocationAddendTable[W]) bind(s Section[W])       { rt.Section = s }

func (rt *RelocationAddendTable[W]) Relocations() Stride[Relocation[W]] {
	d, w := rt.hdr.dec, int(layoutOf[W]().word)
	return records(rt.Section, layoutOf[W]().rela, func(i int, b []byte) Relocation[W] {
		return Relocation[W]{Index: i, Offset: d.word(b, 0), Info: d.word(b, w), Addend: d.sword(b, 2*w)}
	})
}

// Symbols returns the symbol table named by sh_link.
func (rt *RelocationAddendTable[W]) Symbols() (*SymbolTable[W], error) {
	return linkedSymbols(rt.Section)
}

func linkedSymbols[W Word](sec Section[W]) (*SymbolTable[W], error) {
	link, err := sec.hdr.Section(int(sec.Link))
	if err != nil {
		return nil, err
	}
	return Cast[SymbolTable[W]](link)
}
