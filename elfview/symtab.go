package elfview

import (
	"iter"

	"goelfview/bitfield"
)

var (
	symbolBinding    = bitfield.Must[uint8](4, 8, 0)
	symbolType       = bitfield.Must[uint8](0, 4, 0)
	symbolVisibility = bitfield.Must[uint8](0, 2, 0)
)

// Symbol is one symbol table entry.
type Symbol[W Word] struct {
	Index        int
	NameIndex    uint32
	Value        W
	Size         W
	Info         uint8
	Other        uint8
	SectionIndex uint16
}

func (s Symbol[W]) Binding() SymbolBinding {
	return SymbolBinding(symbolBinding.Get(s.Info))
}

func (s Symbol[W]) Type() SymbolType {
	return SymbolType(symbolType.Get(s.Info))
}

func (s Symbol[W]) Visibility() SymbolVisibility {
	return SymbolVisibility(symbolVisibility.Get(s.Other))
}

// SymbolInfo packs a binding and type into st_info.
func SymbolInfo(b SymbolBinding, t SymbolType) uint8 {
	return symbolType.Put(symbolBinding.Put(0, uint8(b)), uint8(t))
}

// SymbolTable is a SHT_SYMTAB or SHT_DYNSYM section.
type SymbolTable[W Word] struct {
	Section[W]
}

func (*SymbolTable[W]) accepts(t SectionType) bool {
	return t == SectionSymTab || t == SectionDynSym
}
func (*SymbolTable[W]) entrySize() uint64     { return layoutOf[W]().symbol }
func (st *SymbolTable[W]) bind(s Section[W]) { st.Section = s }

// Symbols returns the symbol entries, including the null symbol at index 0.
func (st *SymbolTable[W]) Symbols() Stride[Symbol[W]] {
	d := st.hdr.dec
	var decode func(int, []byte) Symbol[W]
	if layoutOf[W]().class == Class64 {
		decode = func(i int, b []byte) Symbol[W] {
			return Symbol[W]{
				Index:        i,
				NameIndex:    d.u32(b, 0),
				Info:         b[4],
				Other:        b[5],
				SectionIndex: d.u16(b, 6),
				Value:        d.word(b, 8),
				Size:         d.word(b, 16),
			}
		}
	} else {
		decode = func(i int, b []byte) Symbol[W] {
			return Symbol[W]{
				Index:        i,
				NameIndex:    d.u32(b, 0),
				Value:        d.word(b, 4),
				Size:         d.word(b, 8),
				Info:         b[12],
				Other:        b[13],
				SectionIndex: d.u16(b, 14),
			}
		}
	}
	return records(st.Section, layoutOf[W]().symbol, decode)
}

// All is shorthand for Symbols().All().
func (st *SymbolTable[W]) All() iter.Seq2[Symbol[W], error] {
	return st.Symbols().All()
}

// Strings returns the string table named by sh_link.
func (st *SymbolTable[W]) Strings() (*StringTable[W], error) {
	return st.hdr.linkedStrings(st.Link)
}

// Name resolves sym's name through the linked string table.
func (st *SymbolTable[W]) Name(sym Symbol[W]) (string, error) {
	strs, err := st.Strings()
	if err != nil {
		return "", err
	}
	return strs.Get(sym.NameIndex, "")
}
