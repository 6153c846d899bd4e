package elfview

import (
	"testing"

	"goelfview/elfview/elftest"
)

func TestRelocationInfoRoundTrip(t *testing.T) {
	for _, sym := range []uint32{0, 1, 0x1234, 0xffffff} {
		for _, typ := range []uint32{0, 1, 0x7f, 0xff} {
			r := Relocation[uint32]{Info: RelocationInfo[uint32](sym, typ)}
			if r.SymbolIndex() != sym || r.Type() != typ {
				t.Errorf("ELF32 (%#x, %#x): got (%#x, %#x)", sym, typ, r.SymbolIndex(), r.Type())
			}
		}
	}
	for _, sym := range []uint32{0, 1, 0x1234, 0xffffff, 0xffffffff} {
		for _, typ := range []uint32{0, 1, 0xff, 0x10000, 0xffffffff} {
			r := Relocation[uint64]{Info: RelocationInfo[uint64](sym, typ)}
			if r.SymbolIndex() != sym || r.Type() != typ {
				t.Errorf("ELF64 (%#x, %#x): got (%#x, %#x)", sym, typ, r.SymbolIndex(), r.Type())
			}
		}
	}
}

func TestRelocationInfoSplit(t *testing.T) {
	r32 := Relocation[uint32]{Info: 0x00000a02}
	if r32.SymbolIndex() != 10 || r32.Type() != 2 {
		t.Errorf("ELF32: got sym %d type %d", r32.SymbolIndex(), r32.Type())
	}
	r64 := Relocation[uint64]{Info: 0x0000000a00000002}
	if r64.SymbolIndex() != 10 || r64.Type() != 2 {
		t.Errorf("ELF64: got sym %d type %d", r64.SymbolIndex(), r64.Type())
	}
	if got := RelocationInfo[uint32](0x1000000, 0x100); got != 0 {
		t.Errorf("ELF32 drops bits outside the fields, got %#x", got)
	}
}

func TestRelocationTables(t *testing.T) {
	for _, class64 := range []bool{false, true} {
		for _, bigEndian := range []bool{false, true} {
			f := symbolFile(class64, bigEndian, []string{"puts"}, elftest.Symbol{}, elftest.Symbol{Name: 1, Info: 0x12})
			w := uint64(4)
			info := uint64(1)<<8 | 2
			if class64 {
				w = 8
				info = uint64(1)<<32 | 2
			}
			rels := []elftest.Reloc{{Offset: 0x10, Info: info}, {Offset: 0x20, Info: info}}
			relas := []elftest.Reloc{{Offset: 0x30, Info: info, Addend: -4}}
			f.Sections = append(f.Sections,
				elftest.Section{Name: ".rel.text", Type: uint32(SectionRel), Link: 2, EntSize: 2 * w, Data: f.Rels(rels...)},
				elftest.Section{Name: ".rela.text", Type: uint32(SectionRela), Link: 2, EntSize: 3 * w, Data: f.Relas(relas...)},
			)
			if class64 {
				checkRelocations[uint64](t, f)
			} else {
				checkRelocations[uint32](t, f)
			}
		}
	}
}

func checkRelocations[W Word](t *testing.T, f *elftest.File) {
	t.Helper()
	h := read[W](t, f.Bytes())

	rel, err := Cast[RelocationTable[W]](section(t, h, ".rel.text"))
	if err != nil {
		t.Fatalf("Cast REL: %v", err)
	}
	if rel.Relocations().Len() != 2 {
		t.Fatalf("want 2 REL entries, got %d", rel.Relocations().Len())
	}
	r, err := rel.Relocations().At(1)
	if err != nil {
		t.Fatal(err)
	}
	if uint64(r.Offset) != 0x20 || r.SymbolIndex() != 1 || r.Type() != 2 || r.Addend != 0 {
		t.Errorf("%s REL: %+v", h.Class(), r)
	}

	rela, err := Cast[RelocationAddendTable[W]](section(t, h, ".rela.text"))
	if err != nil {
		t.Fatalf("Cast RELA: %v", err)
	}
	r, err = rela.Relocations().At(0)
	if err != nil {
		t.Fatal(err)
	}
	if uint64(r.Offset) != 0x30 || r.SymbolIndex() != 1 || r.Type() != 2 || r.Addend != -4 {
		t.Errorf("%s RELA: %+v", h.Class(), r)
	}

	syms, err := rela.Symbols()
	if err != nil {
		t.Fatalf("Symbols: %v", err)
	}
	sym, err := syms.Symbols().At(int(r.SymbolIndex()))
	if err != nil {
		t.Fatal(err)
	}
	if name, err := syms.Name(sym); err != nil || name != "puts" {
		t.Errorf("relocation symbol: %q, %v", name, err)
	}

	// A REL section is not a RELA section, even with a large enough entry size.
	if _, err := Cast[RelocationAddendTable[W]](section(t, h, ".rel.text")); err == nil {
		t.Error("want REL section rejected as RELA")
	}
}
