package elfview

import (
	"testing"

	"goelfview/bytebuf"
	"goelfview/elfview/elftest"
)

func read[W Word](t *testing.T, data []byte) *Header[W] {
	t.Helper()
	h, err := ReadHeader[W](bytebuf.New(data))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	return h
}

func build64(t *testing.T, f *elftest.File) *Header[uint64] {
	t.Helper()
	f.Class64 = true
	return read[uint64](t, f.Bytes())
}

func section[W Word](t *testing.T, h *Header[W], name string) Section[W] {
	t.Helper()
	sec, err := h.SectionByName(name)
	if err != nil {
		t.Fatalf("SectionByName(%q): %v", name, err)
	}
	return sec
}

// symbolFile has a .strtab at index 1 and a .symtab linked to it at index 2.
func symbolFile(class64, bigEndian bool, names []string, syms ...elftest.Symbol) *elftest.File {
	f := &elftest.File{Class64: class64, BigEndian: bigEndian, Type: 1}
	strs, _ := elftest.StrTab(names...)
	entsize := uint64(16)
	if class64 {
		entsize = 24
	}
	f.Sections = []elftest.Section{
		{Name: ".strtab", Type: uint32(SectionStrTab), Data: strs},
		{Name: ".symtab", Type: uint32(SectionSymTab), Link: 1, EntSize: entsize, Data: f.Symbols(syms...)},
	}
	return f
}
