package elfview

import (
	"testing"

	"goelfview/elfview/elftest"
)

func TestSymbolAttributes(t *testing.T) {
	testcases := []struct {
		info, other uint8
		binding     SymbolBinding
		typ         SymbolType
		visibility  SymbolVisibility
	}{
		{0x12, 0, BindGlobal, SymbolFunc, VisibilityDefault},
		{0x00, 0, BindLocal, SymbolNone, VisibilityDefault},
		{0x24, 3, BindWeak, SymbolFile, VisibilityProtected},
		{0x11, 1, BindGlobal, SymbolObject, VisibilityInternal},
		{0x03, 2, BindLocal, SymbolSection, VisibilityHidden},
		// st_other bits above the visibility field are ignored.
		{0x20, 0xfe, BindWeak, SymbolNone, VisibilityHidden},
		{0xff, 0xff, SymbolBinding(15), SymbolType(15), VisibilityProtected},
	}
	for _, tc := range testcases {
		s := Symbol[uint64]{Info: tc.info, Other: tc.other}
		if s.Binding() != tc.binding || s.Type() != tc.typ || s.Visibility() != tc.visibility {
			t.Errorf("info %#x other %#x: got %s/%s/%s, want %s/%s/%s", tc.info, tc.other,
				s.Binding(), s.Type(), s.Visibility(), tc.binding, tc.typ, tc.visibility)
		}
		if tc.binding <= BindWeak && tc.typ <= SymbolFile {
			if got := SymbolInfo(tc.binding, tc.typ); got != tc.info {
				t.Errorf("SymbolInfo(%s, %s) = %#x, want %#x", tc.binding, tc.typ, got, tc.info)
			}
		}
	}
}

func TestSymbolTableLayouts(t *testing.T) {
	for _, class64 := range []bool{false, true} {
		for _, bigEndian := range []bool{false, true} {
			f := symbolFile(class64, bigEndian, []string{"foo", "bar"},
				elftest.Symbol{},
				elftest.Symbol{Name: 1, Value: 0x1000, Size: 0x20, Info: 0x12, Other: 2, Shndx: 5},
				elftest.Symbol{Name: 5, Value: 0x2000, Size: 8, Info: 0x21, Shndx: 0xfff1},
			)
			if class64 {
				checkSymbols[uint64](t, f)
			} else {
				checkSymbols[uint32](t, f)
			}
		}
	}
}

func checkSymbols[W Word](t *testing.T, f *elftest.File) {
	t.Helper()
	h := read[W](t, f.Bytes())
	st, err := Cast[SymbolTable[W]](section(t, h, ".symtab"))
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	syms := st.Symbols()
	if syms.Len() != 3 {
		t.Fatalf("want 3 symbols, got %d", syms.Len())
	}
	want := []struct {
		name         string
		value, size  uint64
		binding      SymbolBinding
		typ          SymbolType
		visibility   SymbolVisibility
		sectionIndex uint16
	}{
		{"", 0, 0, BindLocal, SymbolNone, VisibilityDefault, 0},
		{"foo", 0x1000, 0x20, BindGlobal, SymbolFunc, VisibilityHidden, 5},
		{"bar", 0x2000, 8, BindWeak, SymbolObject, VisibilityDefault, 0xfff1},
	}
	for sym, err := range st.All() {
		if err != nil {
			t.Fatal(err)
		}
		w := want[sym.Index]
		name, err := st.Name(sym)
		if err != nil {
			t.Fatalf("symbol %d name: %v", sym.Index, err)
		}
		if name != w.name || uint64(sym.Value) != w.value || uint64(sym.Size) != w.size ||
			sym.Binding() != w.binding || sym.Type() != w.typ || sym.Visibility() != w.visibility ||
			sym.SectionIndex != w.sectionIndex {
			t.Errorf("%s %s symbol %d: got %q %+v", h.Class(), h.Ident.Data, sym.Index, name, sym)
		}
	}
}

func TestSymbolTableBadLink(t *testing.T) {
	f := symbolFile(true, false, []string{"foo"}, elftest.Symbol{})
	f.Sections[1].Link = 99
	h := read[uint64](t, f.Bytes())
	st, err := Cast[SymbolTable[uint64]](section(t, h, ".symtab"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := st.Strings(); err == nil {
		t.Error("want error for sh_link past the section table")
	}
}
