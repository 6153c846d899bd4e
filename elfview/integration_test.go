package elfview

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"goelfview/bytebuf"
)

const objectSource = `
int counter;
static int helper(int x) { return x * 3; }
int add(int a, int b) { counter++; return helper(a) + b; }
`

func compileObject(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("gcc"); err != nil {
		t.Skip("gcc not available")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "obj.c")
	if err := os.WriteFile(src, []byte(objectSource), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	obj := filepath.Join(dir, "obj.o")
	if out, err := exec.Command("gcc", "-c", "-O0", src, "-o", obj).CombinedOutput(); err != nil {
		t.Skipf("compilation failed: %v: %s", err, out)
	}
	return obj
}

func TestIntegrationRelocatableObject(t *testing.T) {
	obj := compileObject(t)
	err := bytebuf.With(obj, func(buf *bytebuf.Buffer) error {
		id, err := ReadIdent(buf)
		if err != nil {
			return err
		}
		if id.Class == Class64 {
			checkObject[uint64](t, buf)
		} else {
			checkObject[uint32](t, buf)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func checkObject[W Word](t *testing.T, buf *bytebuf.Buffer) {
	t.Helper()
	h, err := ReadHeader[W](buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Type != TypeRelocatable || h.Programs().Len() != 0 {
		t.Errorf("type %s with %d programs", h.Type, h.Programs().Len())
	}
	if _, err := h.SymbolStringTable(); err != nil {
		t.Errorf("SymbolStringTable: %v", err)
	}

	symtab, err := Cast[SymbolTable[W]](section(t, h, ".symtab"))
	if err != nil {
		t.Fatalf("Cast .symtab: %v", err)
	}
	found := map[string]Symbol[W]{}
	for sym, err := range symtab.All() {
		if err != nil {
			t.Fatal(err)
		}
		name, err := symtab.Name(sym)
		if err != nil {
			t.Fatalf("symbol %d: %v", sym.Index, err)
		}
		found[name] = sym
	}
	if add, ok := found["add"]; !ok || add.Binding() != BindGlobal || add.Type() != SymbolFunc {
		t.Errorf("add: %+v (found %v)", add, ok)
	}
	if c, ok := found["counter"]; !ok || c.Binding() != BindGlobal || c.Type() != SymbolObject {
		t.Errorf("counter: %+v (found %v)", c, ok)
	}
	if helper, ok := found["helper"]; ok && helper.Binding() != BindLocal {
		t.Errorf("helper: %+v", helper)
	}

	relocs := 0
	for sec, err := range h.Sections().All() {
		if err != nil {
			t.Fatal(err)
		}
		var entries Stride[Relocation[W]]
		var symbols *SymbolTable[W]
		switch sec.Type {
		case SectionRel:
			rt, err := Cast[RelocationTable[W]](sec)
			if err != nil {
				t.Fatalf("section %d: %v", sec.Index, err)
			}
			entries = rt.Relocations()
			symbols, err = rt.Symbols()
			if err != nil {
				t.Fatal(err)
			}
		case SectionRela:
			rt, err := Cast[RelocationAddendTable[W]](sec)
			if err != nil {
				t.Fatalf("section %d: %v", sec.Index, err)
			}
			entries = rt.Relocations()
			symbols, err = rt.Symbols()
			if err != nil {
				t.Fatal(err)
			}
		default:
			continue
		}
		for r, err := range entries.All() {
			if err != nil {
				t.Fatal(err)
			}
			if int(r.SymbolIndex()) >= symbols.Symbols().Len() {
				t.Errorf("relocation %d of section %d names symbol %d of %d", r.Index, sec.Index, r.SymbolIndex(), symbols.Symbols().Len())
			}
			relocs++
		}
	}
	if relocs == 0 {
		t.Error("want at least one relocation for the reference to counter")
	}

	mismatches, err := CrossCheck(h)
	if err != nil {
		t.Fatalf("CrossCheck: %v", err)
	}
	for _, m := range mismatches {
		t.Errorf("mismatch: %s", m)
	}
}
