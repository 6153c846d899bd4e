package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goelfview/bytebuf"
	"goelfview/common"
	"goelfview/elfview"
	"goelfview/elfview/elftest"
)

// objectFile is a small relocatable object: .text calling an external
// function through one RELA entry.
func objectFile(class64 bool) *elftest.File {
	f := &elftest.File{
		Class64: class64,
		Type:    uint16(elfview.TypeRelocatable),
		Machine: uint16(elfview.MachineX86_64),
	}
	strs, idx := elftest.StrTab("main", "puts", "_ZN3foo3barEv")
	symSize, relaSize := uint64(16), uint64(12)
	info := uint64(elfview.RelocationInfo[uint32](2, 4))
	if class64 {
		symSize, relaSize = 24, 24
		info = uint64(elfview.RelocationInfo[uint64](2, 4))
	}
	global := elfview.SymbolInfo(elfview.BindGlobal, elfview.SymbolFunc)
	f.Sections = []elftest.Section{
		{
			Name:  ".text",
			Type:  uint32(elfview.SectionProgBits),
			Flags: uint64(elfview.SectionFlagAlloc | elfview.SectionFlagExecInstr),
			Align: 16,
			Data:  []byte{0x55, 0x48, 0x89, 0xe5, 0xe8, 0, 0, 0, 0, 0x5d, 0xc3},
		},
		{Name: ".strtab", Type: uint32(elfview.SectionStrTab), Data: strs},
		{Name: ".symtab", Type: uint32(elfview.SectionSymTab), Link: 2, Info: 1, EntSize: symSize, Data: f.Symbols(
			elftest.Symbol{},
			elftest.Symbol{Name: idx[0], Info: global, Shndx: 1, Size: 11},
			elftest.Symbol{Name: idx[1], Info: elfview.SymbolInfo(elfview.BindGlobal, elfview.SymbolNone)},
			elftest.Symbol{Name: idx[2], Info: global, Shndx: 1},
		)},
		{Name: ".rela.text", Type: uint32(elfview.SectionRela), Link: 3, Info: 1, EntSize: relaSize, Data: f.Relas(
			elftest.Reloc{Offset: 5, Info: info, Addend: -4},
		)},
		{Name: ".comment", Type: uint32(elfview.SectionProgBits), Data: []byte("\x00GCC: (GNU) 13.2.0\x00")},
	}
	return f
}

// sharedFile is a shared object with an interpreter and a dynamic section.
func sharedFile() *elftest.File {
	f := &elftest.File{Class64: true, Type: uint16(elfview.TypeSharedObject), Machine: uint16(elfview.MachineX86_64)}
	strs, idx := elftest.StrTab("libc.so.6", "libfoo.so")
	dyn := f.Dynamic(
		elftest.Dyn{Tag: int64(elfview.DynNeeded), Val: uint64(idx[0])},
		elftest.Dyn{Tag: int64(elfview.DynSOName), Val: uint64(idx[1])},
		elftest.Dyn{Tag: int64(elfview.DynNull)},
	)
	f.Sections = []elftest.Section{
		{Name: ".dynstr", Type: uint32(elfview.SectionStrTab), Flags: uint64(elfview.SectionFlagAlloc), Data: strs},
		{Name: ".dynamic", Type: uint32(elfview.SectionDynamic), Link: 1, EntSize: 16, Data: dyn},
	}
	f.Programs = []elftest.Program{
		{Type: uint32(elfview.ProgramInterp), Flags: uint32(elfview.ProgramFlagRead), Align: 1, Data: []byte("/lib64/ld-linux-x86-64.so.2\x00")},
	}
	return f
}

func allOptions() *reportOptions {
	return &reportOptions{
		Header:   true,
		Sections: true,
		Segments: true,
		Symbols:  true,
		Relocs:   true,
		Dynamic:  true,
		Demangle: true,
		Analyze:  true,
		Verify:   true,
	}
}

func TestInspectObject(t *testing.T) {
	for _, class64 := range []bool{false, true} {
		var out strings.Builder
		st, err := inspect(bytebuf.New(objectFile(class64).Bytes()), &out, allOptions())
		if err != nil {
			t.Fatalf("class64=%v: %v", class64, err)
		}
		text := out.String()
		for _, want := range []string{
			"ELF Header:",
			elfview.TypeRelocatable.String(),
			"Symbol table '.symtab' contains 4 entries:",
			"foo::bar()",
			"Relocation section '.rela.text'",
			"puts",
			"Section analysis:",
			"string [Versions/Compiler] GCC: (GNU) 13.2.0",
			"SKIPPED (no program headers)",
			"symbol strings:",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("class64=%v: missing %q in:\n%s", class64, want, text)
			}
		}
		if st.Sections != 7 || st.Symbols != 4 || st.Relocs != 1 || st.Segments != 0 {
			t.Errorf("class64=%v: stats %+v", class64, *st)
		}
	}
}

func TestInspectWithoutDemangle(t *testing.T) {
	var out strings.Builder
	_, err := inspect(bytebuf.New(objectFile(true).Bytes()), &out, &reportOptions{Symbols: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "_ZN3foo3barEv") || strings.Contains(out.String(), "foo::bar()") {
		t.Errorf("unexpected symbol names:\n%s", out.String())
	}
}

func TestInspectFilter(t *testing.T) {
	var out strings.Builder
	st, err := inspect(bytebuf.New(objectFile(true).Bytes()), &out, &reportOptions{Sections: true, Filter: ".s*"})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{".strtab", ".symtab", ".shstrtab"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("missing %s", name)
		}
	}
	if strings.Contains(out.String(), ".comment") {
		t.Errorf("filter let .comment through:\n%s", out.String())
	}
	// The null section is always listed.
	if st.Sections != 4 {
		t.Errorf("want 4 sections, got %d", st.Sections)
	}
}

func TestInspectSharedObject(t *testing.T) {
	var out strings.Builder
	st, err := inspect(bytebuf.New(sharedFile().Bytes()), &out, allOptions())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"DYN (Shared object file)",
		"/lib64/ld-linux-x86-64.so.2",
		"[Requesting program interpreter: /lib64/ld-linux-x86-64.so.2]",
		"[libc.so.6]",
		"Needed: libc.so.6",
		"SONAME: libfoo.so",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out.String())
		}
	}
	if st.Segments != 1 {
		t.Errorf("want 1 segment, got %d", st.Segments)
	}
}

func TestInspectNotELF(t *testing.T) {
	var out strings.Builder
	_, err := inspect(bytebuf.New([]byte("definitely not an ELF file")), &out, allOptions())
	if !errors.Is(err, common.ErrMalformedMagic) {
		t.Errorf("want ErrMalformedMagic, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPerm(t *testing.T) {
	if got := perm(common.PERM_READ | common.PERM_EXECUTE); got != "r-x" {
		t.Errorf("got %q", got)
	}
	if got := perm(0); got != "---" {
		t.Errorf("got %q", got)
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	data := objectFile(true).Bytes()
	path := writeFile(t, dir, "obj.o", data)

	result := processFile(path, &reportOptions{Header: true})
	if result.Error != nil {
		t.Fatalf("processFile: %v", result.Error)
	}
	if result.Size != int64(len(data)) || !strings.Contains(result.Output, "ELF Header:") {
		t.Errorf("unexpected result %+v", result)
	}

	if result := processFile(dir, &reportOptions{Header: true}); !errors.Is(result.Error, ErrNotRegular) {
		t.Errorf("directory: %v", result.Error)
	}
	if result := processFile(filepath.Join(dir, "missing"), &reportOptions{Header: true}); result.Error == nil {
		t.Error("missing file: want error")
	}
}

func TestProcessFilesParallelKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		writeFile(t, dir, "a.o", objectFile(true).Bytes()),
		writeFile(t, dir, "bad", []byte("garbage")),
		writeFile(t, dir, "b.o", objectFile(false).Bytes()),
		writeFile(t, dir, "lib.so", sharedFile().Bytes()),
	}
	results := processFilesParallel(names, &reportOptions{Header: true}, 3)
	if len(results) != len(names) {
		t.Fatalf("want %d results, got %d", len(names), len(results))
	}
	for i, r := range results {
		if r.Filename != names[i] {
			t.Errorf("result %d is for %s", i, r.Filename)
		}
		if (r.Error != nil) != (i == 1) {
			t.Errorf("%s: error %v", r.Filename, r.Error)
		}
	}
}
