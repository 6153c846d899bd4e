package elfview

import (
	"os"
	"runtime"
	"testing"

	"goelfview/bytebuf"
)

// The test binary itself is a convenient real-world ELF file.
func TestCrossCheckTestBinary(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("test binary is not ELF on " + runtime.GOOS)
	}
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}
	err = bytebuf.With(exe, func(buf *bytebuf.Buffer) error {
		id, err := ReadIdent(buf)
		if err != nil {
			return err
		}
		if id.Class == Class64 {
			checkRealBinary[uint64](t, buf)
		} else {
			checkRealBinary[uint32](t, buf)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func checkRealBinary[W Word](t *testing.T, buf *bytebuf.Buffer) {
	t.Helper()
	h, err := ReadHeader[W](buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Type != TypeExecutable && h.Type != TypeSharedObject {
		t.Errorf("unexpected file type %s", h.Type)
	}
	mismatches, err := CrossCheck(h)
	if err != nil {
		t.Fatalf("CrossCheck: %v", err)
	}
	for _, m := range mismatches {
		t.Errorf("mismatch: %s", m)
	}
	if ok, err := IsGoBinary(h); err != nil || !ok {
		t.Errorf("IsGoBinary: %v, %v", ok, err)
	}
	for p, err := range h.Programs().All() {
		if err != nil {
			t.Fatal(err)
		}
		if err := p.CheckAlignment(); err != nil {
			t.Errorf("segment %d: %v", p.Index, err)
		}
	}
	text, err := h.SectionByName(".text")
	if err != nil {
		t.Fatalf(".text: %v", err)
	}
	if !text.IsExecutable() || !text.IsAllocate() {
		t.Errorf(".text flags %s", text.Flags)
	}
}
