package elfview

import (
	"bytes"
	"math"
	"testing"

	"goelfview/elfview/elftest"
)

func TestSectionEntropy(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	h := build64(t, &elftest.File{Sections: []elftest.Section{
		{Name: ".zeros", Type: uint32(SectionProgBits), Data: make([]byte, 128)},
		{Name: ".random", Type: uint32(SectionProgBits), Data: all},
		{Name: ".half", Type: uint32(SectionProgBits), Data: bytes.Repeat([]byte{0, 1}, 64)},
		{Name: ".bss", Type: uint32(SectionNoBits), Size: 4096},
	}})
	testcases := []struct {
		name string
		want float64
	}{
		{".zeros", 0},
		{".random", 8},
		{".half", 1},
		{".bss", 0},
	}
	for _, tc := range testcases {
		got, err := SectionEntropy(section(t, h, tc.name))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: want %.2f, got %.4f", tc.name, tc.want, got)
		}
	}
}

func TestIsGoBinary(t *testing.T) {
	goSecs := []elftest.Section{
		{Name: ".gopclntab", Type: uint32(SectionProgBits)},
		{Name: ".go.buildinfo", Type: uint32(SectionProgBits)},
	}
	h := build64(t, &elftest.File{Sections: goSecs})
	if ok, err := IsGoBinary(h); err != nil || !ok {
		t.Errorf("two Go sections: %v, %v", ok, err)
	}
	h = build64(t, &elftest.File{Sections: goSecs[:1]})
	if ok, err := IsGoBinary(h); err != nil || ok {
		t.Errorf("one Go section: %v, %v", ok, err)
	}
}
