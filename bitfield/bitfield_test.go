package bitfield

import (
	"errors"
	"testing"
)

func TestNewRejectsBadRanges(t *testing.T) {
	testcases := []struct {
		label              string
		begin, end, offset uint
	}{
		{"empty", 4, 4, 0},
		{"reversed", 5, 3, 0},
		{"end too wide", 0, 9, 0},
		{"offset overflow", 0, 4, 5},
	}
	for _, tc := range testcases {
		if _, err := New[uint8](tc.begin, tc.end, tc.offset); !errors.Is(err, ErrInvalidField) {
			t.Errorf("%s: want ErrInvalidField, got %v", tc.label, err)
		}
	}
}

func TestGet(t *testing.T) {
	testcases := []struct {
		label              string
		v                  uint8
		begin, end, offset uint
		want               uint8
	}{
		{"low nibble", 0x12, 0, 4, 0, 0x2},
		{"high nibble", 0x12, 4, 8, 0, 0x1},
		{"visibility", 0xfe, 0, 2, 0, 0x2},
		{"shift left", 0x03, 0, 2, 4, 0x30},
		{"shift right to offset", 0xf0, 4, 8, 2, 0x3c},
		{"full width", 0xa5, 0, 8, 0, 0xa5},
	}
	for _, tc := range testcases {
		got, err := Extract(tc.v, tc.begin, tc.end, tc.offset)
		if err != nil {
			t.Fatalf("%s: %v", tc.label, err)
		}
		if got != tc.want {
			t.Errorf("%s: want %#x, got %#x", tc.label, tc.want, got)
		}
	}
}

func TestWideFields(t *testing.T) {
	sym := Must[uint64](32, 64, 0)
	typ := Must[uint64](0, 32, 0)
	info := uint64(0xdeadbeef)<<32 | 0x2a
	if got := sym.Get(info); got != 0xdeadbeef {
		t.Errorf("symbol: got %#x", got)
	}
	if got := typ.Get(info); got != 0x2a {
		t.Errorf("type: got %#x", got)
	}

	sym32 := Must[uint32](8, 32, 0)
	typ32 := Must[uint32](0, 8, 0)
	info32 := uint32(0x123456)<<8 | 0x07
	if got := sym32.Get(info32); got != 0x123456 {
		t.Errorf("symbol32: got %#x", got)
	}
	if got := typ32.Get(info32); got != 0x07 {
		t.Errorf("type32: got %#x", got)
	}
}

func TestPutRoundTrip(t *testing.T) {
	binding := Must[uint8](4, 8, 0)
	kind := Must[uint8](0, 4, 0)
	for b := uint8(0); b < 16; b++ {
		for k := uint8(0); k < 16; k++ {
			info := kind.Put(binding.Put(0, b), k)
			if binding.Get(info) != b || kind.Get(info) != k {
				t.Fatalf("round trip (%d, %d) via %#x failed", b, k, info)
			}
		}
	}
	// Put must not disturb bits outside the field.
	if got := kind.Put(0xf0, 0x3); got != 0xf3 {
		t.Errorf("Put: got %#x, want 0xf3", got)
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("want panic for invalid field")
		}
	}()
	Must[uint16](0, 17, 0)
}

func TestWidth(t *testing.T) {
	if Width[uint8]() != 8 || Width[uint16]() != 16 || Width[uint32]() != 32 || Width[uint64]() != 64 {
		t.Error("unexpected widths")
	}
}
