package elfview

import (
	"bytes"
	"fmt"

	"goelfview/common"
)

// StringTable is a SHT_STRTAB section: NUL-terminated strings addressed by
// byte index.
type StringTable[W Word] struct {
	Section[W]
}

func (*StringTable[W]) accepts(t SectionType) bool { return t == SectionStrTab }
func (*StringTable[W]) entrySize() uint64          { return 0 }
func (st *StringTable[W]) bind(s Section[W])       { st.Section = s }

// Get returns the string at index. Index 0 means "no name" and yields def.
// The terminator must fall inside the table; the result is a copy.
func (st *StringTable[W]) Get(index uint32, def string) (string, error) {
	if index == 0 {
		return def, nil
	}
	size := uint64(st.Size)
	if uint64(index) >= size {
		return "", fmt.Errorf("%w: string index %d, table size %d", common.ErrOutOfBounds, index, size)
	}
	b, err := st.hdr.buf.Slice(uint64(st.Offset)+uint64(index), size-uint64(index))
	if err != nil {
		return "", err
	}
	end := bytes.IndexByte(b, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: at index %d of section %d", common.ErrUnterminatedString, index, st.Index)
	}
	return string(b[:end]), nil
}
