package elfview

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"goelfview/bytebuf"
	"goelfview/common"
)

// IdentSize is the size of the width-independent e_ident block.
const IdentSize = 16

// Magic is the ELF file signature.
var Magic = [4]byte{0x7f, 'E', 'L', 'F'}

// Ident is the decoded identification block.
type Ident struct {
	Class      Class
	Data       Data
	Version    uint8
	OSABI      OSABI
	ABIVersion uint8
}

// ReadIdent decodes the identification block at the start of buf. It is the
// first step for callers that do not yet know which Word to read the header
// with.
func ReadIdent(buf *bytebuf.Buffer) (Ident, error) {
	b, err := buf.Slice(0, IdentSize)
	if err != nil {
		if buf.Released() {
			return Ident{}, err
		}
		return Ident{}, fmt.Errorf("%w: need %d bytes, have %d", common.ErrTruncatedHeader, IdentSize, buf.Len())
	}
	if !bytes.Equal(b[:4], Magic[:]) {
		return Ident{}, fmt.Errorf("%w: % x", common.ErrMalformedMagic, b[:4])
	}
	id := Ident{
		Class:      Class(b[4]),
		Data:       Data(b[5]),
		Version:    b[6],
		OSABI:      OSABI(b[7]),
		ABIVersion: b[8],
	}
	if id.Class != Class32 && id.Class != Class64 {
		return Ident{}, fmt.Errorf("%w: class %s", common.ErrInvalidIdent, id.Class)
	}
	if id.Data != DataLittleEndian && id.Data != DataBigEndian {
		return Ident{}, fmt.Errorf("%w: data encoding %s", common.ErrInvalidIdent, id.Data)
	}
	return id, nil
}

// ByteOrder returns the encoding of every multi-byte field in the file.
func (id Ident) ByteOrder() binary.ByteOrder {
	if id.Data == DataBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
