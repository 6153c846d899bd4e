package common

import "errors"

// Decoding failures. All of them are recoverable: the input is untrusted and a
// malformed file must never take the process down.
var (
	ErrMalformedMagic       = errors.New("malformed ELF magic")
	ErrTruncatedHeader      = errors.New("truncated header")
	ErrInvalidIdent         = errors.New("invalid ELF identification")
	ErrOutOfBounds          = errors.New("region out of bounds")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrSizeMismatch         = errors.New("entry size mismatch")
	ErrUnterminatedString   = errors.New("unterminated string")
	ErrAmbiguousStringTable = errors.New("ambiguous string table")
	ErrMissingStringTable   = errors.New("string table not found")
	ErrBadAlignment         = errors.New("bad segment alignment")
	ErrNoSuchSection        = errors.New("no such section")
	ErrDuplicateSection     = errors.New("duplicate section name")
)

// Misuse by the caller rather than bad input.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrReleased        = errors.New("buffer released")
)

// IsMisuse reports whether err is a programmer error (indexing past a
// validated count, or touching a released buffer) as opposed to a property
// of the decoded file.
func IsMisuse(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) || errors.Is(err, ErrReleased)
}
