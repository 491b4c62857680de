// Package pgf decodes Portable Grammar Format (PGF) binaries into an
// immutable, queryable grammar model.
//
// A PGF file carries one abstract syntax (categories and typed functions)
// and any number of concrete syntaxes, each realizing the abstract syntax
// as PMCFG productions over a sequence table. Decoding is a single
// sequential pass over the input buffer; the resulting Grammar is read-only
// and safe for concurrent use.
package pgf

import (
	"encoding/binary"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
)

// Format version profiles. The profile is established once from the file
// header and threaded through every length-sensitive read.
var (
	// FormatV1 is the stable 1.0 format: lengths and counts are
	// variable-length integers (7 bits per byte, most significant first,
	// high bit marks continuation).
	FormatV1 = FormatProfile{Major: 1, Minor: 0}

	// FormatV2 is the experimental 2.1 format: lengths and counts are
	// fixed 32-bit big-endian integers. Support is best-effort; only the
	// fixed-length profile is assumed, no per-block version markers.
	FormatV2 = FormatProfile{Major: 2, Minor: 1}
)

// FormatProfile identifies the wire encoding of a grammar file.
type FormatProfile struct {
	Major uint16
	Minor uint16
}

// Supported reports whether this decoder handles the profile.
func (p FormatProfile) Supported() bool {
	return p == FormatV1 || p == FormatV2
}

// variableLengths reports whether lengths use the varint encoding.
func (p FormatProfile) variableLengths() bool {
	return p.Major == 1
}

// String returns the dotted version, e.g. "1.0".
func (p FormatProfile) String() string {
	return strconv.Itoa(int(p.Major)) + "." + strconv.Itoa(int(p.Minor))
}

// maxVarintBytes bounds a 1.0 length at 32 bits (5 varint bytes).
const maxVarintBytes = 5

// reader is a byte cursor over an immutable input buffer.
//
// The buffer may be a truncated view of the file (decoding a concrete block
// never reads past the block's declared end) while pos stays an absolute
// file offset, so every error reports the true byte position.
type reader struct {
	buf     []byte
	pos     int
	profile FormatProfile
}

// remaining returns the number of unread bytes.
func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

// readU8 reads one byte.
func (r *reader) readU8() (byte, error) {
	if r.remaining() < 1 {
		return 0, errors.ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// readU16 reads a big-endian 16-bit integer.
func (r *reader) readU16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, errors.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// readU32 reads a big-endian 32-bit integer.
func (r *reader) readU32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, errors.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// readI32 reads a big-endian signed 32-bit integer.
func (r *reader) readI32() (int32, error) {
	v, err := r.readU32()
	return int32(v), err
}

// readF64 reads a big-endian IEEE 754 double.
func (r *reader) readF64() (float64, error) {
	if r.remaining() < 8 {
		return 0, errors.ErrUnexpectedEOF
	}
	bits := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

// readLength reads a length or count using the profile's encoding.
func (r *reader) readLength() (int, error) {
	if !r.profile.variableLengths() {
		v, err := r.readU32()
		return int(v), err
	}
	var v uint64
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.readU8()
		if err != nil {
			return 0, err
		}
		v = (v << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			if v > 0xffffffff {
				return 0, errors.ErrImplausibleLength
			}
			return int(v), nil
		}
	}
	return 0, errors.ErrImplausibleLength
}

// readString reads a length-prefixed string. Invalid UTF-8 falls back to a
// byte-to-codepoint (Latin-1) mapping rather than failing, so text is never
// lost to an encoding mismatch.
func (r *reader) readString() (string, error) {
	n, err := r.readLength()
	if err != nil {
		return "", err
	}
	if n > r.remaining() {
		return "", errors.ErrImplausibleLength
	}
	raw := r.buf[r.pos : r.pos+n]
	r.pos += n
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

// readList reads a count and then that many elements. A declared count
// exceeding the remaining buffer size (one byte per element minimum) is the
// guard against a misaligned cursor producing a huge bogus count.
func readList[T any](r *reader, elem func(*reader) (T, error)) ([]T, error) {
	n, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > r.remaining() {
		return nil, errors.ErrImplausibleLength
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := elem(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
