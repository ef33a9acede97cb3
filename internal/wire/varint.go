package wire

import "errors"

// Decode errors. Both abort the current parse level; the decoder converts
// them into a partial field list rather than surfacing them to callers.
var (
	ErrTruncatedVarint = errors.New("truncated varint")
	ErrBufferOverrun   = errors.New("buffer overrun")
)

// Uvarint decodes a little-endian base-128 unsigned integer starting at off.
// It returns the value and the offset of the first byte after the varint.
// ErrTruncatedVarint is returned if the buffer ends, or 64 bits have been
// shifted in, before a byte with the continuation bit clear.
func Uvarint(buf []byte, off int) (uint64, int, error) {
	var v uint64
	for shift := uint(0); shift <= 63; shift += 7 {
		if off >= len(buf) {
			return 0, off, ErrTruncatedVarint
		}
		b := buf[off]
		off++
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			return v, off, nil
		}
	}
	return 0, off, ErrTruncatedVarint
}

// AppendUvarint appends the base-128 encoding of v to buf. Used to build
// probe messages and test vectors; Uvarint is its inverse.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}
