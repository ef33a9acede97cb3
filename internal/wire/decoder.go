package wire

// Schema-less decoder for the outer tag/length/value wire format.
// No descriptor is needed: field numbers, wire types, and byte spans are
// recovered directly from the buffer, and length-delimited payloads are
// classified heuristically.

import "encoding/binary"

// WireType is the 3-bit physical encoding selector carried in a tag.
type WireType uint8

const (
	TypeVarint  WireType = 0
	TypeFixed64 WireType = 1
	TypeBytes   WireType = 2
	TypeFixed32 WireType = 5
)

// Interpretation classifies the content of a length-delimited payload.
type Interpretation uint8

const (
	InterpNone      Interpretation = iota // field is not length-delimited
	InterpUTF8                            // strict UTF-8 text
	InterpPrintable                       // mostly printable bytes, kept raw
	InterpEmbedded                        // nested field sequence
	InterpRaw                             // opaque bytes
)

// Decoder limits. These are part of the ranking/output contract, not tunables.
const (
	MaxFields         = 200  // fields per top-level message
	maxEmbeddedFields = 50   // fields per nested message
	MaxDepth          = 3    // embedded recursion cap
	maxFieldNumber    = 2048 // embedded heuristic: plausible field number bound
	maxEmbeddedLen    = 4096 // embedded heuristic: plausible sub-field length bound
)

// Field is one decoded record. Start and End are byte offsets into the source
// buffer; fields never overlap and never extend past the buffer. For varint
// and fixed-width fields Value holds the integer. For length-delimited fields
// Raw holds the payload and Interp selects which of Text/Embedded is set.
type Field struct {
	Number   int
	Type     WireType
	Start    int
	End      int
	Value    uint64
	Raw      []byte
	Interp   Interpretation
	Text     string
	Embedded []Field
}

// Decode parses buf into an ordered field sequence. Parsing is best-effort:
// a truncated varint, a declared length past the end of the buffer, or an
// unsupported wire type stops the walk and the fields decoded so far are
// returned along with the number of bytes consumed by complete fields.
func Decode(buf []byte) ([]Field, int) {
	return decode(buf, 0, MaxFields)
}

func decode(buf []byte, depth, maxFields int) ([]Field, int) {
	fields := make([]Field, 0)
	off := 0
	consumed := 0
	for off < len(buf) && len(fields) < maxFields {
		start := off
		tag, next, err := Uvarint(buf, off)
		if err != nil {
			break
		}
		if tag == 0 {
			// Field number 0 is invalid; treat as padding/terminator.
			break
		}
		off = next
		f := Field{
			Number: int(tag >> 3),
			Type:   WireType(tag & 0x7),
			Start:  start,
		}
		switch f.Type {
		case TypeVarint:
			v, next, err := Uvarint(buf, off)
			if err != nil {
				return fields, consumed
			}
			f.Value = v
			off = next
		case TypeFixed64:
			if off+8 > len(buf) {
				return fields, consumed
			}
			f.Value = binary.LittleEndian.Uint64(buf[off : off+8])
			off += 8
		case TypeBytes:
			ln, next, err := Uvarint(buf, off)
			if err != nil {
				return fields, consumed
			}
			off = next
			if ln > uint64(len(buf)) || off+int(ln) > len(buf) {
				return fields, consumed
			}
			f.Raw = buf[off : off+int(ln)]
			off += int(ln)
			classify(&f, depth)
		case TypeFixed32:
			if off+4 > len(buf) {
				return fields, consumed
			}
			f.Value = uint64(binary.LittleEndian.Uint32(buf[off : off+4]))
			off += 4
		default:
			// Wire types 3/4 (groups) and 6/7 are not supported.
			return fields, consumed
		}
		f.End = off
		fields = append(fields, f)
		consumed = off
	}
	return fields, consumed
}
