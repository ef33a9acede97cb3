package envelope

// FF09 transport envelope recognition and blob extraction.

import "encoding/binary"

// Fixed header constants. Records that do not carry them are not FF09 frames
// and are excluded from analysis.
const (
	magic0 = 0xFF
	magic1 = 0x09
	sub0   = 0x03
	sub1   = 0x00

	minRecordLen = 10
	subHeaderLen = 5 // 03 00 group cmdHigh cmdLow

	// Command bits masked off the high byte to derive the base command
	// (request/response and notify markers).
	cmdMarkerBits = 0x40 | 0x08
)

// Envelope is the decoded fixed outer header of one transport record.
// DeclaredLen is the little-endian length field at bytes 2..4; it is
// informational only and never enforced. Blob is the analyzable payload:
// everything after the 5-byte sub-header, excluding the final trailing byte
// (assumed checksum, stripped without validation).
type Envelope struct {
	DeclaredLen uint16
	Group       byte
	Cmd         uint16
	BaseCmd     uint16
	Blob        []byte
}

// Strip recognizes the FF09 envelope in raw record bytes. The second return
// is false when the record is not an FF09 frame (too short, wrong magic, or
// wrong sub-header); that is a skip, not an error.
func Strip(raw []byte) (Envelope, bool) {
	if len(raw) < minRecordLen {
		return Envelope{}, false
	}
	if raw[0] != magic0 || raw[1] != magic1 {
		return Envelope{}, false
	}

	declLen := binary.LittleEndian.Uint16(raw[2:4])
	payload := raw[4 : len(raw)-1]
	if len(payload) < subHeaderLen {
		return Envelope{}, false
	}
	if payload[0] != sub0 || payload[1] != sub1 {
		return Envelope{}, false
	}

	group := payload[2]
	cmdHigh := payload[3]
	cmdLow := payload[4]

	return Envelope{
		DeclaredLen: declLen,
		Group:       group,
		Cmd:         uint16(cmdHigh)<<8 | uint16(cmdLow),
		BaseCmd:     uint16(cmdHigh&^cmdMarkerBits)<<8 | uint16(cmdLow),
		Blob:        payload[subHeaderLen:],
	}, true
}
