package wire

// Content classification for length-delimited payloads.
// Priority order: strict UTF-8 text, mostly-printable bytes, embedded
// message, raw bytes. The 0.85 printable-ratio threshold and the embedded
// heuristic bounds are part of the output contract.

import (
	"unicode"
	"unicode/utf8"
)

const printableRatio = 0.85

// classify fills in f.Interp and the matching value slot for a
// length-delimited field. depth is the current embedded-message depth.
func classify(f *Field, depth int) {
	if s, ok := tryUTF8(f.Raw); ok {
		f.Interp = InterpUTF8
		f.Text = s
		return
	}
	if mostlyPrintable(f.Raw) {
		f.Interp = InterpPrintable
		return
	}
	if depth < MaxDepth && looksLikeEmbedded(f.Raw) {
		embedded, _ := decode(f.Raw, depth+1, maxEmbeddedFields)
		f.Interp = InterpEmbedded
		f.Embedded = embedded
		return
	}
	f.Interp = InterpRaw
}

// tryUTF8 decodes b as strict UTF-8 text. Conservative: empty strings,
// control characters below code point 9, and strings under 85% printable
// are rejected.
func tryUTF8(b []byte) (string, bool) {
	if len(b) == 0 || !utf8.Valid(b) {
		return "", false
	}
	s := string(b)
	runes := 0
	printable := 0
	for _, r := range s {
		if r < 9 {
			return "", false
		}
		runes++
		if unicode.IsPrint(r) {
			printable++
		}
	}
	if float64(printable)/float64(runes) < printableRatio {
		return "", false
	}
	return s, true
}

// mostlyPrintable reports whether at least 85% of the bytes are printable
// ASCII or tab/newline/carriage-return.
func mostlyPrintable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	printable := 0
	for _, x := range b {
		if (x >= 32 && x <= 126) || x == 9 || x == 10 || x == 13 {
			printable++
		}
	}
	return float64(printable)/float64(len(b)) >= printableRatio
}

// looksLikeEmbedded scans up to 5 leading tag/value records without building
// fields. At least 2 must parse with field numbers in [1, maxFieldNumber] and
// declared sub-field lengths within maxEmbeddedLen.
func looksLikeEmbedded(b []byte) bool {
	off := 0
	ok := 0
scan:
	for i := 0; i < 5; i++ {
		if off >= len(b) {
			break
		}
		tag, next, err := Uvarint(b, off)
		if err != nil {
			return false
		}
		if tag == 0 {
			break
		}
		num := tag >> 3
		wt := tag & 0x7
		if num == 0 || num > maxFieldNumber {
			break
		}
		off = next
		switch wt {
		case 0:
			_, next, err := Uvarint(b, off)
			if err != nil {
				return false
			}
			off = next
		case 1:
			off += 8
		case 2:
			ln, next, err := Uvarint(b, off)
			if err != nil {
				return false
			}
			if ln > maxEmbeddedLen {
				break scan
			}
			off = next + int(ln)
		case 5:
			off += 4
		default:
			break scan
		}
		if off > len(b) {
			break
		}
		ok++
	}
	return ok >= 2
}
