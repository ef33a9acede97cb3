package tlv

// Inner type(1)+length(1)+value(N) model used on decrypted payloads.
// The numbering scheme is unrelated to the outer wire format.

// Item is one parsed TLV record.
type Item struct {
	Type  byte
	Value []byte
}

// Parse walks buf as a TLV sequence. Errors are counted, not returned: a
// declared length past the end of the buffer stops the walk and counts as one
// error, and any unconsumed trailing bytes count as one more. A sequence is
// well-formed only when every byte is consumed and the error count is zero.
func Parse(buf []byte) (consumed int, errCount int, items []Item) {
	off := 0
	for off+2 <= len(buf) {
		t := buf[off]
		l := int(buf[off+1])
		off += 2
		if off+l > len(buf) {
			errCount++
			break
		}
		items = append(items, Item{Type: t, Value: buf[off : off+l]})
		off += l
	}
	if off != len(buf) {
		errCount++
	}
	return off, errCount, items
}
