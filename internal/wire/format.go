package wire

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// hexPreviewBytes bounds the hex shown per length-delimited field (32 bytes).
const hexPreviewBytes = 32

// Format renders a decoded field sequence as an indented tree, one line per
// field, with embedded sequences indented under their parent.
func Format(fields []Field, indent string) string {
	var sb strings.Builder
	for _, f := range fields {
		switch {
		case f.Type == TypeBytes && f.Interp == InterpEmbedded:
			fmt.Fprintf(&sb, "%s%d: wt=2 len=%d embedded:\n", indent, f.Number, len(f.Raw))
			sb.WriteString(Format(f.Embedded, indent+"  "))
		case f.Type == TypeBytes:
			preview := f.Raw
			if len(preview) > hexPreviewBytes {
				preview = preview[:hexPreviewBytes]
			}
			tail := ""
			switch f.Interp {
			case InterpUTF8:
				tail = fmt.Sprintf(" utf8=%q", f.Text)
			case InterpPrintable:
				tail = fmt.Sprintf(" ascii=%q", string(f.Raw))
			}
			fmt.Fprintf(&sb, "%s%d: wt=2 len=%d hex=%s%s\n",
				indent, f.Number, len(f.Raw), hex.EncodeToString(preview), tail)
		default:
			fmt.Fprintf(&sb, "%s%d: wt=%d value=%d\n", indent, f.Number, f.Type, f.Value)
		}
	}
	return sb.String()
}
