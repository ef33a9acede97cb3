package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tturner/attscope/internal/wire"
)

// WriteJSONFile marshals a report structure to JSON and writes it to disk.
func WriteJSONFile(path string, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteJSON writes a report as JSON to an io.Writer.
func WriteJSON(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// NewFieldDumps converts a decoded field tree into report form.
func NewFieldDumps(fields []wire.Field) []FieldDump {
	out := make([]FieldDump, 0, len(fields))
	for _, f := range fields {
		fd := FieldDump{
			Number:   f.Number,
			WireType: int(f.Type),
		}
		if f.Type == wire.TypeBytes {
			fd.Len = len(f.Raw)
			fd.Hex = fmt.Sprintf("%x", f.Raw)
			switch f.Interp {
			case wire.InterpUTF8:
				fd.UTF8 = f.Text
			case wire.InterpPrintable:
				fd.ASCII = string(f.Raw)
			case wire.InterpEmbedded:
				fd.Embedded = NewFieldDumps(f.Embedded)
			}
		} else {
			fd.Value = f.Value
		}
		out = append(out, fd)
	}
	return out
}
