package records

// Captured record stream input. Records arrive as one JSON object per line,
// produced by an upstream capture-to-record conversion step; only value_hex
// feeds the analytical core, the rest is provenance echoed into reports.

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one captured transport record, consumed read-only.
type Record struct {
	Frame     int    `json:"frame"`
	TEpoch    string `json:"t_epoch"`
	Opcode    string `json:"opcode"`
	ATTHandle string `json:"att_handle"`
	ValueHex  string `json:"value_hex"`
}

// Value decodes the record's raw value bytes. An empty ValueHex yields an
// empty slice, not an error.
func (r Record) Value() ([]byte, error) {
	return ParseHex(r.ValueHex)
}

// ParseHex decodes a hex string, tolerating colon separators and surrounding
// whitespace. An empty string decodes to an empty slice.
func ParseHex(s string) ([]byte, error) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ":", ""))
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return b, nil
}

// Read consumes a JSONL record stream. Malformed lines are skipped and
// counted, never fatal; the error return covers only I/O failures.
func Read(r io.Reader) ([]Record, int, error) {
	var recs []Record
	skipped := 0

	sc := bufio.NewScanner(r)
	// Long captures carry multi-KB hex values on a single line.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			skipped++
			continue
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read record stream: %w", err)
	}
	return recs, skipped, nil
}

// ReadFile reads a JSONL record stream from disk.
func ReadFile(path string) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open record stream: %w", err)
	}
	defer f.Close()
	return Read(f)
}
