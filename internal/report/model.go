package report

import "github.com/tturner/attscope/internal/search"

// SearchReport captures one candidate-search invocation.
type SearchReport struct {
	GeneratedAt     string            `json:"generated_at"`
	Version         string            `json:"attscope_version"`
	Input           string            `json:"input,omitempty"`
	Peer            string            `json:"peer,omitempty"`
	TopN            int               `json:"top"`
	MaxOffset       int               `json:"max_offset"`
	TotalCandidates int               `json:"total_candidates"`
	Candidates      []CandidateReport `json:"candidates"`
}

// CandidateReport is one ranked candidate in report form.
type CandidateReport struct {
	Score      float64 `json:"score"`
	Frame      int     `json:"frame"`
	Opcode     string  `json:"opcode"`
	ATTHandle  string  `json:"att_handle"`
	Group      string  `json:"group"`
	Cmd        string  `json:"cmd"`
	BaseCmd    string  `json:"base_cmd"`
	CtOff      int     `json:"ct_off"`
	CtLen      int     `json:"ct_len"`
	Key        string  `json:"key"`
	IV         string  `json:"iv"`
	PreviewHex string  `json:"pt0_hex"`
	TLVSummary string  `json:"tlv"`
}

// DumpReport captures one wire-format dump invocation.
type DumpReport struct {
	GeneratedAt string      `json:"generated_at"`
	Version     string      `json:"attscope_version"`
	Input       string      `json:"input,omitempty"`
	Frames      []FrameDump `json:"frames"`
}

// FrameDump is the decoded field tree of one record's blob.
type FrameDump struct {
	Frame     int         `json:"frame"`
	Opcode    string      `json:"opcode,omitempty"`
	ATTHandle string      `json:"att_handle,omitempty"`
	Group     string      `json:"group,omitempty"`
	Cmd       string      `json:"cmd,omitempty"`
	BaseCmd   string      `json:"base_cmd,omitempty"`
	BlobLen   int         `json:"blob_len"`
	Fields    []FieldDump `json:"fields"`
}

// FieldDump is one decoded field in report form.
type FieldDump struct {
	Number   int         `json:"field"`
	WireType int         `json:"wire_type"`
	Value    uint64      `json:"value,omitempty"`
	Len      int         `json:"len,omitempty"`
	Hex      string      `json:"hex,omitempty"`
	UTF8     string      `json:"utf8,omitempty"`
	ASCII    string      `json:"ascii,omitempty"`
	Embedded []FieldDump `json:"embedded,omitempty"`
}

// NewCandidateReports converts ranked candidates into report form.
func NewCandidateReports(cands []search.Candidate) []CandidateReport {
	out := make([]CandidateReport, 0, len(cands))
	for _, c := range cands {
		out = append(out, NewCandidateReport(c))
	}
	return out
}
