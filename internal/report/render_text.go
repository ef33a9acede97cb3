package report

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/tturner/attscope/internal/search"
	"github.com/tturner/attscope/internal/wire"
)

var (
	frameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Renderer writes text report lines. Styling only recolors line prefixes;
// the line content is identical with color on or off.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer creates a text renderer.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color}
}

func (r *Renderer) styled(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// NewCandidateReport converts one candidate into report form.
func NewCandidateReport(c search.Candidate) CandidateReport {
	return CandidateReport{
		Score:      c.Score,
		Frame:      c.Frame,
		Opcode:     c.Opcode,
		ATTHandle:  c.ATTHandle,
		Group:      fmt.Sprintf("0x%02x", c.Group),
		Cmd:        fmt.Sprintf("0x%04x", c.Cmd),
		BaseCmd:    fmt.Sprintf("0x%04x", c.BaseCmd),
		CtOff:      c.CtOff,
		CtLen:      c.CtLen,
		Key:        c.KeyName,
		IV:         c.IVName,
		PreviewHex: hex.EncodeToString(c.Preview),
		TLVSummary: c.TLVSummary,
	}
}

// CandidateLine writes one ranked candidate as a single report line.
func (r *Renderer) CandidateLine(c search.Candidate) {
	score := fmt.Sprintf("score=%6.2f", c.Score)
	fmt.Fprintf(r.w, "%s frame=%d op=%s h=%s group=0x%02x cmd=0x%04x base=0x%04x ct_off=%d ct_len=%d %s %s pt0=%s tlv=%s\n",
		r.styled(scoreStyle, score),
		c.Frame, c.Opcode, c.ATTHandle,
		c.Group, c.Cmd, c.BaseCmd,
		c.CtOff, c.CtLen,
		c.KeyName, c.IVName,
		hex.EncodeToString(c.Preview), c.TLVSummary)
}

// NoCandidates writes the explicit empty-result notice.
func (r *Renderer) NoCandidates() {
	fmt.Fprintln(r.w, r.styled(noticeStyle, "No plausible TLV decrypt candidates found."))
}

// FrameHeader writes the provenance line preceding a dump tree.
func (r *Renderer) FrameHeader(frame int, opcode, handle string, group byte, cmd, baseCmd uint16, blobLen int) {
	line := fmt.Sprintf("frame=%d op=%s h=%s group=0x%02x cmd=0x%04x base=0x%04x blob_len=%d",
		frame, opcode, handle, group, cmd, baseCmd, blobLen)
	fmt.Fprintln(r.w, r.styled(frameStyle, line))
}

// DumpBuffer writes a decoded field tree under a label. The label carries its
// own indentation ("input" at top level, "  blob" under a frame header); the
// field tree always starts one level in.
func (r *Renderer) DumpBuffer(label string, buf []byte, fields []wire.Field) {
	fmt.Fprintf(r.w, "%s: %d bytes\n", label, len(buf))
	if len(fields) == 0 {
		fmt.Fprintln(r.w, "  (no fields parsed)")
		return
	}
	fmt.Fprint(r.w, wire.Format(fields, "  "))
}

// Blank writes a separator line between dumped frames.
func (r *Renderer) Blank() {
	fmt.Fprintln(r.w)
}
