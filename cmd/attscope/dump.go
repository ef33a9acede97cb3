package main

// Wire-format dump command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tturner/attscope/internal/envelope"
	uerr "github.com/tturner/attscope/internal/errors"
	"github.com/tturner/attscope/internal/records"
	"github.com/tturner/attscope/internal/report"
	"github.com/tturner/attscope/internal/wire"
)

type dumpFlags struct {
	inputFile  string
	hexValue   string
	frame      int
	format     string
	outputFile string
	noColor    bool
	verbose    bool
	debug      bool
	logFile    string
}

func newDumpCmd() *cobra.Command {
	flags := &dumpFlags{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the tag/length/value wire format of captured blobs",
		Long: `Dump the outer wire format of FF09 blobs without a schema.

Field numbers, wire types, and byte spans are recovered directly from the
bytes. Length-delimited payloads are classified heuristically as UTF-8 text,
mostly-printable bytes, an embedded field sequence (decoded recursively, up
to 3 levels), or raw bytes.

With --hex the bytes are decoded directly, no envelope required. With --input
every FF09-framed record in the stream is dumped; non-FF09 records are
skipped silently.`,
		Example: `  # Dump one payload given as hex
  attscope dump --hex 0a0b68656c6c6f20776f726c64

  # Dump all FF09 blobs from a captured record stream
  attscope dump --input capture.jsonl

  # Dump a single frame
  attscope dump --input capture.jsonl --frame 2687`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(flags)
		},
	}

	cmd.Flags().StringVar(&flags.inputFile, "input", "", "Record stream file (JSONL)")
	cmd.Flags().StringVar(&flags.hexValue, "hex", "", "Literal payload bytes as hex")
	cmd.Flags().IntVar(&flags.frame, "frame", 0, "Only dump this frame number from --input")
	cmd.Flags().StringVar(&flags.format, "format", "text", "Output format: text|json")
	cmd.Flags().StringVar(&flags.outputFile, "output", "", "Write JSON report to file (default: stdout)")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable styled output")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Verbose diagnostics on stderr")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Debug diagnostics on stderr")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "Also write diagnostics to file")

	return cmd
}

func runDump(flags *dumpFlags) error {
	if flags.format != "text" && flags.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", flags.format)
	}
	if flags.inputFile == "" && flags.hexValue == "" {
		return uerr.UserFriendlyError{
			Message: "Nothing to dump",
			Reason:  "neither --input nor --hex was given",
			Try:     "attscope dump --hex 0a0b68656c6c6f20776f726c64",
		}
	}

	log, err := newLogger(flags.verbose, flags.debug, flags.logFile)
	if err != nil {
		return err
	}
	defer log.Close()

	r := report.NewRenderer(os.Stdout, !flags.noColor)
	rep := report.DumpReport{
		GeneratedAt: nowStamp(),
		Version:     version,
		Input:       flags.inputFile,
		Frames:      make([]report.FrameDump, 0),
	}

	if flags.hexValue != "" {
		raw, err := records.ParseHex(flags.hexValue)
		if err != nil {
			return uerr.WrapHexError(err, "--hex")
		}
		fields, consumed := wire.Decode(raw)
		log.Verbose("--hex: %d bytes, %d fields, %d bytes consumed", len(raw), len(fields), consumed)
		if flags.format == "text" {
			r.DumpBuffer("input", raw, fields)
		} else {
			rep.Frames = append(rep.Frames, report.FrameDump{
				Frame:   -1,
				BlobLen: len(raw),
				Fields:  report.NewFieldDumps(fields),
			})
		}
	}

	if flags.inputFile != "" {
		recs, skipped, err := records.ReadFile(flags.inputFile)
		if err != nil {
			return uerr.WrapInputError(err, flags.inputFile)
		}
		if skipped > 0 {
			log.Verbose("%s: %d malformed lines skipped", flags.inputFile, skipped)
		}
		for _, rec := range recs {
			if flags.frame != 0 && rec.Frame != flags.frame {
				continue
			}
			raw, err := rec.Value()
			if err != nil {
				log.Verbose("frame %d: bad value_hex, skipped: %v", rec.Frame, err)
				continue
			}
			if len(raw) == 0 {
				continue
			}
			env, ok := envelope.Strip(raw)
			if !ok {
				log.Debug("frame %d: not an FF09 frame, skipped", rec.Frame)
				continue
			}
			log.Verbose("frame %d: declared_len=%d blob_len=%d", rec.Frame, env.DeclaredLen, len(env.Blob))
			fields, _ := wire.Decode(env.Blob)
			if flags.format == "text" {
				r.FrameHeader(rec.Frame, rec.Opcode, rec.ATTHandle, env.Group, env.Cmd, env.BaseCmd, len(env.Blob))
				r.DumpBuffer("  blob", env.Blob, fields)
				r.Blank()
			} else {
				rep.Frames = append(rep.Frames, report.FrameDump{
					Frame:     rec.Frame,
					Opcode:    rec.Opcode,
					ATTHandle: rec.ATTHandle,
					Group:     fmt.Sprintf("0x%02x", env.Group),
					Cmd:       fmt.Sprintf("0x%04x", env.Cmd),
					BaseCmd:   fmt.Sprintf("0x%04x", env.BaseCmd),
					BlobLen:   len(env.Blob),
					Fields:    report.NewFieldDumps(fields),
				})
			}
		}
	}

	if flags.format == "json" {
		if flags.outputFile != "" {
			return report.WriteJSONFile(flags.outputFile, rep)
		}
		return report.WriteJSON(os.Stdout, rep)
	}
	return nil
}
