package main

// Ciphertext candidate search command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tturner/attscope/internal/config"
	uerr "github.com/tturner/attscope/internal/errors"
	"github.com/tturner/attscope/internal/report"
	"github.com/tturner/attscope/internal/search"
)

type searchFlags struct {
	inputFile  string
	hexValue   string
	peer       string
	secret     string
	top        int
	maxOffset  int
	workers    int
	configFile string
	format     string
	outputFile string
	noColor    bool
	verbose    bool
	debug      bool
	logFile    string
}

func newSearchCmd() *cobra.Command {
	flags := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search captured blobs for AES-CBC TLV plaintext candidates",
		Long: `Search FF09 blobs for decryption parameters.

For every analyzable record this command enumerates ciphertext segments
(start offsets up to --max-offset plus fixed tail lengths), decrypts each
segment under every key/IV candidate, and scores the plaintext by
TLV-likeness. Candidates are ranked by score; the tie-break is discovery
order, so output is deterministic.

Key candidates are the two 16-byte halves of the shared secret. IV candidates
are all-zero, each key half, the peer address padded forward and reversed,
the blob's first 16 bytes, and the blob's first 4 bytes repeated.

This is not a key search: it only rates a small explicit candidate set, and
finding zero plausible candidates is a legitimate result (still exit 0).`,
		Example: `  # Search a captured record stream
  attscope search --input capture.jsonl

  # Include peer-address IV heuristics
  attscope search --input capture.jsonl --peer 7c:e9:13:6e:4d:75

  # Search a single literal record value
  attscope search --hex ff091c000300a1410c...

  # Alternate secret, more results
  attscope search --input capture.jsonl --secret <hex> --top 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.inputFile, "input", "", "Record stream file (JSONL)")
	cmd.Flags().StringVar(&flags.hexValue, "hex", "", "Literal record value bytes as hex")
	cmd.Flags().StringVar(&flags.peer, "peer", "", "Peer hardware address for IV heuristics (aa:bb:cc:dd:ee:ff)")
	cmd.Flags().StringVar(&flags.secret, "secret", "", "Shared secret hex, >= 32 bytes (default: built-in)")
	cmd.Flags().IntVar(&flags.top, "top", config.DefaultTopN, "Ranked candidates to report")
	cmd.Flags().IntVar(&flags.maxOffset, "max-offset", config.DefaultMaxOffset, "Max ciphertext start offset inside a blob")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Parallel workers (0 = one per CPU)")
	cmd.Flags().StringVar(&flags.configFile, "config", "", "YAML config file (flags override it)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "Output format: text|json")
	cmd.Flags().StringVar(&flags.outputFile, "output", "", "Write JSON report to file (default: stdout)")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable styled output")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Verbose diagnostics on stderr")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Debug diagnostics on stderr")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "Also write diagnostics to file")

	return cmd
}

// searchConfig resolves flag > file > default precedence.
func searchConfig(cmd *cobra.Command, flags *searchFlags) (config.Search, error) {
	cfg := config.DefaultSearch()
	if flags.configFile != "" {
		loaded, err := config.LoadFile(flags.configFile)
		if err != nil {
			return cfg, uerr.WrapConfigError(err, flags.configFile)
		}
		cfg = loaded
	}
	if flags.secret != "" {
		cfg.SecretHex = flags.secret
	}
	if flags.peer != "" {
		cfg.Peer = flags.peer
	}
	if cmd.Flags().Changed("top") {
		cfg.TopN = flags.top
	}
	if cmd.Flags().Changed("max-offset") {
		cfg.MaxOffset = flags.maxOffset
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return cfg, uerr.WrapConfigError(err, "search parameters")
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, flags *searchFlags) error {
	cfg, err := searchConfig(cmd, flags)
	if err != nil {
		return err
	}

	if flags.format != "text" && flags.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", flags.format)
	}

	log, err := newLogger(flags.verbose, flags.debug, flags.logFile)
	if err != nil {
		return err
	}
	defer log.Close()

	if flags.inputFile == "" && flags.hexValue == "" {
		return uerr.UserFriendlyError{
			Message: "Nothing to search",
			Reason:  "neither --input nor --hex was given",
			Try:     "attscope search --input capture.jsonl",
		}
	}

	recs, err := loadRecords(flags.inputFile, flags.hexValue, log)
	if err != nil {
		return err
	}

	k0, k1, err := cfg.KeyHalves()
	if err != nil {
		return uerr.WrapConfigError(err, "secret")
	}
	peer, err := cfg.PeerBytes()
	if err != nil {
		return uerr.WrapConfigError(err, "peer")
	}

	opts := search.Options{
		K0:        k0,
		K1:        k1,
		Peer:      peer,
		MaxOffset: cfg.MaxOffset,
		Workers:   cfg.Workers,
	}
	ranked := search.Rank(search.Run(recs, opts, log), cfg.TopN)

	if flags.format == "json" {
		rep := report.SearchReport{
			GeneratedAt:     nowStamp(),
			Version:         version,
			Input:           flags.inputFile,
			Peer:            cfg.Peer,
			TopN:            cfg.TopN,
			MaxOffset:       cfg.MaxOffset,
			TotalCandidates: len(ranked),
			Candidates:      report.NewCandidateReports(ranked),
		}
		if flags.outputFile != "" {
			return report.WriteJSONFile(flags.outputFile, rep)
		}
		return report.WriteJSON(os.Stdout, rep)
	}

	r := report.NewRenderer(os.Stdout, !flags.noColor)
	if len(ranked) == 0 {
		r.NoCandidates()
		return nil
	}
	for _, c := range ranked {
		r.CandidateLine(c)
	}
	return nil
}
