package main

// Helpers shared by the search and dump commands.

import (
	"time"

	uerr "github.com/tturner/attscope/internal/errors"
	"github.com/tturner/attscope/internal/logging"
	"github.com/tturner/attscope/internal/records"
)

// newLogger maps the shared verbosity flags onto a logger.
func newLogger(verbose, debug bool, logFile string) (*logging.Logger, error) {
	level := logging.LogLevelError
	if verbose {
		level = logging.LogLevelVerbose
	}
	if debug {
		level = logging.LogLevelDebug
	}
	return logging.NewLogger(level, logFile)
}

// loadRecords builds the record list for one invocation: the JSONL input file
// if given, plus one synthetic record for a literal --hex payload. Malformed
// JSONL lines are skipped upstream; a malformed --hex argument is a fatal
// configuration error.
func loadRecords(inputFile, hexValue string, log *logging.Logger) ([]records.Record, error) {
	var recs []records.Record

	if inputFile != "" {
		fileRecs, skipped, err := records.ReadFile(inputFile)
		if err != nil {
			return nil, uerr.WrapInputError(err, inputFile)
		}
		if skipped > 0 {
			log.Verbose("%s: %d malformed lines skipped", inputFile, skipped)
		}
		recs = fileRecs
	}

	if hexValue != "" {
		if _, err := records.ParseHex(hexValue); err != nil {
			return nil, uerr.WrapHexError(err, "--hex")
		}
		recs = append(recs, records.Record{Frame: -1, ValueHex: hexValue})
	}

	return recs, nil
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
