package tlv

// TLV-likeness scoring for decrypted plaintext candidates. The weights and
// thresholds here are part of the ranking contract: changing any of them
// changes which candidates surface and in what order.

import (
	"fmt"
	"strings"
)

// knownGoodTypes are device TLV types observed carrying real data
// (serial number, firmware version, and friends).
var knownGoodTypes = map[byte]bool{
	0xA1: true, 0xA2: true, 0xA3: true, 0xA4: true, 0xA5: true,
	0xA6: true, 0xA7: true, 0xA8: true, 0xA9: true, 0xAE: true,
}

const (
	coverageWeight   = 10.0
	typeRangeWeight  = 2.0
	knownGoodWeight  = 4.0
	asciiWeight      = 2.0
	errorPenalty     = 10.0
	asciiRatio       = 0.85
	asciiMinValueLen = 6
	summaryItems     = 8
)

// Score rates how plausibly pt is real TLV plaintext, returning the score and
// a short structural summary. A leading 0x00 byte is stripped before scoring
// (some firmware builds prepend one); the caller still sees the unstripped
// bytes in its decrypted preview. A score of exactly 0 means implausible.
func Score(pt []byte) (float64, string) {
	if len(pt) > 0 && pt[0] == 0x00 {
		pt = pt[1:]
	}

	consumed, errCount, items := Parse(pt)
	if len(items) == 0 {
		return 0, "no_tlvs"
	}

	rangeTypes := 0
	goodTypes := 0
	for _, it := range items {
		if it.Type >= 0xA0 {
			rangeTypes++
		}
		if knownGoodTypes[it.Type] {
			goodTypes++
		}
	}

	// A single TLV of an unrecognized type is almost always a random
	// false-positive.
	if len(items) == 1 && goodTypes == 0 {
		return 0, "single_tlv_unrecognized"
	}
	if len(items) < 2 && goodTypes == 0 {
		return 0, "too_few_tlvs"
	}

	// Values that look like ASCII (serial/firmware strings) are a strong signal.
	asciiish := 0
	for _, it := range items {
		if len(it.Value) < asciiMinValueLen {
			continue
		}
		printable := 0
		for _, b := range it.Value {
			if b >= 32 && b <= 126 {
				printable++
			}
		}
		if float64(printable)/float64(len(it.Value)) >= asciiRatio {
			asciiish++
		}
	}

	coverage := float64(consumed) / float64(max(1, len(pt)))
	score := coverageWeight * coverage
	score += typeRangeWeight * float64(rangeTypes)
	score += knownGoodWeight * float64(goodTypes)
	score += asciiWeight * float64(asciiish)
	score -= errorPenalty * float64(errCount)

	return score, Summary(items)
}

// Summary renders up to 8 type(length) pairs for report lines.
func Summary(items []Item) string {
	parts := make([]string, 0, summaryItems)
	for i, it := range items {
		if i == summaryItems {
			break
		}
		parts = append(parts, fmt.Sprintf("%02x(%d)", it.Type, len(it.Value)))
	}
	s := strings.Join(parts, " ")
	if len(items) > summaryItems {
		s += fmt.Sprintf(" ... (+%d)", len(items)-summaryItems)
	}
	return s
}
