package search

// Ciphertext candidate search: enumerate (segment, key, IV) combinations over
// FF09 blobs, decrypt each under AES-128-CBC, and score the result for
// TLV-likeness. This does not search a keyspace; it evaluates a small explicit
// candidate set and ranks what comes out.

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"runtime"
	"sync"

	"github.com/tturner/attscope/internal/envelope"
	"github.com/tturner/attscope/internal/logging"
	"github.com/tturner/attscope/internal/records"
	"github.com/tturner/attscope/internal/tlv"
)

// ErrCipherAlignment marks a combination whose key/IV size or ciphertext
// length rules out CBC decryption. Such combinations are skipped silently.
var ErrCipherAlignment = errors.New("cipher alignment")

const previewBytes = 32

// fixed tail lengths tried from the end of each blob (MIC/tag prefixes often
// leave the ciphertext flush with the end).
var tailLengths = []int{16, 32, 48, 64, 80, 96, 112, 128}

// Options are the validated parameters of one search run.
type Options struct {
	K0, K1    []byte // 16-byte key halves of the shared secret
	Peer      []byte // optional 6-byte peer hardware address, IV heuristics only
	MaxOffset int    // max ciphertext start offset inside a blob
	Workers   int    // 0 = one worker per CPU
}

// Candidate is one tried (offset, key, IV) combination that produced a
// plausible plaintext. Immutable once produced; Rank only reads it.
type Candidate struct {
	Score      float64
	Frame      int
	Opcode     string
	ATTHandle  string
	Group      byte
	Cmd        uint16
	BaseCmd    uint16
	CtOff      int
	CtLen      int
	KeyName    string
	IVName     string
	Preview    []byte // first 32 decrypted bytes
	TLVSummary string

	seq int // discovery order in the sequential traversal, for tie-breaks
}

type namedBytes struct {
	name string
	b    []byte
}

type segment struct {
	off int
	ct  []byte
}

// job is one (record, segment, key, IV) evaluation. Evaluations are pure
// functions of the job, so they parallelize freely; seq preserves the
// record -> segment -> key -> IV traversal order for deterministic ranking.
type job struct {
	seq int
	rec records.Record
	env envelope.Envelope
	seg segment
	key namedBytes
	iv  namedBytes
}

// Run evaluates every candidate combination across the record stream and
// returns all combinations that scored above zero, in no particular order.
// Rank the result before reporting.
func Run(recs []records.Record, opts Options, log *logging.Logger) []Candidate {
	jobs := enumerate(recs, opts, log)
	if len(jobs) == 0 {
		return nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan job)
	var mu sync.Mutex
	var out []Candidate
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if c, ok := evaluate(j); ok {
					mu.Lock()
					out = append(out, c)
					mu.Unlock()
				}
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	log.Verbose("search: %d combinations tried, %d plausible", len(jobs), len(out))
	return out
}

// enumerate walks records in order and produces the full job list. Records
// that are empty, undecodable, or not FF09-framed are skipped here, so the
// workers only ever see analyzable blobs.
func enumerate(recs []records.Record, opts Options, log *logging.Logger) []job {
	var jobs []job
	seq := 0
	for _, rec := range recs {
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
		if len(env.Blob) == 0 {
			continue
		}
		log.Verbose("frame %d: group=0x%02x cmd=0x%04x declared_len=%d blob_len=%d",
			rec.Frame, env.Group, env.Cmd, env.DeclaredLen, len(env.Blob))

		keys := keyCandidates(opts.K0, opts.K1)
		ivs := ivCandidates(env.Blob, opts.Peer, opts.K0, opts.K1)
		for _, seg := range segments(env.Blob, opts.MaxOffset) {
			for _, key := range keys {
				for _, iv := range ivs {
					jobs = append(jobs, job{
						seq: seq, rec: rec, env: env,
						seg: seg, key: key, iv: iv,
					})
					seq++
				}
			}
		}
	}
	return jobs
}

// evaluate decrypts one combination and scores the plaintext. Alignment
// failures and zero scores drop the combination without error.
func evaluate(j job) (Candidate, bool) {
	pt, err := decryptCBC(j.seg.ct, j.key.b, j.iv.b)
	if err != nil {
		return Candidate{}, false
	}
	score, summary := tlv.Score(pt)
	if score <= 0 {
		return Candidate{}, false
	}
	preview := pt
	if len(preview) > previewBytes {
		preview = preview[:previewBytes]
	}
	return Candidate{
		Score:      score,
		Frame:      j.rec.Frame,
		Opcode:     j.rec.Opcode,
		ATTHandle:  j.rec.ATTHandle,
		Group:      j.env.Group,
		Cmd:        j.env.Cmd,
		BaseCmd:    j.env.BaseCmd,
		CtOff:      j.seg.off,
		CtLen:      len(j.seg.ct),
		KeyName:    j.key.name,
		IVName:     j.iv.name,
		Preview:    preview,
		TLVSummary: summary,
		seq:        j.seq,
	}, true
}

// segments yields ciphertext candidates from a blob: every start offset up to
// the bound whose tail is block-aligned, plus fixed tail lengths taken from
// the end. The two walks can emit the same segment twice; duplicates are
// preserved so ranking output matches the sequential contract.
func segments(blob []byte, maxOffset int) []segment {
	maxOffset = min(maxOffset, len(blob))
	var segs []segment
	for off := 0; off <= maxOffset; off++ {
		ct := blob[off:]
		if len(ct) >= aes.BlockSize && len(ct)%aes.BlockSize == 0 {
			segs = append(segs, segment{off: off, ct: ct})
		}
	}
	for _, tail := range tailLengths {
		if tail <= len(blob) {
			segs = append(segs, segment{off: len(blob) - tail, ct: blob[len(blob)-tail:]})
		}
	}
	return segs
}

func keyCandidates(k0, k1 []byte) []namedBytes {
	return []namedBytes{{"key_k0", k0}, {"key_k1", k1}}
}

// ivCandidates builds the fixed IV candidate list for one blob. The names are
// part of the report contract.
func ivCandidates(blob, peer, k0, k1 []byte) []namedBytes {
	out := []namedBytes{
		{"iv_zero", make([]byte, aes.BlockSize)},
		{"iv_k0", k0},
		{"iv_k1", k1},
	}
	if len(peer) == 6 {
		pad := make([]byte, aes.BlockSize)
		copy(pad, peer)
		rev := make([]byte, aes.BlockSize)
		for i, b := range peer {
			rev[len(peer)-1-i] = b
		}
		out = append(out,
			namedBytes{"iv_peer_mac_pad0", pad},
			namedBytes{"iv_peer_mac_rev_pad0", rev},
		)
	}
	if len(blob) >= aes.BlockSize {
		out = append(out, namedBytes{"iv_blob0_16", blob[:aes.BlockSize]})
	}
	if len(blob) >= 4 {
		rep := make([]byte, 0, aes.BlockSize)
		for len(rep) < aes.BlockSize {
			rep = append(rep, blob[:4]...)
		}
		out = append(out, namedBytes{"iv_blob0_4_x4", rep[:aes.BlockSize]})
	}
	return out
}

// decryptCBC runs AES-128-CBC with no padding removal.
func decryptCBC(ct, key, iv []byte) ([]byte, error) {
	if len(key) != 16 || len(iv) != aes.BlockSize {
		return nil, ErrCipherAlignment
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return nil, ErrCipherAlignment
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)
	return pt, nil
}
