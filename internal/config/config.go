package config

// Analysis configuration for attscope. One Search value is constructed per
// invocation and passed down; there is no package-level mutable state.

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSecretHex is the built-in shared secret (the A2 static extracted
// from the vendor app). The first 16 bytes are key-half-0, the next 16 are
// key-half-1.
const DefaultSecretHex = "32633337376466613039636462373932343838396534323932613337663631633863356564353264"

const (
	DefaultTopN      = 15
	DefaultMaxOffset = 32
)

// Search holds the parameters of one candidate-search invocation.
type Search struct {
	SecretHex string `yaml:"secret_hex,omitempty"` // shared secret, >= 32 bytes of hex
	Peer      string `yaml:"peer,omitempty"`       // peer BD_ADDR, six colon-separated hex octets
	TopN      int    `yaml:"top,omitempty"`        // ranked candidates to report
	MaxOffset int    `yaml:"max_offset,omitempty"` // max ciphertext start offset inside a blob
	Workers   int    `yaml:"workers,omitempty"`    // 0 = one worker per CPU
}

// DefaultSearch returns the built-in defaults.
func DefaultSearch() Search {
	return Search{
		SecretHex: DefaultSecretHex,
		TopN:      DefaultTopN,
		MaxOffset: DefaultMaxOffset,
	}
}

// LoadFile overlays a YAML config file onto the defaults. Fields absent from
// the file keep their default values.
func LoadFile(path string) (Search, error) {
	cfg := DefaultSearch()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.SecretHex == "" {
		cfg.SecretHex = DefaultSecretHex
	}
	if cfg.TopN == 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.MaxOffset == 0 {
		cfg.MaxOffset = DefaultMaxOffset
	}
	return cfg, nil
}

// Validate checks the configuration. Any failure here is fatal to the run.
func (c Search) Validate() error {
	if _, _, err := c.KeyHalves(); err != nil {
		return err
	}
	if c.Peer != "" {
		if _, err := ParsePeer(c.Peer); err != nil {
			return err
		}
	}
	if c.TopN < 1 {
		return fmt.Errorf("top must be >= 1, got %d", c.TopN)
	}
	if c.MaxOffset < 0 {
		return fmt.Errorf("max-offset must be >= 0, got %d", c.MaxOffset)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// KeyHalves splits the shared secret into the two 16-byte key candidates.
func (c Search) KeyHalves() (k0, k1 []byte, err error) {
	secret, err := hex.DecodeString(strings.TrimSpace(c.SecretHex))
	if err != nil {
		return nil, nil, fmt.Errorf("secret is not valid hex: %w", err)
	}
	if len(secret) < 32 {
		return nil, nil, fmt.Errorf("secret must be >= 32 bytes of hex, got %d", len(secret))
	}
	return secret[:16], secret[16:32], nil
}

// PeerBytes returns the peer hardware address as 6 bytes, or nil if no peer
// was configured.
func (c Search) PeerBytes() ([]byte, error) {
	if c.Peer == "" {
		return nil, nil
	}
	return ParsePeer(c.Peer)
}

// ParsePeer parses a peer hardware address of the form aa:bb:cc:dd:ee:ff.
func ParsePeer(s string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 6 {
		return nil, fmt.Errorf("peer address must be six colon-separated hex octets, got %q", s)
	}
	addr := make([]byte, 6)
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("peer address octet %q: %w", p, err)
		}
		addr[i] = byte(v)
	}
	return addr, nil
}
