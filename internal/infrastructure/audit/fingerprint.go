package audit

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"lukechampine.com/blake3"
)

type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	BLAKE3 Algorithm = "blake3"
)

// SaltField is the payload key holding the uniqueness salt.
const SaltField = "salt"

var ErrFingerprintMismatch = errors.New("fingerprint mismatch")

func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case SHA256, "":
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("%w: unsupported fingerprint algorithm %q", domain.ErrEncoding, s)
	}
}

// Seal is a canonical payload together with its fingerprint.
type Seal struct {
	Payload []byte
	Hash    string
}

type Fingerprinter struct {
	alg Algorithm
}

func NewFingerprinter(alg Algorithm) *Fingerprinter {
	if alg == "" {
		alg = SHA256
	}
	return &Fingerprinter{alg: alg}
}

func (f *Fingerprinter) Algorithm() Algorithm { return f.alg }

// Canonicalize renders fields as JSON with sorted keys and no HTML escaping.
func Canonicalize(fields map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncoding, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Seal adds the salt to a copy of fields, canonicalizes the result and
// fingerprints it. fields is not modified.
func (f *Fingerprinter) Seal(fields map[string]any, salt time.Time) (Seal, error) {
	doc := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc[SaltField] = salt.UTC().Format(time.RFC3339Nano)

	payload, err := Canonicalize(doc)
	if err != nil {
		return Seal{}, err
	}
	return Seal{Payload: payload, Hash: digest(f.alg, payload)}, nil
}

// Verify recomputes the fingerprint of payload using the algorithm named by
// the hash prefix.
func Verify(payload []byte, hash string) error {
	tag, _, ok := strings.Cut(hash, ":")
	if !ok {
		return fmt.Errorf("%w: fingerprint %q has no algorithm prefix", domain.ErrEncoding, hash)
	}
	alg, err := ParseAlgorithm(tag)
	if err != nil || tag == "" {
		return fmt.Errorf("%w: unknown fingerprint prefix %q", domain.ErrEncoding, tag)
	}
	want := digest(alg, payload)
	if subtle.ConstantTimeCompare([]byte(want), []byte(hash)) != 1 {
		return ErrFingerprintMismatch
	}
	return nil
}

func digest(alg Algorithm, payload []byte) string {
	var sum [32]byte
	switch alg {
	case BLAKE3:
		sum = blake3.Sum256(payload)
	default:
		alg = SHA256
		sum = sha256.Sum256(payload)
	}
	return string(alg) + ":" + hex.EncodeToString(sum[:])
}
