package audit

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/agro-escrow-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var saltTime = time.Date(2025, 3, 1, 10, 30, 0, 123456789, time.UTC)

func TestCanonicalizeSortsKeys(t *testing.T) {
	payload, err := Canonicalize(map[string]any{"b": 2, "a": "<x>", "c": map[string]any{"z": true, "y": nil}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<x>","b":2,"c":{"y":null,"z":true}}`, string(payload))
}

func TestCanonicalizeRejectsUnsupportedValues(t *testing.T) {
	_, err := Canonicalize(map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, domain.ErrEncoding)

	_, err = Canonicalize(map[string]any{"nan": math.NaN()})
	assert.ErrorIs(t, err, domain.ErrEncoding)
}

func TestSealIsDeterministic(t *testing.T) {
	fp := NewFingerprinter(SHA256)
	fields := map[string]any{"escrow_id": "e1", "amount": int64(10100)}

	first, err := fp.Seal(fields, saltTime)
	require.NoError(t, err)
	second, err := fp.Seal(fields, saltTime)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first.Hash, "sha256:"))
	assert.Len(t, strings.TrimPrefix(first.Hash, "sha256:"), 64)
	assert.Contains(t, string(first.Payload), `"salt":"2025-03-01T10:30:00.123456789Z"`)
	assert.NotContains(t, fields, SaltField)
}

func TestSealSaltChangesHash(t *testing.T) {
	fp := NewFingerprinter(SHA256)
	fields := map[string]any{"escrow_id": "e1"}

	a, err := fp.Seal(fields, saltTime)
	require.NoError(t, err)
	b, err := fp.Seal(fields, saltTime.Add(time.Nanosecond))
	require.NoError(t, err)

	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestVerify(t *testing.T) {
	for _, alg := range []Algorithm{SHA256, BLAKE3} {
		t.Run(string(alg), func(t *testing.T) {
			seal, err := NewFingerprinter(alg).Seal(map[string]any{"k": "v"}, saltTime)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(seal.Hash, string(alg)+":"))

			assert.NoError(t, Verify(seal.Payload, seal.Hash))

			tampered := []byte(strings.Replace(string(seal.Payload), `"v"`, `"w"`, 1))
			assert.ErrorIs(t, Verify(tampered, seal.Hash), ErrFingerprintMismatch)
		})
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	assert.ErrorIs(t, Verify([]byte(`{}`), "deadbeef"), domain.ErrEncoding)
	assert.ErrorIs(t, Verify([]byte(`{}`), "md5:deadbeef"), domain.ErrEncoding)
	assert.ErrorIs(t, Verify([]byte(`{}`), ":deadbeef"), domain.ErrEncoding)
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, alg)

	alg, err = ParseAlgorithm(" BLAKE3 ")
	require.NoError(t, err)
	assert.Equal(t, BLAKE3, alg)

	_, err = ParseAlgorithm("crc32")
	assert.ErrorIs(t, err, domain.ErrEncoding)
}
