package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast; the encoding carries them anyway
var testParams = Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHashVerify_RoundTrip(t *testing.T) {
	h := NewArgon2idHasher(testParams)

	for _, pw := range []string{"secret", "pässwörd", "with spaces inside", strings.Repeat("x", 200)} {
		encoded, err := h.Hash(pw)
		require.NoError(t, err)

		ok, err := h.Verify(pw, encoded)
		require.NoError(t, err)
		assert.True(t, ok, "password %q must verify", pw)

		ok, err = h.Verify(pw+"x", encoded)
		require.NoError(t, err)
		assert.False(t, ok, "password %q+x must not verify", pw)
	}
}

func TestHash_IsSaltedAndNotPlaintext(t *testing.T) {
	h := NewArgon2idHasher(testParams)

	a, err := h.Hash("secret")
	require.NoError(t, err)
	b, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two hashes of one password must differ by salt")
	assert.NotContains(t, a, "secret")
	assert.True(t, strings.HasPrefix(a, "$argon2id$v=19$m=8192,t=1,p=1$"), a)
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := NewArgon2idHasher(testParams).Hash("")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerify_UsesParamsFromEncoding(t *testing.T) {
	encoded, err := NewArgon2idHasher(testParams).Hash("secret")
	require.NoError(t, err)

	// a hasher configured differently still verifies older verifiers
	ok, err := NewArgon2idHasher(Params{Time: 2, Memory: 16 * 1024, Threads: 2, SaltLen: 8, KeyLen: 16}).Verify("secret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	h := NewArgon2idHasher(testParams)

	tests := []string{
		"",
		"secret",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
	}
	for _, encoded := range tests {
		ok, err := h.Verify("secret", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, "encoded %q", encoded)
		assert.False(t, ok)
	}
}
