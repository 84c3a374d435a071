package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfirmationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateConfirmationCode()
		require.NoError(t, err)
		assert.Len(t, code, ConfirmationCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q", r)
		}
		assert.False(t, seen[code], "codes should not repeat")
		seen[code] = true
	}
}

func TestHashCode_VerifyRoundTrip(t *testing.T) {
	code, err := GenerateConfirmationCode()
	require.NoError(t, err)

	hash, err := HashCode(code)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, code)

	match, err := VerifyCode(code, hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyCode(code+"X", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestHashCode_UniqueHashes(t *testing.T) {
	hash1, err := HashCode("SAMECODE")
	require.NoError(t, err)
	hash2, err := HashCode("SAMECODE")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "salts must differ so stored hashes stay unique")
}

func TestVerifyCode_InvalidHash(t *testing.T) {
	invalid := []string{
		"",
		"plain-text",
		"$argon2id$v=19$m=19456,t=2,p=1$salt",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=abc,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	}

	for _, h := range invalid {
		t.Run(h, func(t *testing.T) {
			match, err := VerifyCode("ANYCODE", h)
			assert.ErrorIs(t, err, ErrInvalidHash)
			assert.False(t, match)
		})
	}
}

func TestVerifyCode_IncompatibleVersion(t *testing.T) {
	hash, err := HashCode("CODE")
	require.NoError(t, err)

	old := strings.Replace(hash, "v=19", "v=16", 1)

	match, err := VerifyCode("CODE", old)
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
	assert.False(t, match)
}
