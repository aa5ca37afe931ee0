package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestHashPassword_Format(t *testing.T) {
	h, err := HashPassword("Abcdef12", testParams)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"), h)
	assert.Len(t, strings.Split(h, "$"), 6)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("same", testParams)
	require.NoError(t, err)
	h2, err := HashPassword("same", testParams)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "identical passwords must hash differently")
}

func TestVerifyPassword(t *testing.T) {
	h, err := HashPassword("Abcdef12", testParams)
	require.NoError(t, err)

	ok, err := VerifyPassword("Abcdef12", h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("abcdef12", h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_UsesStoredParams(t *testing.T) {
	h, err := HashPassword("pw", Params{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)

	ok, err := VerifyPassword("pw", h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	for _, bad := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!$aGFzaA",
	} {
		_, err := VerifyPassword("pw", bad)
		require.ErrorIs(t, err, ErrInvalidHash, bad)
	}
}

func TestDigest(t *testing.T) {
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Digest("abc"))
	assert.NotEqual(t, Digest("a"), Digest("b"))
}
