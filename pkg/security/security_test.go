package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastArgon() *ArgonHash {
	a := New()
	a.Memory = 1024
	a.Iterations = 1
	return a
}

func TestArgonHashRoundTrip(t *testing.T) {
	a := fastArgon()

	hash, err := a.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := a.Verify("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Verify("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonHashSalted(t *testing.T) {
	a := fastArgon()

	h1, err := a.Hash("same password")
	require.NoError(t, err)
	h2, err := a.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgonVerifyUsesStoredParams(t *testing.T) {
	hash, err := fastArgon().Hash("password123")
	require.NoError(t, err)

	// A hasher with different defaults still verifies old hashes
	ok, err := New().Verify("password123", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonVerifyMalformed(t *testing.T) {
	a := fastArgon()

	for _, h := range []string{"", "plaintext", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "$argon2id$v=19$m=x$a$b"} {
		_, err := a.Verify("pw", h)
		assert.ErrorIs(t, err, ErrInvalidHash, "hash %q", h)
	}
}

func TestSessionSigner(t *testing.T) {
	s := NewSessionSigner("secret")

	token, err := s.Sign("abc", time.Now().Add(time.Hour))
	require.NoError(t, err)

	sid, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)
}

func TestSessionSignerRejects(t *testing.T) {
	s := NewSessionSigner("secret")

	expired, err := s.Sign("abc", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	other, err := NewSessionSigner("other").Sign("abc", time.Now().Add(time.Hour))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"expired":      expired,
		"wrong secret": other,
	} {
		_, err := s.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
