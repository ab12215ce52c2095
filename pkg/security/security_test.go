package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgonRoundTrip(t *testing.T) {
	a := &ArgonHash{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	hash, err := a.GenerateFromPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := a.VerifyPasswd("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = a.VerifyPasswd("x", "not-a-hash")
	assert.Error(t, err)
}

func TestNeedsRehash(t *testing.T) {
	old := &ArgonHash{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	cur := &ArgonHash{Memory: 8 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	hash, err := old.GenerateFromPassword("pw")
	require.NoError(t, err)

	assert.False(t, old.NeedsRehash(hash))
	assert.True(t, cur.NeedsRehash(hash))
	assert.True(t, cur.NeedsRehash("garbage"))

	// Old hashes still verify after the parameters changed
	ok, err := cur.VerifyPasswd("pw", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	tok, err := IssueToken(secret, "user-1", "Editor", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Editor", claims.Role)

	_, err = ParseToken([]byte("other"), tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := []byte("test-secret")

	tok, err := IssueToken(secret, "user-1", "Author", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(secret, tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestMakeResetCode(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute)

	code, rec, err := MakeResetCode(&VerificationTokenOpts{UserID: "u1", Purpose: "password_reset", ExpiresAt: &exp})
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.NotEqual(t, code, rec.Token)
	assert.Equal(t, HashResetCode("u1", code), rec.Token)
	assert.NotEqual(t, HashResetCode("u2", code), rec.Token)
}

func TestMakeVerificationTokenValidates(t *testing.T) {
	_, err := MakeVerificationToken(nil)
	assert.Error(t, err)

	_, err = MakeVerificationToken(&VerificationTokenOpts{UserID: "u1", Purpose: "email_verify"})
	assert.Error(t, err)

	exp := time.Now().Add(time.Minute)
	tok, err := MakeVerificationToken(&VerificationTokenOpts{UserID: "u1", Purpose: "email_verify", ExpiresAt: &exp})
	require.NoError(t, err)
	assert.Len(t, tok.Token, 64)
	assert.False(t, tok.Used)
}
