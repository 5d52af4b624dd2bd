package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	token, err := svc.GenerateToken("alice", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "user", claims.Role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewService([]byte("right-secret"), time.Hour)
	verifier := NewService([]byte("wrong-secret"), time.Hour)

	token, err := issuer.GenerateToken("alice", "user")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_TamperedClaims(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	token, err := svc.GenerateToken("alice", "user")
	require.NoError(t, err)

	// Swap the payload for one claiming the admin role, keeping the
	// original signature.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"sub":"alice","role":"admin"}`),
	)
	tampered := parts[0] + "." + payload + "." + parts[2]

	_, err = svc.ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Malformed(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	for _, token := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		_, err := svc.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestParseToken_Expired(t *testing.T) {
	svc := NewService([]byte("test-secret"), -time.Minute)

	token, err := svc.GenerateToken("alice", "user")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"alice","role":"admin"}`))
	unsigned := header + "." + payload + "."

	_, err := svc.ParseToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_MissingSubject(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	token, err := svc.GenerateToken("", "user")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	require.NotEqual(t, "pw1", hash)

	assert.True(t, CheckPassword(hash, "pw1"))
	assert.False(t, CheckPassword(hash, "pw2"))
	assert.False(t, CheckPassword("not-a-hash", "pw1"))
}
