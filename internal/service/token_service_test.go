package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService_Validation(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService("secret", 0)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokenService_IssueRequiresUserID(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = svc.Issue(0)
	assert.Error(t, err)
}

func TestTokenService_Expired(t *testing.T) {
	svc, err := NewTokenService("test-secret", -time.Minute)
	require.NoError(t, err)

	token, err := svc.Issue(7)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer, err := NewTokenService("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Tampered(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(7)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// flip one character in turn in the payload and in the signature
	for name, idx := range map[string]int{"payload": 1, "signature": 2} {
		t.Run(name, func(t *testing.T) {
			section := []byte(parts[idx])
			if section[0] == 'A' {
				section[0] = 'B'
			} else {
				section[0] = 'A'
			}
			mutated := make([]string, 3)
			copy(mutated, parts)
			mutated[idx] = string(section)

			userID, err := svc.Verify(strings.Join(mutated, "."))
			assert.Error(t, err)
			assert.Zero(t, userID)
		})
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := svc.Verify(input)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", input)
	}
}
