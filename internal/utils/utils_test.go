package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Matches("s3cret-pass", hash))
	assert.False(t, h.Matches("s3cret-pasS", hash))
	assert.False(t, h.Matches("s3cret-pass", "not-a-hash"))

	_, err = NewPasswordHasher(64)
	assert.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	clock := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m, err := NewTokenManager("test-secret", time.Hour, func() time.Time { return clock })
	require.NoError(t, err)

	token, err := m.IssueSession("abc123", "doctor")
	require.NoError(t, err)

	claims, err := m.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, "doctor", claims.Role)

	clock = clock.Add(2 * time.Hour)
	_, err = m.ParseSession(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	a, err := NewTokenManager("secret-a", time.Hour, nil)
	require.NoError(t, err)
	b, err := NewTokenManager("secret-b", time.Hour, nil)
	require.NoError(t, err)

	token, err := a.IssueSession("abc123", "paciente")
	require.NoError(t, err)

	_, err = b.ParseSession(token)
	assert.Error(t, err)
}

func TestVerificationTokenCarriesCode(t *testing.T) {
	clock := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m, err := NewTokenManager("test-secret", time.Hour, func() time.Time { return clock })
	require.NoError(t, err)

	deadline := clock.Add(2 * time.Hour)
	token, err := m.IssueVerification("ana@example.com", "a1b2c3", deadline, 2*time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseVerification(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "a1b2c3", claims.VerificationCode)
	assert.Equal(t, deadline.UnixMilli(), claims.CodeExpiresAt)

	_, err = m.ParseSession(token)
	assert.Error(t, err, "verification token has no session identity")
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour, nil)
	assert.Error(t, err)
}

func TestNewVerificationCode(t *testing.T) {
	hexCode := regexp.MustCompile(`^[0-9a-f]{6}$`)
	for i := 0; i < 20; i++ {
		code, err := NewVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, hexCode, code)
	}
}
