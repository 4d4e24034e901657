package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubject() Subject {
	return Subject{
		IdentityKey:   "naver:abc123",
		Email:         "user@naver.com",
		Provider:      "naver.com",
		Role:          "user",
		EmailVerified: true,
	}
}

func TestConsume_SingleUse(t *testing.T) {
	issuer := NewIssuer("secret", 5*time.Minute, time.Hour)

	token, exp, err := issuer.IssueExchange(testSubject())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 2*time.Second)

	claims, err := issuer.Consume(token)
	require.NoError(t, err)
	assert.Equal(t, "naver:abc123", claims.IdentityKey)
	assert.Equal(t, "naver.com", claims.Provider)
	assert.True(t, claims.EmailVerified)

	_, err = issuer.Consume(token)
	assert.ErrorIs(t, err, ErrTokenConsumed)
}

func TestPurposeIsEnforced(t *testing.T) {
	issuer := NewIssuer("secret", 5*time.Minute, time.Hour)

	session, _, err := issuer.IssueSession(testSubject())
	require.NoError(t, err)
	exchange, _, err := issuer.IssueExchange(testSubject())
	require.NoError(t, err)

	_, err = issuer.Consume(session)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	_, err = issuer.Verify(exchange)
	assert.ErrorIs(t, err, ErrWrongPurpose)
}

func TestVerify_RejectsForeignSignatureAndExpiry(t *testing.T) {
	issuer := NewIssuer("secret", 5*time.Minute, time.Hour)
	other := NewIssuer("other-secret", 5*time.Minute, time.Hour)

	foreign, _, err := other.IssueSession(testSubject())
	require.NoError(t, err)
	_, err = issuer.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, _, err := issuer.IssueSession(testSubject())
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevoke(t *testing.T) {
	issuer := NewIssuer("secret", 5*time.Minute, time.Hour)

	token, _, err := issuer.IssueSession(testSubject())
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)

	issuer.Revoke(claims.TokenID, claims.ExpiresAt)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestVerification_PurposeAndReuse(t *testing.T) {
	issuer := NewIssuer("secret", 5*time.Minute, time.Hour)

	token, exp, err := issuer.IssueVerification(testSubject())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(VerificationTTL), exp, 2*time.Second)

	for i := 0; i < 2; i++ {
		claims, err := issuer.ParseVerification(token)
		require.NoError(t, err)
		assert.Equal(t, "naver:abc123", claims.IdentityKey)
	}

	_, err = issuer.Consume(token)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	exchange, _, err := issuer.IssueExchange(testSubject())
	require.NoError(t, err)
	_, err = issuer.ParseVerification(exchange)
	assert.ErrorIs(t, err, ErrWrongPurpose)
}
