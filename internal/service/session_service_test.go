package service

import (
	"context"
	"testing"
	"time"

	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/credential"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestExchange_PasswordIdentityGetsDefaultGrant(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	token, _, err := f.issuer.IssueExchange(credential.Subject{
		IdentityKey: "password:abc",
		Email:       "someone@gmail.com",
		Provider:    session.ProviderPassword,
		Role:        "user",
	})
	require.NoError(t, err)

	res, err := f.sessions.Exchange(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Profile.CreditBalance)
	assert.Equal(t, "someone", res.Profile.DisplayName)
}

func TestExchange_NaverWithoutProfileIsNotRegistered(t *testing.T) {
	f := newIdentityFixture(t)

	token, _, err := f.issuer.IssueExchange(credential.Subject{IdentityKey: "naver:999", Provider: session.ProviderNaver})
	require.NoError(t, err)

	_, err = f.sessions.Exchange(context.Background(), token)
	assert.True(t, apperror.Is(err, apperror.KindNotRegistered))
}

func TestExchange_UnknownProviderIsNotRegistered(t *testing.T) {
	f := newIdentityFixture(t)

	token, _, err := f.issuer.IssueExchange(credential.Subject{IdentityKey: "google:abc", Provider: "google.com"})
	require.NoError(t, err)

	_, err = f.sessions.Exchange(context.Background(), token)
	assert.True(t, apperror.Is(err, apperror.KindNotRegistered))
}

func TestSession_AuthenticateAndLogout(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	token, _, err := f.issuer.IssueSession(credential.Subject{IdentityKey: "naver:1", Provider: session.ProviderNaver, Role: "user"})
	require.NoError(t, err)

	sess, err := f.sessions.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "naver:1", sess.IdentityKey)
	assert.False(t, sess.IsAdmin())

	require.NoError(t, f.sessions.Logout(ctx, sess))

	_, err = f.sessions.Authenticate(token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}

func TestSession_ExchangeTokenIsNotASession(t *testing.T) {
	f := newIdentityFixture(t)

	token, _, err := f.issuer.IssueExchange(credential.Subject{IdentityKey: "naver:1"})
	require.NoError(t, err)

	_, err = f.sessions.Authenticate(token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	f := newFixture(t)
	auth := testAuth
	auth.AdminPasswordHash = string(hash)
	issuer := credential.NewIssuer(auth.JWTSecret, time.Minute, time.Hour)
	svc := NewSessionService(f.store, issuer, f.log, auth, testCredits)

	res, err := svc.AdminLogin(context.Background(), "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Role)

	sess, err := svc.Authenticate(res.Token)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())

	_, err = svc.AdminLogin(context.Background(), "admin@example.com", "wrong")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	_, err = svc.AdminLogin(context.Background(), "user@example.com", "admin123")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}
