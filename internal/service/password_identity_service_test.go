package service

import (
	"context"
	"strings"
	"testing"

	"blog-autowriter-be/internal/metrics"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/events"
	"blog-autowriter-be/pkg/sanitize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newPasswordService(f *identityFixture) IPasswordIdentityService {
	svc := NewPasswordIdentityService(f.factory, f.issuer, f.publisher, metrics.Nop{}, f.log, testAuth)
	svc.(*passwordIdentityService).hashCost = bcrypt.MinCost
	return svc
}

func (f *identityFixture) startSession(t *testing.T, credentialToken string) *session.Session {
	t.Helper()
	res, err := f.sessions.Exchange(context.Background(), credentialToken)
	require.NoError(t, err)
	sess, err := f.sessions.Authenticate(res.Token)
	require.NoError(t, err)
	return sess
}

func signupKim(t *testing.T, svc IPasswordIdentityService) string {
	t.Helper()
	res, err := svc.Signup(context.Background(), PasswordSignup{
		Email:    " Kim@Example.com ",
		Password: "correct-horse",
		Consents: allConsents,
	})
	require.NoError(t, err)
	return res.Credential
}

// Signup gives an unverified session and a default-grant profile. The
// emailed link verifies the address and unlocks the reward exactly once.
func TestPasswordSignup_VerifyUnlocksReward(t *testing.T) {
	f := newIdentityFixture(t)
	svc := newPasswordService(f)
	profiles := NewProfileService(f.store, f.ledger, sanitize.NewTextSanitizer(), testCredits.EmailVerifiedReward)
	ctx := context.Background()

	sess := f.startSession(t, signupKim(t, svc))
	assert.True(t, strings.HasPrefix(sess.IdentityKey, "password:"))
	assert.Equal(t, session.ProviderPassword, sess.Provider)
	assert.False(t, sess.EmailVerified)
	assert.Equal(t, testCredits.DefaultGrant, f.balance(t, sess.IdentityKey))

	_, err := profiles.ClaimEmailVerifiedReward(ctx, sess)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	ev := f.publisher.last(events.TypeEmailVerificationRequested)
	assert.Equal(t, "kim@example.com", ev.String("email"))
	assert.Equal(t, "kim", ev.String("display_name"))
	token := ev.String("token")
	require.NotEmpty(t, token)

	verified, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess.IdentityKey, verified.IdentityKey)

	sess = f.startSession(t, verified.Credential)
	assert.True(t, sess.EmailVerified)

	reward, err := profiles.ClaimEmailVerifiedReward(ctx, sess)
	require.NoError(t, err)
	assert.True(t, reward.Granted)
	assert.Equal(t, testCredits.DefaultGrant+testCredits.EmailVerifiedReward, reward.Balance)

	again, err := profiles.ClaimEmailVerifiedReward(ctx, sess)
	require.NoError(t, err)
	assert.False(t, again.Granted)

	err = svc.ResendVerification(ctx, sess)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestPasswordSignup_DuplicateEmailAndConsents(t *testing.T) {
	f := newIdentityFixture(t)
	svc := newPasswordService(f)
	ctx := context.Background()

	signupKim(t, svc)

	_, err := svc.Signup(ctx, PasswordSignup{Email: "kim@example.com", Password: "another-pass", Consents: allConsents})
	assert.True(t, apperror.Is(err, apperror.KindAlreadyExists))

	_, err = svc.Signup(ctx, PasswordSignup{Email: "lee@example.com", Password: "another-pass", Consents: Consents{Terms: true}})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestPasswordLogin(t *testing.T) {
	f := newIdentityFixture(t)
	svc := newPasswordService(f)
	ctx := context.Background()

	first := f.startSession(t, signupKim(t, svc))

	_, err := svc.Login(ctx, "kim@example.com", "wrong-password")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	_, err = svc.Login(ctx, "nobody@example.com", "correct-horse")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	res, err := svc.Login(ctx, "KIM@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, first.IdentityKey, res.IdentityKey)

	// the second exchange reuses the profile instead of granting again
	sess := f.startSession(t, res.Credential)
	assert.Equal(t, first.IdentityKey, sess.IdentityKey)
	assert.Equal(t, testCredits.DefaultGrant, f.balance(t, sess.IdentityKey))
}

func TestPasswordSignup_AdminRoleNeedsVerifiedEmail(t *testing.T) {
	f := newIdentityFixture(t)
	svc := newPasswordService(f)
	ctx := context.Background()

	res, err := svc.Signup(ctx, PasswordSignup{Email: "admin@example.com", Password: "correct-horse", Consents: allConsents})
	require.NoError(t, err)
	sess := f.startSession(t, res.Credential)
	assert.False(t, sess.IsAdmin())

	require.NoError(t, svc.ResendVerification(ctx, sess))
	verified, err := svc.VerifyEmail(ctx, f.publisher.last(events.TypeEmailVerificationRequested).String("token"))
	require.NoError(t, err)
	assert.True(t, f.startSession(t, verified.Credential).IsAdmin())
}

func TestVerifyEmail_RejectsForeignTokens(t *testing.T) {
	f := newIdentityFixture(t)
	svc := newPasswordService(f)
	ctx := context.Background()

	credentialToken := signupKim(t, svc)

	_, err := svc.VerifyEmail(ctx, credentialToken)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	_, err = svc.VerifyEmail(ctx, "garbage")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}
