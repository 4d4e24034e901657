// Package credential mints and verifies the two HS256 token kinds the API
// uses: single-use exchange credentials and bearer session tokens.
package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type Purpose string

const (
	PurposeExchange Purpose = "exchange"
	PurposeSession  Purpose = "session"
	PurposeVerify   Purpose = "verify_email"
)

// VerificationTTL bounds how long an emailed verification link works.
const VerificationTTL = 24 * time.Hour

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrWrongPurpose  = errors.New("token purpose mismatch")
	ErrTokenConsumed = errors.New("credential already used")
	ErrTokenRevoked  = errors.New("session has been revoked")
)

// Subject is who a token speaks for.
type Subject struct {
	IdentityKey   string
	Email         string
	Provider      string
	Role          string
	EmailVerified bool
}

type Claims struct {
	Subject
	Purpose   Purpose
	TokenID   string
	ExpiresAt time.Time
}

type Issuer struct {
	secret        []byte
	credentialTTL time.Duration
	sessionTTL    time.Duration

	consumed *cache.Cache // jti of exchanged credentials
	revoked  *cache.Cache // jti of signed-out sessions

	now func() time.Time
}

func NewIssuer(secret string, credentialTTL, sessionTTL time.Duration) *Issuer {
	return &Issuer{
		secret:        []byte(secret),
		credentialTTL: credentialTTL,
		sessionTTL:    sessionTTL,
		consumed:      cache.New(credentialTTL, 10*time.Minute),
		revoked:       cache.New(sessionTTL, 10*time.Minute),
		now:           time.Now,
	}
}

// IssueExchange mints the short-lived credential returned by login/signup.
func (i *Issuer) IssueExchange(sub Subject) (string, time.Time, error) {
	return i.issue(sub, PurposeExchange, i.credentialTTL)
}

func (i *Issuer) IssueSession(sub Subject) (string, time.Time, error) {
	return i.issue(sub, PurposeSession, i.sessionTTL)
}

func (i *Issuer) issue(sub Subject, purpose Purpose, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":            sub.IdentityKey,
		"email":          sub.Email,
		"provider":       sub.Provider,
		"role":           sub.Role,
		"email_verified": sub.EmailVerified,
		"purpose":        string(purpose),
		"jti":            uuid.NewString(),
		"iat":            now.Unix(),
		"exp":            exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, exp, nil
}

func (i *Issuer) parse(tokenStr string, want Purpose) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	claims.IdentityKey, _ = mc["sub"].(string)
	claims.Email, _ = mc["email"].(string)
	claims.Provider, _ = mc["provider"].(string)
	claims.Role, _ = mc["role"].(string)
	claims.EmailVerified, _ = mc["email_verified"].(bool)
	claims.TokenID, _ = mc["jti"].(string)
	purpose, _ := mc["purpose"].(string)
	claims.Purpose = Purpose(purpose)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	if claims.IdentityKey == "" || claims.TokenID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != want {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// Consume verifies an exchange credential and marks it used. A second call
// with the same token fails with ErrTokenConsumed.
func (i *Issuer) Consume(tokenStr string) (*Claims, error) {
	claims, err := i.parse(tokenStr, PurposeExchange)
	if err != nil {
		return nil, err
	}
	if err := i.consumed.Add(claims.TokenID, struct{}{}, i.remaining(claims)); err != nil {
		return nil, ErrTokenConsumed
	}
	return claims, nil
}

// IssueVerification mints the link token mailed after password signup.
func (i *Issuer) IssueVerification(sub Subject) (string, time.Time, error) {
	return i.issue(sub, PurposeVerify, VerificationTTL)
}

// ParseVerification checks an email verification token. It may be used more
// than once; verifying twice is harmless.
func (i *Issuer) ParseVerification(tokenStr string) (*Claims, error) {
	return i.parse(tokenStr, PurposeVerify)
}

// Verify checks a session token and that it has not been revoked.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims, err := i.parse(tokenStr, PurposeSession)
	if err != nil {
		return nil, err
	}
	if _, revoked := i.revoked.Get(claims.TokenID); revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blocks a session token until it would have expired anyway.
func (i *Issuer) Revoke(tokenID string, expiresAt time.Time) {
	ttl := expiresAt.Sub(i.now())
	if ttl <= 0 {
		return
	}
	i.revoked.Set(tokenID, struct{}{}, ttl)
}

func (i *Issuer) remaining(c *Claims) time.Duration {
	ttl := c.ExpiresAt.Sub(i.now())
	if ttl <= 0 {
		return time.Second
	}
	return ttl
}
