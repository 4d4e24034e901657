package service

import (
	"context"
	"errors"
	"strings"

	"blog-autowriter-be/internal/config"
	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/credential"

	"golang.org/x/crypto/bcrypt"
)

type ISessionService interface {
	// Exchange trades a one-time credential for a session token.
	Exchange(ctx context.Context, credentialToken string) (*dto.SessionResponse, error)
	AdminLogin(ctx context.Context, email, password string) (*dto.SessionResponse, error)
	Logout(ctx context.Context, sess *session.Session) error
	Authenticate(token string) (*session.Session, error)
}

type sessionService struct {
	store   IProfileStore
	issuer  *credential.Issuer
	logger  logger.ILogger
	auth    config.AuthConfig
	credits config.CreditsConfig
}

func NewSessionService(store IProfileStore, issuer *credential.Issuer, logger logger.ILogger, auth config.AuthConfig, credits config.CreditsConfig) ISessionService {
	return &sessionService{
		store:   store,
		issuer:  issuer,
		logger:  logger,
		auth:    auth,
		credits: credits,
	}
}

func (s *sessionService) Exchange(ctx context.Context, credentialToken string) (*dto.SessionResponse, error) {
	claims, err := s.issuer.Consume(credentialToken)
	if err != nil {
		s.logger.Warn("SESSION", "Credential exchange rejected", map[string]interface{}{"error": err.Error()})
		if errors.Is(err, credential.ErrTokenConsumed) {
			return nil, apperror.Unauthenticated("이미 사용된 인증 정보입니다.")
		}
		return nil, apperror.Unauthenticated("인증 정보가 유효하지 않습니다.")
	}

	profile, err := s.ensureProfile(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.issuer.IssueSession(claims.Subject)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to issue session", err)
	}

	s.logger.Info("SESSION", "Session started", map[string]interface{}{
		"identity_key": claims.IdentityKey,
		"provider":     claims.Provider,
	})
	return &dto.SessionResponse{
		Token:     token,
		ExpiresAt: exp,
		Role:      claims.Role,
		Profile:   ToProfileResponse(profile),
	}, nil
}

// ensureProfile creates the profile with the default grant on the first
// exchange of a password identity. Naver profiles only come from signup.
func (s *sessionService) ensureProfile(ctx context.Context, sub credential.Subject) (*entity.Profile, error) {
	profile, err := s.store.Get(ctx, sub.IdentityKey)
	if err == nil {
		return profile, nil
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}
	if sub.Provider != session.ProviderPassword {
		return nil, apperror.NotRegistered()
	}

	profile = &entity.Profile{
		Id:            sub.IdentityKey,
		Email:         sub.Email,
		DisplayName:   displayNameFromEmail(sub.Email),
		CreditBalance: s.credits.DefaultGrant,
		WritingStyles: []entity.WritingStyle{},
	}
	if err := s.store.Create(ctx, profile); err != nil {
		if apperror.Is(err, apperror.KindAlreadyExists) {
			return s.store.Get(ctx, sub.IdentityKey)
		}
		return nil, err
	}
	return profile, nil
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func (s *sessionService) AdminLogin(ctx context.Context, email, password string) (*dto.SessionResponse, error) {
	invalid := apperror.Unauthenticated("이메일 또는 비밀번호가 올바르지 않습니다.")
	if s.auth.AdminPasswordHash == "" || !s.auth.IsAdminEmail(email) {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.auth.AdminPasswordHash), []byte(password)); err != nil {
		s.logger.Warn("SESSION", "Admin login failed", map[string]interface{}{"email": email})
		return nil, invalid
	}

	token, exp, err := s.issuer.IssueSession(credential.Subject{
		IdentityKey:   "admin:" + strings.ToLower(email),
		Email:         email,
		Provider:      session.ProviderPassword,
		Role:          string(entity.ProfileRoleAdmin),
		EmailVerified: true,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to issue session", err)
	}

	s.logger.Info("SESSION", "Admin logged in", map[string]interface{}{"email": email})
	return &dto.SessionResponse{Token: token, ExpiresAt: exp, Role: string(entity.ProfileRoleAdmin)}, nil
}

func (s *sessionService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return apperror.Unauthenticated("로그인이 필요합니다.")
	}
	s.issuer.Revoke(sess.TokenID, sess.ExpiresAt)
	s.logger.Info("SESSION", "Session revoked", map[string]interface{}{"identity_key": sess.IdentityKey})
	return nil
}

func (s *sessionService) Authenticate(token string) (*session.Session, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		if errors.Is(err, credential.ErrTokenRevoked) {
			return nil, apperror.Unauthenticated("로그아웃된 세션입니다.")
		}
		return nil, apperror.Unauthenticated("인증 정보가 유효하지 않습니다.")
	}
	return session.FromClaims(claims), nil
}
