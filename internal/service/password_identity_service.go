package service

import (
	"context"
	"strings"

	"blog-autowriter-be/internal/config"
	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/metrics"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/credential"
	"blog-autowriter-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const passwordKeyPrefix = "password:"

type PasswordSignup struct {
	Email       string
	Password    string
	DisplayName string
	Consents    Consents
}

// IPasswordIdentityService is the email/password identity path. Its
// credentials carry provider "password" and the identity's verification
// state, so the profile is created with the default grant at exchange.
type IPasswordIdentityService interface {
	Signup(ctx context.Context, in PasswordSignup) (*dto.CredentialResponse, error)
	Login(ctx context.Context, email, password string) (*dto.CredentialResponse, error)
	VerifyEmail(ctx context.Context, token string) (*dto.CredentialResponse, error)
	ResendVerification(ctx context.Context, sess *session.Session) error
}

type passwordIdentityService struct {
	uowFactory unitofwork.RepositoryFactory
	issuer     *credential.Issuer
	publisher  events.Publisher
	metrics    metrics.Recorder
	logger     logger.ILogger
	auth       config.AuthConfig
	hashCost   int
}

func NewPasswordIdentityService(
	uowFactory unitofwork.RepositoryFactory,
	issuer *credential.Issuer,
	publisher events.Publisher,
	recorder metrics.Recorder,
	logger logger.ILogger,
	auth config.AuthConfig,
) IPasswordIdentityService {
	return &passwordIdentityService{
		uowFactory: uowFactory,
		issuer:     issuer,
		publisher:  publisher,
		metrics:    recorder,
		logger:     logger,
		auth:       auth,
		hashCost:   bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *passwordIdentityService) Signup(ctx context.Context, in PasswordSignup) (*dto.CredentialResponse, error) {
	if !in.Consents.Terms || !in.Consents.Privacy || !in.Consents.Age {
		return nil, apperror.Validation("필수 약관에 모두 동의해주세요.")
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperror.InvalidArgument("이메일을 입력해주세요.")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IdentityRepository()
	existing, err := repo.FindOne(ctx, specification.ByProviderUser{Provider: session.ProviderPassword, ProviderUserId: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.metrics.RecordIdentity("password_signup", false)
		return nil, apperror.AlreadyExists()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to hash password", err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = displayNameFromEmail(email)
	}
	// The key never embeds the email, which may change later.
	identity := &entity.Identity{
		Key:            passwordKeyPrefix + uuid.NewString(),
		Provider:       session.ProviderPassword,
		ProviderUserId: email,
		Email:          email,
		DisplayName:    displayName,
		PasswordHash:   string(hash),
	}
	if err := repo.Create(ctx, identity); err != nil {
		s.metrics.RecordIdentity("password_signup", false)
		return nil, mapDuplicate(err)
	}

	s.requestVerification(ctx, identity)

	resp, err := s.mint(identity)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordIdentity("password_signup", true)
	s.logger.Info("IDENTITY", "Password signup succeeded", map[string]interface{}{"identity_key": identity.Key})
	return resp, nil
}

func (s *passwordIdentityService) Login(ctx context.Context, email, password string) (*dto.CredentialResponse, error) {
	invalid := apperror.Unauthenticated("이메일 또는 비밀번호가 올바르지 않습니다.")

	uow := s.uowFactory.NewUnitOfWork(ctx)
	identity, err := uow.IdentityRepository().FindOne(ctx, specification.ByProviderUser{Provider: session.ProviderPassword, ProviderUserId: normalizeEmail(email)})
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.PasswordHash == "" {
		s.metrics.RecordIdentity("password_login", false)
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordIdentity("password_login", false)
		s.logger.Warn("IDENTITY", "Password login failed", map[string]interface{}{"identity_key": identity.Key})
		return nil, invalid
	}

	resp, err := s.mint(identity)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordIdentity("password_login", true)
	return resp, nil
}

// VerifyEmail marks the identity verified and returns a fresh credential
// whose session can claim the verification reward.
func (s *passwordIdentityService) VerifyEmail(ctx context.Context, token string) (*dto.CredentialResponse, error) {
	claims, err := s.issuer.ParseVerification(token)
	if err != nil {
		return nil, apperror.Unauthenticated("인증 링크가 유효하지 않거나 만료되었습니다.")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IdentityRepository()
	identity, err := repo.FindOne(ctx, specification.ByIdentityKey{Key: claims.IdentityKey})
	if err != nil {
		return nil, err
	}
	// A link minted for an address the identity no longer uses is stale.
	if identity == nil || !strings.EqualFold(identity.Email, claims.Email) {
		return nil, apperror.Unauthenticated("인증 링크가 유효하지 않거나 만료되었습니다.")
	}

	if !identity.EmailVerified {
		identity.EmailVerified = true
		if err := repo.Update(ctx, identity); err != nil {
			return nil, err
		}
		s.logger.Info("IDENTITY", "Email verified", map[string]interface{}{"identity_key": identity.Key})
	}
	return s.mint(identity)
}

func (s *passwordIdentityService) ResendVerification(ctx context.Context, sess *session.Session) error {
	if sess.Provider != session.ProviderPassword {
		return apperror.Validation("이메일 인증이 필요하지 않은 계정입니다.")
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	identity, err := uow.IdentityRepository().FindOne(ctx, specification.ByIdentityKey{Key: sess.IdentityKey})
	if err != nil {
		return err
	}
	if identity == nil {
		return apperror.NotFound("identity")
	}
	if identity.EmailVerified {
		return apperror.Validation("이미 인증된 이메일입니다.")
	}
	s.requestVerification(ctx, identity)
	return nil
}

func (s *passwordIdentityService) requestVerification(ctx context.Context, identity *entity.Identity) {
	token, _, err := s.issuer.IssueVerification(credential.Subject{
		IdentityKey: identity.Key,
		Email:       identity.Email,
		Provider:    identity.Provider,
	})
	if err != nil {
		s.logger.Error("IDENTITY", "Failed to issue verification token", map[string]interface{}{
			"identity_key": identity.Key,
			"error":        err.Error(),
		})
		return
	}
	if err := s.publisher.Publish(ctx, events.New(events.TypeEmailVerificationRequested, map[string]interface{}{
		"user_id":      identity.Key,
		"email":        identity.Email,
		"display_name": identity.DisplayName,
		"token":        token,
	})); err != nil {
		s.logger.Warn("IDENTITY", "Failed to publish verification request", map[string]interface{}{"error": err.Error()})
	}
}

func (s *passwordIdentityService) mint(identity *entity.Identity) (*dto.CredentialResponse, error) {
	return issueCredential(s.issuer, s.auth, identity.Key, identity.Provider, identity.Email, identity.DisplayName, identity.EmailVerified)
}

// issueCredential mints the one-time exchange credential shared by both
// identity paths. Only a verified address can carry the admin role.
func issueCredential(issuer *credential.Issuer, auth config.AuthConfig, key, provider, email, displayName string, emailVerified bool) (*dto.CredentialResponse, error) {
	role := entity.ProfileRoleUser
	if emailVerified && auth.IsAdminEmail(email) {
		role = entity.ProfileRoleAdmin
	}
	token, exp, err := issuer.IssueExchange(credential.Subject{
		IdentityKey:   key,
		Email:         email,
		Provider:      provider,
		Role:          string(role),
		EmailVerified: emailVerified,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to mint credential", err)
	}
	return &dto.CredentialResponse{
		Credential:  token,
		ExpiresAt:   exp,
		IdentityKey: key,
		Email:       email,
		DisplayName: displayName,
	}, nil
}
