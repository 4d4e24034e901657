package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"blog-autowriter-be/internal/config"
	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/metrics"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/credential"
	"blog-autowriter-be/pkg/events"
	"blog-autowriter-be/pkg/naver"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	naverKeyPrefix = "naver:"
	oauthStateTTL  = 10 * time.Minute
)

// NaverClient is the provider surface the identity bridge needs.
type NaverClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code, state string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*naver.Profile, error)
}

// ProviderToken is either an access token or an authorization code with the
// state it was issued for.
type ProviderToken struct {
	AccessToken string
	Code        string
	State       string
}

type Consents struct {
	Terms     bool
	Privacy   bool
	Age       bool
	Marketing bool
}

type IIdentityService interface {
	AuthURL() *dto.NaverAuthURLResponse
	Verify(ctx context.Context, accessToken string) (*entity.ExternalIdentityClaim, error)
	Login(ctx context.Context, token ProviderToken) (*dto.CredentialResponse, error)
	Signup(ctx context.Context, token ProviderToken, consents Consents) (*dto.CredentialResponse, error)
}

type identityService struct {
	uowFactory unitofwork.RepositoryFactory
	store      IProfileStore
	naver      NaverClient
	issuer     *credential.Issuer
	publisher  events.Publisher
	metrics    metrics.Recorder
	logger     logger.ILogger
	auth       config.AuthConfig
	credits    config.CreditsConfig
	states     *cache.Cache
}

func NewIdentityService(
	uowFactory unitofwork.RepositoryFactory,
	store IProfileStore,
	naverClient NaverClient,
	issuer *credential.Issuer,
	publisher events.Publisher,
	recorder metrics.Recorder,
	logger logger.ILogger,
	auth config.AuthConfig,
	credits config.CreditsConfig,
) IIdentityService {
	return &identityService{
		uowFactory: uowFactory,
		store:      store,
		naver:      naverClient,
		issuer:     issuer,
		publisher:  publisher,
		metrics:    recorder,
		logger:     logger,
		auth:       auth,
		credits:    credits,
		states:     cache.New(oauthStateTTL, oauthStateTTL),
	}
}

// IdentityKeyFor derives the stable internal key. It never depends on email.
func IdentityKeyFor(providerUserId string) string {
	return naverKeyPrefix + providerUserId
}

func (s *identityService) AuthURL() *dto.NaverAuthURLResponse {
	state := uuid.NewString()
	s.states.Set(state, struct{}{}, cache.DefaultExpiration)
	return &dto.NaverAuthURLResponse{URL: s.naver.AuthCodeURL(state), State: state}
}

func (s *identityService) Verify(ctx context.Context, accessToken string) (*entity.ExternalIdentityClaim, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, apperror.Unauthenticated("네이버 인증 실패")
	}

	profile, err := s.naver.FetchProfile(ctx, accessToken)
	if err != nil {
		s.metrics.RecordIdentity("verify", false)
		if errors.Is(err, naver.ErrTokenRejected) {
			return nil, apperror.Unauthenticated("네이버 인증 실패")
		}
		s.logger.Error("IDENTITY", "Naver profile lookup failed", map[string]interface{}{"error": err.Error()})
		return nil, apperror.Wrap(apperror.KindInternal, "네이버 서버와 통신할 수 없습니다.", err)
	}
	if profile.ID == "" {
		s.metrics.RecordIdentity("verify", false)
		return nil, apperror.Unauthenticated("네이버 인증 실패")
	}
	if strings.TrimSpace(profile.Email) == "" {
		s.metrics.RecordIdentity("verify", false)
		return nil, apperror.InvalidArgument("네이버 계정에 이메일 정보가 없습니다. 이메일 제공에 동의해주세요.")
	}

	s.metrics.RecordIdentity("verify", true)
	return &entity.ExternalIdentityClaim{
		IdentityKey:        IdentityKeyFor(profile.ID),
		Provider:           session.ProviderNaver,
		ExternalUid:        profile.ID,
		Email:              strings.TrimSpace(profile.Email),
		DisplayName:        profile.DisplayName(),
		ProfileImage:       profile.ProfileImage,
		RawProviderPayload: profile.Raw,
	}, nil
}

func (s *identityService) resolveAccessToken(ctx context.Context, token ProviderToken) (string, error) {
	if token.AccessToken != "" {
		return token.AccessToken, nil
	}
	if token.Code == "" {
		return "", apperror.Validation("access_token 또는 code가 필요합니다.")
	}
	if _, ok := s.states.Get(token.State); !ok {
		return "", apperror.Unauthenticated("로그인 요청이 만료되었습니다.")
	}
	s.states.Delete(token.State)

	accessToken, err := s.naver.Exchange(ctx, token.Code, token.State)
	if err != nil {
		s.logger.Warn("IDENTITY", "Authorization code exchange failed", map[string]interface{}{"error": err.Error()})
		return "", apperror.Unauthenticated("네이버 인증 실패")
	}
	return accessToken, nil
}

func (s *identityService) Login(ctx context.Context, token ProviderToken) (*dto.CredentialResponse, error) {
	accessToken, err := s.resolveAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	claim, err := s.Verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Get(ctx, claim.IdentityKey); err != nil {
		s.metrics.RecordIdentity("login", false)
		if apperror.Is(err, apperror.KindNotFound) {
			s.logger.Info("IDENTITY", "Login for unregistered identity", map[string]interface{}{"identity_key": claim.IdentityKey})
			return nil, apperror.NotRegistered()
		}
		return nil, err
	}

	s.refreshIdentity(ctx, claim)

	resp, err := s.mint(claim)
	if err != nil {
		s.metrics.RecordIdentity("login", false)
		return nil, err
	}
	s.metrics.RecordIdentity("login", true)
	s.logger.Info("IDENTITY", "Login succeeded", map[string]interface{}{"identity_key": claim.IdentityKey})
	return resp, nil
}

// refreshIdentity keeps the backing record's provider attributes current.
func (s *identityService) refreshIdentity(ctx context.Context, claim *entity.ExternalIdentityClaim) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.IdentityRepository()
	identity, err := repo.FindOne(ctx, specification.ByIdentityKey{Key: claim.IdentityKey})
	if err != nil {
		s.logger.Warn("IDENTITY", "Identity lookup failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if identity == nil {
		identity = &entity.Identity{
			Key:            claim.IdentityKey,
			Provider:       claim.Provider,
			ProviderUserId: claim.ExternalUid,
			EmailVerified:  true,
		}
	}
	identity.Email = claim.Email
	identity.DisplayName = claim.DisplayName
	identity.ProfileImage = claim.ProfileImage
	if err := repo.Update(ctx, identity); err != nil {
		s.logger.Warn("IDENTITY", "Identity refresh failed", map[string]interface{}{
			"identity_key": claim.IdentityKey,
			"error":        err.Error(),
		})
	}
}

func (s *identityService) Signup(ctx context.Context, token ProviderToken, consents Consents) (*dto.CredentialResponse, error) {
	if !consents.Terms || !consents.Privacy || !consents.Age {
		return nil, apperror.Validation("필수 약관에 모두 동의해주세요.")
	}

	accessToken, err := s.resolveAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	claim, err := s.Verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if err := s.createAccount(ctx, claim); err != nil {
		s.metrics.RecordIdentity("signup", false)
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.New(events.TypeUserRegistered, map[string]interface{}{
		"user_id":          claim.IdentityKey,
		"email":            claim.Email,
		"display_name":     claim.DisplayName,
		"credits":          s.credits.NaverSignupBonus,
		"marketing_opt_in": consents.Marketing,
	})); err != nil {
		s.logger.Warn("IDENTITY", "Failed to publish USER_REGISTERED", map[string]interface{}{"error": err.Error()})
	}

	resp, err := s.mint(claim)
	if err != nil {
		s.metrics.RecordIdentity("signup", false)
		return nil, err
	}
	s.metrics.RecordIdentity("signup", true)
	s.logger.Info("IDENTITY", "Signup succeeded", map[string]interface{}{
		"identity_key": claim.IdentityKey,
		"bonus":        s.credits.NaverSignupBonus,
	})
	return resp, nil
}

// createAccount writes the identity record, the profile and the bonus grant
// in one transaction. An existing key at any step is AlreadyExists.
func (s *identityService) createAccount(ctx context.Context, claim *entity.ExternalIdentityClaim) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.IdentityRepository().FindOne(ctx, specification.ByIdentityKey{Key: claim.IdentityKey})
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Info("IDENTITY", "Signup for existing identity", map[string]interface{}{"identity_key": claim.IdentityKey})
		return apperror.AlreadyExists()
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now()
	identity := &entity.Identity{
		Key:            claim.IdentityKey,
		Provider:       claim.Provider,
		ProviderUserId: claim.ExternalUid,
		Email:          claim.Email,
		DisplayName:    claim.DisplayName,
		ProfileImage:   claim.ProfileImage,
		EmailVerified:  true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uow.IdentityRepository().Create(ctx, identity); err != nil {
		return mapDuplicate(err)
	}

	providerId := claim.ExternalUid
	profile := &entity.Profile{
		Id:               claim.IdentityKey,
		Email:            claim.Email,
		DisplayName:      claim.DisplayName,
		CreditBalance:    s.credits.NaverSignupBonus,
		WritingStyles:    []entity.WritingStyle{},
		LinkedProviderId: &providerId,
		CreatedAt:        now,
	}
	if err := uow.ProfileRepository().Create(ctx, profile); err != nil {
		return mapDuplicate(err)
	}

	if s.credits.NaverSignupBonus > 0 {
		note := "naver signup bonus"
		if err := recordTransaction(entity.CreditTransactionGrant, s.credits.NaverSignupBonus, nil, &note)(ctx, uow, profile); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func mapDuplicate(err error) error {
	if errors.Is(err, contract.ErrDuplicate) {
		return apperror.AlreadyExists()
	}
	return err
}

func (s *identityService) mint(claim *entity.ExternalIdentityClaim) (*dto.CredentialResponse, error) {
	return issueCredential(s.issuer, s.auth, claim.IdentityKey, claim.Provider, claim.Email, claim.DisplayName, true)
}
