package service

import (
	"context"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/sanitize"

	"github.com/google/uuid"
)

const maxWritingStyles = 10

type IProfileService interface {
	GetProfile(ctx context.Context, sess *session.Session) (*dto.ProfileResponse, error)
	SaveWritingStyles(ctx context.Context, sess *session.Session, req dto.SaveWritingStylesRequest) (*dto.ProfileResponse, error)
	SetActiveWritingStyle(ctx context.Context, sess *session.Session, styleId string) (*dto.ProfileResponse, error)
	ClaimEmailVerifiedReward(ctx context.Context, sess *session.Session) (*dto.EmailRewardResponse, error)
	CreditHistory(ctx context.Context, sess *session.Session, limit int) ([]*dto.CreditTransactionResponse, error)
}

type profileService struct {
	store       IProfileStore
	ledger      ILedgerService
	sanitizer   sanitize.Sanitizer
	emailReward int
}

func NewProfileService(store IProfileStore, ledger ILedgerService, sanitizer sanitize.Sanitizer, emailReward int) IProfileService {
	return &profileService{
		store:       store,
		ledger:      ledger,
		sanitizer:   sanitizer,
		emailReward: emailReward,
	}
}

func (s *profileService) GetProfile(ctx context.Context, sess *session.Session) (*dto.ProfileResponse, error) {
	profile, err := s.store.Get(ctx, sess.IdentityKey)
	if err != nil {
		return nil, err
	}
	return ToProfileResponse(profile), nil
}

func (s *profileService) SaveWritingStyles(ctx context.Context, sess *session.Session, req dto.SaveWritingStylesRequest) (*dto.ProfileResponse, error) {
	if len(req.Styles) > maxWritingStyles {
		return nil, apperror.Validation("문체는 최대 10개까지 저장할 수 있습니다.")
	}

	styles := make([]entity.WritingStyle, 0, len(req.Styles))
	seen := make(map[string]bool, len(req.Styles))
	for _, st := range req.Styles {
		id := st.Id
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		seen[id] = true
		styles = append(styles, entity.WritingStyle{
			Id:         id,
			Title:      s.sanitizer.Text(st.Title),
			SampleText: s.sanitizer.Text(st.SampleText),
		})
	}

	profile, err := s.store.Mutate(ctx, sess.IdentityKey, Mutation{
		Apply: func(p *entity.Profile) error {
			p.WritingStyles = styles
			if p.ActiveWritingStyle != "" && !seen[p.ActiveWritingStyle] {
				p.ActiveWritingStyle = ""
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return ToProfileResponse(profile), nil
}

func (s *profileService) SetActiveWritingStyle(ctx context.Context, sess *session.Session, styleId string) (*dto.ProfileResponse, error) {
	profile, err := s.store.Mutate(ctx, sess.IdentityKey, Mutation{
		Apply: func(p *entity.Profile) error {
			if styleId != "" && !hasStyle(p, styleId) {
				return apperror.NotFound("writing style")
			}
			if p.ActiveWritingStyle == styleId {
				return ErrNoChange
			}
			p.ActiveWritingStyle = styleId
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return ToProfileResponse(profile), nil
}

func hasStyle(p *entity.Profile, id string) bool {
	for _, st := range p.WritingStyles {
		if st.Id == id {
			return true
		}
	}
	return false
}

func (s *profileService) ClaimEmailVerifiedReward(ctx context.Context, sess *session.Session) (*dto.EmailRewardResponse, error) {
	if !sess.EmailVerified {
		return nil, apperror.Forbidden("이메일 인증 후 보상을 받을 수 있습니다.")
	}
	granted, profile, err := s.ledger.GrantEmailVerifiedReward(ctx, sess.IdentityKey, s.emailReward)
	if err != nil {
		return nil, err
	}
	return &dto.EmailRewardResponse{Granted: granted, Balance: profile.CreditBalance}, nil
}

func (s *profileService) CreditHistory(ctx context.Context, sess *session.Session, limit int) ([]*dto.CreditTransactionResponse, error) {
	txs, err := s.ledger.History(ctx, sess.IdentityKey, limit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.CreditTransactionResponse, len(txs))
	for i, tx := range txs {
		res[i] = &dto.CreditTransactionResponse{
			Id:              tx.Id,
			TransactionType: string(tx.TransactionType),
			Amount:          tx.Amount,
			BalanceAfter:    tx.BalanceAfter,
			AttemptId:       tx.AttemptId,
			Notes:           tx.Notes,
			CreatedAt:       tx.CreatedAt,
		}
	}
	return res, nil
}
