package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/pkg/changefeed"
)

const maxCASAttempts = 5

// ErrNoChange is returned by a Mutation's Apply to skip the write.
var ErrNoChange = errors.New("no change")

// Mutation is one optimistic read-modify-write of a profile. Apply edits a
// copy of the stored document. Record, if set, writes side records in the
// same unit of work as the CAS.
type Mutation struct {
	Apply  func(p *entity.Profile) error
	Record func(ctx context.Context, uow unitofwork.UnitOfWork, p *entity.Profile) error
}

type IProfileStore interface {
	Get(ctx context.Context, id string) (*entity.Profile, error)
	Create(ctx context.Context, profile *entity.Profile) error
	Update(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error)
	Mutate(ctx context.Context, id string, m Mutation) (*entity.Profile, error)
	Subscribe(ctx context.Context, id string, listener func(*dto.ProfileResponse)) (func(), error)
	List(ctx context.Context, specs ...specification.Specification) ([]*entity.Profile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type profileStore struct {
	uowFactory unitofwork.RepositoryFactory
	feed       *changefeed.Feed
	logger     logger.ILogger
}

func NewProfileStore(uowFactory unitofwork.RepositoryFactory, feed *changefeed.Feed, logger logger.ILogger) IProfileStore {
	return &profileStore{
		uowFactory: uowFactory,
		feed:       feed,
		logger:     logger,
	}
}

func ProfileTopic(id string) string {
	return "profiles." + id
}

func (s *profileStore) Get(ctx context.Context, id string) (*entity.Profile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	profile, err := uow.ProfileRepository().FindOne(ctx, specification.ByProfileID{ID: id})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("profile")
	}
	return profile, nil
}

func (s *profileStore) Create(ctx context.Context, profile *entity.Profile) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProfileRepository().Create(ctx, profile); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return apperror.AlreadyExists()
		}
		return err
	}
	s.publish(ctx, profile)
	return nil
}

func (s *profileStore) Update(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.Profile, error) {
	return s.Mutate(ctx, id, Mutation{
		Apply: func(p *entity.Profile) error {
			patch.Apply(p)
			return nil
		},
	})
}

func (s *profileStore) Mutate(ctx context.Context, id string, m Mutation) (*entity.Profile, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := m.Apply(next); err != nil {
			if errors.Is(err, ErrNoChange) {
				return current, nil
			}
			return nil, err
		}

		updated, err := s.commit(ctx, next, current.Revision, m.Record)
		if errors.Is(err, contract.ErrRevisionConflict) {
			s.logger.Debug("PROFILE", "Revision moved, retrying", map[string]interface{}{
				"profile_id": id,
				"attempt":    attempt,
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(ctx, updated)
		return updated, nil
	}

	s.logger.Warn("PROFILE", "Gave up after repeated revision conflicts", map[string]interface{}{"profile_id": id})
	return nil, apperror.Conflict("profile is being updated concurrently, please retry")
}

func (s *profileStore) commit(ctx context.Context, next *entity.Profile, expected int64, record func(context.Context, unitofwork.UnitOfWork, *entity.Profile) error) (*entity.Profile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ProfileRepository().CompareAndSwap(ctx, next, expected); err != nil {
		return nil, err
	}
	if record != nil {
		if err := record(ctx, uow, next); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit profile %s: %w", next.Id, err)
	}
	return next, nil
}

func (s *profileStore) Subscribe(ctx context.Context, id string, listener func(*dto.ProfileResponse)) (func(), error) {
	return s.feed.Subscribe(ctx, ProfileTopic(id), func(c changefeed.Change) {
		var resp dto.ProfileResponse
		if err := json.Unmarshal(c.Data, &resp); err != nil {
			s.logger.Warn("PROFILE", "Dropping undecodable profile change", map[string]interface{}{"error": err.Error()})
			return
		}
		listener(&resp)
	})
}

func (s *profileStore) List(ctx context.Context, specs ...specification.Specification) ([]*entity.Profile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ProfileRepository().FindAll(ctx, specs...)
}

func (s *profileStore) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ProfileRepository().Count(ctx, specs...)
}

func (s *profileStore) publish(ctx context.Context, p *entity.Profile) {
	if err := s.feed.Publish(ctx, ProfileTopic(p.Id), p.Revision, ToProfileResponse(p)); err != nil {
		s.logger.Warn("PROFILE", "Failed to publish profile change", map[string]interface{}{
			"profile_id": p.Id,
			"error":      err.Error(),
		})
	}
}

func ToProfileResponse(p *entity.Profile) *dto.ProfileResponse {
	styles := make([]dto.WritingStyleDTO, len(p.WritingStyles))
	for i, st := range p.WritingStyles {
		styles[i] = dto.WritingStyleDTO{Id: st.Id, Title: st.Title, SampleText: st.SampleText}
	}
	return &dto.ProfileResponse{
		Id:                         p.Id,
		Email:                      p.Email,
		DisplayName:                p.DisplayName,
		CreditBalance:              p.CreditBalance,
		Unlimited:                  p.Unlimited,
		EmailVerifiedRewardGranted: p.EmailVerifiedRewardGranted,
		WritingStyles:              styles,
		ActiveWritingStyle:         p.ActiveWritingStyle,
		LinkedProviderId:           p.LinkedProviderId,
		Revision:                   p.Revision,
		CreatedAt:                  p.CreatedAt,
	}
}
