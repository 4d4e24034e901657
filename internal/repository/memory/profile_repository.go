package memory

import (
	"context"
	"time"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"

	"github.com/patrickmn/go-cache"
)

type ProfileRepository struct {
	uow *UnitOfWork
}

func (r *ProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	if _, found := s.profiles.Get(profile.Id); found {
		return contract.ErrDuplicate
	}
	now := time.Now()
	if profile.Revision == 0 {
		profile.Revision = 1
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if profile.WritingStyles == nil {
		profile.WritingStyles = []entity.WritingStyle{}
	}
	r.uow.record(s.profiles, profile.Id)
	s.profiles.Set(profile.Id, s.newRow(profile.Clone(), profile.CreatedAt), cache.NoExpiration)
	return nil
}

func (r *ProfileRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error) {
	v := first(r.uow.store.profiles, specs...)
	if v == nil {
		return nil, nil
	}
	return v.(*entity.Profile).Clone(), nil
}

func (r *ProfileRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Profile, error) {
	found := query(r.uow.store.profiles, specs...)
	result := make([]*entity.Profile, len(found))
	for i, v := range found {
		result[i] = v.(*entity.Profile).Clone()
	}
	return result, nil
}

func (r *ProfileRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(query(r.uow.store.profiles, specs...))), nil
}

func (r *ProfileRepository) CompareAndSwap(ctx context.Context, profile *entity.Profile, expectedRevision int64) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	item, found := s.profiles.Get(profile.Id)
	if !found {
		return contract.ErrRevisionConflict
	}
	existing := item.(row)
	if existing.value.(*entity.Profile).Revision != expectedRevision {
		return contract.ErrRevisionConflict
	}
	profile.Revision = expectedRevision + 1
	profile.UpdatedAt = time.Now()
	profile.CreatedAt = existing.createdAt

	r.uow.record(s.profiles, profile.Id)
	existing.value = profile.Clone()
	s.profiles.Set(profile.Id, existing, cache.NoExpiration)
	return nil
}

type IdentityRepository struct {
	uow *UnitOfWork
}

func (r *IdentityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	if _, found := s.identities.Get(identity.Key); found {
		return contract.ErrDuplicate
	}
	// Mirrors the (provider, provider_user_id) unique index.
	for _, item := range s.identities.Items() {
		existing := item.Object.(row).value.(*entity.Identity)
		if existing.Provider == identity.Provider && existing.ProviderUserId == identity.ProviderUserId {
			return contract.ErrDuplicate
		}
	}
	now := time.Now()
	identity.CreatedAt = now
	identity.UpdatedAt = now
	cp := *identity
	r.uow.record(s.identities, identity.Key)
	s.identities.Set(identity.Key, s.newRow(&cp, now), cache.NoExpiration)
	return nil
}

func (r *IdentityRepository) Update(ctx context.Context, identity *entity.Identity) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	item, found := s.identities.Get(identity.Key)
	if !found {
		return s.insertIdentityLocked(r.uow, identity)
	}
	existing := item.(row)
	identity.UpdatedAt = time.Now()
	cp := *identity
	r.uow.record(s.identities, identity.Key)
	existing.value = &cp
	s.identities.Set(identity.Key, existing, cache.NoExpiration)
	return nil
}

func (s *Store) insertIdentityLocked(uow *UnitOfWork, identity *entity.Identity) error {
	now := time.Now()
	identity.CreatedAt = now
	identity.UpdatedAt = now
	cp := *identity
	uow.record(s.identities, identity.Key)
	s.identities.Set(identity.Key, s.newRow(&cp, now), cache.NoExpiration)
	return nil
}

func (r *IdentityRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Identity, error) {
	v := first(r.uow.store.identities, specs...)
	if v == nil {
		return nil, nil
	}
	cp := *v.(*entity.Identity)
	return &cp, nil
}
