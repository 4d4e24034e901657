package memory

import (
	"context"
	"time"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type SupportMessageRepository struct {
	uow *UnitOfWork
}

func (r *SupportMessageRepository) Create(ctx context.Context, msg *entity.SupportMessage) error {
	s := r.uow.store
	if msg.Id == uuid.Nil {
		msg.Id = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	cp := *msg
	key := msg.Id.String()
	r.uow.record(s.messages, key)
	s.messages.Set(key, s.newRow(&cp, msg.CreatedAt), cache.NoExpiration)
	return nil
}

func (r *SupportMessageRepository) Update(ctx context.Context, msg *entity.SupportMessage) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	key := msg.Id.String()
	item, found := s.messages.Get(key)
	if !found {
		return nil
	}
	existing := item.(row)
	cp := *msg
	r.uow.record(s.messages, key)
	existing.value = &cp
	s.messages.Set(key, existing, cache.NoExpiration)
	return nil
}

func (r *SupportMessageRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SupportMessage, error) {
	v := first(r.uow.store.messages, specs...)
	if v == nil {
		return nil, nil
	}
	cp := *v.(*entity.SupportMessage)
	return &cp, nil
}

func (r *SupportMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportMessage, error) {
	found := query(r.uow.store.messages, specs...)
	result := make([]*entity.SupportMessage, len(found))
	for i, v := range found {
		cp := *v.(*entity.SupportMessage)
		result[i] = &cp
	}
	return result, nil
}

func (r *SupportMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(query(r.uow.store.messages, specs...))), nil
}
