package memory

import (
	"context"
	"time"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type GeneratedPostRepository struct {
	uow *UnitOfWork
}

func clonePost(p *entity.GeneratedPost) *entity.GeneratedPost {
	cp := *p
	cp.Blog.Sections = append([]entity.Section(nil), p.Blog.Sections...)
	cp.Blog.Tags = append([]string(nil), p.Blog.Tags...)
	cp.PhotoPaths = append([]string(nil), p.PhotoPaths...)
	return &cp
}

func (r *GeneratedPostRepository) Create(ctx context.Context, post *entity.GeneratedPost) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	for _, item := range s.posts.Items() {
		if item.Object.(row).value.(*entity.GeneratedPost).AttemptId == post.AttemptId {
			return contract.ErrDuplicate
		}
	}
	if post.Id == uuid.Nil {
		post.Id = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	key := post.Id.String()
	r.uow.record(s.posts, key)
	s.posts.Set(key, s.newRow(clonePost(post), post.CreatedAt), cache.NoExpiration)
	return nil
}

func (r *GeneratedPostRepository) Update(ctx context.Context, post *entity.GeneratedPost) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	key := post.Id.String()
	item, found := s.posts.Get(key)
	if !found {
		return nil
	}
	existing := item.(row)
	r.uow.record(s.posts, key)
	existing.value = clonePost(post)
	s.posts.Set(key, existing, cache.NoExpiration)
	return nil
}

func (r *GeneratedPostRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedPost, error) {
	v := first(r.uow.store.posts, specs...)
	if v == nil {
		return nil, nil
	}
	return clonePost(v.(*entity.GeneratedPost)), nil
}

func (r *GeneratedPostRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedPost, error) {
	found := query(r.uow.store.posts, specs...)
	result := make([]*entity.GeneratedPost, len(found))
	for i, v := range found {
		result[i] = clonePost(v.(*entity.GeneratedPost))
	}
	return result, nil
}
