package implementation

import (
	"context"
	"errors"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/mapper"
	"blog-autowriter-be/internal/model"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"

	"gorm.io/gorm"
)

type GeneratedPostRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PostMapper
}

func NewGeneratedPostRepository(db *gorm.DB) contract.GeneratedPostRepository {
	return &GeneratedPostRepositoryImpl{
		db:     db,
		mapper: mapper.NewPostMapper(),
	}
}

func (r *GeneratedPostRepositoryImpl) Create(ctx context.Context, post *entity.GeneratedPost) error {
	m := r.mapper.ToModel(post)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	*post = *r.mapper.ToEntity(m)
	return nil
}

func (r *GeneratedPostRepositoryImpl) Update(ctx context.Context, post *entity.GeneratedPost) error {
	m := r.mapper.ToModel(post)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*post = *r.mapper.ToEntity(m)
	return nil
}

func (r *GeneratedPostRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedPost, error) {
	var m model.GeneratedPost
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GeneratedPostRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedPost, error) {
	var models []*model.GeneratedPost
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
