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

type SupportMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewSupportMessageRepository(db *gorm.DB) contract.SupportMessageRepository {
	return &SupportMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *SupportMessageRepositoryImpl) Create(ctx context.Context, msg *entity.SupportMessage) error {
	m := r.mapper.ToModel(msg)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	*msg = *r.mapper.ToEntity(m)
	return nil
}

func (r *SupportMessageRepositoryImpl) Update(ctx context.Context, msg *entity.SupportMessage) error {
	m := r.mapper.ToModel(msg)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*msg = *r.mapper.ToEntity(m)
	return nil
}

func (r *SupportMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SupportMessage, error) {
	var m model.SupportMessage
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SupportMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportMessage, error) {
	var models []*model.SupportMessage
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SupportMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.SupportMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
