package implementation

import (
	"context"
	"errors"
	"time"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/mapper"
	"blog-autowriter-be/internal/model"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProfileMapper
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewProfileMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// translate maps driver errors (with TranslateError enabled) to repository errors.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return contract.ErrDuplicate
	}
	return err
}

func (r *ProfileRepositoryImpl) Create(ctx context.Context, profile *entity.Profile) error {
	if profile.Revision == 0 {
		profile.Revision = 1
	}
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProfileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error) {
	var m model.Profile
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Profile, error) {
	var models []*model.Profile
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProfileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Profile{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProfileRepositoryImpl) CompareAndSwap(ctx context.Context, profile *entity.Profile, expectedRevision int64) error {
	m := r.mapper.ToModel(profile)
	now := time.Now()

	// Map form so zero values (balance 0, unlimited false) are written too.
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ? AND revision = ?", profile.Id, expectedRevision).
		Updates(map[string]interface{}{
			"email":                         m.Email,
			"display_name":                  m.DisplayName,
			"credit_balance":                m.CreditBalance,
			"unlimited":                     m.Unlimited,
			"email_verified_reward_granted": m.EmailVerifiedRewardGranted,
			"writing_styles":                m.WritingStyles,
			"active_writing_style":          m.ActiveWritingStyle,
			"linked_provider_id":            m.LinkedProviderId,
			"revision":                      expectedRevision + 1,
			"updated_at":                    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrRevisionConflict
	}
	profile.Revision = expectedRevision + 1
	profile.UpdatedAt = now
	return nil
}

type IdentityRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProfileMapper
}

func NewIdentityRepository(db *gorm.DB) contract.IdentityRepository {
	return &IdentityRepositoryImpl{
		db:     db,
		mapper: mapper.NewProfileMapper(),
	}
}

func (r *IdentityRepositoryImpl) Create(ctx context.Context, identity *entity.Identity) error {
	m := r.mapper.IdentityToModel(identity)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	*identity = *r.mapper.IdentityToEntity(m)
	return nil
}

func (r *IdentityRepositoryImpl) Update(ctx context.Context, identity *entity.Identity) error {
	m := r.mapper.IdentityToModel(identity)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translate(err)
	}
	*identity = *r.mapper.IdentityToEntity(m)
	return nil
}

func (r *IdentityRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Identity, error) {
	var m model.Identity
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.IdentityToEntity(&m), nil
}
