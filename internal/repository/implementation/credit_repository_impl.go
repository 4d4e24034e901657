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

type CreditTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditMapper
}

func NewCreditTransactionRepository(db *gorm.DB) contract.CreditTransactionRepository {
	return &CreditTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditMapper(),
	}
}

func (r *CreditTransactionRepositoryImpl) Create(ctx context.Context, tx *entity.CreditTransaction) error {
	m := r.mapper.ToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	*tx = *r.mapper.ToEntity(m)
	return nil
}

func (r *CreditTransactionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CreditTransaction, error) {
	var m model.CreditTransaction
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *CreditTransactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	var models []*model.CreditTransaction
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

type LedgerIncidentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditMapper
}

func NewLedgerIncidentRepository(db *gorm.DB) contract.LedgerIncidentRepository {
	return &LedgerIncidentRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditMapper(),
	}
}

func (r *LedgerIncidentRepositoryImpl) Create(ctx context.Context, incident *entity.LedgerIncident) error {
	m := r.mapper.IncidentToModel(incident)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate(err)
	}
	*incident = *r.mapper.IncidentToEntity(m)
	return nil
}

func (r *LedgerIncidentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LedgerIncident, error) {
	var models []*model.LedgerIncident
	query := applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*entity.LedgerIncident, len(models))
	for i, m := range models {
		result[i] = r.mapper.IncidentToEntity(m)
	}
	return result, nil
}
