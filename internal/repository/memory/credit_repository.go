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

type CreditTransactionRepository struct {
	uow *UnitOfWork
}

func (r *CreditTransactionRepository) Create(ctx context.Context, tx *entity.CreditTransaction) error {
	s := r.uow.store
	s.rowMu.Lock()
	defer s.rowMu.Unlock()

	// Mirrors the (attempt_id, transaction_type) unique index.
	if tx.AttemptId != nil {
		for _, item := range s.credits.Items() {
			existing := item.Object.(row).value.(*entity.CreditTransaction)
			if existing.AttemptId != nil && *existing.AttemptId == *tx.AttemptId && existing.TransactionType == tx.TransactionType {
				return contract.ErrDuplicate
			}
		}
	}
	if tx.Id == uuid.Nil {
		tx.Id = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	cp := *tx
	key := tx.Id.String()
	r.uow.record(s.credits, key)
	s.credits.Set(key, s.newRow(&cp, tx.CreatedAt), cache.NoExpiration)
	return nil
}

func (r *CreditTransactionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CreditTransaction, error) {
	v := first(r.uow.store.credits, specs...)
	if v == nil {
		return nil, nil
	}
	cp := *v.(*entity.CreditTransaction)
	return &cp, nil
}

func (r *CreditTransactionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error) {
	found := query(r.uow.store.credits, specs...)
	result := make([]*entity.CreditTransaction, len(found))
	for i, v := range found {
		cp := *v.(*entity.CreditTransaction)
		result[i] = &cp
	}
	return result, nil
}

type LedgerIncidentRepository struct {
	uow *UnitOfWork
}

func (r *LedgerIncidentRepository) Create(ctx context.Context, incident *entity.LedgerIncident) error {
	s := r.uow.store
	if incident.Id == uuid.Nil {
		incident.Id = uuid.New()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now()
	}
	cp := *incident
	key := incident.Id.String()
	r.uow.record(s.incidents, key)
	s.incidents.Set(key, s.newRow(&cp, incident.CreatedAt), cache.NoExpiration)
	return nil
}

func (r *LedgerIncidentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LedgerIncident, error) {
	found := query(r.uow.store.incidents, specs...)
	result := make([]*entity.LedgerIncident, len(found))
	for i, v := range found {
		cp := *v.(*entity.LedgerIncident)
		result[i] = &cp
	}
	return result, nil
}
