package mapper

import (
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/model"
)

type CreditMapper struct{}

func NewCreditMapper() *CreditMapper {
	return &CreditMapper{}
}

func (m *CreditMapper) ToEntity(t *model.CreditTransaction) *entity.CreditTransaction {
	if t == nil {
		return nil
	}
	return &entity.CreditTransaction{
		Id:              t.Id,
		ProfileId:       t.ProfileId,
		TransactionType: entity.CreditTransactionType(t.TransactionType),
		Amount:          t.Amount,
		BalanceAfter:    t.BalanceAfter,
		AttemptId:       t.AttemptId,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *CreditMapper) ToModel(t *entity.CreditTransaction) *model.CreditTransaction {
	if t == nil {
		return nil
	}
	return &model.CreditTransaction{
		Id:              t.Id,
		ProfileId:       t.ProfileId,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount,
		BalanceAfter:    t.BalanceAfter,
		AttemptId:       t.AttemptId,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *CreditMapper) ToEntities(txs []*model.CreditTransaction) []*entity.CreditTransaction {
	entities := make([]*entity.CreditTransaction, len(txs))
	for i, t := range txs {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func (m *CreditMapper) IncidentToModel(i *entity.LedgerIncident) *model.LedgerIncident {
	if i == nil {
		return nil
	}
	return &model.LedgerIncident{
		Id:        i.Id,
		ProfileId: i.ProfileId,
		AttemptId: i.AttemptId,
		Reason:    i.Reason,
		Detail:    i.Detail,
		CreatedAt: i.CreatedAt,
	}
}

func (m *CreditMapper) IncidentToEntity(i *model.LedgerIncident) *entity.LedgerIncident {
	if i == nil {
		return nil
	}
	return &entity.LedgerIncident{
		Id:        i.Id,
		ProfileId: i.ProfileId,
		AttemptId: i.AttemptId,
		Reason:    i.Reason,
		Detail:    i.Detail,
		CreatedAt: i.CreatedAt,
	}
}
