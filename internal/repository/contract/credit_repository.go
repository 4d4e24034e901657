package contract

import (
	"context"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/specification"
)

type CreditTransactionRepository interface {
	Create(ctx context.Context, tx *entity.CreditTransaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CreditTransaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error)
}

type LedgerIncidentRepository interface {
	Create(ctx context.Context, incident *entity.LedgerIncident) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LedgerIncident, error)
}
