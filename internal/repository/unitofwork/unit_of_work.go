package unitofwork

import (
	"context"

	"blog-autowriter-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProfileRepository() contract.ProfileRepository
	IdentityRepository() contract.IdentityRepository
	CreditTransactionRepository() contract.CreditTransactionRepository
	LedgerIncidentRepository() contract.LedgerIncidentRepository
	GeneratedPostRepository() contract.GeneratedPostRepository
	SupportMessageRepository() contract.SupportMessageRepository
}
