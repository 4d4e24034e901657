package service

import (
	"context"
	"errors"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/contract"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/pkg/events"

	"github.com/google/uuid"
)

var errInsufficientBalance = errors.New("insufficient balance")

type ILedgerService interface {
	// Debit reserves cost credits for one attempt. It returns false, with no
	// mutation, when the balance is too low. Unlimited profiles always pass.
	Debit(ctx context.Context, userId string, cost int, attemptId uuid.UUID) (bool, error)
	// Refund returns exactly what the attempt's debit took, whatever the
	// unlimited flag says now, and reports the resulting balance.
	Refund(ctx context.Context, userId string, attemptId uuid.UUID) (int, error)
	Grant(ctx context.Context, userId string, amount int, note string) (*entity.Profile, error)
	SetUnlimited(ctx context.Context, userId string, unlimited bool) (*entity.Profile, error)
	GrantEmailVerifiedReward(ctx context.Context, userId string, amount int) (bool, *entity.Profile, error)
	Balance(ctx context.Context, userId string) (int, bool, error)
	History(ctx context.Context, userId string, limit int) ([]*entity.CreditTransaction, error)
}

type ledgerService struct {
	store      IProfileStore
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewLedgerService(store IProfileStore, uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, logger logger.ILogger) ILedgerService {
	return &ledgerService{
		store:      store,
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

func recordTransaction(txType entity.CreditTransactionType, amount int, attemptId *uuid.UUID, note *string) func(context.Context, unitofwork.UnitOfWork, *entity.Profile) error {
	return func(ctx context.Context, uow unitofwork.UnitOfWork, p *entity.Profile) error {
		return uow.CreditTransactionRepository().Create(ctx, &entity.CreditTransaction{
			Id:              uuid.New(),
			ProfileId:       p.Id,
			TransactionType: txType,
			Amount:          amount,
			BalanceAfter:    p.CreditBalance,
			AttemptId:       attemptId,
			Notes:           note,
		})
	}
}

func (s *ledgerService) Debit(ctx context.Context, userId string, cost int, attemptId uuid.UUID) (bool, error) {
	if cost <= 0 {
		return false, apperror.Validation("cost must be positive")
	}

	_, err := s.store.Mutate(ctx, userId, Mutation{
		Apply: func(p *entity.Profile) error {
			if p.Unlimited {
				return ErrNoChange
			}
			if p.CreditBalance < cost {
				return errInsufficientBalance
			}
			p.CreditBalance -= cost
			return nil
		},
		Record: recordTransaction(entity.CreditTransactionSpend, -cost, &attemptId, nil),
	})
	switch {
	case errors.Is(err, errInsufficientBalance):
		s.logger.Info("LEDGER", "Debit refused, insufficient balance", map[string]interface{}{
			"user_id":    userId,
			"attempt_id": attemptId.String(),
		})
		return false, nil
	case errors.Is(err, contract.ErrDuplicate):
		return false, apperror.Conflict("attempt already debited")
	case err != nil:
		return false, err
	}

	s.logger.Info("LEDGER", "Debit applied", map[string]interface{}{
		"user_id":    userId,
		"attempt_id": attemptId.String(),
		"cost":       cost,
	})
	return true, nil
}

func (s *ledgerService) Refund(ctx context.Context, userId string, attemptId uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	spend, err := uow.CreditTransactionRepository().FindOne(ctx,
		specification.ByAttempt{AttemptID: attemptId},
		specification.ByTransactionType{Type: entity.CreditTransactionSpend},
		specification.OwnedBy{ProfileID: userId},
	)
	if err != nil {
		return 0, err
	}
	if spend == nil {
		// The debit passed on the unlimited flag and took nothing.
		balance, _, err := s.Balance(ctx, userId)
		return balance, err
	}
	amount := -spend.Amount

	profile, err := s.store.Mutate(ctx, userId, Mutation{
		Apply: func(p *entity.Profile) error {
			p.CreditBalance += amount
			return nil
		},
		Record: recordTransaction(entity.CreditTransactionRefund, amount, &attemptId, nil),
	})
	if errors.Is(err, contract.ErrDuplicate) {
		return 0, apperror.Conflict("attempt already refunded")
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("LEDGER", "Refund applied", map[string]interface{}{
		"user_id":    userId,
		"attempt_id": attemptId.String(),
		"amount":     amount,
		"balance":    profile.CreditBalance,
	})
	return profile.CreditBalance, nil
}

func (s *ledgerService) Grant(ctx context.Context, userId string, amount int, note string) (*entity.Profile, error) {
	if amount == 0 {
		return nil, apperror.Validation("amount must not be zero")
	}

	txType := entity.CreditTransactionGrant
	if amount < 0 {
		txType = entity.CreditTransactionAdjustment
	}
	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	profile, err := s.store.Mutate(ctx, userId, Mutation{
		Apply: func(p *entity.Profile) error {
			if p.CreditBalance+amount < 0 {
				return apperror.Validation("balance cannot become negative")
			}
			p.CreditBalance += amount
			return nil
		},
		Record: recordTransaction(txType, amount, nil, notePtr),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("LEDGER", "Credits granted", map[string]interface{}{
		"user_id": userId,
		"amount":  amount,
		"balance": profile.CreditBalance,
	})
	s.emit(ctx, events.TypeCreditsGranted, map[string]interface{}{
		"user_id": userId,
		"amount":  amount,
		"balance": profile.CreditBalance,
	})
	return profile, nil
}

func (s *ledgerService) SetUnlimited(ctx context.Context, userId string, unlimited bool) (*entity.Profile, error) {
	profile, err := s.store.Mutate(ctx, userId, Mutation{
		Apply: func(p *entity.Profile) error {
			if p.Unlimited == unlimited {
				return ErrNoChange
			}
			p.Unlimited = unlimited
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("LEDGER", "Unlimited flag set", map[string]interface{}{
		"user_id":   userId,
		"unlimited": unlimited,
	})
	s.emit(ctx, events.TypeUnlimitedToggled, map[string]interface{}{
		"user_id":   userId,
		"unlimited": unlimited,
	})
	return profile, nil
}

func (s *ledgerService) GrantEmailVerifiedReward(ctx context.Context, userId string, amount int) (bool, *entity.Profile, error) {
	granted := false
	note := "email verified reward"
	profile, err := s.store.Mutate(ctx, userId, Mutation{
		Apply: func(p *entity.Profile) error {
			granted = false
			if p.EmailVerifiedRewardGranted {
				return ErrNoChange
			}
			p.EmailVerifiedRewardGranted = true
			p.CreditBalance += amount
			granted = true
			return nil
		},
		Record: recordTransaction(entity.CreditTransactionGrant, amount, nil, &note),
	})
	if err != nil {
		return false, nil, err
	}
	return granted, profile, nil
}

func (s *ledgerService) Balance(ctx context.Context, userId string) (int, bool, error) {
	profile, err := s.store.Get(ctx, userId)
	if err != nil {
		return 0, false, err
	}
	return profile.CreditBalance, profile.Unlimited, nil
}

func (s *ledgerService) History(ctx context.Context, userId string, limit int) ([]*entity.CreditTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if _, err := s.store.Get(ctx, userId); err != nil {
		return nil, err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.CreditTransactionRepository().FindAll(ctx,
		specification.OwnedBy{ProfileID: userId},
		specification.NewestFirst(),
		specification.Pagination{Limit: limit},
	)
}

func (s *ledgerService) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("LEDGER", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
