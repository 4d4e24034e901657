package service

import (
	"context"
	"sync"
	"testing"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_DebitAndRefund(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 3, false)
	ctx := context.Background()
	attempt := uuid.New()

	ok, err := f.ledger.Debit(ctx, "naver:1", 1, attempt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, f.balance(t, "naver:1"))

	balance, err := f.ledger.Refund(ctx, "naver:1", attempt)
	require.NoError(t, err)
	assert.Equal(t, 3, balance)

	history, err := f.ledger.History(ctx, "naver:1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.CreditTransactionRefund, history[0].TransactionType)
	assert.Equal(t, entity.CreditTransactionSpend, history[1].TransactionType)
	assert.Equal(t, 2, history[1].BalanceAfter)
}

func TestLedger_DebitInsufficientLeavesProfileUntouched(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, false)
	ctx := context.Background()

	before, err := f.store.Get(ctx, "naver:1")
	require.NoError(t, err)

	ok, err := f.ledger.Debit(ctx, "naver:1", 1, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := f.store.Get(ctx, "naver:1")
	require.NoError(t, err)
	assert.Equal(t, before.Revision, after.Revision)
	assert.Equal(t, 0, after.CreditBalance)
}

func TestLedger_UnlimitedNeverMovesBalance(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, true)
	ctx := context.Background()
	attempt := uuid.New()

	ok, err := f.ledger.Debit(ctx, "naver:1", 1, attempt)
	require.NoError(t, err)
	assert.True(t, ok)

	balance, err := f.ledger.Refund(ctx, "naver:1", attempt)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	history, err := f.ledger.History(ctx, "naver:1", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLedger_RefundWithoutSpendTakesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, true)
	ctx := context.Background()
	attempt := uuid.New()

	ok, err := f.ledger.Debit(ctx, "naver:1", 1, attempt)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.ledger.SetUnlimited(ctx, "naver:1", false)
	require.NoError(t, err)

	balance, err := f.ledger.Refund(ctx, "naver:1", attempt)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
	assert.Equal(t, 0, f.balance(t, "naver:1"))
}

func TestLedger_RefundAfterUnlimitedEnabledRestoresDebit(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 2, false)
	ctx := context.Background()
	attempt := uuid.New()

	ok, err := f.ledger.Debit(ctx, "naver:1", 1, attempt)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.ledger.SetUnlimited(ctx, "naver:1", true)
	require.NoError(t, err)

	balance, err := f.ledger.Refund(ctx, "naver:1", attempt)
	require.NoError(t, err)
	assert.Equal(t, 2, balance)

	_, err = f.ledger.Refund(ctx, "naver:1", attempt)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 2, f.balance(t, "naver:1"))
}

func TestLedger_DuplicateAttemptIsConflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 5, false)
	ctx := context.Background()
	attempt := uuid.New()

	_, err := f.ledger.Debit(ctx, "naver:1", 1, attempt)
	require.NoError(t, err)

	_, err = f.ledger.Debit(ctx, "naver:1", 1, attempt)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	// the rejected debit rolled back with its transaction row
	assert.Equal(t, 4, f.balance(t, "naver:1"))
}

func TestLedger_ConcurrentDebitsNeverOverspend(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 3, false)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.ledger.Debit(ctx, "naver:1", 1, uuid.New())
			if err != nil {
				// exhausted CAS retries is an acceptable loss here
				assert.True(t, apperror.Is(err, apperror.KindConflict))
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, granted, 3)
	assert.Equal(t, 3-granted, f.balance(t, "naver:1"))
}

func TestLedger_GrantAndAdjust(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 2, false)
	ctx := context.Background()

	p, err := f.ledger.Grant(ctx, "naver:1", 5, "event")
	require.NoError(t, err)
	assert.Equal(t, 7, p.CreditBalance)
	assert.Contains(t, f.publisher.types(), events.TypeCreditsGranted)

	_, err = f.ledger.Grant(ctx, "naver:1", -10, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	p, err = f.ledger.Grant(ctx, "naver:1", -7, "reset")
	require.NoError(t, err)
	assert.Equal(t, 0, p.CreditBalance)

	history, err := f.ledger.History(ctx, "naver:1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.CreditTransactionAdjustment, history[0].TransactionType)
}

func TestLedger_SetUnlimitedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, false)
	ctx := context.Background()

	p, err := f.ledger.SetUnlimited(ctx, "naver:1", true)
	require.NoError(t, err)
	assert.True(t, p.Unlimited)
	rev := p.Revision

	p, err = f.ledger.SetUnlimited(ctx, "naver:1", true)
	require.NoError(t, err)
	assert.Equal(t, rev, p.Revision)
}

func TestLedger_EmailRewardGrantedOnce(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 1, false)
	ctx := context.Background()

	granted, p, err := f.ledger.GrantEmailVerifiedReward(ctx, "naver:1", 2)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 3, p.CreditBalance)

	granted, p, err = f.ledger.GrantEmailVerifiedReward(ctx, "naver:1", 2)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, 3, p.CreditBalance)
}

func TestLedger_UnknownProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Debit(context.Background(), "naver:404", 1, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
