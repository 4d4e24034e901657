package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransactionType string

const (
	CreditTransactionGrant      CreditTransactionType = "grant"
	CreditTransactionSpend      CreditTransactionType = "spend"
	CreditTransactionRefund     CreditTransactionType = "refund"
	CreditTransactionAdjustment CreditTransactionType = "adjustment"
)

type CreditTransaction struct {
	Id              uuid.UUID
	ProfileId       string
	TransactionType CreditTransactionType
	Amount          int
	BalanceAfter    int
	AttemptId       *uuid.UUID
	Notes           *string
	CreatedAt       time.Time
}

// LedgerIncident records a debit that could not be compensated.
type LedgerIncident struct {
	Id        uuid.UUID
	ProfileId string
	AttemptId uuid.UUID
	Reason    string
	Detail    string
	CreatedAt time.Time
}
