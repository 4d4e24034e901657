package model

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransaction struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId       string     `gorm:"type:varchar(128);not null;index"`
	TransactionType string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_credit_attempt_type,priority:2"`
	Amount          int        `gorm:"not null"`
	BalanceAfter    int        `gorm:"not null"`
	AttemptId       *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_credit_attempt_type,priority:1"`
	Notes           *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"default:now();not null;index"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

type LedgerIncident struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId string    `gorm:"type:varchar(128);not null;index"`
	AttemptId uuid.UUID `gorm:"type:uuid;not null"`
	Reason    string    `gorm:"type:varchar(100);not null"`
	Detail    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"default:now();not null"`
}

func (LedgerIncident) TableName() string {
	return "ledger_incidents"
}
