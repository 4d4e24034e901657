package specification

import (
	"fmt"

	"blog-autowriter-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by a uuid primary key
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

func (s ByID) Match(record interface{}) bool {
	switch r := record.(type) {
	case *entity.CreditTransaction:
		return r.Id == s.ID
	case *entity.GeneratedPost:
		return r.Id == s.ID
	case *entity.SupportMessage:
		return r.Id == s.ID
	case *entity.LedgerIncident:
		return r.Id == s.ID
	}
	return false
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// NewestFirst orders by created_at descending
func NewestFirst() Specification {
	return OrderBy{Field: "created_at", Desc: true}
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	return db.Offset(s.Offset)
}

// OwnedBy filters rows belonging to a profile
type OwnedBy struct {
	ProfileID string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("profile_id = ?", s.ProfileID)
}

func (s OwnedBy) Match(record interface{}) bool {
	switch r := record.(type) {
	case *entity.CreditTransaction:
		return r.ProfileId == s.ProfileID
	case *entity.GeneratedPost:
		return r.ProfileId == s.ProfileID
	case *entity.SupportMessage:
		return r.ProfileId == s.ProfileID
	case *entity.LedgerIncident:
		return r.ProfileId == s.ProfileID
	}
	return false
}

// ByAttempt filters ledger and post rows created by one generation attempt
type ByAttempt struct {
	AttemptID uuid.UUID
}

func (s ByAttempt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("attempt_id = ?", s.AttemptID)
}

func (s ByAttempt) Match(record interface{}) bool {
	switch r := record.(type) {
	case *entity.CreditTransaction:
		return r.AttemptId != nil && *r.AttemptId == s.AttemptID
	case *entity.GeneratedPost:
		return r.AttemptId == s.AttemptID
	case *entity.LedgerIncident:
		return r.AttemptId == s.AttemptID
	}
	return false
}

// ByTransactionType filters ledger rows by kind
type ByTransactionType struct {
	Type entity.CreditTransactionType
}

func (s ByTransactionType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("transaction_type = ?", string(s.Type))
}

func (s ByTransactionType) Match(record interface{}) bool {
	r, ok := record.(*entity.CreditTransaction)
	return ok && r.TransactionType == s.Type
}
