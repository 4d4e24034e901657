package dto

import (
	"time"

	"github.com/google/uuid"
)

type WritingStyleDTO struct {
	Id         string `json:"id"`
	Title      string `json:"title" validate:"required,max=100"`
	SampleText string `json:"sample_text" validate:"required,max=5000"`
}

type ProfileResponse struct {
	Id                         string            `json:"id"`
	Email                      string            `json:"email"`
	DisplayName                string            `json:"display_name"`
	CreditBalance              int               `json:"credit_balance"`
	Unlimited                  bool              `json:"unlimited"`
	EmailVerifiedRewardGranted bool              `json:"email_verified_reward_granted"`
	WritingStyles              []WritingStyleDTO `json:"writing_styles"`
	ActiveWritingStyle         string            `json:"active_writing_style,omitempty"`
	LinkedProviderId           *string           `json:"linked_provider_id,omitempty"`
	Revision                   int64             `json:"revision"`
	CreatedAt                  time.Time         `json:"created_at"`
}

type SaveWritingStylesRequest struct {
	Styles []WritingStyleDTO `json:"styles" validate:"max=10,dive"`
}

type SetActiveWritingStyleRequest struct {
	StyleId string `json:"style_id"`
}

type EmailRewardResponse struct {
	Granted bool `json:"granted"`
	Balance int  `json:"balance"`
}

type CreditTransactionResponse struct {
	Id              uuid.UUID  `json:"id"`
	TransactionType string     `json:"transaction_type"`
	Amount          int        `json:"amount"`
	BalanceAfter    int        `json:"balance_after"`
	AttemptId       *uuid.UUID `json:"attempt_id,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
