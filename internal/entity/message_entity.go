package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusReplied MessageStatus = "replied"
)

type SupportMessage struct {
	Id           uuid.UUID
	ProfileId    string
	UserEmail    string
	Subject      string
	Content      string
	ReplyContent *string
	Status       MessageStatus
	UserRead     bool
	CreatedAt    time.Time
	RepliedAt    *time.Time
}
