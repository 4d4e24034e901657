package model

import (
	"time"

	"github.com/google/uuid"
)

type SupportMessage struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId    string    `gorm:"type:varchar(128);not null;index:idx_messages_profile_created,priority:1"`
	UserEmail    string    `gorm:"type:varchar(255);not null"`
	Subject      string    `gorm:"type:varchar(255);not null"`
	Content      string    `gorm:"type:text;not null"`
	ReplyContent *string   `gorm:"type:text"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending'"`
	UserRead     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_messages_profile_created,priority:2"`
	RepliedAt    *time.Time
}

func (SupportMessage) TableName() string {
	return "support_messages"
}
