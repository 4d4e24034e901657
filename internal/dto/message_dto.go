package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=5000"`
}

type ReplyMessageRequest struct {
	Reply string `json:"reply" validate:"required,max=5000"`
}

type MessageResponse struct {
	Id           uuid.UUID  `json:"id"`
	ProfileId    string     `json:"profile_id"`
	UserEmail    string     `json:"user_email"`
	Subject      string     `json:"subject"`
	Content      string     `json:"content"`
	ReplyContent *string    `json:"reply_content,omitempty"`
	Status       string     `json:"status"`
	UserRead     bool       `json:"user_read"`
	CreatedAt    time.Time  `json:"created_at"`
	RepliedAt    *time.Time `json:"replied_at,omitempty"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
