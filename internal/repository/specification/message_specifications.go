package specification

import (
	"blog-autowriter-be/internal/entity"

	"gorm.io/gorm"
)

type ByMessageStatus struct {
	Status entity.MessageStatus
}

func (s ByMessageStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", string(s.Status))
}

func (s ByMessageStatus) Match(record interface{}) bool {
	m, ok := record.(*entity.SupportMessage)
	return ok && m.Status == s.Status
}

// UnreadReplies matches replied messages the owner has not opened yet
type UnreadReplies struct{}

func (s UnreadReplies) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND user_read = ?", string(entity.MessageStatusReplied), false)
}

func (s UnreadReplies) Match(record interface{}) bool {
	m, ok := record.(*entity.SupportMessage)
	return ok && m.Status == entity.MessageStatusReplied && !m.UserRead
}
