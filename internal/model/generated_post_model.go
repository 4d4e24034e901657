package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GeneratedPost struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProfileId  string         `gorm:"type:varchar(128);not null;index:idx_posts_profile_created,priority:1"`
	AttemptId  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	BlogType   string         `gorm:"type:varchar(20);not null"`
	Title      string         `gorm:"type:text;not null"`
	Sections   datatypes.JSON `gorm:"type:jsonb;not null"`
	Tags       datatypes.JSON `gorm:"type:jsonb;not null"`
	PhotoPaths datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index:idx_posts_profile_created,priority:2"`
}

func (GeneratedPost) TableName() string {
	return "generated_posts"
}
