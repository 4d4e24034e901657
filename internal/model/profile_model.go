package model

import (
	"time"

	"gorm.io/datatypes"
)

type Profile struct {
	Id                         string         `gorm:"type:varchar(128);primaryKey"`
	Email                      string         `gorm:"type:varchar(255);index;not null"`
	DisplayName                string         `gorm:"type:varchar(255)"`
	CreditBalance              int            `gorm:"not null;default:0;check:credit_balance >= 0"`
	Unlimited                  bool           `gorm:"not null;default:false"`
	EmailVerifiedRewardGranted bool           `gorm:"not null;default:false"`
	WritingStyles              datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	ActiveWritingStyle         string         `gorm:"type:text"`
	LinkedProviderId           *string        `gorm:"type:varchar(128)"`
	Revision                   int64          `gorm:"not null;default:1"`
	CreatedAt                  time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt                  time.Time      `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

type Identity struct {
	Key            string    `gorm:"type:varchar(128);primaryKey"`
	Provider       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_identity_provider_user,priority:1"`
	ProviderUserId string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_identity_provider_user,priority:2"`
	Email          string    `gorm:"type:varchar(255);not null"`
	DisplayName    string    `gorm:"type:varchar(255)"`
	ProfileImage   string    `gorm:"type:text"`
	EmailVerified  bool      `gorm:"default:false"`
	PasswordHash   string    `gorm:"type:varchar(255)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Identity) TableName() string {
	return "identities"
}
