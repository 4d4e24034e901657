package specification

import (
	"blog-autowriter-be/internal/entity"

	"gorm.io/gorm"
)

// ByProfileID filters profiles by identity key
type ByProfileID struct {
	ID string
}

func (s ByProfileID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

func (s ByProfileID) Match(record interface{}) bool {
	p, ok := record.(*entity.Profile)
	return ok && p.Id == s.ID
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

func (s ByEmail) Match(record interface{}) bool {
	switch r := record.(type) {
	case *entity.Profile:
		return r.Email == s.Email
	case *entity.Identity:
		return r.Email == s.Email
	}
	return false
}

type UnlimitedOnly struct{}

func (s UnlimitedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("unlimited = ?", true)
}

func (s UnlimitedOnly) Match(record interface{}) bool {
	p, ok := record.(*entity.Profile)
	return ok && p.Unlimited
}

// Identity Specs

type ByIdentityKey struct {
	Key string
}

func (s ByIdentityKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("key = ?", s.Key)
}

func (s ByIdentityKey) Match(record interface{}) bool {
	i, ok := record.(*entity.Identity)
	return ok && i.Key == s.Key
}

type ByProviderUser struct {
	Provider       string
	ProviderUserId string
}

func (s ByProviderUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider = ? AND provider_user_id = ?", s.Provider, s.ProviderUserId)
}

func (s ByProviderUser) Match(record interface{}) bool {
	i, ok := record.(*entity.Identity)
	return ok && i.Provider == s.Provider && i.ProviderUserId == s.ProviderUserId
}
