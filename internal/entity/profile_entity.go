// FILE: internal/entity/profile_entity.go
package entity

import (
	"time"
)

type ProfileRole string

const (
	ProfileRoleUser  ProfileRole = "user"
	ProfileRoleAdmin ProfileRole = "admin"
)

// Profile is the per-user document keyed by identity key (e.g. "naver:123").
// Revision increases by one on every committed write.
type Profile struct {
	Id                         string
	Email                      string
	DisplayName                string
	CreditBalance              int
	Unlimited                  bool
	EmailVerifiedRewardGranted bool
	WritingStyles              []WritingStyle
	ActiveWritingStyle         string
	LinkedProviderId           *string
	Revision                   int64
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

type WritingStyle struct {
	Id         string `json:"id"`
	Title      string `json:"title"`
	SampleText string `json:"sample_text"`
}

// Clone returns a deep copy so mutations never leak into cached documents.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.WritingStyles != nil {
		cp.WritingStyles = make([]WritingStyle, len(p.WritingStyles))
		copy(cp.WritingStyles, p.WritingStyles)
	}
	if p.LinkedProviderId != nil {
		id := *p.LinkedProviderId
		cp.LinkedProviderId = &id
	}
	return &cp
}

// ProfilePatch is a partial update. Nil fields are left untouched.
type ProfilePatch struct {
	Email              *string
	DisplayName        *string
	WritingStyles      *[]WritingStyle
	ActiveWritingStyle *string
}

func (p ProfilePatch) Apply(profile *Profile) {
	if p.Email != nil {
		profile.Email = *p.Email
	}
	if p.DisplayName != nil {
		profile.DisplayName = *p.DisplayName
	}
	if p.WritingStyles != nil {
		profile.WritingStyles = *p.WritingStyles
	}
	if p.ActiveWritingStyle != nil {
		profile.ActiveWritingStyle = *p.ActiveWritingStyle
	}
}

// Identity is the backing record created at provider or password signup.
type Identity struct {
	Key            string
	Provider       string
	ProviderUserId string
	Email          string
	DisplayName    string
	ProfileImage   string
	EmailVerified  bool
	PasswordHash   string // bcrypt, password identities only
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExternalIdentityClaim is produced by verifying a provider access token.
// It is never persisted.
type ExternalIdentityClaim struct {
	IdentityKey        string
	Provider           string
	ExternalUid        string
	Email              string
	DisplayName        string
	ProfileImage       string
	RawProviderPayload map[string]interface{}
}
