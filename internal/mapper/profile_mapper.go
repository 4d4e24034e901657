package mapper

import (
	"encoding/json"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/model"

	"gorm.io/datatypes"
)

type ProfileMapper struct{}

func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{}
}

func (m *ProfileMapper) ToEntity(p *model.Profile) *entity.Profile {
	if p == nil {
		return nil
	}
	var styles []entity.WritingStyle
	if len(p.WritingStyles) > 0 {
		_ = json.Unmarshal(p.WritingStyles, &styles)
	}
	if styles == nil {
		styles = []entity.WritingStyle{}
	}
	return &entity.Profile{
		Id:                         p.Id,
		Email:                      p.Email,
		DisplayName:                p.DisplayName,
		CreditBalance:              p.CreditBalance,
		Unlimited:                  p.Unlimited,
		EmailVerifiedRewardGranted: p.EmailVerifiedRewardGranted,
		WritingStyles:              styles,
		ActiveWritingStyle:         p.ActiveWritingStyle,
		LinkedProviderId:           p.LinkedProviderId,
		Revision:                   p.Revision,
		CreatedAt:                  p.CreatedAt,
		UpdatedAt:                  p.UpdatedAt,
	}
}

func (m *ProfileMapper) ToModel(p *entity.Profile) *model.Profile {
	if p == nil {
		return nil
	}
	styles := p.WritingStyles
	if styles == nil {
		styles = []entity.WritingStyle{}
	}
	stylesJSON, _ := json.Marshal(styles)
	return &model.Profile{
		Id:                         p.Id,
		Email:                      p.Email,
		DisplayName:                p.DisplayName,
		CreditBalance:              p.CreditBalance,
		Unlimited:                  p.Unlimited,
		EmailVerifiedRewardGranted: p.EmailVerifiedRewardGranted,
		WritingStyles:              datatypes.JSON(stylesJSON),
		ActiveWritingStyle:         p.ActiveWritingStyle,
		LinkedProviderId:           p.LinkedProviderId,
		Revision:                   p.Revision,
		CreatedAt:                  p.CreatedAt,
		UpdatedAt:                  p.UpdatedAt,
	}
}

func (m *ProfileMapper) ToEntities(profiles []*model.Profile) []*entity.Profile {
	entities := make([]*entity.Profile, len(profiles))
	for i, p := range profiles {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

// Identity Mappers

func (m *ProfileMapper) IdentityToEntity(i *model.Identity) *entity.Identity {
	if i == nil {
		return nil
	}
	return &entity.Identity{
		Key:            i.Key,
		Provider:       i.Provider,
		ProviderUserId: i.ProviderUserId,
		Email:          i.Email,
		DisplayName:    i.DisplayName,
		ProfileImage:   i.ProfileImage,
		EmailVerified:  i.EmailVerified,
		PasswordHash:   i.PasswordHash,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func (m *ProfileMapper) IdentityToModel(i *entity.Identity) *model.Identity {
	if i == nil {
		return nil
	}
	return &model.Identity{
		Key:            i.Key,
		Provider:       i.Provider,
		ProviderUserId: i.ProviderUserId,
		Email:          i.Email,
		DisplayName:    i.DisplayName,
		ProfileImage:   i.ProfileImage,
		EmailVerified:  i.EmailVerified,
		PasswordHash:   i.PasswordHash,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}
