package dto

import "time"

type NaverAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// NaverLoginRequest carries either a provider access token or an
// authorization code to be exchanged server-side.
type NaverLoginRequest struct {
	AccessToken string `json:"access_token" validate:"required_without=Code"`
	Code        string `json:"code" validate:"required_without=AccessToken"`
	State       string `json:"state"`
}

type NaverSignupRequest struct {
	AccessToken    string `json:"access_token" validate:"required_without=Code"`
	Code           string `json:"code" validate:"required_without=AccessToken"`
	State          string `json:"state"`
	AgreeTerms     bool   `json:"agree_terms"`
	AgreePrivacy   bool   `json:"agree_privacy"`
	AgreeAge       bool   `json:"agree_age"`
	AgreeMarketing bool   `json:"agree_marketing"`
}

type PasswordSignupRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=72"`
	DisplayName    string `json:"display_name" validate:"max=50"`
	AgreeTerms     bool   `json:"agree_terms"`
	AgreePrivacy   bool   `json:"agree_privacy"`
	AgreeAge       bool   `json:"agree_age"`
	AgreeMarketing bool   `json:"agree_marketing"`
}

type PasswordLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// CredentialResponse is returned by the identity bridge. The credential must
// be exchanged for a session right away.
type CredentialResponse struct {
	Credential  string    `json:"credential"`
	ExpiresAt   time.Time `json:"expires_at"`
	IdentityKey string    `json:"identity_key"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

type SessionExchangeRequest struct {
	Credential string `json:"credential" validate:"required"`
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Role      string           `json:"role"`
	Profile   *ProfileResponse `json:"profile,omitempty"`
}
