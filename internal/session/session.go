// Package session carries the authenticated caller explicitly from the
// HTTP layer into services.
package session

import (
	"time"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/pkg/credential"

	"github.com/gofiber/fiber/v2"
)

const localsKey = "session"

const (
	ProviderNaver    = "naver.com"
	ProviderPassword = "password"
)

type Session struct {
	IdentityKey   string
	Email         string
	Provider      string
	Role          entity.ProfileRole
	EmailVerified bool
	TokenID       string
	ExpiresAt     time.Time
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == entity.ProfileRoleAdmin
}

func FromClaims(c *credential.Claims) *Session {
	return &Session{
		IdentityKey:   c.IdentityKey,
		Email:         c.Email,
		Provider:      c.Provider,
		Role:          entity.ProfileRole(c.Role),
		EmailVerified: c.EmailVerified,
		TokenID:       c.TokenID,
		ExpiresAt:     c.ExpiresAt,
	}
}

func (s *Session) Subject() credential.Subject {
	return credential.Subject{
		IdentityKey:   s.IdentityKey,
		Email:         s.Email,
		Provider:      s.Provider,
		Role:          string(s.Role),
		EmailVerified: s.EmailVerified,
	}
}

// Store attaches s to the request.
func Store(ctx *fiber.Ctx, s *Session) {
	ctx.Locals(localsKey, s)
}

// FromCtx returns the session stored by the auth middleware, or nil.
func FromCtx(ctx *fiber.Ctx) *Session {
	s, _ := ctx.Locals(localsKey).(*Session)
	return s
}
