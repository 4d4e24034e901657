// FILE: internal/pkg/serverutils/jwt_middleware.go
package serverutils

import (
	"strings"

	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Authenticator resolves a bearer token into a session.
type Authenticator interface {
	Authenticate(token string) (*session.Session, error)
}

// SessionMiddleware requires a valid bearer session and stores it in locals.
// Websocket upgrades may pass the token as ?token= instead.
func SessionMiddleware(auth Authenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := bearerToken(ctx)
		if tokenStr == "" {
			return apperror.Unauthenticated("Missing token")
		}

		sess, err := auth.Authenticate(tokenStr)
		if err != nil {
			return err
		}

		session.Store(ctx, sess)
		return ctx.Next()
	}
}

// AdminOnly must run after SessionMiddleware.
func AdminOnly(ctx *fiber.Ctx) error {
	if !session.FromCtx(ctx).IsAdmin() {
		return apperror.Forbidden("관리자만 접근할 수 있습니다")
	}
	return ctx.Next()
}

func bearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) >= 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ctx.Query("token")
}
