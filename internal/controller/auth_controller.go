package controller

import (
	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/serverutils"
	"blog-autowriter-be/internal/service"
	"blog-autowriter-be/internal/session"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	NaverAuthURL(ctx *fiber.Ctx) error
	NaverLogin(ctx *fiber.Ctx) error
	NaverSignup(ctx *fiber.Ctx) error
	PasswordSignup(ctx *fiber.Ctx) error
	PasswordLogin(ctx *fiber.Ctx) error
	VerifyEmail(ctx *fiber.Ctx) error
	ResendVerification(ctx *fiber.Ctx) error
	ExchangeSession(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
}

type authController struct {
	identityService service.IIdentityService
	passwordService service.IPasswordIdentityService
	sessionService  service.ISessionService
	requireSession  fiber.Handler
}

func NewAuthController(identityService service.IIdentityService, passwordService service.IPasswordIdentityService, sessionService service.ISessionService, requireSession fiber.Handler) IAuthController {
	return &authController{
		identityService: identityService,
		passwordService: passwordService,
		sessionService:  sessionService,
		requireSession:  requireSession,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Get("/naver/url", c.NaverAuthURL)
	h.Post("/naver/login", c.NaverLogin)
	h.Post("/naver/signup", c.NaverSignup)
	h.Post("/password/signup", c.PasswordSignup)
	h.Post("/password/login", c.PasswordLogin)
	h.Post("/email/verify", c.VerifyEmail)
	h.Post("/email/resend", c.requireSession, c.ResendVerification)
	h.Post("/session", c.ExchangeSession)
	h.Post("/logout", c.requireSession, c.Logout)
}

func (c *authController) NaverAuthURL(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get naver login url", c.identityService.AuthURL()))
}

func (c *authController) NaverLogin(ctx *fiber.Ctx) error {
	var req dto.NaverLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.identityService.Login(ctx.Context(), service.ProviderToken{
		AccessToken: req.AccessToken,
		Code:        req.Code,
		State:       req.State,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) NaverSignup(ctx *fiber.Ctx) error {
	var req dto.NaverSignupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.identityService.Signup(ctx.Context(), service.ProviderToken{
		AccessToken: req.AccessToken,
		Code:        req.Code,
		State:       req.State,
	}, service.Consents{
		Terms:     req.AgreeTerms,
		Privacy:   req.AgreePrivacy,
		Age:       req.AgreeAge,
		Marketing: req.AgreeMarketing,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Signup successful", res))
}

func (c *authController) PasswordSignup(ctx *fiber.Ctx) error {
	var req dto.PasswordSignupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.passwordService.Signup(ctx.Context(), service.PasswordSignup{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Consents: service.Consents{
			Terms:     req.AgreeTerms,
			Privacy:   req.AgreePrivacy,
			Age:       req.AgreeAge,
			Marketing: req.AgreeMarketing,
		},
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Signup successful, check your email", res))
}

func (c *authController) PasswordLogin(ctx *fiber.Ctx) error {
	var req dto.PasswordLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.passwordService.Login(ctx.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) VerifyEmail(ctx *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.passwordService.VerifyEmail(ctx.Context(), req.Token)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Email verified", res))
}

func (c *authController) ResendVerification(ctx *fiber.Ctx) error {
	if err := c.passwordService.ResendVerification(ctx.Context(), session.FromCtx(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Verification email sent", nil))
}

func (c *authController) ExchangeSession(ctx *fiber.Ctx) error {
	var req dto.SessionExchangeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Exchange(ctx.Context(), req.Credential)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	if err := c.sessionService.Logout(ctx.Context(), session.FromCtx(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Logout successful", nil))
}
