package controller

import (
	"strconv"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/serverutils"
	"blog-autowriter-be/internal/service"
	"blog-autowriter-be/internal/session"

	"github.com/gofiber/fiber/v2"
)

type IProfileController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	SaveWritingStyles(ctx *fiber.Ctx) error
	SetActiveWritingStyle(ctx *fiber.Ctx) error
	ClaimEmailReward(ctx *fiber.Ctx) error
	CreditHistory(ctx *fiber.Ctx) error
}

type profileController struct {
	profileService service.IProfileService
	requireSession fiber.Handler
}

func NewProfileController(profileService service.IProfileService, requireSession fiber.Handler) IProfileController {
	return &profileController{
		profileService: profileService,
		requireSession: requireSession,
	}
}

func (c *profileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/profile")
	h.Use(c.requireSession)
	h.Get("", c.GetProfile)
	h.Put("/writing-styles", c.SaveWritingStyles)
	h.Put("/writing-style", c.SetActiveWritingStyle)
	h.Post("/email-reward", c.ClaimEmailReward)
	h.Get("/credits/history", c.CreditHistory)
}

func (c *profileController) GetProfile(ctx *fiber.Ctx) error {
	res, err := c.profileService.GetProfile(ctx.Context(), session.FromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}

func (c *profileController) SaveWritingStyles(ctx *fiber.Ctx) error {
	var req dto.SaveWritingStylesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.profileService.SaveWritingStyles(ctx.Context(), session.FromCtx(ctx), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Writing styles saved", res))
}

func (c *profileController) SetActiveWritingStyle(ctx *fiber.Ctx) error {
	var req dto.SetActiveWritingStyleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.profileService.SetActiveWritingStyle(ctx.Context(), session.FromCtx(ctx), req.StyleId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Active writing style updated", res))
}

func (c *profileController) ClaimEmailReward(ctx *fiber.Ctx) error {
	res, err := c.profileService.ClaimEmailVerifiedReward(ctx.Context(), session.FromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Email reward processed", res))
}

func (c *profileController) CreditHistory(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))

	res, err := c.profileService.CreditHistory(ctx.Context(), session.FromCtx(ctx), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get credit history", res))
}
