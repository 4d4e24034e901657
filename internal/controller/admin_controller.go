package controller

import (
	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/serverutils"
	"blog-autowriter-be/internal/service"
	"blog-autowriter-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	ListProfiles(ctx *fiber.Ctx) error
	GrantCredits(ctx *fiber.Ctx) error
	SetUnlimited(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
	ReplyMessage(ctx *fiber.Ctx) error
	GetSystemLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminController struct {
	adminService   service.IAdminService
	sessionService service.ISessionService
	requireSession fiber.Handler
}

func NewAdminController(adminService service.IAdminService, sessionService service.ISessionService, requireSession fiber.Handler) IAdminController {
	return &adminController{
		adminService:   adminService,
		sessionService: sessionService,
		requireSession: requireSession,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Post("/login", c.Login)

	// Protected
	p := h.Group("", c.requireSession, serverutils.AdminOnly)
	p.Get("/profiles", c.ListProfiles)
	p.Post("/profiles/:id/credits", c.GrantCredits)
	p.Put("/profiles/:id/unlimited", c.SetUnlimited)
	p.Get("/messages", c.ListMessages)
	p.Post("/messages/:id/reply", c.ReplyMessage)
	p.Get("/logs", c.GetSystemLogs)
	p.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.AdminLogin(ctx.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Admin login successful", res))
}

func (c *adminController) ListProfiles(ctx *fiber.Ctx) error {
	var req dto.AdminProfileListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("invalid query")
	}

	res, err := c.adminService.ListProfiles(ctx.Context(), req.Page, req.Limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list profiles", res))
}

func (c *adminController) GrantCredits(ctx *fiber.Ctx) error {
	var req dto.AdminGrantCreditsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.GrantCredits(ctx.Context(), session.FromCtx(ctx), ctx.Params("id"), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Credits granted", res))
}

func (c *adminController) SetUnlimited(ctx *fiber.Ctx) error {
	var req dto.AdminSetUnlimitedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.adminService.SetUnlimited(ctx.Context(), session.FromCtx(ctx), ctx.Params("id"), req.Unlimited)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Unlimited flag updated", res))
}

func (c *adminController) ListMessages(ctx *fiber.Ctx) error {
	var req dto.AdminMessageListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.ListMessages(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *adminController) ReplyMessage(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid message id")
	}
	var req dto.ReplyMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.ReplyMessage(ctx.Context(), session.FromCtx(ctx), id, req.Reply)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reply sent", res))
}

func (c *adminController) GetSystemLogs(ctx *fiber.Ctx) error {
	var req dto.LogListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return apperror.Validation("invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.GetSystemLogs(ctx.Context(), req.Page, req.Limit, req.Level)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get system logs", res))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	res, err := c.adminService.GetLogDetail(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get log detail", res))
}
