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

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	UnreadCount(ctx *fiber.Ctx) error
}

type messageController struct {
	messageService service.IMessageService
	requireSession fiber.Handler
}

func NewMessageController(messageService service.IMessageService, requireSession fiber.Handler) IMessageController {
	return &messageController{
		messageService: messageService,
		requireSession: requireSession,
	}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/messages")
	h.Use(c.requireSession)
	h.Post("", c.Send)
	h.Get("", c.List)
	h.Get("/unread", c.UnreadCount)
	h.Patch("/:id/read", c.MarkRead)
}

func (c *messageController) Send(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.messageService.Send(ctx.Context(), session.FromCtx(ctx), req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *messageController) List(ctx *fiber.Ctx) error {
	res, err := c.messageService.ListMine(ctx.Context(), session.FromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list messages", res))
}

func (c *messageController) MarkRead(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid message id")
	}
	if err := c.messageService.MarkRead(ctx.Context(), session.FromCtx(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Message marked as read", nil))
}

func (c *messageController) UnreadCount(ctx *fiber.Ctx) error {
	count, err := c.messageService.UnreadCount(ctx.Context(), session.FromCtx(ctx).IdentityKey)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get unread count", dto.UnreadCountResponse{Unread: count}))
}
