package serverutils

import (
	"errors"
	"log"

	"blog-autowriter-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindInvalidArgument, apperror.KindSchemaViolation:
		return fiber.StatusBadRequest
	case apperror.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperror.KindInsufficientCredit:
		return fiber.StatusPaymentRequired
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound, apperror.KindNotRegistered:
		return fiber.StatusNotFound
	case apperror.KindAlreadyExists, apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindRateLimited:
		return fiber.StatusTooManyRequests
	case apperror.KindGenerationFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware renders every error returned by a handler in the
// standard envelope. Typed errors keep their kind and corrective action.
func ErrorHandlerMiddleware(ctx *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
	}

	kind := apperror.KindOf(err)
	status := StatusFor(kind)
	resp := ErrorResponse(status, err.Error())
	resp.Kind = string(kind)

	var gf *apperror.GenerationFailure
	var ae *apperror.Error
	switch {
	case errors.As(err, &gf):
		resp.Message = gf.UserMessage()
		resp.Data = fiber.Map{"refunded": gf.Refunded, "cause": string(gf.CauseKind())}
	case errors.As(err, &ae):
		resp.Message = ae.Message
		resp.Action = ae.Action
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("[HTTP] ❌ %s %s: %v", ctx.Method(), ctx.Path(), err)
		resp.Message = "Internal server error"
	}
	return ctx.Status(status).JSON(resp)
}
