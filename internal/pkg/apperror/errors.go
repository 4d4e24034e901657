// Package apperror defines the closed error taxonomy shared by services and
// controllers. Callers branch on Kind, never on message text.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindInsufficientCredit Kind = "INSUFFICIENT_CREDIT"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindInvalidArgument    Kind = "INVALID_ARGUMENT"
	KindNotRegistered      Kind = "NOT_REGISTERED"
	KindAlreadyExists      Kind = "ALREADY_EXISTS"
	KindGenerationFailure  Kind = "GENERATION_FAILURE"
	KindSchemaViolation    Kind = "SCHEMA_VIOLATION"
	KindForbidden          Kind = "FORBIDDEN"
	KindConflict           Kind = "CONFLICT"
	KindRateLimited        Kind = "RATE_LIMITED"
	KindInternal           Kind = "INTERNAL"
)

// Error is the typed error carried across layers.
// Action tells the client which corrective flow to route to.
type Error struct {
	Kind    Kind
	Message string
	Action  string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithAction returns a copy of e carrying the corrective action hint.
func (e *Error) WithAction(action string) *Error {
	cp := *e
	cp.Action = action
	return &cp
}

// GenerationFailure is returned by the generation transaction whenever the
// external call did not produce a valid post. It always reports whether the
// paired debit was compensated.
type GenerationFailure struct {
	Cause     error
	Refunded  bool
	RefundErr error
}

func (g *GenerationFailure) Error() string {
	if g.Refunded {
		return fmt.Sprintf("generation failed, credit refunded: %v", g.Cause)
	}
	if g.RefundErr != nil {
		return fmt.Sprintf("generation failed, refund failed (%v): %v", g.RefundErr, g.Cause)
	}
	return fmt.Sprintf("generation failed: %v", g.Cause)
}

func (g *GenerationFailure) Unwrap() error {
	return g.Cause
}

// UserMessage is the text shown to the end user.
func (g *GenerationFailure) UserMessage() string {
	if g.Refunded {
		return "블로그 생성 중 오류가 발생했습니다. 작성권이 반환되었습니다. 다시 시도해주세요."
	}
	return "블로그 생성 중 오류가 발생했습니다. 작성권 반환에 실패했습니다. 고객센터로 문의해주세요."
}

// CauseKind reports whether the failure came from a schema violation or a
// transport/provider error.
func (g *GenerationFailure) CauseKind() Kind {
	var e *Error
	if errors.As(g.Cause, &e) && e.Kind == KindSchemaViolation {
		return KindSchemaViolation
	}
	return KindGenerationFailure
}

// KindOf walks the wrap chain and returns the first taxonomy kind found.
// GenerationFailure takes precedence over the kind of its cause.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var g *GenerationFailure
	if errors.As(err, &g) {
		return KindGenerationFailure
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Constructors used across services.

func Validation(message string) *Error {
	return New(KindValidation, message).WithAction("입력값을 확인한 뒤 다시 시도해주세요.")
}

func InsufficientCredit() *Error {
	return New(KindInsufficientCredit, "블로그 작성권이 부족합니다.").
		WithAction("관리자에게 작성권 충전을 문의해주세요.")
}

func NotFound(what string) *Error {
	return New(KindNotFound, what+" not found")
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message).WithAction("다시 로그인해주세요.")
}

func InvalidArgument(message string) *Error {
	return New(KindInvalidArgument, message)
}

func NotRegistered() *Error {
	return New(KindNotRegistered, "가입되지 않은 계정입니다.").WithAction("signup")
}

func AlreadyExists() *Error {
	return New(KindAlreadyExists, "이미 등록된 계정이 있습니다.").WithAction("login")
}

func SchemaViolation(message string) *Error {
	return New(KindSchemaViolation, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}
