package contract

import (
	"context"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/specification"
)

type SupportMessageRepository interface {
	Create(ctx context.Context, msg *entity.SupportMessage) error
	Update(ctx context.Context, msg *entity.SupportMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SupportMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
