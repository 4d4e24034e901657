package contract

import (
	"context"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/specification"
)

type GeneratedPostRepository interface {
	Create(ctx context.Context, post *entity.GeneratedPost) error
	Update(ctx context.Context, post *entity.GeneratedPost) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GeneratedPost, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GeneratedPost, error)
}
