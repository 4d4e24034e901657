package contract

import (
	"context"
	"errors"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/repository/specification"
)

// ErrRevisionConflict is returned by CompareAndSwap when the stored revision
// no longer matches the one the caller read.
var ErrRevisionConflict = errors.New("profile revision changed")

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Profile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// CompareAndSwap writes profile only if the stored revision equals
	// expectedRevision. On success profile.Revision is expectedRevision+1.
	CompareAndSwap(ctx context.Context, profile *entity.Profile, expectedRevision int64) error
}

type IdentityRepository interface {
	Create(ctx context.Context, identity *entity.Identity) error
	Update(ctx context.Context, identity *entity.Identity) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Identity, error)
}

// ErrDuplicate is returned by Create when the primary or a unique key is taken.
var ErrDuplicate = errors.New("record already exists")
