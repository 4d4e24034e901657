// Package storage archives post photos on the local disk or in S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Storage interface {
	// Upload stores data under a path derived from owner and id and returns it.
	Upload(ctx context.Context, owner string, id uuid.UUID, contentType string, data io.Reader) (string, error)
	Delete(ctx context.Context, storagePath string) error
}

type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

type StorageConfig struct {
	Type         StorageType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// storagePath is photos/<owner>/<id><ext>. The owner key is flattened so
// "naver:123" stays a single path segment.
func storagePath(owner string, id uuid.UUID, contentType string) string {
	safeOwner := strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_").Replace(owner)
	return path.Join("photos", safeOwner, id.String()+extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".bin"
	}
}
