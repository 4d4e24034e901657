package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	id := uuid.New()
	p, err := s.Upload(context.Background(), "naver:abc", id, "image/jpeg", bytes.NewReader([]byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "photos/naver_abc/"+id.String()+".jpg", p)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, s.Delete(context.Background(), p))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(p)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	assert.NoError(t, s.Delete(context.Background(), p))
}

func TestStoragePath_FlattensOwner(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	tests := []struct {
		owner       string
		contentType string
		want        string
	}{
		{"naver:1", "image/png", "photos/naver_1/11111111-1111-1111-1111-111111111111.png"},
		{"../etc", "image/webp", "photos/__etc/11111111-1111-1111-1111-111111111111.webp"},
		{"x/y", "application/pdf", "photos/x_y/11111111-1111-1111-1111-111111111111.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.owner, func(t *testing.T) {
			assert.Equal(t, tt.want, storagePath(tt.owner, id, tt.contentType))
		})
	}
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}
