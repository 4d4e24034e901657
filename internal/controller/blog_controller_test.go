package controller

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"testing"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/pkg/serverutils"
	"blog-autowriter-be/internal/service"
	"blog-autowriter-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGenerationService struct {
	calls int
}

func (s *countingGenerationService) Generate(ctx context.Context, sess *session.Session, in service.GenerateInput) (*dto.GenerateBlogResponse, error) {
	s.calls++
	return &dto.GenerateBlogResponse{}, nil
}

func (s *countingGenerationService) ListPosts(ctx context.Context, sess *session.Session, limit int) ([]*dto.BlogPostListItem, error) {
	return nil, nil
}

func (s *countingGenerationService) GetPost(ctx context.Context, sess *session.Session, id uuid.UUID) (*dto.BlogPostResponse, error) {
	return nil, nil
}

func photoCountApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware})
	app.Post("/", func(ctx *fiber.Ctx) error {
		photos, err := readPhotos(ctx)
		if err != nil {
			return err
		}
		return ctx.SendString(strconv.Itoa(len(photos)))
	})
	return app
}

func send(t *testing.T, app *fiber.App, path, contentType string, body []byte) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestReadPhotos(t *testing.T) {
	app := photoCountApp()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photos", "a.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	status, body := send(t, app, "/", w.FormDataContentType(), buf.Bytes())
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1", body)

	status, body = send(t, app, "/", fiber.MIMEApplicationJSON, []byte(`{}`))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "0", body)

	status, _ = send(t, app, "/", "multipart/form-data; boundary=missing", []byte("not a multipart body"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGenerate_MalformedUploadNeverReachesService(t *testing.T) {
	svc := &countingGenerationService{}
	withSession := func(ctx *fiber.Ctx) error {
		session.Store(ctx, &session.Session{IdentityKey: "naver:1"})
		return ctx.Next()
	}
	pass := func(ctx *fiber.Ctx) error { return ctx.Next() }

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandlerMiddleware})
	NewBlogController(svc, withSession, pass).RegisterRoutes(app)

	status, _ := send(t, app, "/blog/generate", "multipart/form-data; boundary=missing", []byte("not a multipart body"))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, 0, svc.calls)
}
