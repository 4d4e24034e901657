package controller

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/serverutils"
	"blog-autowriter-be/internal/service"
	"blog-autowriter-be/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBlogController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	ListPosts(ctx *fiber.Ctx) error
	GetPost(ctx *fiber.Ctx) error
}

type blogController struct {
	generationService service.IGenerationService
	requireSession    fiber.Handler
	generateLimiter   fiber.Handler
}

func NewBlogController(generationService service.IGenerationService, requireSession, generateLimiter fiber.Handler) IBlogController {
	return &blogController{
		generationService: generationService,
		requireSession:    requireSession,
		generateLimiter:   generateLimiter,
	}
}

func (c *blogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/blog")
	h.Use(c.requireSession)
	h.Post("/generate", c.generateLimiter, c.Generate)
	h.Get("/posts", c.ListPosts)
	h.Get("/posts/:id", c.GetPost)
}

func (c *blogController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateBlogRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("요청 형식이 올바르지 않습니다.")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	photos, err := readPhotos(ctx)
	if err != nil {
		return err
	}

	res, err := c.generationService.Generate(ctx.Context(), session.FromCtx(ctx), service.GenerateInput{
		WizardSessionId: req.WizardSessionId,
		Brief:           briefFromRequest(req),
		Photos:          photos,
		StyleId:         req.StyleId,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Blog generated", res))
}

func briefFromRequest(req dto.GenerateBlogRequest) entity.Brief {
	brief := entity.Brief{
		Type:         entity.BlogType(req.Type),
		Mood:         req.Mood,
		SpecialNotes: req.SpecialNotes,
		Rating:       req.Rating,
	}
	switch brief.Type {
	case entity.BlogTypeRestaurant:
		brief.Restaurant = &entity.RestaurantBrief{Name: req.Name, Location: req.Location, MainMenu: req.MainMenu}
	case entity.BlogTypeGeneral:
		brief.General = &entity.GeneralBrief{Subject: req.Subject, Category: req.Category}
	}
	return brief
}

// readPhotos loads the "photos" file parts. A request without a multipart
// body simply has no photos; a multipart body that does not parse is rejected
// before anything is charged.
func readPhotos(ctx *fiber.Ctx) ([]entity.Photo, error) {
	if !strings.HasPrefix(strings.ToLower(ctx.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, apperror.Validation("사진 업로드 형식이 올바르지 않습니다.")
	}
	files := form.File["photos"]
	if len(files) > service.MaxPhotos {
		return nil, apperror.Validation(fmt.Sprintf("사진은 최대 %d장까지 업로드할 수 있습니다.", service.MaxPhotos))
	}

	photos := make([]entity.Photo, 0, len(files))
	for _, fh := range files {
		if fh.Size > service.MaxPhotoBytes {
			return nil, apperror.Validation("사진 한 장의 크기는 5MB를 넘을 수 없습니다.")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperror.Validation("사진 파일을 읽을 수 없습니다.")
		}
		data, err := io.ReadAll(io.LimitReader(f, service.MaxPhotoBytes+1))
		f.Close()
		if err != nil {
			return nil, apperror.Validation("사진 파일을 읽을 수 없습니다.")
		}
		photos = append(photos, entity.Photo{MIMEType: fh.Header.Get("Content-Type"), Data: data})
	}
	return photos, nil
}

func (c *blogController) ListPosts(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))

	res, err := c.generationService.ListPosts(ctx.Context(), session.FromCtx(ctx), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list posts", res))
}

func (c *blogController) GetPost(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.Validation("invalid post id")
	}

	res, err := c.generationService.GetPost(ctx.Context(), session.FromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get post", res))
}
