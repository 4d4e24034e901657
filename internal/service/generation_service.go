package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"blog-autowriter-be/internal/dto"
	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/metrics"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/pkg/logger"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/repository/unitofwork"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/events"
	"blog-autowriter-be/pkg/generation"
	"blog-autowriter-be/pkg/storage"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	MaxPhotos      = 10
	MaxPhotoBytes  = 5 * 1024 * 1024
	inFlightMargin = 30 * time.Second
)

// Generator produces a validated blog from a brief. *generation.Client
// implements it.
type Generator interface {
	Generate(ctx context.Context, brief entity.Brief, photos []entity.Photo) (*entity.GeneratedBlog, error)
}

type GenerateInput struct {
	WizardSessionId string
	Brief           entity.Brief
	Photos          []entity.Photo
	StyleId         string
}

type IGenerationService interface {
	Generate(ctx context.Context, sess *session.Session, in GenerateInput) (*dto.GenerateBlogResponse, error)
	ListPosts(ctx context.Context, sess *session.Session, limit int) ([]*dto.BlogPostListItem, error)
	GetPost(ctx context.Context, sess *session.Session, id uuid.UUID) (*dto.BlogPostResponse, error)
}

type generationService struct {
	uowFactory unitofwork.RepositoryFactory
	store      IProfileStore
	ledger     ILedgerService
	generator  Generator
	storage    storage.Storage
	publisher  events.Publisher
	metrics    metrics.Recorder
	logger     logger.ILogger
	cost       int
	inFlight   *cache.Cache
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	store IProfileStore,
	ledger ILedgerService,
	generator Generator,
	storage storage.Storage,
	publisher events.Publisher,
	recorder metrics.Recorder,
	logger logger.ILogger,
	costPerBlog int,
	callTimeout time.Duration,
) IGenerationService {
	if costPerBlog <= 0 {
		costPerBlog = 1
	}
	return &generationService{
		uowFactory: uowFactory,
		store:      store,
		ledger:     ledger,
		generator:  generator,
		storage:    storage,
		publisher:  publisher,
		metrics:    recorder,
		logger:     logger,
		cost:       costPerBlog,
		inFlight:   cache.New(callTimeout+inFlightMargin, time.Minute),
	}
}

func (s *generationService) Generate(ctx context.Context, sess *session.Session, in GenerateInput) (*dto.GenerateBlogResponse, error) {
	userId := sess.IdentityKey

	// 1. Validate locally. Nothing below this point runs for a bad brief.
	if err := validateInput(&in); err != nil {
		s.metrics.RecordAttempt(metrics.OutcomeInvalid)
		return nil, err
	}

	profile, err := s.store.Get(ctx, userId)
	if err != nil {
		return nil, err
	}
	applyStyle(&in, profile)

	// 2. One outstanding attempt per wizard session.
	guardKey := userId + "|" + in.WizardSessionId
	if err := s.inFlight.Add(guardKey, struct{}{}, cache.DefaultExpiration); err != nil {
		s.metrics.RecordAttempt(metrics.OutcomeBusy)
		return nil, apperror.Conflict("이미 글을 생성하고 있습니다. 잠시만 기다려주세요.")
	}
	defer s.inFlight.Delete(guardKey)

	// 3. Debit.
	attemptId := uuid.New()
	ok, err := s.ledger.Debit(ctx, userId, s.cost, attemptId)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.RecordAttempt(metrics.OutcomeInsufficient)
		return nil, apperror.InsufficientCredit()
	}

	// 4. The model call outlives the request. Only the client's own timeout
	// can end it.
	callCtx := context.WithoutCancel(ctx)
	logDetails := map[string]interface{}{
		"user_id":    userId,
		"attempt_id": attemptId.String(),
		"blog_type":  string(in.Brief.Type),
		"photos":     len(in.Photos),
	}
	s.logger.Info("GENERATION", "Calling generator", logDetails)

	start := time.Now()
	blog, genErr := s.generator.Generate(callCtx, in.Brief, in.Photos)
	s.metrics.RecordLatency(time.Since(start))

	if genErr != nil {
		s.metrics.RecordAttempt(metrics.OutcomeFailed)
		return nil, s.compensate(callCtx, userId, attemptId, classify(genErr))
	}

	// 5. Success. The debit stands.
	s.metrics.RecordAttempt(metrics.OutcomeSuccess)
	post := &entity.GeneratedPost{
		Id:        uuid.New(),
		ProfileId: userId,
		AttemptId: attemptId,
		BlogType:  in.Brief.Type,
		Blog:      *blog,
		CreatedAt: time.Now(),
	}
	s.persist(callCtx, post, in.Photos)

	balance, unlimited, err := s.ledger.Balance(callCtx, userId)
	if err != nil {
		s.logger.Warn("GENERATION", "Could not read balance after success", map[string]interface{}{
			"user_id": userId,
			"error":   err.Error(),
		})
	}

	s.logger.Info("GENERATION", "Blog generated", map[string]interface{}{
		"user_id":    userId,
		"attempt_id": attemptId.String(),
		"sections":   len(blog.Sections),
	})
	return &dto.GenerateBlogResponse{
		Post:             *toPostResponse(post),
		RemainingCredits: balance,
		Unlimited:        unlimited,
	}, nil
}

func classify(err error) error {
	if errors.Is(err, generation.ErrSchemaViolation) {
		return apperror.Wrap(apperror.KindSchemaViolation, "생성된 글의 형식이 올바르지 않습니다.", err)
	}
	return apperror.Wrap(apperror.KindGenerationFailure, "AI 서비스 호출에 실패했습니다.", err)
}

// compensate refunds the attempt's debit. A failed refund is recorded as a
// ledger incident and still surfaces as a GenerationFailure.
func (s *generationService) compensate(ctx context.Context, userId string, attemptId uuid.UUID, cause error) error {
	balance, refundErr := s.ledger.Refund(ctx, userId, attemptId)
	if refundErr == nil {
		s.metrics.RecordRefund(true)
		s.logger.Warn("GENERATION", "Generation failed, credit refunded", map[string]interface{}{
			"user_id":    userId,
			"attempt_id": attemptId.String(),
			"balance":    balance,
			"cause":      cause.Error(),
		})
		return &apperror.GenerationFailure{Cause: cause, Refunded: true}
	}

	s.metrics.RecordRefund(false)
	s.metrics.RecordLedgerIncident()
	s.logger.Error("GENERATION", "Refund failed after generation failure", map[string]interface{}{
		"user_id":    userId,
		"attempt_id": attemptId.String(),
		"cause":      cause.Error(),
		"refund_err": refundErr.Error(),
	})

	incident := &entity.LedgerIncident{
		Id:        uuid.New(),
		ProfileId: userId,
		AttemptId: attemptId,
		Reason:    "refund_failed",
		Detail:    refundErr.Error(),
		CreatedAt: time.Now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LedgerIncidentRepository().Create(ctx, incident); err != nil {
		s.logger.Error("GENERATION", "Failed to record ledger incident", map[string]interface{}{
			"attempt_id": attemptId.String(),
			"error":      err.Error(),
		})
	}
	if err := s.publisher.Publish(ctx, events.New(events.TypeLedgerIncident, map[string]interface{}{
		"user_id":    userId,
		"attempt_id": attemptId.String(),
		"reason":     incident.Reason,
	})); err != nil {
		s.logger.Warn("GENERATION", "Failed to publish ledger incident", map[string]interface{}{"error": err.Error()})
	}

	return &apperror.GenerationFailure{Cause: cause, Refunded: false, RefundErr: refundErr}
}

// persist saves the post and archives its photos. Failures are logged only;
// the caller already has the result.
func (s *generationService) persist(ctx context.Context, post *entity.GeneratedPost, photos []entity.Photo) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.GeneratedPostRepository()
	if err := repo.Create(ctx, post); err != nil {
		s.logger.Error("GENERATION", "Failed to save generated post", map[string]interface{}{
			"attempt_id": post.AttemptId.String(),
			"error":      err.Error(),
		})
		return
	}

	if s.storage == nil || len(photos) == 0 {
		return
	}
	paths := make([]string, 0, len(photos))
	for _, photo := range photos {
		p, err := s.storage.Upload(ctx, post.ProfileId, uuid.New(), photo.MIMEType, bytes.NewReader(photo.Data))
		if err != nil {
			s.logger.Warn("GENERATION", "Photo archive failed", map[string]interface{}{
				"post_id": post.Id.String(),
				"error":   err.Error(),
			})
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return
	}
	post.PhotoPaths = paths
	if err := repo.Update(ctx, post); err != nil {
		s.logger.Warn("GENERATION", "Failed to attach photo paths", map[string]interface{}{
			"post_id": post.Id.String(),
			"error":   err.Error(),
		})
	}
}

func (s *generationService) ListPosts(ctx context.Context, sess *session.Session, limit int) ([]*dto.BlogPostListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	posts, err := uow.GeneratedPostRepository().FindAll(ctx,
		specification.OwnedBy{ProfileID: sess.IdentityKey},
		specification.NewestFirst(),
		specification.Pagination{Limit: limit},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.BlogPostListItem, len(posts))
	for i, p := range posts {
		items[i] = &dto.BlogPostListItem{
			Id:        p.Id,
			BlogType:  string(p.BlogType),
			Title:     p.Blog.Title,
			Tags:      p.Blog.Tags,
			CreatedAt: p.CreatedAt,
		}
	}
	return items, nil
}

func (s *generationService) GetPost(ctx context.Context, sess *session.Session, id uuid.UUID) (*dto.BlogPostResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	post, err := uow.GeneratedPostRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{ProfileID: sess.IdentityKey},
	)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperror.NotFound("post")
	}
	return toPostResponse(post), nil
}

func validateInput(in *GenerateInput) error {
	if strings.TrimSpace(in.WizardSessionId) == "" {
		return apperror.Validation("wizard session id is required")
	}
	if err := in.Brief.Validate(); err != nil {
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	}
	if len(in.Photos) > MaxPhotos {
		return apperror.Validation("사진은 최대 10장까지 업로드할 수 있습니다.")
	}
	for i := range in.Photos {
		p := &in.Photos[i]
		if len(p.Data) == 0 {
			return apperror.Validation("빈 사진 파일이 포함되어 있습니다.")
		}
		if len(p.Data) > MaxPhotoBytes {
			return apperror.Validation("사진 한 장의 크기는 5MB를 넘을 수 없습니다.")
		}
		detected := http.DetectContentType(p.Data)
		if !strings.HasPrefix(detected, "image/") {
			return apperror.Validation("이미지 파일만 업로드할 수 있습니다.")
		}
		p.MIMEType = detected
	}
	return nil
}

// applyStyle fills the brief's style sample from the chosen, or else the
// active, saved writing style.
func applyStyle(in *GenerateInput, profile *entity.Profile) {
	if strings.TrimSpace(in.Brief.StyleSample) != "" {
		return
	}
	styleId := in.StyleId
	if styleId == "" {
		styleId = profile.ActiveWritingStyle
	}
	if styleId == "" {
		return
	}
	for _, st := range profile.WritingStyles {
		if st.Id == styleId {
			in.Brief.StyleSample = st.SampleText
			return
		}
	}
}

func toPostResponse(p *entity.GeneratedPost) *dto.BlogPostResponse {
	sections := make([]dto.SectionResponse, len(p.Blog.Sections))
	for i, sec := range p.Blog.Sections {
		sections[i] = dto.SectionResponse{
			Type:       string(sec.Type),
			Content:    sec.Content,
			ImageIndex: sec.ImageIndex,
		}
	}
	tags := p.Blog.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.BlogPostResponse{
		Id:         p.Id,
		AttemptId:  p.AttemptId,
		BlogType:   string(p.BlogType),
		Title:      p.Blog.Title,
		Sections:   sections,
		Tags:       tags,
		PhotoPaths: p.PhotoPaths,
		CreatedAt:  p.CreatedAt,
	}
}
