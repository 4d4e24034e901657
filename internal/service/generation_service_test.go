package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/internal/metrics"
	"blog-autowriter-be/internal/pkg/apperror"
	"blog-autowriter-be/internal/repository/specification"
	"blog-autowriter-be/internal/session"
	"blog-autowriter-be/pkg/events"
	"blog-autowriter-be/pkg/generation"
	"blog-autowriter-be/pkg/sanitize"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	briefs  []entity.Brief
	blog    *entity.GeneratedBlog
	err     error
	started chan struct{}
	release chan struct{}
	during  func()
}

func (g *fakeGenerator) Generate(ctx context.Context, brief entity.Brief, photos []entity.Photo) (*entity.GeneratedBlog, error) {
	g.mu.Lock()
	g.calls++
	g.briefs = append(g.briefs, brief)
	g.mu.Unlock()

	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		<-g.release
	}
	if g.during != nil {
		g.during()
	}
	return g.blog, g.err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type scriptedModel struct {
	text string
}

func (m scriptedModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []genai.Part{genai.Text(m.text)}},
			FinishReason: genai.FinishReasonStop,
		}},
	}, nil
}

type memoryStorage struct {
	mu    sync.Mutex
	paths []string
}

func (s *memoryStorage) Upload(ctx context.Context, owner string, id uuid.UUID, contentType string, data io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := "photos/" + owner + "/" + id.String()
	s.paths = append(s.paths, p)
	return p, nil
}

func (s *memoryStorage) Delete(ctx context.Context, storagePath string) error { return nil }

type failingRefundLedger struct {
	ILedgerService
}

func (l failingRefundLedger) Refund(ctx context.Context, userId string, attemptId uuid.UUID) (int, error) {
	return 0, errors.New("ledger store unreachable")
}

func sampleBlog() *entity.GeneratedBlog {
	idx := 0
	return &entity.GeneratedBlog{
		Title: "연남동 소바 맛집",
		Sections: []entity.Section{
			{Type: entity.SectionSubtitle, Content: "첫인상"},
			{Type: entity.SectionImage, Content: "냉소바", ImageIndex: &idx},
			{Type: entity.SectionSummary, Content: "재방문 의사 있음"},
		},
		Tags: []string{"소바", "연남동"},
	}
}

func restaurantInput(wizard string) GenerateInput {
	return GenerateInput{
		WizardSessionId: wizard,
		Brief: entity.Brief{
			Type:       entity.BlogTypeRestaurant,
			Restaurant: &entity.RestaurantBrief{Name: "소바집", Location: "연남동", MainMenu: "냉소바"},
			Rating:     4,
		},
		Photos: []entity.Photo{{Data: jpegBytes}},
	}
}

func userSession(id string) *session.Session {
	return &session.Session{IdentityKey: id, Email: "user@example.com", Provider: session.ProviderNaver, Role: entity.ProfileRoleUser, EmailVerified: true}
}

func newGenerationService(f *fixture, ledger ILedgerService, gen Generator, rec metrics.Recorder, st *memoryStorage) IGenerationService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if st == nil {
		st = &memoryStorage{}
	}
	return NewGenerationService(f.factory, f.store, ledger, gen, st, f.publisher, rec, f.log, 1, time.Minute)
}

func TestGenerate_SuccessKeepsDebitAndPersists(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 3, false)
	gen := &fakeGenerator{blog: sampleBlog()}
	st := &memoryStorage{}
	svc := newGenerationService(f, f.ledger, gen, nil, st)

	res, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))
	require.NoError(t, err)

	assert.Equal(t, 2, res.RemainingCredits)
	assert.Equal(t, "연남동 소바 맛집", res.Post.Title)
	assert.Len(t, res.Post.Sections, 3)
	assert.Equal(t, 2, f.balance(t, "naver:1"))

	posts, err := svc.ListPosts(context.Background(), userSession("naver:1"), 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	post, err := svc.GetPost(context.Background(), userSession("naver:1"), posts[0].Id)
	require.NoError(t, err)
	assert.Len(t, post.PhotoPaths, 1)
	assert.Len(t, st.paths, 1)

	_, err = svc.GetPost(context.Background(), userSession("naver:2"), posts[0].Id)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

// Network failure: balance restored, failure reports the refund.
func TestGenerate_NetworkErrorRefunds(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 1, false)
	reg := prometheus.NewRegistry()
	rec := metrics.NewCollector(reg)
	gen := &fakeGenerator{err: errors.New("dial tcp: connection reset")}
	svc := newGenerationService(f, f.ledger, gen, rec, nil)

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))

	var gf *apperror.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.True(t, gf.Refunded)
	assert.Equal(t, apperror.KindGenerationFailure, gf.CauseKind())
	assert.Equal(t, 1, f.balance(t, "naver:1"))

	count, err := testutil.GatherAndCount(reg, "blogwriter_generation_refunds_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// Zero balance: no external call, InsufficientCredit.
func TestGenerate_InsufficientCreditSkipsModel(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, false)
	gen := &fakeGenerator{blog: sampleBlog()}
	svc := newGenerationService(f, f.ledger, gen, nil, nil)

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))

	assert.True(t, apperror.Is(err, apperror.KindInsufficientCredit))
	assert.Equal(t, 0, gen.callCount())
	assert.Equal(t, 0, f.balance(t, "naver:1"))
}

// A response without tags is a schema violation and the debit is refunded.
func TestGenerate_SchemaViolationRefunds(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 5, false)
	client := generation.NewClient(
		scriptedModel{text: `{"title":"제목","sections":[{"type":"text","content":"본문"}]}`},
		sanitize.NewTextSanitizer(),
		generation.Options{},
	)
	svc := newGenerationService(f, f.ledger, client, nil, nil)

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))

	var gf *apperror.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.True(t, gf.Refunded)
	assert.Equal(t, apperror.KindSchemaViolation, gf.CauseKind())
	assert.ErrorIs(t, err, generation.ErrSchemaViolation)
	assert.Equal(t, 5, f.balance(t, "naver:1"))
}

// Unlimited profiles never move balance, on success or failure.
func TestGenerate_UnlimitedBalanceUnchanged(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, true)

	ok := newGenerationService(f, f.ledger, &fakeGenerator{blog: sampleBlog()}, nil, nil)
	res, err := ok.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))
	require.NoError(t, err)
	assert.True(t, res.Unlimited)
	assert.Equal(t, 0, f.balance(t, "naver:1"))

	failing := newGenerationService(f, f.ledger, &fakeGenerator{err: errors.New("boom")}, nil, nil)
	_, err = failing.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-2"))
	var gf *apperror.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.Equal(t, 0, f.balance(t, "naver:1"))
}

// The refund follows what the debit took, not the flag at failure time.
func TestGenerate_UnlimitedClearedMidCallRefundsNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 0, true)
	gen := &fakeGenerator{err: errors.New("dial tcp: connection reset")}
	gen.during = func() {
		_, err := f.ledger.SetUnlimited(context.Background(), "naver:1", false)
		require.NoError(t, err)
	}
	svc := newGenerationService(f, f.ledger, gen, nil, nil)

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))

	var gf *apperror.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.True(t, gf.Refunded)
	assert.Equal(t, 0, f.balance(t, "naver:1"))
}

func TestGenerate_UnlimitedEnabledMidCallStillRefunds(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 1, false)
	gen := &fakeGenerator{err: errors.New("dial tcp: connection reset")}
	gen.during = func() {
		_, err := f.ledger.SetUnlimited(context.Background(), "naver:1", true)
		require.NoError(t, err)
	}
	svc := newGenerationService(f, f.ledger, gen, nil, nil)

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))

	var gf *apperror.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.True(t, gf.Refunded)
	assert.Equal(t, 1, f.balance(t, "naver:1"))
}

func TestGenerate_RefundFailureRecordsIncident(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 2, false)
	svc := newGenerationService(f, failingRefundLedger{f.ledger}, &fakeGenerator{err: errors.New("timeout")}, nil, nil)

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))

	var gf *apperror.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.False(t, gf.Refunded)
	assert.Error(t, gf.RefundErr)
	assert.Equal(t, 1, f.balance(t, "naver:1"))

	uow := f.factory.NewUnitOfWork(context.Background())
	incidents, err := uow.LedgerIncidentRepository().FindAll(context.Background(), specification.OwnedBy{ProfileID: "naver:1"})
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "refund_failed", incidents[0].Reason)
	assert.Contains(t, f.publisher.types(), events.TypeLedgerIncident)
}

func TestGenerate_SameWizardSessionIsBusy(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 5, false)
	gen := &fakeGenerator{
		blog:    sampleBlog(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newGenerationService(f, f.ledger, gen, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))
		done <- err
	}()
	<-gen.started

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	close(gen.release)
	require.NoError(t, <-done)
	assert.Equal(t, 4, f.balance(t, "naver:1"))
}

func TestGenerate_CallerCancelDoesNotAbortCall(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 1, false)
	gen := &fakeGenerator{
		blog:    sampleBlog(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := newGenerationService(f, f.ledger, gen, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(ctx, userSession("naver:1"), restaurantInput("wiz-1"))
		done <- err
	}()
	<-gen.started
	cancel()
	close(gen.release)

	require.NoError(t, <-done)
	assert.Equal(t, 0, f.balance(t, "naver:1"))
}

func TestGenerate_InvalidInputNeverDebits(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "naver:1", 3, false)
	gen := &fakeGenerator{blog: sampleBlog()}
	svc := newGenerationService(f, f.ledger, gen, nil, nil)

	tooMany := restaurantInput("wiz-1")
	for i := 0; i < MaxPhotos; i++ {
		tooMany.Photos = append(tooMany.Photos, entity.Photo{Data: jpegBytes})
	}
	notImage := restaurantInput("wiz-1")
	notImage.Photos = []entity.Photo{{Data: []byte("plain text, not a photo")}}
	noName := restaurantInput("wiz-1")
	noName.Brief.Restaurant.Name = " "
	mismatch := restaurantInput("wiz-1")
	mismatch.Brief.General = &entity.GeneralBrief{Subject: "x", Category: "y"}
	noWizard := restaurantInput("")

	cases := map[string]GenerateInput{
		"too many photos":  tooMany,
		"not an image":     notImage,
		"missing name":     noName,
		"variant mismatch": mismatch,
		"no wizard":        noWizard,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), userSession("naver:1"), in)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
		})
	}
	assert.Equal(t, 0, gen.callCount())
	assert.Equal(t, 3, f.balance(t, "naver:1"))
}

func TestGenerate_UsesActiveWritingStyle(t *testing.T) {
	f := newFixture(t)
	p := &entity.Profile{
		Id:                 "naver:1",
		Email:              "user@example.com",
		CreditBalance:      1,
		WritingStyles:      []entity.WritingStyle{{Id: "s1", Title: "담백", SampleText: "오늘은 담백하게."}},
		ActiveWritingStyle: "s1",
	}
	require.NoError(t, f.store.Create(context.Background(), p))
	gen := &fakeGenerator{blog: sampleBlog()}
	svc := newGenerationService(f, f.ledger, gen, nil, nil)

	_, err := svc.Generate(context.Background(), userSession("naver:1"), restaurantInput("wiz-1"))
	require.NoError(t, err)
	require.Len(t, gen.briefs, 1)
	assert.Equal(t, "오늘은 담백하게.", gen.briefs[0].StyleSample)
}
