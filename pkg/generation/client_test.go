package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/pkg/sanitize"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls int
	parts []genai.Part
}

func (f *fakeModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.parts = parts
	return f.resp, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []genai.Part{genai.Text(s)}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func restaurantBrief() entity.Brief {
	return entity.Brief{
		Type:       entity.BlogTypeRestaurant,
		Restaurant: &entity.RestaurantBrief{Name: "소바집", Location: "연남동", MainMenu: "냉소바"},
		Mood:       "아늑한",
		Rating:     4,
	}
}

func TestGenerate_SendsPromptPhotosAndClosing(t *testing.T) {
	model := &fakeModel{resp: textResponse(`{"title":"연남동 소바","sections":[{"type":"image","content":"냉소바","imageIndex":0}],"tags":["소바"]}`)}
	client := NewClient(model, sanitize.NewTextSanitizer(), Options{})

	photos := []entity.Photo{{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}}
	blog, err := client.Generate(context.Background(), restaurantBrief(), photos)
	require.NoError(t, err)

	assert.Equal(t, "연남동 소바", blog.Title)
	assert.Equal(t, 1, model.calls)
	require.Len(t, model.parts, 3)
	assert.Equal(t, genai.Blob{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}, model.parts[1])
	assert.Equal(t, genai.Text(closingInstruction), model.parts[2])
}

func TestGenerate_ModelErrorIsModelCall(t *testing.T) {
	model := &fakeModel{err: errors.New("503 unavailable")}
	client := NewClient(model, sanitize.NewTextSanitizer(), Options{})

	_, err := client.Generate(context.Background(), restaurantBrief(), nil)
	assert.ErrorIs(t, err, ErrModelCall)
	assert.NotErrorIs(t, err, ErrSchemaViolation)
}

func TestGenerate_BlockedOrEmptyIsSchemaViolation(t *testing.T) {
	cases := map[string]*genai.GenerateContentResponse{
		"nil":           nil,
		"no candidates": {},
		"prompt blocked": {
			PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
		},
		"safety finish": {
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		},
		"malformed": textResponse(`{"title":"t"`),
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			client := NewClient(&fakeModel{resp: resp}, sanitize.NewTextSanitizer(), Options{})
			_, err := client.Generate(context.Background(), restaurantBrief(), nil)
			assert.ErrorIs(t, err, ErrSchemaViolation)
		})
	}
}

func TestGenerate_CanceledContextFailsBeforeCall(t *testing.T) {
	model := &fakeModel{resp: textResponse(`{}`)}
	client := NewClient(model, sanitize.NewTextSanitizer(), Options{RequestsPerMinute: 1, Burst: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, restaurantBrief(), nil)
	assert.ErrorIs(t, err, ErrModelCall)
	assert.Equal(t, 0, model.calls)
}

func TestBuildPrompt_IsDeterministicAndVariantSpecific(t *testing.T) {
	brief := restaurantBrief()
	brief.StyleSample = "오늘도 맛있는 하루였어요 😋"

	first := BuildPrompt(brief, 2)
	assert.Equal(t, first, BuildPrompt(brief, 2))
	assert.Contains(t, first, "맛집 전문 블로거")
	assert.Contains(t, first, "소바집")
	assert.Contains(t, first, "5점 만점에 4점")
	assert.Contains(t, first, "오늘도 맛있는 하루였어요")
	assert.Contains(t, first, "0부터 1까지")

	general := BuildPrompt(entity.Brief{
		Type:    entity.BlogTypeGeneral,
		General: &entity.GeneralBrief{Subject: "제주 여행", Category: "여행"},
	}, 0)
	assert.Contains(t, general, "파워 블로거 (분야: 여행)")
	assert.Contains(t, general, "image 섹션을 만들지 마세요")
	assert.False(t, strings.Contains(general, "점 만점에"))
}
