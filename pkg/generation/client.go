package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"blog-autowriter-be/internal/entity"
	"blog-autowriter-be/pkg/sanitize"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
)

// ErrModelCall marks a failure to obtain any response from the model.
var ErrModelCall = errors.New("model call failed")

// Model is the subset of *genai.GenerativeModel the client depends on.
type Model interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Options struct {
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

type Client struct {
	model     Model
	limiter   *rate.Limiter
	sanitizer sanitize.Sanitizer
	timeout   time.Duration
}

func NewClient(model Model, sanitizer sanitize.Sanitizer, opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		model:     model,
		limiter:   rate.NewLimiter(limit, burst),
		sanitizer: sanitizer,
		timeout:   opts.Timeout,
	}
}

// Generate performs exactly one model call for the brief and returns the
// validated blog. Errors wrap ErrModelCall or ErrSchemaViolation.
func (c *Client) Generate(ctx context.Context, brief entity.Brief, photos []entity.Photo) (*entity.GeneratedBlog, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limit: %v", ErrModelCall, err)
	}

	parts := make([]genai.Part, 0, len(photos)+2)
	parts = append(parts, genai.Text(BuildPrompt(brief, len(photos))))
	for _, p := range photos {
		parts = append(parts, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
	}
	parts = append(parts, genai.Text(closingInstruction))

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Printf("[Generation] ❌ model call failed after %s: %v", time.Since(start), err)
		return nil, fmt.Errorf("%w: %v", ErrModelCall, err)
	}
	log.Printf("[Generation] ✅ model responded in %s", time.Since(start))

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return Parse(text, len(photos), c.sanitizer)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", violation("empty response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", violation("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", violation("no candidates")
	}

	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", violation("candidate blocked by safety filter")
	}
	if cand.Content == nil {
		return "", violation("candidate has no content")
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}
