package generation

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// NewGeminiModel opens a client and configures the named model for JSON
// output constrained by ResponseSchema. Callers close the returned client.
func NewGeminiModel(ctx context.Context, apiKey, modelName string) (*genai.Client, *genai.GenerativeModel, error) {
	if apiKey == "" {
		return nil, nil, fmt.Errorf("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = ResponseSchema()
	model.SetTemperature(0.8)
	return client, model, nil
}
