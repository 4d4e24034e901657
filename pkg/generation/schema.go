package generation

import (
	"blog-autowriter-be/internal/entity"

	"github.com/google/generative-ai-go/genai"
)

// ResponseSchema is the structured-output contract sent with every request.
func ResponseSchema() *genai.Schema {
	sectionTypes := make([]string, len(entity.SectionTypes))
	for i, t := range entity.SectionTypes {
		sectionTypes[i] = string(t)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"sections": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type":       {Type: genai.TypeString, Enum: sectionTypes},
						"content":    {Type: genai.TypeString},
						"imageIndex": {Type: genai.TypeInteger},
					},
					Required: []string{"type", "content"},
				},
			},
			"tags": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"title", "sections", "tags"},
	}
}
