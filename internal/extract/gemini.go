package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used when none is configured.
const DefaultModelName = "gemini-2.0-flash"

// GeminiGenerator implements TextGenerator against the Gemini API.
// Credentials come from the environment (GEMINI_API_KEY or Application
// Default Credentials).
type GeminiGenerator struct {
	model string
}

// NewGeminiGenerator creates a generator for the given model name; an
// empty name selects DefaultModelName.
func NewGeminiGenerator(model string) *GeminiGenerator {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiGenerator{model: model}
}

var _ TextGenerator = (*GeminiGenerator)(nil)

// Generate sends the prompt as a single user turn and returns the raw
// response text. One best-effort call, no retries; the caller imposes the
// deadline through ctx.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Generate: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("Generate: empty response from model")
	}

	return rawText, nil
}
