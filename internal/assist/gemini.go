// Package assist asks a text-generation model to rewrite the generated
// scene and extracts the code it proposes.
package assist

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-3-flash-preview"

// Gemini streams completions from the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	var sb strings.Builder
	for chunk, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, nil) {
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}
		sb.WriteString(chunk.Text())
	}
	return sb.String(), nil
}
