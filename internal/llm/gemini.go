package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/storytailor/storytailor/internal/errs"
)

// Gemini generates text through the Google Generative AI API.
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates a new Gemini client.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errs.Configuration("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errs.Upstream("failed to create genai client", err)
	}
	return &Gemini{client: client, modelName: model}, nil
}

// Generate sends the instructions to the model. System instructions are
// set on the model; user instructions become content parts. A fresh
// model handle is built per request so sampling parameters do not leak
// between concurrent calls.
func (g *Gemini) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	var parts []genai.Part
	for _, instruction := range req.Instructions {
		if instruction.Role == RoleSystem {
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(instruction.Text)},
			}
			continue
		}
		parts = append(parts, genai.Text(instruction.Text))
	}
	if len(parts) == 0 {
		return "", errs.Validation("generation request has no user instructions")
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", errs.Upstream("gemini generation failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errs.Upstream("gemini returned no candidates", errors.New("empty response"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
