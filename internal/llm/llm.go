// Package llm wraps hosted text-generation providers behind a single
// TextGenerator interface.
package llm

import (
	"context"
	"fmt"

	"github.com/storytailor/storytailor/internal/errs"
)

// Role identifies the speaker of an instruction.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Instruction is one prompt message sent to the generation service.
type Instruction struct {
	Role Role
	Text string
}

// GenerationRequest carries the prompt and sampling parameters for a
// single completion.
type GenerationRequest struct {
	Instructions []Instruction
	Temperature  float32
	MaxTokens    int
}

// TextGenerator is implemented by all generation provider clients.
type TextGenerator interface {
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}

// NewClient creates a TextGenerator for the configured provider.
func NewClient(ctx context.Context, provider, model, apiKey string) (TextGenerator, error) {
	switch provider {
	case "openai":
		return NewOpenAI(model, apiKey)
	case "gemini":
		return NewGemini(ctx, model, apiKey)
	default:
		return nil, errs.Configuration(fmt.Sprintf("unsupported LLM provider: %s", provider))
	}
}
