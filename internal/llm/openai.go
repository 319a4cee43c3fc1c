package llm

import (
	"context"
	"errors"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/storytailor/storytailor/internal/errs"
)

// OpenAI generates text through the OpenAI chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI client.
func NewOpenAI(model, apiKey string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errs.Configuration("openai api key is not set")
	}
	config := openai.DefaultConfig(apiKey)
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Generate sends the instructions as a chat completion request and
// returns the first choice.
func (o *OpenAI) Generate(ctx context.Context, req *GenerationRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.toChatRequest(req))
	if err != nil {
		return "", errs.Upstream("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.Upstream("chat completion returned no choices", errors.New("empty response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// toChatRequest converts our request format to the OpenAI one. The API
// type takes Temperature as a pointer so that zero can be sent
// explicitly.
func (o *OpenAI) toChatRequest(req *GenerationRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Instructions))
	for _, instruction := range req.Instructions {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(instruction.Role),
			Content: instruction.Text,
		})
	}

	temperature := req.Temperature
	return openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   req.MaxTokens,
	}
}
