package llm

import "testing"

func TestToChatRequest(t *testing.T) {
	client, err := NewOpenAI("gpt-4o-mini", "test-key")
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	req := client.toChatRequest(&GenerationRequest{
		Instructions: []Instruction{
			{Role: RoleSystem, Text: "You are a story writer."},
			{Role: RoleUser, Text: "Write a story about a rabbit."},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})

	if req.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", req.Model)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("message roles = %q, %q", req.Messages[0].Role, req.Messages[1].Role)
	}
	if req.Messages[1].Content != "Write a story about a rabbit." {
		t.Errorf("user content = %q", req.Messages[1].Content)
	}
	if req.Temperature == nil || *req.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want pointer to 0.7", req.Temperature)
	}
	if req.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d", req.MaxTokens)
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI("gpt-4o-mini", ""); err == nil {
		t.Fatal("expected configuration error for empty api key")
	}
}
