// Package story orchestrates children's story generation: safety
// pre-check, optional knowledge retrieval, a single generation call,
// and a sanitizing post-check.
package story

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/storytailor/storytailor/internal/llm"
	"github.com/storytailor/storytailor/internal/rag/confidence"
	"github.com/storytailor/storytailor/internal/rag/retrieval"
	"github.com/storytailor/storytailor/internal/rag/schema"
	"github.com/storytailor/storytailor/internal/safety"
	"github.com/storytailor/storytailor/pkg/logger"
)

const (
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 30 * time.Second

	retrievalTopK = 3
	snippetLength = 150

	ragTemperature   float32 = 0.7
	basicTemperature float32 = 0.8
	maxStoryTokens           = 1000
)

// Request describes a single story generation request.
type Request struct {
	Age          int
	Preferences  []string
	LearningGoal string
	UseRAG       bool
}

// Engine is the top-level story generation orchestrator.
type Engine struct {
	retriever *retrieval.Service
	generator llm.TextGenerator
	filter    *safety.Filter
	timeout   time.Duration
	log       *logger.Logger
}

// NewEngine wires the retrieval service, generation client, and safety
// filter into an orchestrator. A non-positive timeout falls back to
// DefaultTimeout.
func NewEngine(retriever *retrieval.Service, generator llm.TextGenerator, filter *safety.Filter, timeout time.Duration, log *logger.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		retriever: retriever,
		generator: generator,
		filter:    filter,
		timeout:   timeout,
		log:       log,
	}
}

// GenerateStory runs the full pipeline for one request. An unsafe query
// returns a rejection result without calling the generation service.
// Upstream and configuration failures surface as errors.
func (e *Engine) GenerateStory(ctx context.Context, req *Request) (*schema.StoryResult, error) {
	query := strings.Join(req.Preferences, " ")
	if query == "" {
		query = "fun adventure"
	}

	if verdict := e.filter.IsSafe(query); !verdict.IsSafe {
		e.log.Warn(fmt.Sprintf("Rejected story request: %s", verdict.Issue))
		return &schema.StoryResult{
			Story:           fmt.Sprintf("Sorry, we cannot process the requested topic. (%s)", verdict.Issue),
			Sources:         []string{},
			FactChecked:     false,
			ConfidenceScore: 0,
		}, nil
	}

	if req.UseRAG {
		return e.generateWithRAG(ctx, req, query)
	}
	return e.generateBasic(ctx, req, query)
}

func (e *Engine) generateWithRAG(ctx context.Context, req *Request, query string) (*schema.StoryResult, error) {
	docs, err := e.retriever.Retrieve(ctx, query, retrievalTopK, nil)
	if err != nil {
		return nil, err
	}

	contextParts := make([]string, 0, len(docs))
	snippets := make([]string, 0, len(docs))
	sources := make([]string, 0, len(docs))
	seen := make(map[string]bool)
	var distances []float32
	for _, doc := range docs {
		contextParts = append(contextParts, "- "+doc.Content)
		snippets = append(snippets, truncate(doc.Content, snippetLength))
		if !seen[doc.Source] {
			seen[doc.Source] = true
			sources = append(sources, doc.Source)
		}
		if doc.Distance != nil {
			distances = append(distances, *doc.Distance)
		} else {
			distances = append(distances, 0)
		}
	}

	instructions := ragInstructions(req.Age, strings.Join(contextParts, "\n"), req.Preferences, req.LearningGoal, query)
	text, err := e.generate(ctx, instructions, ragTemperature)
	if err != nil {
		return nil, err
	}

	score := confidence.Neutral
	if len(docs) > 0 {
		score = confidence.FromDistances(distances)
	}

	return &schema.StoryResult{
		Story:            e.postCheck(text),
		Sources:          sources,
		FactChecked:      len(docs) > 0,
		ConfidenceScore:  round2(score),
		RetrievedContext: snippets,
	}, nil
}

func (e *Engine) generateBasic(ctx context.Context, req *Request, query string) (*schema.StoryResult, error) {
	text, err := e.generate(ctx, basicInstructions(req.Age, query, req.LearningGoal), basicTemperature)
	if err != nil {
		return nil, err
	}

	return &schema.StoryResult{
		Story:           e.postCheck(text),
		Sources:         []string{},
		FactChecked:     false,
		ConfidenceScore: confidence.Neutral,
	}, nil
}

func (e *Engine) generate(ctx context.Context, instructions []llm.Instruction, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.generator.Generate(ctx, &llm.GenerationRequest{
		Instructions: instructions,
		Temperature:  temperature,
		MaxTokens:    maxStoryTokens,
	})
}

// postCheck sanitizes the generated text when it fails the safety check.
// The sanitized text is not re-validated.
func (e *Engine) postCheck(text string) string {
	if verdict := e.filter.IsSafe(text); !verdict.IsSafe {
		e.log.Warn(fmt.Sprintf("Sanitizing generated story: %s", verdict.Issue))
		return e.filter.Sanitize(text)
	}
	return text
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
