package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/storytailor/storytailor/internal/errs"
	"github.com/storytailor/storytailor/internal/llm"
	"github.com/storytailor/storytailor/internal/rag/embeddings"
	"github.com/storytailor/storytailor/internal/rag/knowledge"
	"github.com/storytailor/storytailor/internal/rag/retrieval"
	"github.com/storytailor/storytailor/internal/rag/storages/docstore"
	"github.com/storytailor/storytailor/internal/rag/storages/vectorstore"
	"github.com/storytailor/storytailor/internal/safety"
	"github.com/storytailor/storytailor/internal/story"
	"github.com/storytailor/storytailor/pkg/logger"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(context.Context, *llm.GenerationRequest) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestRouter(t *testing.T, gen llm.TextGenerator) (*gin.Engine, *knowledge.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("api-test", "")
	store := knowledge.NewStore(
		embeddings.NewHashEmbedder(),
		vectorstore.NewMemoryIndex(),
		docstore.NewMemoryStore(),
		log,
	)
	retriever := retrieval.NewService(store, log)
	filter := safety.NewFilter(log)
	engine := story.NewEngine(retriever, gen, filter, 0, log)
	a := NewAPI(engine, retriever, store, filter, log)
	return NewRouter(a, []string{"http://localhost:3000"}), store
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateStoryEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "A gentle story about friendship."})

	w := doRequest(router, http.MethodPost, "/api/v1/stories",
		`{"age": 6, "preferences": ["rabbit", "friendship"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Story           string   `json:"story"`
		Sources         []string `json:"sources"`
		FactChecked     bool     `json:"fact_checked"`
		ConfidenceScore float64  `json:"confidence_score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Story == "" {
		t.Error("expected a story")
	}
	if !resp.FactChecked {
		t.Error("default use_rag should be true")
	}
}

func TestGenerateStoryValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	for _, body := range []string{
		`{"preferences": ["rabbit"]}`,
		`{"age": 2}`,
		`{"age": 16}`,
		`not json`,
	} {
		w := doRequest(router, http.MethodPost, "/api/v1/stories", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestGenerateStoryUpstreamStatus(t *testing.T) {
	gen := &stubGenerator{err: errs.Upstream("chat completion failed", errors.New("connection refused"))}
	router, _ := newTestRouter(t, gen)

	w := doRequest(router, http.MethodPost, "/api/v1/stories", `{"age": 6}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestGenerateStoryRejection(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodPost, "/api/v1/stories",
		`{"age": 5, "preferences": ["kill"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Story           string  `json:"story"`
		ConfidenceScore float64 `json:"confidence_score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ConfidenceScore != 0 {
		t.Errorf("expected confidence 0, got %f", resp.ConfidenceScore)
	}
	if !strings.Contains(resp.Story, "Sorry") {
		t.Errorf("expected apology, got %q", resp.Story)
	}
}

func TestAddKnowledgeEndpoint(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodPost, "/api/v1/knowledge",
		`{"documents": ["owls can turn their heads far around"], "sources": ["bird_facts"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 stored document, got %d", count)
	}
}

func TestAddKnowledgeLengthMismatch(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodPost, "/api/v1/knowledge",
		`{"documents": ["a", "b"], "sources": ["one"]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchKnowledgeEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodGet, "/api/v1/knowledge/search?query=brave+rabbit&k=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count   int               `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count == 0 || resp.Count > 2 {
		t.Errorf("count = %d, want 1..2", resp.Count)
	}
}

func TestFactCheckEndpoint(t *testing.T) {
	router, store := newTestRouter(t, &stubGenerator{reply: "unused"})

	statement := "Honey never spoils when stored properly."
	err := store.AddDocuments(context.Background(), []string{statement}, []string{"food_facts"}, nil)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	w := doRequest(router, http.MethodPost, "/api/v1/knowledge/fact-check",
		`{"statement": "Honey never spoils when stored properly."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Verified   bool    `json:"verified"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Verified {
		t.Errorf("expected verified, confidence %f", resp.Confidence)
	}
}

func TestSafetyCheckEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodPost, "/api/v1/safety/check",
		`{"text": "A bad person tried to kill the rabbit", "age": 5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		IsSafe    bool            `json:"is_safe"`
		Issue     string          `json:"issue"`
		AgeReport json.RawMessage `json:"age_report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsSafe {
		t.Error("expected unsafe verdict")
	}
	if !strings.Contains(resp.Issue, "kill") {
		t.Errorf("issue should reference the word, got %q", resp.Issue)
	}
	if len(resp.AgeReport) == 0 {
		t.Error("expected an age report when age is given")
	}
}

func TestDiagnoseReadingEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodPost, "/api/v1/reading/diagnose",
		`{"user_id": "child-1", "reading_sample": "The cat sat. The dog ran."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID      string `json:"user_id"`
		LexileLevel int    `json:"lexile_level"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "child-1" {
		t.Errorf("user_id = %q", resp.UserID)
	}
	if resp.LexileLevel != 160 {
		t.Errorf("lexile_level = %d, want 160", resp.LexileLevel)
	}
}

func TestRecommendBooksEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodPost, "/api/v1/reading/recommend",
		`{"user_id": "child-1", "reading_level": 400}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Recommendations []struct {
			Title string `json:"title"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Recommendations) == 0 {
		t.Error("expected recommendations")
	}
}

func TestUserReportEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodGet, "/api/v1/reading/report/child-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID string `json:"user_id"`
		Report struct {
			CurrentLexileLevel int `json:"current_lexile_level"`
		} `json:"report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "child-1" {
		t.Errorf("user_id = %q", resp.UserID)
	}
	if resp.Report.CurrentLexileLevel == 0 {
		t.Error("expected a populated report")
	}
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	w := doRequest(router, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{reply: "unused"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stories", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}
}
