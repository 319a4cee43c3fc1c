// Package api exposes the story generation and knowledge base services
// over HTTP.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storytailor/storytailor/internal/errs"
	"github.com/storytailor/storytailor/internal/rag/knowledge"
	"github.com/storytailor/storytailor/internal/rag/retrieval"
	"github.com/storytailor/storytailor/internal/rag/schema"
	"github.com/storytailor/storytailor/internal/reading"
	"github.com/storytailor/storytailor/internal/safety"
	"github.com/storytailor/storytailor/internal/story"
	"github.com/storytailor/storytailor/pkg/logger"
)

// API provides the HTTP handlers for all story services.
type API struct {
	engine    *story.Engine
	retriever *retrieval.Service
	store     *knowledge.Store
	filter    *safety.Filter
	logger    *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(engine *story.Engine, retriever *retrieval.Service, store *knowledge.Store, filter *safety.Filter, log *logger.Logger) *API {
	return &API{
		engine:    engine,
		retriever: retriever,
		store:     store,
		filter:    filter,
		logger:    log,
	}
}

// httpStatus maps an error kind to an HTTP status code.
func httpStatus(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindConfiguration:
		return http.StatusServiceUnavailable
	case errs.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) abortWithError(c *gin.Context, err error) {
	a.logger.Error(fmt.Sprintf("Request failed: %v", err))
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

type storyRequest struct {
	Age          int      `json:"age" binding:"required,gte=3,lte=15"`
	Preferences  []string `json:"preferences"`
	LearningGoal string   `json:"learning_goal"`
	UseRAG       *bool    `json:"use_rag"`
}

// GenerateStoryHandler handles story generation requests.
func (a *API) GenerateStoryHandler(c *gin.Context) {
	var req storyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	result, err := a.engine.GenerateStory(c.Request.Context(), &story.Request{
		Age:          req.Age,
		Preferences:  req.Preferences,
		LearningGoal: req.LearningGoal,
		UseRAG:       useRAG,
	})
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type knowledgeAddRequest struct {
	Documents []string          `json:"documents" binding:"required"`
	Sources   []string          `json:"sources" binding:"required"`
	Metadatas []schema.Metadata `json:"metadatas"`
}

// AddKnowledgeHandler adds documents to the knowledge base.
func (a *API) AddKnowledgeHandler(c *gin.Context) {
	var req knowledgeAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.store.AddDocuments(c.Request.Context(), req.Documents, req.Sources, req.Metadatas); err != nil {
		a.abortWithError(c, err)
		return
	}

	count, err := a.store.Count(c.Request.Context())
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("%d documents have been added to the knowledge base.", len(req.Documents)),
		"total_documents": count,
	})
}

// SearchKnowledgeHandler searches the knowledge base.
func (a *API) SearchKnowledgeHandler(c *gin.Context) {
	query := c.Query("query")
	k, err := strconv.Atoi(c.DefaultQuery("k", "3"))
	if err != nil || k <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
		return
	}

	var filter *schema.Filter
	if category, theme := c.Query("category"), c.Query("theme"); category != "" || theme != "" {
		filter = &schema.Filter{Category: category, Theme: theme}
	}

	results, err := a.retriever.Retrieve(c.Request.Context(), query, k, filter)
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

type factCheckRequest struct {
	Statement string  `json:"statement" binding:"required"`
	Threshold float64 `json:"threshold"`
}

// FactCheckHandler verifies a statement against the knowledge base.
func (a *API) FactCheckHandler(c *gin.Context) {
	var req factCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := a.retriever.FactCheck(c.Request.Context(), req.Statement, req.Threshold)
	if err != nil {
		a.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type safetyCheckRequest struct {
	Text string `json:"text" binding:"required"`
	Age  int    `json:"age"`
}

// SafetyCheckHandler runs the content filter over a text.
func (a *API) SafetyCheckHandler(c *gin.Context) {
	var req safetyCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verdict := a.filter.IsSafe(req.Text)
	resp := gin.H{
		"is_safe": verdict.IsSafe,
		"issue":   verdict.Issue,
	}
	if req.Age > 0 {
		resp["age_report"] = a.filter.CheckAgeAppropriateness(req.Text, req.Age)
	}

	c.JSON(http.StatusOK, resp)
}

type diagnoseRequest struct {
	UserID        string `json:"user_id" binding:"required"`
	ReadingSample string `json:"reading_sample" binding:"required"`
}

// DiagnoseReadingHandler estimates a reading level from a sample.
func (a *API) DiagnoseReadingHandler(c *gin.Context) {
	var req diagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	diagnosis := reading.EstimateLexile(req.ReadingSample)
	c.JSON(http.StatusOK, gin.H{
		"user_id":      req.UserID,
		"lexile_level": diagnosis.LexileLevel,
		"assessment_details": gin.H{
			"word_count":             diagnosis.WordCount,
			"sentence_count":         diagnosis.SentenceCount,
			"avg_words_per_sentence": diagnosis.AvgWordsPerSentence,
			"method":                 diagnosis.Method,
		},
	})
}

type recommendRequest struct {
	UserID       string   `json:"user_id"`
	ReadingLevel int      `json:"reading_level" binding:"required"`
	Preferences  []string `json:"preferences"`
}

// RecommendBooksHandler recommends books for a reading level.
func (a *API) RecommendBooksHandler(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": reading.Recommend(req.ReadingLevel),
	})
}

// UserReportHandler returns the user's reading activity report.
// TODO: back this with real per-user progress data once a user store exists.
func (a *API) UserReportHandler(c *gin.Context) {
	userID := c.Param("user_id")

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"report": gin.H{
			"total_stories_read":         15,
			"total_reading_time_minutes": 180,
			"current_lexile_level":       450,
			"level_progress":             "+30 from last month",
			"favorite_topics":            []string{"animals", "adventure", "friendship"},
			"achievements":               []string{"First story completed", "10 books achieved", "7 consecutive days of reading"},
		},
	})
}

// HealthHandler reports service liveness.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
