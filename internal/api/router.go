package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(a *API, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), TraceIDMiddleware(), CORSMiddleware(allowedOrigins))

	router.GET("/healthz", a.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/stories", a.GenerateStoryHandler)

		knowledge := v1.Group("/knowledge")
		{
			knowledge.POST("", a.AddKnowledgeHandler)
			knowledge.GET("/search", a.SearchKnowledgeHandler)
			knowledge.POST("/fact-check", a.FactCheckHandler)
		}

		v1.POST("/safety/check", a.SafetyCheckHandler)

		reading := v1.Group("/reading")
		{
			reading.POST("/diagnose", a.DiagnoseReadingHandler)
			reading.POST("/recommend", a.RecommendBooksHandler)
			reading.GET("/report/:user_id", a.UserReportHandler)
		}
	}

	return router
}
