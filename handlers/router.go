package handlers

import (
	"net/http"
	"time"

	"contratorealidad-backend/logger"
	"contratorealidad-backend/metrics"
	"contratorealidad-backend/rag"
	"contratorealidad-backend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds everything the HTTP layer serves
type RouterConfig struct {
	Cases          *service.CaseService
	Knowledge      *rag.KnowledgeStore
	AllowedOrigins []string
	MaxUploadBytes int64
	Logger         *logger.Logger
}

// NewRouter builds the gin engine with every API route registered
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log.With("service", "HTTP")))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 8 << 20

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		caseHandler := NewCaseHandler(cfg.Cases, cfg.MaxUploadBytes)
		cases := api.Group("/cases")
		cases.POST("", caseHandler.CreateCase)
		cases.GET("/:id", caseHandler.GetCase)
		cases.DELETE("/:id", caseHandler.DeleteCase)
		cases.POST("/:id/intake/select", caseHandler.SelectIntake)
		cases.POST("/:id/intake", caseHandler.ProcessIntake)
		cases.POST("/:id/intake/cancel", caseHandler.CancelIntake)
		cases.PUT("/:id/facts", caseHandler.SetFacts)
		cases.POST("/:id/summary", caseHandler.GenerateSummary)
		cases.POST("/:id/viability", caseHandler.GenerateViability)
		cases.POST("/:id/advance", caseHandler.Advance)
		cases.POST("/:id/back", caseHandler.Back)
		cases.PUT("/:id/lawyer", caseHandler.SetLawyerName)
		cases.PUT("/:id/power-of-attorney", caseHandler.SetPowerOfAttorney)
		cases.POST("/:id/sections/draft", caseHandler.DraftSection)
		cases.POST("/:id/sections/accept", caseHandler.AcceptSection)
		cases.POST("/:id/sections/revise", caseHandler.ReviseSection)
		cases.POST("/:id/reference-document", caseHandler.AnalyzeReferenceDocument)
		cases.GET("/:id/attempts", caseHandler.ListAttempts)
		cases.GET("/:id/export/lawsuit", caseHandler.ExportLawsuit)
		cases.GET("/:id/export/viability", caseHandler.ExportViability)
		cases.GET("/:id/export/power-of-attorney", caseHandler.ExportPowerOfAttorney)
		cases.GET("/:id/export/transcription", caseHandler.ExportTranscription)

		fileHandler := NewFileHandler(cfg.Cases)
		api.GET("/files/:id", fileHandler.GetFile)

		poaHandler := NewPowerOfAttorneyHandler()
		api.GET("/power-of-attorney/fields", poaHandler.Fields)
		api.POST("/power-of-attorney/render", poaHandler.Render)

		if cfg.Knowledge != nil {
			knowledgeHandler := NewKnowledgeHandler(cfg.Knowledge)
			api.GET("/knowledge/search", knowledgeHandler.Search)
			api.POST("/knowledge", knowledgeHandler.Add)
			api.GET("/knowledge/export", knowledgeHandler.Export)
			api.POST("/knowledge/import", knowledgeHandler.Import)
		}
	}

	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
