package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jobx-platform/jobx-backend/internal/handlers"
	"github.com/jobx-platform/jobx-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName      string
	AuthMiddleware   *middleware.AuthMiddleware
	QuestionHandler  *handlers.QuestionHandler
	InterviewHandler *handlers.InterviewHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Questions
	protected.GET("/questions", cfg.QuestionHandler.GetQuestions)
	protected.POST("/questions/by-skills", cfg.QuestionHandler.GetQuestionsBySkills)
	// Interview lifecycle
	protected.POST("/interview", cfg.InterviewHandler.CreateInterview)
	protected.POST("/interview/chunks", cfg.InterviewHandler.SaveChunkNumber)
	protected.POST("/interview/answer", cfg.InterviewHandler.UpdateAnswer)
	protected.POST("/interview/submit", cfg.InterviewHandler.SubmitInterview)
	protected.GET("/interview/count", cfg.InterviewHandler.GetCurrentCountOfInterviews)

	return router
}
