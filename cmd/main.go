package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/jobx-platform/jobx-backend/internal/clients/redis"
	"github.com/jobx-platform/jobx-backend/internal/db"
	"github.com/jobx-platform/jobx-backend/internal/handlers"
	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/middleware"
	"github.com/jobx-platform/jobx-backend/internal/observability"
	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/server"
	"github.com/jobx-platform/jobx-backend/internal/services"
	"github.com/jobx-platform/jobx-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	maxAttempts := utils.GetEnvAsInt("MAX_ATTEMPTS", 5, log)
	randomSampleSize := utils.GetEnvAsInt("NUMBER_OF_QUESTIONS_IN_INTERVIEW", 3, log)
	bySkillsSampleSize := utils.GetEnvAsInt("NUMBER_OF_QUESTIONS_BY_SKILLS", 5, log)
	processingDelay := utils.GetEnvAsInt("PROCESSING_DELAY_SECONDS", 30, log)
	_ = maxAttempts

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "jobx-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	questionRepo := repos.NewQuestionRepo(thePG, log)
	jobRepo := repos.NewJobRepo(thePG, log)
	interviewRepo := repos.NewInterviewRepo(thePG, log)
	runRepo := repos.NewProcessingRunRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(log, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	questionService := services.NewQuestionService(thePG, log, questionRepo, jobRepo, services.QuestionConfig{
		RandomSampleSize:   randomSampleSize,
		BySkillsSampleSize: bySkillsSampleSize,
	})
	interviewService := services.NewInterviewService(thePG, log, interviewRepo, runRepo, time.Duration(processingDelay)*time.Second)

	// Post-processing worker. Media and evaluation credentials are optional:
	// without them submissions still queue runs, they just sit until a worker
	// with credentials picks them up.
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	videoService, err := services.NewVideoService(log)
	if err != nil {
		log.Warn("Could not init VideoService", "error", err)
	}
	evaluationClient, err := services.NewEvaluationClient(log)
	if err != nil {
		log.Warn("Could not init EvaluationClient", "error", err)
	}
	redisLocker, err := redisclient.NewLocker(log)
	if err != nil {
		log.Warn("Could not init redis locker, processing runs without a distributed lock", "error", err)
	}
	if bucketService != nil && videoService != nil && evaluationClient != nil {
		processingService := services.NewInterviewProcessingService(
			thePG,
			log,
			runRepo,
			interviewRepo,
			questionRepo,
			bucketService,
			videoService,
			evaluationClient,
			redisLocker,
		)
		processingService.StartWorker(context.Background())
	} else {
		log.Warn("Processing worker disabled: missing media or evaluation credentials")
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	questionHandler := handlers.NewQuestionHandler(log, questionService)
	interviewHandler := handlers.NewInterviewHandler(log, interviewService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:      "jobx-backend",
		AuthMiddleware:   authMiddleware,
		QuestionHandler:  questionHandler,
		InterviewHandler: interviewHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
