package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jobx-platform/jobx-backend/internal/db"
	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/questionbank"
	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/utils"
)

func main() {
	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	defaultPath := utils.GetEnv("QUESTION_BANK_FILE", "configs/question_bank.yaml", log)
	bankPath := flag.String("file", defaultPath, "path to the question bank YAML file")
	flag.Parse()

	bank, err := questionbank.Load(*bankPath)
	if err != nil {
		log.Error("Failed to load question bank", "error", err, "path", *bankPath)
		os.Exit(1)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	questionRepo := repos.NewQuestionRepo(thePG, log)
	jobRepo := repos.NewJobRepo(thePG, log)
	seeder := questionbank.NewSeeder(thePG, log, questionRepo, jobRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	questionsAdded, jobsAdded, err := seeder.Seed(ctx, bank)
	if err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d questions and %d jobs from %s\n", questionsAdded, jobsAdded, *bankPath)
}
