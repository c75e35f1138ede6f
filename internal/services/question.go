package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

// QuestionView is the wire shape of one question in the by-skills response.
// Category is empty for job-embedded questions, which never carried one.
type QuestionView struct {
	ID       uuid.UUID `json:"_id"`
	Type     string    `json:"type"`
	Category string    `json:"category,omitempty"`
	Question string    `json:"question"`
}

type QuestionService interface {
	// GetRandomQuestions samples the whole bank.
	GetRandomQuestions(ctx context.Context) ([]*types.Question, error)
	// GetQuestionsBySkills prefers the job's own attached questions and falls
	// back to skill-tag intersection against the bank.
	GetQuestionsBySkills(ctx context.Context, jobID uuid.UUID) ([]QuestionView, error)
}

// The two endpoints historically read different sample sizes from different
// configuration keys (3 and 5); both stay configurable and separate.
type QuestionConfig struct {
	RandomSampleSize   int
	BySkillsSampleSize int
}

type questionService struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuestionRepo
	jobRepo      repos.JobRepo
	cfg          QuestionConfig
}

func NewQuestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	questionRepo repos.QuestionRepo,
	jobRepo repos.JobRepo,
	cfg QuestionConfig,
) QuestionService {
	if cfg.RandomSampleSize <= 0 {
		cfg.RandomSampleSize = 3
	}
	if cfg.BySkillsSampleSize <= 0 {
		cfg.BySkillsSampleSize = 5
	}
	return &questionService{
		db:           db,
		log:          baseLog.With("service", "QuestionService"),
		questionRepo: questionRepo,
		jobRepo:      jobRepo,
		cfg:          cfg,
	}
}

func (qs *questionService) GetRandomQuestions(ctx context.Context) ([]*types.Question, error) {
	questions, err := qs.questionRepo.GetRandom(ctx, nil, qs.cfg.RandomSampleSize)
	if err != nil {
		qs.log.Error("GetRandomQuestions failed", "error", err)
		return nil, fmt.Errorf("fetch random questions: %w", err)
	}
	return questions, nil
}

func (qs *questionService) GetQuestionsBySkills(ctx context.Context, jobID uuid.UUID) ([]QuestionView, error) {
	jobs, err := qs.jobRepo.GetByIDs(ctx, nil, []uuid.UUID{jobID})
	if err != nil {
		qs.log.Error("GetQuestionsBySkills failed to load job", "error", err, "job_id", jobID)
		return nil, fmt.Errorf("load job: %w", err)
	}
	if len(jobs) == 0 {
		qs.log.Warn("GetQuestionsBySkills: job not found", "job_id", jobID)
		return nil, ErrJobNotFound
	}
	job := jobs[0]

	if len(job.Questions) > 0 {
		var embedded []types.JobQuestion
		if err := json.Unmarshal(job.Questions, &embedded); err != nil {
			return nil, fmt.Errorf("decode job questions: %w", err)
		}
		if len(embedded) > 0 {
			sampled := sampleJobQuestions(embedded, qs.cfg.BySkillsSampleSize)
			views := make([]QuestionView, 0, len(sampled))
			for _, q := range sampled {
				views = append(views, QuestionView{ID: q.ID, Type: q.Type, Question: q.Question})
			}
			return views, nil
		}
	}

	var skills []string
	if len(job.SkillsRequired) > 0 {
		if err := json.Unmarshal(job.SkillsRequired, &skills); err != nil {
			return nil, fmt.Errorf("decode job skills: %w", err)
		}
	}

	questions, err := qs.questionRepo.GetRandomBySkills(ctx, nil, skills, qs.cfg.BySkillsSampleSize)
	if err != nil {
		qs.log.Error("GetQuestionsBySkills failed", "error", err, "job_id", jobID)
		return nil, fmt.Errorf("fetch questions by skills: %w", err)
	}

	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, QuestionView{ID: q.ID, Type: q.Type, Category: q.Category, Question: q.Question})
	}
	return views, nil
}

func sampleJobQuestions(questions []types.JobQuestion, n int) []types.JobQuestion {
	shuffled := make([]types.JobQuestion, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
