// Package questionbank loads interview question and job fixtures from a YAML
// bank file and seeds them into the database.
package questionbank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

type BankQuestion struct {
	Prompt   string   `yaml:"prompt"`
	Category string   `yaml:"category"`
	Type     string   `yaml:"type"`
	Skills   []string `yaml:"skills"`
}

type BankJobQuestion struct {
	Type   string `yaml:"type"`
	Prompt string `yaml:"prompt"`
}

type BankJob struct {
	Title          string            `yaml:"title"`
	SkillsRequired []string          `yaml:"skills_required"`
	Questions      []BankJobQuestion `yaml:"questions"`
}

type Bank struct {
	Questions []BankQuestion `yaml:"questions"`
	Jobs      []BankJob      `yaml:"jobs"`
}

// Load parses a bank file and validates the minimum shape required for
// seeding. Questions need a prompt; jobs need a title.
func Load(path string) (*Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Bank, error) {
	var bank Bank
	if err := yaml.Unmarshal(raw, &bank); err != nil {
		return nil, fmt.Errorf("parse bank file: %w", err)
	}
	for i, q := range bank.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("question %d has no prompt", i)
		}
	}
	for i, j := range bank.Jobs {
		if strings.TrimSpace(j.Title) == "" {
			return nil, fmt.Errorf("job %d has no title", i)
		}
		for k, q := range j.Questions {
			if strings.TrimSpace(q.Prompt) == "" {
				return nil, fmt.Errorf("job %q question %d has no prompt", j.Title, k)
			}
		}
	}
	return &bank, nil
}

type Seeder struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuestionRepo
	jobRepo      repos.JobRepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger, questionRepo repos.QuestionRepo, jobRepo repos.JobRepo) *Seeder {
	return &Seeder{
		db:           db,
		log:          log.With("component", "QuestionBankSeeder"),
		questionRepo: questionRepo,
		jobRepo:      jobRepo,
	}
}

// Seed inserts the bank contents in one transaction. Questions already
// present (same prompt) are skipped so reruns do not duplicate the bank.
func (s *Seeder) Seed(ctx context.Context, bank *Bank) (int, int, error) {
	var questionsAdded, jobsAdded int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, bq := range bank.Questions {
			var count int64
			if err := tx.Model(&types.Question{}).Where("question = ?", bq.Prompt).Count(&count).Error; err != nil {
				return fmt.Errorf("check existing question: %w", err)
			}
			if count > 0 {
				continue
			}
			question := &types.Question{
				ID:       uuid.New(),
				Question: bq.Prompt,
				Category: bq.Category,
				Type:     defaultQuestionType(bq.Type),
				Skills:   normalizeSkills(bq.Skills),
			}
			if _, err := s.questionRepo.Create(ctx, tx, []*types.Question{question}); err != nil {
				return fmt.Errorf("create question: %w", err)
			}
			questionsAdded++
		}

		for _, bj := range bank.Jobs {
			var count int64
			if err := tx.Model(&types.Job{}).Where("title = ?", bj.Title).Count(&count).Error; err != nil {
				return fmt.Errorf("check existing job: %w", err)
			}
			if count > 0 {
				continue
			}
			job, err := buildJob(bj)
			if err != nil {
				return err
			}
			if _, err := s.jobRepo.Create(ctx, tx, []*types.Job{job}); err != nil {
				return fmt.Errorf("create job: %w", err)
			}
			jobsAdded++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	s.log.Info("Question bank seeded", "questions_added", questionsAdded, "jobs_added", jobsAdded)
	return questionsAdded, jobsAdded, nil
}

func buildJob(bj BankJob) (*types.Job, error) {
	skillsJSON, err := json.Marshal(normalizeSkills(bj.SkillsRequired))
	if err != nil {
		return nil, fmt.Errorf("marshal job skills: %w", err)
	}
	job := &types.Job{
		ID:             uuid.New(),
		Title:          bj.Title,
		SkillsRequired: datatypes.JSON(skillsJSON),
	}
	if len(bj.Questions) > 0 {
		embedded := make([]types.JobQuestion, 0, len(bj.Questions))
		for _, q := range bj.Questions {
			embedded = append(embedded, types.JobQuestion{
				ID:       uuid.New(),
				Type:     defaultQuestionType(q.Type),
				Question: q.Prompt,
			})
		}
		questionsJSON, err := json.Marshal(embedded)
		if err != nil {
			return nil, fmt.Errorf("marshal job questions: %w", err)
		}
		job.Questions = datatypes.JSON(questionsJSON)
	}
	return job, nil
}

func defaultQuestionType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return "video"
	}
	return t
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := map[string]bool{}
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}
