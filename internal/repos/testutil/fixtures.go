package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/types"
)

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, prompt string, skills ...string) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:       uuid.New(),
		Question: prompt,
		Category: "general",
		Type:     "behavioral",
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	for _, s := range skills {
		row := types.QuestionSkill{QuestionID: q.ID, Skill: s}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			tb.Fatalf("seed question skill: %v", err)
		}
	}
	q.Skills = skills
	return q
}

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, title string, skillsRequired []string, embedded []types.JobQuestion) *types.Job {
	tb.Helper()
	skillsJSON, err := json.Marshal(skillsRequired)
	if err != nil {
		tb.Fatalf("marshal skills: %v", err)
	}
	j := &types.Job{
		ID:             uuid.New(),
		Title:          title,
		SkillsRequired: datatypes.JSON(skillsJSON),
	}
	if len(embedded) > 0 {
		qJSON, err := json.Marshal(embedded)
		if err != nil {
			tb.Fatalf("marshal embedded questions: %v", err)
		}
		j.Questions = datatypes.JSON(qJSON)
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return j
}

func SeedInterview(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, jobID uuid.UUID, questionIDs []uuid.UUID) *types.Interview {
	tb.Helper()
	iv := &types.Interview{
		ID:     uuid.New(),
		UserID: userID,
		JobID:  jobID,
	}
	for _, qid := range questionIDs {
		iv.Answers = append(iv.Answers, types.InterviewAnswer{
			ID:          uuid.New(),
			InterviewID: iv.ID,
			QuestionID:  qid,
		})
	}
	if err := tx.WithContext(ctx).Create(iv).Error; err != nil {
		tb.Fatalf("seed interview: %v", err)
	}
	return iv
}
