package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Job is read-only from the interview flow's perspective.
type Job struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	Title          string         `gorm:"not null;column:title" json:"title"`
	SkillsRequired datatypes.JSON `gorm:"column:skills_required" json:"skills_required"`
	// Optional job-specific question list, embedded as it came from the
	// employer flow. When present it takes precedence over skill matching.
	Questions datatypes.JSON `gorm:"column:questions" json:"questions,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Job) TableName() string {
	return "job"
}

// JobQuestion is the shape of one entry in Job.Questions.
type JobQuestion struct {
	ID       uuid.UUID `json:"_id"`
	Type     string    `json:"type"`
	Question string    `json:"question"`
}
