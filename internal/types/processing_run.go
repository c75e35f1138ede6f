package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProcessingStatusQueued    = "queued"
	ProcessingStatusRunning   = "running"
	ProcessingStatusSucceeded = "succeeded"
	ProcessingStatusFailed    = "failed"
)

// ProcessingRun is one scheduled post-submission pass over an interview:
// compose the uploaded chunks, transcribe, evaluate. RunAfter gives late
// media uploads a grace window before the worker picks the run up.
type ProcessingRun struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"_id"`
	InterviewID uuid.UUID  `gorm:"type:uuid;not null;index" json:"interview_id"`
	Status      string     `gorm:"not null;default:queued;index" json:"status"`
	RunAfter    time.Time  `gorm:"not null;index" json:"run_after"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (ProcessingRun) TableName() string {
	return "processing_run"
}
