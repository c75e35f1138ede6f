package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Interview is one candidate's attempt at a job's question set. The composite
// unique index enforces at most one interview per (user, job) at the storage
// layer, so a duplicate create loses the race instead of writing twice.
type Interview struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"_id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_interview_user_job" json:"user_id"`
	JobID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_interview_user_job" json:"job_id"`
	IsCompleted bool              `gorm:"not null;default:false;column:is_completed" json:"isCompleted"`
	Answers     []InterviewAnswer `gorm:"foreignKey:InterviewID" json:"data"`
	CreatedAt   time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (Interview) TableName() string {
	return "interview"
}

// InterviewAnswer holds the chunk count, transcription and evaluation for one
// question of one interview. Transcription is write-once: a nil pointer means
// not yet answered.
type InterviewAnswer struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"_id"`
	InterviewID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_answer_interview_question" json:"interview_id"`
	QuestionID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_answer_interview_question" json:"question"`
	NumberOfChunks int            `gorm:"not null;default:0;column:number_of_chunks" json:"number_of_chunks"`
	Transcription  *string        `gorm:"type:text;column:transcription" json:"transcription,omitempty"`
	Evaluation     datatypes.JSON `gorm:"column:evaluation" json:"evaluation,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (InterviewAnswer) TableName() string {
	return "interview_answer"
}
