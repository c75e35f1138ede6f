package types

import (
	"time"

	"github.com/google/uuid"
)

// Question is one row of the question bank. Immutable once created.
type Question struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	Question  string    `gorm:"type:text;not null;column:question" json:"question"`
	Category  string    `gorm:"column:category" json:"category"`
	Type      string    `gorm:"column:type" json:"type"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Populated from question_skill when listing; never written through here.
	Skills []string `gorm:"-" json:"skills,omitempty"`
}

func (Question) TableName() string {
	return "question"
}

// QuestionSkill tags a question with one skill. Skill matching against a
// job's required skills runs over this table.
type QuestionSkill struct {
	QuestionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"question_id"`
	Skill      string    `gorm:"primaryKey;size:128" json:"skill"`
}

func (QuestionSkill) TableName() string {
	return "question_skill"
}
