package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

type InterviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, interview *types.Interview) (*types.Interview, error)
	// GetByUserAndJob loads the interview with its answer records, or nil when
	// none exists.
	GetByUserAndJob(ctx context.Context, tx *gorm.DB, userID, jobID uuid.UUID) (*types.Interview, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, interviewIDs []uuid.UUID) ([]*types.Interview, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	SaveAnswer(ctx context.Context, tx *gorm.DB, answer *types.InterviewAnswer) error
	// SetTranscription writes the transcription only when none is stored yet.
	// Returns false when the row already carried one, so the write-once rule
	// holds even for two requests racing past the application-level check.
	SetTranscription(ctx context.Context, tx *gorm.DB, answerID uuid.UUID, transcription string) (bool, error)
	SetCompleted(ctx context.Context, tx *gorm.DB, interviewID uuid.UUID) error
}

type interviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInterviewRepo(db *gorm.DB, baseLog *logger.Logger) InterviewRepo {
	return &interviewRepo{db: db, log: baseLog.With("repo", "InterviewRepo")}
}

func (ir *interviewRepo) Create(ctx context.Context, tx *gorm.DB, interview *types.Interview) (*types.Interview, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	if err := transaction.WithContext(ctx).Create(interview).Error; err != nil {
		return nil, err
	}
	return interview, nil
}

func (ir *interviewRepo) GetByUserAndJob(ctx context.Context, tx *gorm.DB, userID, jobID uuid.UUID) (*types.Interview, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Interview
	if err := transaction.WithContext(ctx).
		Preload("Answers").
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (ir *interviewRepo) GetByIDs(ctx context.Context, tx *gorm.DB, interviewIDs []uuid.UUID) ([]*types.Interview, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var results []*types.Interview
	if len(interviewIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Answers").
		Where("id IN ?", interviewIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *interviewRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Interview{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SaveAnswer persists the chunk count and evaluation. The transcription
// column is deliberately excluded; it only moves through SetTranscription so
// no other write path can clobber it.
func (ir *interviewRepo) SaveAnswer(ctx context.Context, tx *gorm.DB, answer *types.InterviewAnswer) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	return transaction.WithContext(ctx).
		Model(&types.InterviewAnswer{}).
		Where("id = ?", answer.ID).
		Updates(map[string]interface{}{
			"number_of_chunks": answer.NumberOfChunks,
			"evaluation":       answer.Evaluation,
		}).Error
}

func (ir *interviewRepo) SetTranscription(ctx context.Context, tx *gorm.DB, answerID uuid.UUID, transcription string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.InterviewAnswer{}).
		Where("id = ? AND transcription IS NULL", answerID).
		Update("transcription", transcription)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (ir *interviewRepo) SetCompleted(ctx context.Context, tx *gorm.DB, interviewID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	// Re-setting the flag on an already completed interview is a no-op write,
	// so a repeated submit stays idempotent in effect.
	return transaction.WithContext(ctx).
		Model(&types.Interview{}).
		Where("id = ?", interviewID).
		Update("is_completed", true).Error
}
