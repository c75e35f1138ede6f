package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

type ProcessingRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.ProcessingRun) (*types.ProcessingRun, error)
	// ClaimNextRunnable flips the oldest due queued run to running and returns
	// it, or nil when nothing is due. The conditional update is the claim: a
	// second worker racing on the same row sees zero rows affected.
	ClaimNextRunnable(ctx context.Context, tx *gorm.DB) (*types.ProcessingRun, error)
	MarkSucceeded(ctx context.Context, tx *gorm.DB, runID uuid.UUID) error
	MarkFailed(ctx context.Context, tx *gorm.DB, runID uuid.UUID, lastError string) error
}

type processingRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessingRunRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingRunRepo {
	return &processingRunRepo{db: db, log: baseLog.With("repo", "ProcessingRunRepo")}
}

func (pr *processingRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.ProcessingRun) (*types.ProcessingRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (pr *processingRunRepo) ClaimNextRunnable(ctx context.Context, tx *gorm.DB) (*types.ProcessingRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	now := time.Now()

	var candidates []*types.ProcessingRun
	if err := transaction.WithContext(ctx).
		Where("status = ? AND run_after <= ?", types.ProcessingStatusQueued, now).
		Order("run_after asc").
		Limit(1).
		Find(&candidates).Error; err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	run := candidates[0]

	res := transaction.WithContext(ctx).
		Model(&types.ProcessingRun{}).
		Where("id = ? AND status = ?", run.ID, types.ProcessingStatusQueued).
		Updates(map[string]interface{}{
			"status":     types.ProcessingStatusRunning,
			"started_at": now,
			"attempts":   gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the claim race; let the next tick try again.
		return nil, nil
	}

	run.Status = types.ProcessingStatusRunning
	run.StartedAt = &now
	run.Attempts++
	return run, nil
}

func (pr *processingRunRepo) MarkSucceeded(ctx context.Context, tx *gorm.DB, runID uuid.UUID) error {
	return pr.finish(ctx, tx, runID, types.ProcessingStatusSucceeded, "")
}

func (pr *processingRunRepo) MarkFailed(ctx context.Context, tx *gorm.DB, runID uuid.UUID, lastError string) error {
	return pr.finish(ctx, tx, runID, types.ProcessingStatusFailed, lastError)
}

func (pr *processingRunRepo) finish(ctx context.Context, tx *gorm.DB, runID uuid.UUID, status, lastError string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.ProcessingRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":      status,
			"finished_at": now,
			"last_error":  lastError,
		}).Error
}
