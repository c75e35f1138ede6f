package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

type InterviewService interface {
	// CreateInterview creates the one interview allowed per (user, job), with
	// one empty answer record per question id.
	CreateInterview(ctx context.Context, userID, jobID uuid.UUID, questionIDs []uuid.UUID) (*types.Interview, error)
	SaveChunkCount(ctx context.Context, userID, jobID, questionID uuid.UUID, numberOfChunks int) error
	// UpdateAnswer sets a question's transcription. Write-once: a second call
	// for the same question returns ErrAnswerExists.
	UpdateAnswer(ctx context.Context, userID, jobID, questionID uuid.UUID, transcription string) error
	// SubmitInterview marks the interview completed and enqueues the detached
	// post-processing run.
	SubmitInterview(ctx context.Context, userID, jobID uuid.UUID) error
	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type interviewService struct {
	db              *gorm.DB
	log             *logger.Logger
	interviewRepo   repos.InterviewRepo
	runRepo         repos.ProcessingRunRepo
	processingDelay time.Duration
}

func NewInterviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	interviewRepo repos.InterviewRepo,
	runRepo repos.ProcessingRunRepo,
	processingDelay time.Duration,
) InterviewService {
	return &interviewService{
		db:              db,
		log:             baseLog.With("service", "InterviewService"),
		interviewRepo:   interviewRepo,
		runRepo:         runRepo,
		processingDelay: processingDelay,
	}
}

func (is *interviewService) CreateInterview(ctx context.Context, userID, jobID uuid.UUID, questionIDs []uuid.UUID) (*types.Interview, error) {
	var interview *types.Interview

	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := is.interviewRepo.GetByUserAndJob(ctx, tx, userID, jobID)
		if err != nil {
			return fmt.Errorf("check existing interview: %w", err)
		}
		if existing != nil {
			return ErrInterviewExists
		}

		interview = &types.Interview{
			ID:     uuid.New(),
			UserID: userID,
			JobID:  jobID,
		}
		// A repeated question id would trip the (interview, question) unique
		// index and masquerade as a duplicate interview; keep one answer
		// record per distinct question.
		seen := make(map[uuid.UUID]bool, len(questionIDs))
		for _, qid := range questionIDs {
			if seen[qid] {
				continue
			}
			seen[qid] = true
			interview.Answers = append(interview.Answers, types.InterviewAnswer{
				ID:          uuid.New(),
				InterviewID: interview.ID,
				QuestionID:  qid,
			})
		}

		if _, err := is.interviewRepo.Create(ctx, tx, interview); err != nil {
			// The unique (user_id, job_id) index closes the check-then-write
			// race: a concurrent duplicate surfaces here, not as a second row.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrInterviewExists
			}
			return fmt.Errorf("create interview: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInterviewExists) {
			is.log.Error("CreateInterview failed", "error", err, "user_id", userID, "job_id", jobID)
		}
		return nil, err
	}
	return interview, nil
}

func (is *interviewService) SaveChunkCount(ctx context.Context, userID, jobID, questionID uuid.UUID, numberOfChunks int) error {
	return is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interview, err := is.interviewRepo.GetByUserAndJob(ctx, tx, userID, jobID)
		if err != nil {
			return fmt.Errorf("load interview: %w", err)
		}
		if interview == nil {
			return ErrInterviewNotFound
		}

		answer := findAnswer(interview, questionID)
		if answer == nil {
			return ErrQuestionNotFound
		}

		answer.NumberOfChunks = numberOfChunks
		if err := is.interviewRepo.SaveAnswer(ctx, tx, answer); err != nil {
			return fmt.Errorf("save chunk count: %w", err)
		}
		return nil
	})
}

func (is *interviewService) UpdateAnswer(ctx context.Context, userID, jobID, questionID uuid.UUID, transcription string) error {
	return is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interview, err := is.interviewRepo.GetByUserAndJob(ctx, tx, userID, jobID)
		if err != nil {
			return fmt.Errorf("load interview: %w", err)
		}
		if interview == nil {
			return ErrInterviewNotFound
		}

		answer := findAnswer(interview, questionID)
		if answer == nil {
			return ErrQuestionNotFound
		}
		if answer.Transcription != nil {
			return ErrAnswerExists
		}

		// The conditional write is the authoritative guard: under read
		// committed two racing requests can both pass the check above, but
		// only one flips the NULL column.
		wrote, err := is.interviewRepo.SetTranscription(ctx, tx, answer.ID, transcription)
		if err != nil {
			return fmt.Errorf("save answer: %w", err)
		}
		if !wrote {
			return ErrAnswerExists
		}
		return nil
	})
}

func (is *interviewService) SubmitInterview(ctx context.Context, userID, jobID uuid.UUID) error {
	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interview, err := is.interviewRepo.GetByUserAndJob(ctx, tx, userID, jobID)
		if err != nil {
			return fmt.Errorf("load interview: %w", err)
		}
		if interview == nil {
			return ErrInterviewNotFound
		}

		if err := is.interviewRepo.SetCompleted(ctx, tx, interview.ID); err != nil {
			return fmt.Errorf("set completed: %w", err)
		}

		run := &types.ProcessingRun{
			ID:          uuid.New(),
			InterviewID: interview.ID,
			Status:      types.ProcessingStatusQueued,
			RunAfter:    time.Now().Add(is.processingDelay),
		}
		if _, err := is.runRepo.Create(ctx, tx, run); err != nil {
			return fmt.Errorf("enqueue processing run: %w", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrInterviewNotFound) {
		is.log.Error("SubmitInterview failed", "error", err, "user_id", userID, "job_id", jobID)
	}
	return err
}

func (is *interviewService) CountForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := is.interviewRepo.CountByUserID(ctx, nil, userID)
	if err != nil {
		is.log.Error("CountForUser failed", "error", err, "user_id", userID)
		return 0, fmt.Errorf("count interviews: %w", err)
	}
	return count, nil
}

func findAnswer(interview *types.Interview, questionID uuid.UUID) *types.InterviewAnswer {
	for i := range interview.Answers {
		if interview.Answers[i].QuestionID == questionID {
			return &interview.Answers[i]
		}
	}
	return nil
}
