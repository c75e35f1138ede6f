package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/jobx-platform/jobx-backend/internal/clients/redis"
	"github.com/jobx-platform/jobx-backend/internal/logger"
	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

// InterviewProcessingService drains the processing_run queue: for every
// question of a submitted interview it composes the uploaded chunks into one
// recording, transcribes it when the browser never sent a transcription, and
// evaluates the transcript. Detached from the request cycle; failures are
// logged and the run marked failed, never retried here.
type InterviewProcessingService interface {
	StartWorker(ctx context.Context)
	ProcessRun(ctx context.Context, run *types.ProcessingRun) error
}

type interviewProcessingService struct {
	db            *gorm.DB
	log           *logger.Logger
	runRepo       repos.ProcessingRunRepo
	interviewRepo repos.InterviewRepo
	questionRepo  repos.QuestionRepo
	store         RecordingStore
	video         VideoService
	ai            EvaluationClient
	locker        redisclient.Locker
}

func NewInterviewProcessingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	runRepo repos.ProcessingRunRepo,
	interviewRepo repos.InterviewRepo,
	questionRepo repos.QuestionRepo,
	store RecordingStore,
	video VideoService,
	ai EvaluationClient,
	locker redisclient.Locker,
) InterviewProcessingService {
	return &interviewProcessingService{
		db:            db,
		log:           baseLog.With("service", "InterviewProcessingService"),
		runRepo:       runRepo,
		interviewRepo: interviewRepo,
		questionRepo:  questionRepo,
		store:         store,
		video:         video,
		ai:            ai,
		locker:        locker,
	}
}

func (ps *interviewProcessingService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run, err := ps.runRepo.ClaimNextRunnable(ctx, ps.db)
				if err != nil {
					ps.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if run == nil {
					continue
				}

				if err := ps.ProcessRun(ctx, run); err != nil {
					ps.log.Error("Processing run failed", "error", err, "run_id", run.ID, "interview_id", run.InterviewID)
					if mErr := ps.runRepo.MarkFailed(ctx, ps.db, run.ID, err.Error()); mErr != nil {
						ps.log.Warn("MarkFailed failed", "error", mErr, "run_id", run.ID)
					}
					continue
				}
				if err := ps.runRepo.MarkSucceeded(ctx, ps.db, run.ID); err != nil {
					ps.log.Warn("MarkSucceeded failed", "error", err, "run_id", run.ID)
				}
			}
		}
	}()
}

func (ps *interviewProcessingService) ProcessRun(ctx context.Context, run *types.ProcessingRun) error {
	// A repeated submit enqueues another run for the same interview; the lock
	// keeps two such runs from composing the same objects concurrently.
	if ps.locker != nil {
		key := fmt.Sprintf("processing:interview:%s", run.InterviewID)
		ok, err := ps.locker.Acquire(ctx, key, 15*time.Minute)
		if err != nil {
			return fmt.Errorf("acquire processing lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("interview %s already being processed", run.InterviewID)
		}
		defer func() {
			if err := ps.locker.Release(ctx, key); err != nil {
				ps.log.Warn("Release processing lock failed", "error", err)
			}
		}()
	}

	interviews, err := ps.interviewRepo.GetByIDs(ctx, nil, []uuid.UUID{run.InterviewID})
	if err != nil {
		return fmt.Errorf("load interview: %w", err)
	}
	if len(interviews) == 0 {
		return fmt.Errorf("interview %s not found", run.InterviewID)
	}
	interview := interviews[0]

	ps.log.Info("Processing interview", "interview_id", interview.ID, "questions", len(interview.Answers))

	if err := ps.processVideos(ctx, interview); err != nil {
		return err
	}
	return ps.evaluateTranscriptions(ctx, interview)
}

func (ps *interviewProcessingService) processVideos(ctx context.Context, interview *types.Interview) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for i := range interview.Answers {
		answer := &interview.Answers[i]
		g.Go(func() error {
			chunks, err := ps.store.ListChunkObjects(gctx, interview.UserID, interview.JobID, answer.QuestionID)
			if err != nil {
				return fmt.Errorf("question %s: %w", answer.QuestionID, err)
			}
			if len(chunks) == 0 {
				ps.log.Warn("No chunks uploaded for question", "interview_id", interview.ID, "question_id", answer.QuestionID)
				return nil
			}
			if answer.NumberOfChunks > 0 && len(chunks) != answer.NumberOfChunks {
				ps.log.Warn("Chunk count mismatch",
					"interview_id", interview.ID,
					"question_id", answer.QuestionID,
					"reported", answer.NumberOfChunks,
					"found", len(chunks))
			}

			object, err := ps.store.ComposeRecording(gctx, interview.UserID, interview.JobID, answer.QuestionID, chunks)
			if err != nil {
				return fmt.Errorf("question %s: %w", answer.QuestionID, err)
			}

			// The browser transcription wins when it arrived; the video pass
			// only fills gaps.
			if answer.Transcription != nil {
				return nil
			}
			text, err := ps.video.TranscribeRecording(gctx, ps.store.GCSURI(object))
			if err != nil {
				return fmt.Errorf("transcribe question %s: %w", answer.QuestionID, err)
			}
			wrote, err := ps.interviewRepo.SetTranscription(gctx, nil, answer.ID, text)
			if err != nil {
				return fmt.Errorf("save transcription for question %s: %w", answer.QuestionID, err)
			}
			if !wrote {
				// A late browser transcription landed after we loaded the
				// interview; the stored one wins.
				ps.log.Warn("Transcription already present, keeping stored one",
					"interview_id", interview.ID, "question_id", answer.QuestionID)
				return nil
			}
			answer.Transcription = &text
			return nil
		})
	}
	return g.Wait()
}

func (ps *interviewProcessingService) evaluateTranscriptions(ctx context.Context, interview *types.Interview) error {
	questionIDs := make([]uuid.UUID, 0, len(interview.Answers))
	for _, a := range interview.Answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	questions, err := ps.questionRepo.GetByIDs(ctx, nil, questionIDs)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	prompts := make(map[uuid.UUID]string, len(questions))
	for _, q := range questions {
		prompts[q.ID] = q.Question
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for i := range interview.Answers {
		answer := &interview.Answers[i]
		if answer.Transcription == nil || len(answer.Evaluation) > 0 {
			continue
		}
		g.Go(func() error {
			// Job-embedded questions live outside the bank; the evaluator then
			// sees only the transcription.
			evaluation, err := ps.ai.EvaluateTranscription(gctx, prompts[answer.QuestionID], *answer.Transcription)
			if err != nil {
				return fmt.Errorf("evaluate question %s: %w", answer.QuestionID, err)
			}
			answer.Evaluation = datatypes.JSON(evaluation)
			if err := ps.interviewRepo.SaveAnswer(gctx, nil, answer); err != nil {
				return fmt.Errorf("save evaluation for question %s: %w", answer.QuestionID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
