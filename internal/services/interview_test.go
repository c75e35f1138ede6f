package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jobx-platform/jobx-backend/internal/repos"
	"github.com/jobx-platform/jobx-backend/internal/repos/testutil"
	"github.com/jobx-platform/jobx-backend/internal/types"
)

func TestCreateInterview_SecondCreateForSameUserJobFails(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	userID := uuid.New()
	jobID := uuid.New()
	questionIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	first, err := svc.CreateInterview(ctx, userID, jobID, questionIDs)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if len(first.Answers) != 3 {
		t.Fatalf("expected 3 answer records, got %d", len(first.Answers))
	}

	_, err = svc.CreateInterview(ctx, userID, jobID, questionIDs)
	if !errors.Is(err, ErrInterviewExists) {
		t.Fatalf("expected ErrInterviewExists, got %v", err)
	}

	var count int64
	if err := db.Model(&types.Interview{}).Count(&count).Error; err != nil {
		t.Fatalf("count interviews: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 interview, got %d", count)
	}
}

func TestCreateInterview_RepeatedQuestionIDCollapsesToOneAnswer(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	questionID := uuid.New()
	other := uuid.New()
	interview, err := svc.CreateInterview(ctx, uuid.New(), uuid.New(), []uuid.UUID{questionID, questionID, other})
	if err != nil {
		t.Fatalf("create with repeated question id must not fail: %v", err)
	}
	if len(interview.Answers) != 2 {
		t.Fatalf("expected 2 answer records, got %d", len(interview.Answers))
	}
}

func TestCreateInterview_DifferentJobSameUserAllowed(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	userID := uuid.New()
	if _, err := svc.CreateInterview(ctx, userID, uuid.New(), []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateInterview(ctx, userID, uuid.New(), []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("second create for a different job: %v", err)
	}

	count, err := svc.CountForUser(ctx, userID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count=2, got %d", count)
	}
}

func TestUpdateAnswer_SecondWriteConflicts(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	userID := uuid.New()
	jobID := uuid.New()
	questionID := uuid.New()
	testutil.SeedInterview(t, ctx, db, userID, jobID, []uuid.UUID{questionID})

	if err := svc.UpdateAnswer(ctx, userID, jobID, questionID, "first transcription"); err != nil {
		t.Fatalf("first update: %v", err)
	}
	err := svc.UpdateAnswer(ctx, userID, jobID, questionID, "second transcription")
	if !errors.Is(err, ErrAnswerExists) {
		t.Fatalf("expected ErrAnswerExists, got %v", err)
	}

	stored, err := interviewRepo.GetByUserAndJob(ctx, nil, userID, jobID)
	if err != nil {
		t.Fatalf("reload interview: %v", err)
	}
	if stored.Answers[0].Transcription == nil || *stored.Answers[0].Transcription != "first transcription" {
		t.Fatalf("expected first transcription to survive, got %v", stored.Answers[0].Transcription)
	}
}

func TestUpdateAnswer_MissingInterviewAndQuestion(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	userID := uuid.New()
	jobID := uuid.New()

	err := svc.UpdateAnswer(ctx, userID, jobID, uuid.New(), "t")
	if !errors.Is(err, ErrInterviewNotFound) {
		t.Fatalf("expected ErrInterviewNotFound, got %v", err)
	}

	testutil.SeedInterview(t, ctx, db, userID, jobID, []uuid.UUID{uuid.New()})
	err = svc.UpdateAnswer(ctx, userID, jobID, uuid.New(), "t")
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestSaveChunkCount_UnknownQuestionLeavesInterviewUnmodified(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	userID := uuid.New()
	jobID := uuid.New()
	questionID := uuid.New()
	testutil.SeedInterview(t, ctx, db, userID, jobID, []uuid.UUID{questionID})

	err := svc.SaveChunkCount(ctx, userID, jobID, uuid.New(), 7)
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}

	stored, err := interviewRepo.GetByUserAndJob(ctx, nil, userID, jobID)
	if err != nil {
		t.Fatalf("reload interview: %v", err)
	}
	if stored.Answers[0].NumberOfChunks != 0 {
		t.Fatalf("expected chunk count untouched, got %d", stored.Answers[0].NumberOfChunks)
	}
}

func TestSaveChunkCount_MissingInterview(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewInterviewService(db, log, repos.NewInterviewRepo(db, log), repos.NewProcessingRunRepo(db, log), 30*time.Second)

	err := svc.SaveChunkCount(ctx, uuid.New(), uuid.New(), uuid.New(), 3)
	if !errors.Is(err, ErrInterviewNotFound) {
		t.Fatalf("expected ErrInterviewNotFound, got %v", err)
	}
}

func TestSubmitInterview_MissingInterviewMutatesNothing(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewInterviewService(db, log, repos.NewInterviewRepo(db, log), repos.NewProcessingRunRepo(db, log), 30*time.Second)

	err := svc.SubmitInterview(ctx, uuid.New(), uuid.New())
	if !errors.Is(err, ErrInterviewNotFound) {
		t.Fatalf("expected ErrInterviewNotFound, got %v", err)
	}

	var runs int64
	if err := db.Model(&types.ProcessingRun{}).Count(&runs).Error; err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 0 {
		t.Fatalf("expected no processing runs, got %d", runs)
	}
}

func TestSubmitInterview_SetsCompletedAndEnqueuesRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	userID := uuid.New()
	jobID := uuid.New()
	testutil.SeedInterview(t, ctx, db, userID, jobID, []uuid.UUID{uuid.New()})

	before := time.Now()
	if err := svc.SubmitInterview(ctx, userID, jobID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stored, err := interviewRepo.GetByUserAndJob(ctx, nil, userID, jobID)
	if err != nil {
		t.Fatalf("reload interview: %v", err)
	}
	if !stored.IsCompleted {
		t.Fatalf("expected interview completed")
	}

	var run types.ProcessingRun
	if err := db.Where("interview_id = ?", stored.ID).First(&run).Error; err != nil {
		t.Fatalf("load run: %v", err)
	}
	if run.Status != types.ProcessingStatusQueued {
		t.Fatalf("expected queued run, got %q", run.Status)
	}
	if run.RunAfter.Before(before.Add(29 * time.Second)) {
		t.Fatalf("expected run delayed ~30s, got %v", run.RunAfter.Sub(before))
	}

	// Repeated submission is idempotent: the flag simply stays true.
	if err := svc.SubmitInterview(ctx, userID, jobID); err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	stored, err = interviewRepo.GetByUserAndJob(ctx, nil, userID, jobID)
	if err != nil {
		t.Fatalf("reload interview: %v", err)
	}
	if !stored.IsCompleted {
		t.Fatalf("expected interview to stay completed")
	}
}

func TestInterviewLifecycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	interviewRepo := repos.NewInterviewRepo(db, log)
	runRepo := repos.NewProcessingRunRepo(db, log)
	svc := NewInterviewService(db, log, interviewRepo, runRepo, 30*time.Second)

	userID := uuid.New()
	jobID := uuid.New()
	questionIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	if _, err := svc.CreateInterview(ctx, userID, jobID, questionIDs); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SaveChunkCount(ctx, userID, jobID, questionIDs[0], 4); err != nil {
		t.Fatalf("save chunks: %v", err)
	}
	if err := svc.UpdateAnswer(ctx, userID, jobID, questionIDs[0], "hello world"); err != nil {
		t.Fatalf("update answer: %v", err)
	}
	if err := svc.UpdateAnswer(ctx, userID, jobID, questionIDs[0], "overwrite"); !errors.Is(err, ErrAnswerExists) {
		t.Fatalf("expected conflict on second answer, got %v", err)
	}
	if err := svc.SubmitInterview(ctx, userID, jobID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stored, err := interviewRepo.GetByUserAndJob(ctx, nil, userID, jobID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !stored.IsCompleted {
		t.Fatalf("expected completed interview")
	}
	answer := func() *types.InterviewAnswer {
		for i := range stored.Answers {
			if stored.Answers[i].QuestionID == questionIDs[0] {
				return &stored.Answers[i]
			}
		}
		return nil
	}()
	if answer == nil {
		t.Fatalf("answer record missing")
	}
	if answer.NumberOfChunks != 4 {
		t.Fatalf("expected 4 chunks, got %d", answer.NumberOfChunks)
	}
	if answer.Transcription == nil || *answer.Transcription != "hello world" {
		t.Fatalf("unexpected transcription: %v", answer.Transcription)
	}
}
