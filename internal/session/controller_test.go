package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/jobx-platform/jobx-backend/internal/logger"
)

type fakeClient struct {
	questions []Question

	fetchErr  error
	createErr error
	submitErr error

	fetchCalls  int
	createCalls int
	submitCalls int

	createdQuestionIDs []uuid.UUID
}

func (f *fakeClient) FetchQuestions(ctx context.Context) ([]Question, error) {
	f.fetchCalls++
	return f.questions, f.fetchErr
}

func (f *fakeClient) FetchQuestionsBySkills(ctx context.Context, jobID uuid.UUID) ([]Question, error) {
	f.fetchCalls++
	return f.questions, f.fetchErr
}

func (f *fakeClient) CreateInterview(ctx context.Context, userID, jobID uuid.UUID, questionIDs []uuid.UUID) error {
	f.createCalls++
	f.createdQuestionIDs = questionIDs
	return f.createErr
}

func (f *fakeClient) SaveChunkCount(ctx context.Context, userID, jobID, questionID uuid.UUID, chunks int) error {
	return nil
}

func (f *fakeClient) UpdateAnswer(ctx context.Context, userID, jobID, questionID uuid.UUID, transcription string) error {
	return nil
}

func (f *fakeClient) SubmitInterview(ctx context.Context, userID, jobID uuid.UUID) error {
	f.submitCalls++
	return f.submitErr
}

func (f *fakeClient) InterviewCount(ctx context.Context) (int, error) { return 0, nil }

type fakeNavigator struct {
	loginCalls    int
	thankYouCalls int
}

func (f *fakeNavigator) GoToLogin()    { f.loginCalls++ }
func (f *fakeNavigator) GoToThankYou() { f.thankYouCalls++ }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func threeQuestions() []Question {
	return []Question{
		{ID: uuid.New(), Type: "video", Question: "one"},
		{ID: uuid.New(), Type: "video", Question: "two"},
		{ID: uuid.New(), Type: "video", Question: "three"},
	}
}

func TestControllerStart_FetchesAndCreatesOnce(t *testing.T) {
	client := &fakeClient{questions: threeQuestions()}
	nav := &fakeNavigator{}
	jobID := uuid.New()
	sc := NewController(client, nav, testLogger(t), ControllerConfig{UserID: uuid.New(), JobID: &jobID})

	ctx := context.Background()
	if err := sc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sc.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}

	if client.fetchCalls != 1 {
		t.Fatalf("expected 1 fetch, got %d", client.fetchCalls)
	}
	if client.createCalls != 1 {
		t.Fatalf("expected 1 create, got %d", client.createCalls)
	}
	if len(client.createdQuestionIDs) != 3 {
		t.Fatalf("expected 3 question ids in create, got %d", len(client.createdQuestionIDs))
	}
	if sc.Phase() != PhaseCreated {
		t.Fatalf("expected PhaseCreated, got %v", sc.Phase())
	}
}

func TestControllerStart_FetchFailureRoutesToLogin(t *testing.T) {
	client := &fakeClient{fetchErr: ErrLoginRequired}
	nav := &fakeNavigator{}
	sc := NewController(client, nav, testLogger(t), ControllerConfig{UserID: uuid.New()})

	if err := sc.Start(context.Background()); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected ErrLoginRequired, got %v", err)
	}
	if nav.loginCalls != 1 {
		t.Fatalf("expected redirect to login")
	}
	if sc.Phase() != PhaseIdle {
		t.Fatalf("expected PhaseIdle after failed fetch, got %v", sc.Phase())
	}
}

func TestControllerStart_NoJobNeverPersists(t *testing.T) {
	client := &fakeClient{questions: threeQuestions()}
	nav := &fakeNavigator{}
	sc := NewController(client, nav, testLogger(t), ControllerConfig{UserID: uuid.New(), JobID: nil})

	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if client.createCalls != 0 {
		t.Fatalf("expected no interview creation without a job, got %d", client.createCalls)
	}
	if sc.Current() == nil {
		t.Fatalf("session should still render questions")
	}
}

func TestControllerStart_CreateFailureIsSwallowed(t *testing.T) {
	client := &fakeClient{questions: threeQuestions(), createErr: errors.New("boom")}
	nav := &fakeNavigator{}
	jobID := uuid.New()
	sc := NewController(client, nav, testLogger(t), ControllerConfig{UserID: uuid.New(), JobID: &jobID})

	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("create failure must not surface: %v", err)
	}
	if sc.Phase() != PhaseFetched {
		t.Fatalf("expected PhaseFetched, got %v", sc.Phase())
	}
}

func TestControllerNext_GatedOnRecordingTimer(t *testing.T) {
	client := &fakeClient{questions: threeQuestions()}
	sc := NewController(client, &fakeNavigator{}, testLogger(t), ControllerConfig{UserID: uuid.New()})
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	sc.SetTimerActive(true)
	if sc.Next() {
		t.Fatalf("next must be disabled while the timer is active")
	}
	if sc.Progress() != "1/3" {
		t.Fatalf("expected 1/3, got %s", sc.Progress())
	}

	sc.SetTimerActive(false)
	if !sc.Next() {
		t.Fatalf("next should advance")
	}
	if !sc.Next() {
		t.Fatalf("next should reach the last question")
	}
	if sc.Next() {
		t.Fatalf("next must stop on the last question")
	}
	if !sc.OnLastQuestion() {
		t.Fatalf("expected last-question state")
	}
	if sc.Progress() != "3/3" {
		t.Fatalf("expected 3/3, got %s", sc.Progress())
	}
}

func TestControllerProgress_EmptySetRendersOneOverZero(t *testing.T) {
	client := &fakeClient{questions: nil}
	sc := NewController(client, &fakeNavigator{}, testLogger(t), ControllerConfig{UserID: uuid.New()})
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if sc.Progress() != "1/0" {
		t.Fatalf("expected degenerate 1/0, got %s", sc.Progress())
	}
	if sc.Current() != nil {
		t.Fatalf("expected no question body for an empty set")
	}
}

func TestControllerSubmit_ConfirmationFlow(t *testing.T) {
	client := &fakeClient{questions: threeQuestions()}
	nav := &fakeNavigator{}
	jobID := uuid.New()
	sc := NewController(client, nav, testLogger(t), ControllerConfig{UserID: uuid.New(), JobID: &jobID})
	ctx := context.Background()
	if err := sc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	if sc.RequestSubmit() {
		t.Fatalf("submit must not open before the last question")
	}
	sc.Next()
	sc.Next()

	if !sc.RequestSubmit() {
		t.Fatalf("expected submit confirmation to open")
	}
	if !sc.Confirming() {
		t.Fatalf("expected confirming state")
	}
	sc.CancelSubmit()
	if sc.Confirming() {
		t.Fatalf("expected cancel to dismiss confirmation")
	}

	sc.ConfirmSubmit(ctx)
	if client.submitCalls != 0 {
		t.Fatalf("confirm without an open confirmation must not submit")
	}

	sc.RequestSubmit()
	sc.ConfirmSubmit(ctx)
	if client.submitCalls != 1 {
		t.Fatalf("expected 1 submit, got %d", client.submitCalls)
	}
	if nav.thankYouCalls != 1 {
		t.Fatalf("expected terminal thank-you navigation")
	}
	if sc.Phase() != PhaseSubmitted {
		t.Fatalf("expected PhaseSubmitted, got %v", sc.Phase())
	}
}

func TestControllerSubmit_FailureIsLoggedOnly(t *testing.T) {
	client := &fakeClient{questions: threeQuestions(), submitErr: errors.New("down")}
	nav := &fakeNavigator{}
	jobID := uuid.New()
	sc := NewController(client, nav, testLogger(t), ControllerConfig{UserID: uuid.New(), JobID: &jobID})
	ctx := context.Background()
	if err := sc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	sc.Next()
	sc.Next()
	sc.RequestSubmit()
	sc.ConfirmSubmit(ctx)
	if nav.thankYouCalls != 0 {
		t.Fatalf("failed submit must not navigate away")
	}
	if sc.Phase() == PhaseSubmitted {
		t.Fatalf("failed submit must not mark the session submitted")
	}
}
