package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jobx-platform/jobx-backend/internal/logger"
)

// Navigator is where the controller sends the user when the session cannot
// continue in place.
type Navigator interface {
	GoToLogin()
	GoToThankYou()
}

// Phase is the session lifecycle. The one-shot fetch and create guards are
// carried here instead of as ambient flags.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetched
	PhaseCreated
	PhaseSubmitted
)

type ControllerConfig struct {
	UserID uuid.UUID
	// JobID comes from navigation state. When nil the session still renders
	// and fetches questions, but the interview is never persisted.
	JobID *uuid.UUID
}

// Controller presents one question at a time and gates navigation on the
// recording timer. Safe for use from the UI loop plus the policy goroutines.
type Controller struct {
	mu sync.Mutex

	client    Client
	nav       Navigator
	log       *logger.Logger
	userID    uuid.UUID
	jobID     *uuid.UUID
	phase     Phase
	questions []Question
	index     int

	timerActive bool
	confirming  bool
}

func NewController(client Client, nav Navigator, baseLog *logger.Logger, cfg ControllerConfig) *Controller {
	return &Controller{
		client: client,
		nav:    nav,
		log:    baseLog.With("component", "SessionController"),
		userID: cfg.UserID,
		jobID:  cfg.JobID,
	}
}

// Start fetches the question set and creates the interview record. Both run
// at most once per controller. A fetch failure routes to login; a create
// failure is logged and the session continues unpersisted.
func (sc *Controller) Start(ctx context.Context) error {
	sc.mu.Lock()
	if sc.phase != PhaseIdle {
		sc.mu.Unlock()
		return nil
	}
	jobID := sc.jobID
	sc.mu.Unlock()

	var questions []Question
	var err error
	if jobID != nil {
		questions, err = sc.client.FetchQuestionsBySkills(ctx, *jobID)
	} else {
		questions, err = sc.client.FetchQuestions(ctx)
	}
	if err != nil {
		sc.log.Error("Question fetch failed", "error", err)
		sc.nav.GoToLogin()
		return err
	}

	sc.mu.Lock()
	sc.questions = questions
	sc.phase = PhaseFetched
	sc.mu.Unlock()

	if jobID == nil || sc.userID == uuid.Nil || len(questions) == 0 {
		return nil
	}

	questionIDs := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		questionIDs = append(questionIDs, q.ID)
	}
	if err := sc.client.CreateInterview(ctx, sc.userID, *jobID, questionIDs); err != nil {
		// Fire and forget. The candidate keeps going either way.
		sc.log.Error("Interview creation failed", "error", err)
		return nil
	}

	sc.mu.Lock()
	sc.phase = PhaseCreated
	sc.mu.Unlock()
	return nil
}

// Current returns the question under the cursor, or nil for an empty set.
func (sc *Controller) Current() *Question {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if len(sc.questions) == 0 || sc.index >= len(sc.questions) {
		return nil
	}
	q := sc.questions[sc.index]
	return &q
}

// Progress renders the "current/total" counter. An empty question set shows
// as "1/0".
func (sc *Controller) Progress() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return fmt.Sprintf("%d/%d", sc.index+1, len(sc.questions))
}

// SetTimerActive is the recording component's callback.
func (sc *Controller) SetTimerActive(active bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.timerActive = active
}

// CanAdvance reports whether "next" is currently allowed.
func (sc *Controller) CanAdvance() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return !sc.timerActive && sc.index < len(sc.questions)-1
}

// OnLastQuestion reports whether the "next" affordance should read "submit".
func (sc *Controller) OnLastQuestion() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.questions) == 0 || sc.index >= len(sc.questions)-1
}

// Next advances the cursor. It is a no-op while the recording timer is
// active or when already on the last question.
func (sc *Controller) Next() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.timerActive || sc.index >= len(sc.questions)-1 {
		return false
	}
	sc.index++
	return true
}

// RequestSubmit opens the confirmation step. Submit replaces "next" only on
// the last question, and stays gated on the recording timer like "next" is.
func (sc *Controller) RequestSubmit() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.timerActive || sc.index < len(sc.questions)-1 {
		return false
	}
	sc.confirming = true
	return true
}

// CancelSubmit dismisses the confirmation step.
func (sc *Controller) CancelSubmit() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.confirming = false
}

// Confirming reports whether the confirmation step is showing.
func (sc *Controller) Confirming() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.confirming
}

// ConfirmSubmit submits the interview. Success moves to the terminal
// thank-you view; failure is logged and the session stays where it is.
func (sc *Controller) ConfirmSubmit(ctx context.Context) {
	sc.mu.Lock()
	if !sc.confirming || sc.phase == PhaseSubmitted {
		sc.mu.Unlock()
		return
	}
	jobID := sc.jobID
	sc.confirming = false
	sc.mu.Unlock()

	if jobID == nil {
		sc.log.Warn("Submit skipped, session has no job")
		return
	}
	if err := sc.client.SubmitInterview(ctx, sc.userID, *jobID); err != nil {
		sc.log.Error("Interview submission failed", "error", err)
		return
	}

	sc.mu.Lock()
	sc.phase = PhaseSubmitted
	sc.mu.Unlock()
	sc.nav.GoToThankYou()
}

func (sc *Controller) Phase() Phase {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.phase
}
