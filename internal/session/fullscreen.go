package session

import (
	"context"
	"sync"
	"time"

	"github.com/jobx-platform/jobx-backend/internal/logger"
)

// Display is the fullscreen surface the enforcer drives.
type Display interface {
	IsFullscreen() bool
	RequestFullscreen() error
}

// Clock is injected so tests can run the retry backoff without waiting.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type fullscreenState int

const (
	stateFullscreen fullscreenState = iota
	stateExiting
	stateExitedByUser
)

const (
	fullscreenPollInterval  = 100 * time.Millisecond
	fullscreenRetryAttempts = 5
	fullscreenRetryBackoff  = time.Second
)

// FullscreenEnforcer keeps the session in fullscreen until the user leaves
// through the provided exit affordance. Exits detected any other way trigger
// bounded re-entry attempts; once those are exhausted it gives up silently.
// One state machine serves both the poll and the change events, so a single
// exit never spawns concurrent correction attempts.
type FullscreenEnforcer struct {
	mu      sync.Mutex
	display Display
	clock   Clock
	log     *logger.Logger
	state   fullscreenState
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewFullscreenEnforcer(display Display, clock Clock, baseLog *logger.Logger) *FullscreenEnforcer {
	if clock == nil {
		clock = realClock{}
	}
	return &FullscreenEnforcer{
		display: display,
		clock:   clock,
		log:     baseLog.With("component", "FullscreenEnforcer"),
		state:   stateFullscreen,
	}
}

// Start begins the maintenance poll. The host also forwards fullscreen-change
// events to HandleChange for faster reaction.
func (fe *FullscreenEnforcer) Start(ctx context.Context) {
	fe.mu.Lock()
	if fe.done != nil {
		fe.mu.Unlock()
		return
	}
	ctx, fe.cancel = context.WithCancel(ctx)
	fe.done = make(chan struct{})
	done := fe.done
	fe.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(fullscreenPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fe.check(ctx)
			}
		}
	}()
}

// HandleChange is the reactive path for fullscreen-change events.
func (fe *FullscreenEnforcer) HandleChange(ctx context.Context) {
	fe.check(ctx)
}

// UserExit records that the candidate left fullscreen through the exit
// affordance. No re-entry is attempted afterwards.
func (fe *FullscreenEnforcer) UserExit() {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.state = stateExitedByUser
}

// Stop tears the poll down and waits for it to finish.
func (fe *FullscreenEnforcer) Stop() {
	fe.mu.Lock()
	cancel := fe.cancel
	done := fe.done
	fe.cancel = nil
	fe.done = nil
	fe.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (fe *FullscreenEnforcer) check(ctx context.Context) {
	fe.mu.Lock()
	if fe.state != stateFullscreen {
		// Either the user left on purpose or a re-entry loop is already
		// running.
		fe.mu.Unlock()
		return
	}
	if fe.display.IsFullscreen() {
		fe.mu.Unlock()
		return
	}
	fe.state = stateExiting
	fe.mu.Unlock()

	go fe.reenter(ctx)
}

func (fe *FullscreenEnforcer) reenter(ctx context.Context) {
	for attempt := 1; attempt <= fullscreenRetryAttempts; attempt++ {
		if ctx.Err() != nil {
			return
		}
		fe.mu.Lock()
		if fe.state != stateExiting {
			fe.mu.Unlock()
			return
		}
		fe.mu.Unlock()

		if err := fe.display.RequestFullscreen(); err == nil && fe.display.IsFullscreen() {
			fe.mu.Lock()
			if fe.state == stateExiting {
				fe.state = stateFullscreen
			}
			fe.mu.Unlock()
			return
		}
		fe.log.Warn("Fullscreen re-entry attempt failed", "attempt", attempt)
		fe.clock.Sleep(ctx, fullscreenRetryBackoff)
	}

	// Out of attempts. Give up without nagging the candidate further.
	fe.mu.Lock()
	if fe.state == stateExiting {
		fe.state = stateExitedByUser
	}
	fe.mu.Unlock()
}
