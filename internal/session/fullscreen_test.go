package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeDisplay struct {
	mu         sync.Mutex
	fullscreen bool
	requests   int
	grant      bool
}

func (d *fakeDisplay) IsFullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

func (d *fakeDisplay) RequestFullscreen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests++
	if d.grant {
		d.fullscreen = true
		return nil
	}
	return errors.New("denied")
}

func (d *fakeDisplay) requestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests
}

// instantClock makes the retry backoff free so tests run fast.
type instantClock struct {
	mu     sync.Mutex
	sleeps int
}

func (c *instantClock) Sleep(ctx context.Context, d time.Duration) {
	c.mu.Lock()
	c.sleeps++
	c.mu.Unlock()
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never held: %s", msg)
}

func TestFullscreenEnforcer_ReentersAfterInvoluntaryExit(t *testing.T) {
	display := &fakeDisplay{fullscreen: true, grant: true}
	fe := NewFullscreenEnforcer(display, &instantClock{}, testLogger(t))
	ctx := context.Background()

	display.mu.Lock()
	display.fullscreen = false
	display.mu.Unlock()

	fe.HandleChange(ctx)
	eventually(t, func() bool { return display.IsFullscreen() }, "fullscreen restored")
	if display.requestCount() != 1 {
		t.Fatalf("expected a single re-entry request, got %d", display.requestCount())
	}

	// Back in fullscreen; further events must not request again.
	fe.HandleChange(ctx)
	if display.requestCount() != 1 {
		t.Fatalf("expected no extra requests, got %d", display.requestCount())
	}
}

func TestFullscreenEnforcer_UserExitDisablesReentry(t *testing.T) {
	display := &fakeDisplay{fullscreen: true, grant: true}
	fe := NewFullscreenEnforcer(display, &instantClock{}, testLogger(t))
	ctx := context.Background()

	fe.UserExit()
	display.mu.Lock()
	display.fullscreen = false
	display.mu.Unlock()

	fe.HandleChange(ctx)
	time.Sleep(20 * time.Millisecond)
	if display.requestCount() != 0 {
		t.Fatalf("expected no re-entry after a user exit, got %d requests", display.requestCount())
	}
}

func TestFullscreenEnforcer_GivesUpAfterBoundedAttempts(t *testing.T) {
	display := &fakeDisplay{fullscreen: true, grant: false}
	clock := &instantClock{}
	fe := NewFullscreenEnforcer(display, clock, testLogger(t))
	ctx := context.Background()

	display.mu.Lock()
	display.fullscreen = false
	display.mu.Unlock()

	fe.HandleChange(ctx)
	eventually(t, func() bool { return display.requestCount() == fullscreenRetryAttempts }, "all attempts spent")

	// Exhausted; the enforcer stays silent from here on.
	fe.HandleChange(ctx)
	time.Sleep(20 * time.Millisecond)
	if display.requestCount() != fullscreenRetryAttempts {
		t.Fatalf("expected no requests past the bound, got %d", display.requestCount())
	}
}

func TestFullscreenEnforcer_OneExitSpawnsOneCorrectionLoop(t *testing.T) {
	display := &fakeDisplay{fullscreen: true, grant: false}
	clock := &instantClock{}
	fe := NewFullscreenEnforcer(display, clock, testLogger(t))
	ctx := context.Background()

	display.mu.Lock()
	display.fullscreen = false
	display.mu.Unlock()

	// The poll and the change event racing on the same exit must not stack
	// correction loops.
	fe.HandleChange(ctx)
	fe.HandleChange(ctx)
	fe.HandleChange(ctx)

	eventually(t, func() bool { return display.requestCount() == fullscreenRetryAttempts }, "attempts settle")
	time.Sleep(20 * time.Millisecond)
	if got := display.requestCount(); got != fullscreenRetryAttempts {
		t.Fatalf("expected %d total requests, got %d", fullscreenRetryAttempts, got)
	}
}

func TestFullscreenEnforcer_StopTerminatesPoll(t *testing.T) {
	display := &fakeDisplay{fullscreen: true, grant: true}
	fe := NewFullscreenEnforcer(display, &instantClock{}, testLogger(t))

	fe.Start(context.Background())
	fe.Stop()

	display.mu.Lock()
	display.fullscreen = false
	display.mu.Unlock()
	time.Sleep(3 * fullscreenPollInterval)
	if display.requestCount() != 0 {
		t.Fatalf("expected no correction after Stop, got %d requests", display.requestCount())
	}
}
