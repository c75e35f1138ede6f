package session

import (
	"sync"

	"github.com/jobx-platform/jobx-backend/internal/logger"
)

// Notifier surfaces non-blocking warnings to the candidate.
type Notifier interface {
	Warn(message string)
}

// AttentionPolicy handles the visibility and keyboard rules for the session.
// The host wires its visibility-change and key events into these handlers and
// stops forwarding them after Teardown.
type AttentionPolicy struct {
	mu       sync.Mutex
	notifier Notifier
	log      *logger.Logger
	active   bool
}

func NewAttentionPolicy(notifier Notifier, baseLog *logger.Logger) *AttentionPolicy {
	return &AttentionPolicy{
		notifier: notifier,
		log:      baseLog.With("component", "AttentionPolicy"),
		active:   true,
	}
}

// HandleVisibilityChange warns when the page loses visibility. Regaining
// visibility is silent.
func (ap *AttentionPolicy) HandleVisibilityChange(hidden bool) {
	ap.mu.Lock()
	active := ap.active
	ap.mu.Unlock()
	if !active || !hidden {
		return
	}
	ap.notifier.Warn("Please stay on the interview tab.")
}

// HandleKeyDown warns on any keyboard input and reports that the default
// action must be suppressed.
func (ap *AttentionPolicy) HandleKeyDown() bool {
	ap.mu.Lock()
	active := ap.active
	ap.mu.Unlock()
	if !active {
		return false
	}
	ap.notifier.Warn("Keyboard input is disabled during the interview.")
	return true
}

// Teardown makes all further events no-ops.
func (ap *AttentionPolicy) Teardown() {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	ap.active = false
}
