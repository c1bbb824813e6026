// Package notify detects agent status transitions that deserve the user's
// attention and forwards them to a Notifier. Delivery mechanics (desktop
// toasts, tray badges) belong to the presentation layer behind the
// Notifier interface.
package notify

import (
	"sync"

	"github.com/rs/zerolog"

	"sidekick/internal/contract"
)

// Fallback notification bodies when the agent supplied no text.
const (
	fallbackWaitingBody = "Agent is waiting for your input"
	fallbackErrorBody   = "An error occurred"
)

// Notifier delivers a user-facing alert for a workspace.
type Notifier interface {
	Notify(workspaceID, title, body string)
}

// Detector tracks the previously observed agent state per workspace,
// independently of the registry cache, and fires the notifier exactly on
// entry into waiting_for_user or error. Re-observing the same state does
// not re-fire.
type Detector struct {
	log      zerolog.Logger
	notifier Notifier

	mu       sync.Mutex
	previous map[string]contract.AgentState
}

// NewDetector creates a detector delivering through the given notifier.
func NewDetector(log zerolog.Logger, notifier Notifier) *Detector {
	return &Detector{
		log:      log,
		notifier: notifier,
		previous: make(map[string]contract.AgentState),
	}
}

// Observe records the status loaded by a refresh and raises an alert on an
// attention-worthy transition. The previous-state tracker is updated on
// every call regardless of whether anything fired.
func (d *Detector) Observe(workspaceID, displayName string, status *contract.AgentStatus) {
	if status == nil {
		return
	}

	d.mu.Lock()
	previous := d.previous[workspaceID]
	d.previous[workspaceID] = status.State
	d.mu.Unlock()

	current := status.State

	if current == contract.StateWaitingForUser && previous != contract.StateWaitingForUser {
		body := status.Summary
		if body == "" {
			body = fallbackWaitingBody
		}
		d.fire(workspaceID, displayName, body)
	}

	if current == contract.StateError && previous != contract.StateError {
		body := fallbackErrorBody
		if status.LastError != nil && *status.LastError != "" {
			body = *status.LastError
		}
		d.fire(workspaceID, displayName, body)
	}
}

// Forget drops the tracked state for a workspace, e.g. when it is removed.
func (d *Detector) Forget(workspaceID string) {
	d.mu.Lock()
	delete(d.previous, workspaceID)
	d.mu.Unlock()
}

func (d *Detector) fire(workspaceID, displayName, body string) {
	d.log.Info().Str("workspace", workspaceID).Str("body", body).Msg("agent needs attention")
	if d.notifier != nil {
		d.notifier.Notify(workspaceID, displayName, body)
	}
}
