// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"compass_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Submission Domain Events
// =============================================================================

// SubmissionIngested is published after a webhook submission has been
// persisted (transaction committed). Subscribers archive the raw payload and
// enqueue the recommender pass; neither can affect the persisted submission.
type SubmissionIngested struct {
	BaseEvent
	SubmissionID int64  `json:"submissionId"`
	ExternalID   string `json:"externalId"`
	Email        string `json:"email"`
	AssessmentID string `json:"assessmentId"`
	RawPayload   []byte `json:"-"`
}

func (e SubmissionIngested) EventName() string { return "submission.ingested" }

// =============================================================================
// Action Domain Events
// =============================================================================

// ActionCreated is published when a next-step action is created, either by an
// explicit user request or by the system recommender.
type ActionCreated struct {
	BaseEvent
	ActionID int64  `json:"actionId"`
	Email    string `json:"email"`
	Source   string `json:"source"` // "user" or "system"
}

func (e ActionCreated) EventName() string { return "action.created" }

// ActionStatusChanged is published when an action's status field changes,
// including system-derived transitions (Stage Changed, Overdue). External
// notification collaborators consume this to render emails.
type ActionStatusChanged struct {
	BaseEvent
	ActionID  int64  `json:"actionId"`
	Email     string `json:"email"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

func (e ActionStatusChanged) EventName() string { return "action.status_changed" }
