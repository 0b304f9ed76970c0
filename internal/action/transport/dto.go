// Package transport defines the request and response DTOs for the action module.
package transport

import "time"

// Action types.
const (
	TypeCategory = "category"
	TypeQuestion = "question"
)

// Recognized status values. The status field is an open string; these are the
// values the system itself derives behavior from. Anything else a client
// writes is accepted verbatim.
const (
	StatusNotAssigned     = "Not Assigned"
	StatusActive          = "Active"
	StatusReady           = "Ready"
	StatusReadyToSchedule = "Ready to Schedule"
	StatusPostponed       = "Postponed"
	StatusStageChanged    = "Stage Changed"
	StatusOverdue         = "Overdue"
	StatusCompleted       = "Completed"
)

// Invite is one structured invite with a due date attached to an action.
type Invite struct {
	Email        string    `json:"email" validate:"required,email"`
	ScheduledFor time.Time `json:"scheduledFor" validate:"required"`
}

// CreateActionRequest creates a next-step action for a user.
// Category actions carry the dictionary id of the category; question actions
// carry the question code and the stage the guidance was resolved at.
type CreateActionRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Type         string  `json:"type" validate:"required,oneof=category question"`
	CategoryID   *int64  `json:"categoryId,omitempty"`
	QuestionCode *string `json:"questionCode,omitempty"`
	Stage        *int    `json:"stage,omitempty"`
}

// ReorderRequest applies a new list order for a user's actions. The batch is
// atomic: one invalid item rejects the whole request.
type ReorderRequest struct {
	Email string        `json:"email" validate:"required,email"`
	Items []ReorderItem `json:"items" validate:"required,min=1,dive"`
}

// ReorderItem is a single (action, order) pair in a reorder request.
type ReorderItem struct {
	ActionID int64 `json:"actionId" validate:"required"`
	Order    int   `json:"order" validate:"min=1"`
}

// SetStatusRequest updates the status label of an action.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,max=100"`
}

// SetOwnerRequest assigns an owner to an action.
type SetOwnerRequest struct {
	OwnerEmail string `json:"ownerEmail" validate:"required,email"`
}

// SetAcknowledgedRequest records the owner's acknowledgement.
type SetAcknowledgedRequest struct {
	Acknowledged bool `json:"acknowledged"`
}

// SetNotesRequest replaces the free-text notes of an action.
type SetNotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

// SetPostponeRequest postpones an action until the given date.
type SetPostponeRequest struct {
	PostponeDate time.Time `json:"postponeDate" validate:"required"`
}

// SetInvitesRequest replaces the structured invites of an action.
type SetInvitesRequest struct {
	Invites []Invite `json:"invites" validate:"dive"`
}

// ActionResponse represents an action in API responses.
type ActionResponse struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	Type              string     `json:"type"`
	CategoryCode      string     `json:"categoryCode,omitempty"`
	QuestionCode      string     `json:"questionCode,omitempty"`
	Stage             int        `json:"stage"`
	ListOrder         int        `json:"listOrder"`
	OwnerEmail        string     `json:"ownerEmail,omitempty"`
	OwnerAcknowledged bool       `json:"ownerAcknowledged"`
	Status            string     `json:"status"`
	PostponeDate      *time.Time `json:"postponeDate,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Invites           []Invite   `json:"invites"`
	Log               string     `json:"log"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ActionListResponse wraps a user's ordered action list.
type ActionListResponse struct {
	Items []ActionResponse `json:"items"`
	Total int              `json:"total"`
}
