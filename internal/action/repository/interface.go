// Package repository provides data access for next-step actions.
package repository

import (
	"context"
	"time"

	"compass_backend/internal/action/transport"
)

// Action is one persisted next-step item.
type Action struct {
	ID                int64
	Email             string
	Type              string
	CategoryCode      string
	QuestionCode      string
	Stage             int
	ListOrder         int
	OwnerEmail        string
	OwnerAcknowledged bool
	Status            string
	PostponeDate      *time.Time
	Notes             string
	Invites           []transport.Invite
	Log               string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CreateParams carries the fields for inserting a new action. ListOrder is
// assigned inside the insert transaction, never by the caller.
type CreateParams struct {
	Email        string
	Type         string
	CategoryCode string
	QuestionCode string
	Stage        int
	Status       string
	LogEntry     string
}

// Repository is the persistence surface of the action module.
type Repository interface {
	// Create inserts an action with list_order = MAX+1 for the email, inside
	// one transaction. A duplicate (email, code[, stage]) maps to a Conflict
	// error via the storage-level unique constraint, never an application
	// pre-check.
	Create(ctx context.Context, p CreateParams) (Action, error)

	// GetByID fetches one action; absence is a NotFound error.
	GetByID(ctx context.Context, id int64) (Action, error)

	// ListByEmail returns the user's actions ordered by list_order then id.
	ListByEmail(ctx context.Context, email string) ([]Action, error)

	// Reorder applies the whole batch atomically, scoped to email. An item
	// referencing an action not owned by that email fails the entire batch.
	Reorder(ctx context.Context, email string, items []transport.ReorderItem) error

	// Delete hard-deletes an action; absence is a NotFound error.
	Delete(ctx context.Context, id int64) error

	// ExistsQuestionAction reports whether a non-"Stage Changed" question
	// action exists for (email, code, stage).
	ExistsQuestionAction(ctx context.Context, email, code string, stage int) (bool, error)

	// Field mutations. Each appends logEntry to the action's append-only
	// audit log in the same statement. Absence is a NotFound error.
	UpdateStatus(ctx context.Context, id int64, status, logEntry string) error
	UpdateOwner(ctx context.Context, id int64, ownerEmail, logEntry string) error
	UpdateAcknowledged(ctx context.Context, id int64, acknowledged bool, logEntry string) error
	UpdateNotes(ctx context.Context, id int64, notes, logEntry string) error
	UpdatePostpone(ctx context.Context, id int64, date time.Time, status, logEntry string) error
	UpdateInvites(ctx context.Context, id int64, invites []transport.Invite, logEntry string) error
}
