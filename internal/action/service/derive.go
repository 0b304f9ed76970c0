// Package service implements the action lifecycle manager.
package service

import (
	"time"

	"compass_backend/internal/action/repository"
	"compass_backend/internal/action/transport"
	"compass_backend/internal/stage"
)

// ScoreSnapshot is the scoring state of a user's latest submission, used for
// stage-drift detection. Found is false when the user has no submission yet.
type ScoreSnapshot struct {
	Found        bool
	TotalPercent float64
	Categories   map[string]float64 // category code -> percent
}

// currentStage resolves the user's present stage for the action's subject.
// Category actions follow the category's own percent; question actions follow
// the overall score. The second return is false when no score is available.
func currentStage(a repository.Action, snap ScoreSnapshot) (int, bool) {
	if !snap.Found {
		return 0, false
	}
	if a.Type == transport.TypeCategory {
		percent, ok := snap.Categories[a.CategoryCode]
		if !ok {
			return 0, false
		}
		return stage.Classify(percent).Stage, true
	}
	return stage.Classify(snap.TotalPercent).Stage, true
}

// deriveStatus computes the system-derived status for an action on list-read.
// Returns the new status and whether it differs from the stored one.
//
// Rules:
//   - Completed is terminal; nothing overrides it.
//   - Stage Changed fires when the user's current stage no longer matches the
//     stage the action was created at; it reverts to Active once a later read
//     finds the stages matching again, so it cannot fire twice in a row
//     without an intervening match.
//   - Overdue fires when a structured invite's due date has passed; it is
//     evaluated after the drift check, so a stale and past-due action
//     surfaces as Overdue.
func deriveStatus(a repository.Action, snap ScoreSnapshot, now time.Time) (string, bool) {
	if a.Status == transport.StatusCompleted {
		return a.Status, false
	}

	status := a.Status

	if current, ok := currentStage(a, snap); ok {
		switch {
		case status == transport.StatusStageChanged && current == a.Stage:
			status = transport.StatusActive
		case status != transport.StatusStageChanged && status != transport.StatusOverdue && current != a.Stage:
			status = transport.StatusStageChanged
		}
	}

	if status != transport.StatusOverdue && inviteOverdue(a.Invites, now) {
		status = transport.StatusOverdue
	}

	return status, status != a.Status
}

// inviteOverdue reports whether any invite's due date has passed.
func inviteOverdue(invites []transport.Invite, now time.Time) bool {
	for _, inv := range invites {
		if !inv.ScheduledFor.IsZero() && inv.ScheduledFor.Before(now) {
			return true
		}
	}
	return false
}
