package service

import (
	"context"

	"compass_backend/internal/action/repository"
	"compass_backend/internal/action/transport"
	"compass_backend/internal/events"
	"compass_backend/internal/stage"
	"compass_backend/platform/apperr"
)

// recommenderCap bounds how many actions one pass may create for a user.
const recommenderCap = 20

// RecommenderPass refreshes the user's existing actions against the new
// submission, then scans the latest answers and creates system-suggested
// question actions where guidance resources exist and no live action covers
// the (question, stage) yet. Duplicates are skipped silently; the pass never
// fails because an individual suggestion already exists.
func (s *Service) RecommenderPass(ctx context.Context, email string) (int, error) {
	snap, err := s.snapshot(ctx, email)
	if err != nil {
		return 0, err
	}
	if !snap.Found {
		return 0, nil
	}

	// Stage drift must surface right after an ingest, not only on the next
	// list read: existing actions get the same derivation pass List runs.
	existing, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	now := s.now()
	for i := range existing {
		if err := s.refreshStatus(ctx, &existing[i], snap, now); err != nil {
			return 0, err
		}
	}

	codes, err := s.scores.LatestQuestionCodes(ctx, email)
	if err != nil {
		return 0, err
	}

	userStage := stage.Classify(snap.TotalPercent).Stage

	created := 0
	seen := map[string]bool{}
	for _, code := range codes {
		if created >= recommenderCap {
			break
		}
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		available, err := s.resources.HasQuestionResource(ctx, code, userStage)
		if err != nil {
			return created, err
		}
		if !available {
			continue
		}

		exists, err := s.repo.ExistsQuestionAction(ctx, email, code, userStage)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		action, err := s.repo.Create(ctx, repository.CreateParams{
			Email:        email,
			Type:         transport.TypeQuestion,
			QuestionCode: code,
			Stage:        userStage,
			Status:       transport.StatusActive,
			LogEntry:     s.logLine("created via " + sourceSystem + " recommender"),
		})
		if err != nil {
			// A racing creator winning the unique constraint is the same as
			// the duplicate pre-check: skip, don't fail the pass.
			if apperr.Is(err, apperr.KindConflict) {
				continue
			}
			return created, err
		}

		created++
		s.log.ActionEvent("recommended", action.ID, email)
		s.bus.Publish(ctx, events.ActionCreated{
			BaseEvent: events.NewBaseEvent(),
			ActionID:  action.ID,
			Email:     email,
			Source:    sourceSystem,
		})
	}

	return created, nil
}
