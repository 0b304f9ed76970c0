package service

import (
	"context"
	"fmt"
	"time"

	"compass_backend/internal/action/repository"
	"compass_backend/internal/action/transport"
	"compass_backend/internal/events"
	"compass_backend/platform/apperr"
	"compass_backend/platform/logger"
	"compass_backend/platform/validator"
)

// Creation sources, recorded in the audit log and reflected in the default
// status: user-initiated actions start Not Assigned, system-suggested Active.
const (
	sourceUser   = "user"
	sourceSystem = "system"
)

// ScoreReader exposes the latest scoring state of a user. Implemented by an
// adapter over the submission repository.
type ScoreReader interface {
	LatestSnapshot(ctx context.Context, email string) (ScoreSnapshot, error)
	LatestQuestionCodes(ctx context.Context, email string) ([]string, error)
}

// CategoryCodeResolver maps a category dictionary id to its stable code.
type CategoryCodeResolver interface {
	CategoryCodeByID(ctx context.Context, categoryID int64) (string, error)
}

// ResourceChecker reports whether guidance resources exist for a question at
// a stage. Implemented by recommendation.Service.
type ResourceChecker interface {
	HasQuestionResource(ctx context.Context, code string, stage int) (bool, error)
}

// Service is the action lifecycle manager.
type Service struct {
	repo      repository.Repository
	scores    ScoreReader
	codes     CategoryCodeResolver
	resources ResourceChecker
	bus       events.Bus
	val       *validator.Validator
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new action service.
func New(repo repository.Repository, scores ScoreReader, codes CategoryCodeResolver, resources ResourceChecker, bus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		scores:    scores,
		codes:     codes,
		resources: resources,
		bus:       bus,
		val:       val,
		log:       log,
		now:       time.Now,
	}
}

// Create adds a next-step action for the user. Duplicates resolve to a
// Conflict via the storage-level unique constraints, so two racing creators
// cannot both succeed.
func (s *Service) Create(ctx context.Context, req transport.CreateActionRequest) (transport.ActionResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.ActionResponse{}, apperr.Validation(err.Error())
	}

	params := repository.CreateParams{
		Email:  req.Email,
		Type:   req.Type,
		Status: transport.StatusNotAssigned,
	}

	switch req.Type {
	case transport.TypeCategory:
		if req.CategoryID == nil {
			return transport.ActionResponse{}, apperr.Validation("categoryId is required for category actions")
		}
		code, err := s.codes.CategoryCodeByID(ctx, *req.CategoryID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return transport.ActionResponse{}, apperr.Validation("unknown category")
			}
			return transport.ActionResponse{}, err
		}
		params.CategoryCode = code
	case transport.TypeQuestion:
		if req.QuestionCode == nil || *req.QuestionCode == "" {
			return transport.ActionResponse{}, apperr.Validation("questionCode is required for question actions")
		}
		params.QuestionCode = *req.QuestionCode
	}

	if req.Stage != nil {
		params.Stage = *req.Stage
	} else if req.Type == transport.TypeQuestion {
		return transport.ActionResponse{}, apperr.Validation("stage is required for question actions")
	} else {
		// Category actions pin the stage the user is at when adding the step.
		snap, err := s.snapshot(ctx, req.Email)
		if err != nil {
			return transport.ActionResponse{}, err
		}
		st, ok := currentStage(repository.Action{Type: req.Type, CategoryCode: params.CategoryCode}, snap)
		if ok {
			params.Stage = st
		}
	}

	params.LogEntry = s.logLine("created via " + sourceUser + " request")

	action, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.ActionResponse{}, err
	}

	s.log.ActionEvent("created", action.ID, action.Email)
	s.bus.Publish(ctx, events.ActionCreated{
		BaseEvent: events.NewBaseEvent(),
		ActionID:  action.ID,
		Email:     action.Email,
		Source:    sourceUser,
	})

	return toResponse(action), nil
}

// List returns the user's actions ordered by list_order then id, after
// running the lazy Stage-Changed/Overdue derivation pass.
func (s *Service) List(ctx context.Context, email string) (transport.ActionListResponse, error) {
	if err := s.val.Var(email, "required,email"); err != nil {
		return transport.ActionListResponse{}, apperr.Validation("a valid email is required")
	}

	actions, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return transport.ActionListResponse{}, err
	}

	snap, err := s.snapshot(ctx, email)
	if err != nil {
		return transport.ActionListResponse{}, err
	}

	now := s.now()
	resp := transport.ActionListResponse{Items: make([]transport.ActionResponse, 0, len(actions))}
	for i := range actions {
		if err := s.refreshStatus(ctx, &actions[i], snap, now); err != nil {
			return transport.ActionListResponse{}, err
		}
		resp.Items = append(resp.Items, toResponse(actions[i]))
	}
	resp.Total = len(resp.Items)
	return resp, nil
}

// refreshStatus applies the Stage-Changed/Overdue derivation to one action,
// persisting the transition and publishing the status-change event when the
// status moved. The action is updated in place.
func (s *Service) refreshStatus(ctx context.Context, a *repository.Action, snap ScoreSnapshot, now time.Time) error {
	newStatus, changed := deriveStatus(*a, snap, now)
	if !changed {
		return nil
	}

	entry := s.logLine(fmt.Sprintf("status derived: %s -> %s", a.Status, newStatus))
	if err := s.repo.UpdateStatus(ctx, a.ID, newStatus, entry); err != nil {
		s.log.DatabaseError("persist derived status", err)
		return err
	}
	s.publishStatusChange(ctx, *a, newStatus)
	a.Status = newStatus
	a.Log += entry
	return nil
}

// Reorder applies the whole batch atomically for the given email.
func (s *Service) Reorder(ctx context.Context, req transport.ReorderRequest) error {
	if err := s.val.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}
	return s.repo.Reorder(ctx, req.Email, req.Items)
}

// Remove hard-deletes an action. Removing an absent id reports NotFound.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.ActionEvent("removed", id, "")
	return nil
}

// SetStatus sets the status label. The field is an open string; only the
// system-derived values are rejected from direct writes, and Postponed must
// go through the postpone operation so a date is always attached.
func (s *Service) SetStatus(ctx context.Context, id int64, req transport.SetStatusRequest) error {
	if err := s.val.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}
	switch req.Status {
	case transport.StatusStageChanged, transport.StatusOverdue:
		return apperr.Validation("status " + req.Status + " is system-derived and cannot be set directly")
	case transport.StatusPostponed:
		return apperr.Validation("use the postpone operation to set a postpone date")
	}

	action, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	entry := s.logLine("status set to " + req.Status)
	if err := s.repo.UpdateStatus(ctx, id, req.Status, entry); err != nil {
		return err
	}
	s.publishStatusChange(ctx, action, req.Status)
	return nil
}

// SetOwner assigns the owner email.
func (s *Service) SetOwner(ctx context.Context, id int64, req transport.SetOwnerRequest) error {
	if err := s.val.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}
	return s.repo.UpdateOwner(ctx, id, req.OwnerEmail, s.logLine("owner set to "+req.OwnerEmail))
}

// SetAcknowledged records the owner's acknowledgement.
func (s *Service) SetAcknowledged(ctx context.Context, id int64, req transport.SetAcknowledgedRequest) error {
	return s.repo.UpdateAcknowledged(ctx, id, req.Acknowledged,
		s.logLine(fmt.Sprintf("owner acknowledged set to %t", req.Acknowledged)))
}

// SetNotes replaces the free-text notes.
func (s *Service) SetNotes(ctx context.Context, id int64, req transport.SetNotesRequest) error {
	if err := s.val.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}
	return s.repo.UpdateNotes(ctx, id, req.Notes, s.logLine("notes updated"))
}

// SetPostponeDate postpones the action: the date and the Postponed status are
// written together, honoring the rule that Postponed always carries a date.
func (s *Service) SetPostponeDate(ctx context.Context, id int64, req transport.SetPostponeRequest) error {
	if err := s.val.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}

	action, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	entry := s.logLine("postponed until " + req.PostponeDate.Format("2006-01-02"))
	if err := s.repo.UpdatePostpone(ctx, id, req.PostponeDate, transport.StatusPostponed, entry); err != nil {
		return err
	}
	s.publishStatusChange(ctx, action, transport.StatusPostponed)
	return nil
}

// SetInvites replaces the structured invites.
func (s *Service) SetInvites(ctx context.Context, id int64, req transport.SetInvitesRequest) error {
	if err := s.val.Struct(req); err != nil {
		return apperr.Validation(err.Error())
	}
	return s.repo.UpdateInvites(ctx, id, req.Invites,
		s.logLine(fmt.Sprintf("invites updated (%d)", len(req.Invites))))
}

// snapshot loads the user's latest scores; absence of any submission is a
// normal state (no drift checks possible), not an error.
func (s *Service) snapshot(ctx context.Context, email string) (ScoreSnapshot, error) {
	snap, err := s.scores.LatestSnapshot(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return ScoreSnapshot{}, nil
		}
		return ScoreSnapshot{}, err
	}
	return snap, nil
}

func (s *Service) publishStatusChange(ctx context.Context, before repository.Action, newStatus string) {
	s.bus.Publish(ctx, events.ActionStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		ActionID:  before.ID,
		Email:     before.Email,
		OldStatus: before.Status,
		NewStatus: newStatus,
	})
}

// logLine formats one append-only audit entry.
func (s *Service) logLine(message string) string {
	return fmt.Sprintf("[%s] %s\n", s.now().UTC().Format(time.RFC3339), message)
}

func toResponse(a repository.Action) transport.ActionResponse {
	invites := a.Invites
	if invites == nil {
		invites = []transport.Invite{}
	}
	return transport.ActionResponse{
		ID:                a.ID,
		Email:             a.Email,
		Type:              a.Type,
		CategoryCode:      a.CategoryCode,
		QuestionCode:      a.QuestionCode,
		Stage:             a.Stage,
		ListOrder:         a.ListOrder,
		OwnerEmail:        a.OwnerEmail,
		OwnerAcknowledged: a.OwnerAcknowledged,
		Status:            a.Status,
		PostponeDate:      a.PostponeDate,
		Notes:             a.Notes,
		Invites:           invites,
		Log:               a.Log,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}
