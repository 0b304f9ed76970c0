package service

import (
	"context"
	"testing"
	"time"

	"compass_backend/internal/action/repository"
	"compass_backend/internal/action/transport"
	"compass_backend/internal/events"
	"compass_backend/platform/apperr"
	"compass_backend/platform/logger"
	"compass_backend/platform/validator"
)

// fakeRepo is an in-memory repository.Repository used across service tests.
type fakeRepo struct {
	actions  map[int64]repository.Action
	nextID   int64
	createFn func(p repository.CreateParams) (repository.Action, error)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{actions: map[int64]repository.Action{}, nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateParams) (repository.Action, error) {
	if f.createFn != nil {
		return f.createFn(p)
	}
	order := 0
	for _, a := range f.actions {
		if a.Email == p.Email && a.ListOrder > order {
			order = a.ListOrder
		}
	}
	a := repository.Action{
		ID:           f.nextID,
		Email:        p.Email,
		Type:         p.Type,
		CategoryCode: p.CategoryCode,
		QuestionCode: p.QuestionCode,
		Stage:        p.Stage,
		ListOrder:    order + 1,
		Status:       p.Status,
		Log:          p.LogEntry,
	}
	f.actions[a.ID] = a
	f.nextID++
	return a, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (repository.Action, error) {
	a, ok := f.actions[id]
	if !ok {
		return repository.Action{}, apperr.NotFound("action not found")
	}
	return a, nil
}

func (f *fakeRepo) ListByEmail(_ context.Context, email string) ([]repository.Action, error) {
	var out []repository.Action
	for id := int64(1); id < f.nextID; id++ {
		if a, ok := f.actions[id]; ok && a.Email == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) Reorder(_ context.Context, email string, items []transport.ReorderItem) error {
	for _, item := range items {
		a, ok := f.actions[item.ActionID]
		if !ok || a.Email != email {
			return apperr.Validation("action does not belong to this user")
		}
		a.ListOrder = item.Order
		f.actions[item.ActionID] = a
	}
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.actions[id]; !ok {
		return apperr.NotFound("action not found")
	}
	delete(f.actions, id)
	return nil
}

func (f *fakeRepo) ExistsQuestionAction(_ context.Context, email, code string, stage int) (bool, error) {
	for _, a := range f.actions {
		if a.Email == email && a.Type == transport.TypeQuestion &&
			a.QuestionCode == code && a.Stage == stage && a.Status != transport.StatusStageChanged {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status, logEntry string) error {
	a, ok := f.actions[id]
	if !ok {
		return apperr.NotFound("action not found")
	}
	a.Status = status
	a.Log += logEntry
	f.actions[id] = a
	return nil
}

func (f *fakeRepo) UpdateOwner(_ context.Context, id int64, ownerEmail, logEntry string) error {
	a, ok := f.actions[id]
	if !ok {
		return apperr.NotFound("action not found")
	}
	a.OwnerEmail = ownerEmail
	a.Log += logEntry
	f.actions[id] = a
	return nil
}

func (f *fakeRepo) UpdateAcknowledged(_ context.Context, id int64, acknowledged bool, logEntry string) error {
	a, ok := f.actions[id]
	if !ok {
		return apperr.NotFound("action not found")
	}
	a.OwnerAcknowledged = acknowledged
	a.Log += logEntry
	f.actions[id] = a
	return nil
}

func (f *fakeRepo) UpdateNotes(_ context.Context, id int64, notes, logEntry string) error {
	a, ok := f.actions[id]
	if !ok {
		return apperr.NotFound("action not found")
	}
	a.Notes = notes
	a.Log += logEntry
	f.actions[id] = a
	return nil
}

func (f *fakeRepo) UpdatePostpone(_ context.Context, id int64, date time.Time, status, logEntry string) error {
	a, ok := f.actions[id]
	if !ok {
		return apperr.NotFound("action not found")
	}
	a.PostponeDate = &date
	a.Status = status
	a.Log += logEntry
	f.actions[id] = a
	return nil
}

func (f *fakeRepo) UpdateInvites(_ context.Context, id int64, invites []transport.Invite, logEntry string) error {
	a, ok := f.actions[id]
	if !ok {
		return apperr.NotFound("action not found")
	}
	a.Invites = invites
	a.Log += logEntry
	f.actions[id] = a
	return nil
}

// fakeScores serves a fixed snapshot and question-code list.
type fakeScores struct {
	snap  ScoreSnapshot
	codes []string
}

func (f *fakeScores) LatestSnapshot(context.Context, string) (ScoreSnapshot, error) {
	if !f.snap.Found {
		return ScoreSnapshot{}, apperr.NotFound("submission not found")
	}
	return f.snap, nil
}

func (f *fakeScores) LatestQuestionCodes(context.Context, string) ([]string, error) {
	return f.codes, nil
}

// fakeCodes maps category ids to codes.
type fakeCodes map[int64]string

func (f fakeCodes) CategoryCodeByID(_ context.Context, id int64) (string, error) {
	code, ok := f[id]
	if !ok {
		return "", apperr.NotFound("category not found")
	}
	return code, nil
}

// fakeResources answers resource availability per question code.
type fakeResources map[string]bool

func (f fakeResources) HasQuestionResource(_ context.Context, code string, _ int) (bool, error) {
	return f[code], nil
}

// fakeBus records published events synchronously.
type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}
func (f *fakeBus) Subscribe(string, events.Handler) {}

func newTestService(repo repository.Repository, scores ScoreReader, codes CategoryCodeResolver, resources ResourceChecker, bus events.Bus) *Service {
	svc := New(repo, scores, codes, resources, bus, validator.New(), logger.New("test"))
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateCategoryActionResolvesCodeAndDefaultsStage(t *testing.T) {
	repo := newFakeRepo()
	scores := &fakeScores{snap: ScoreSnapshot{Found: true, TotalPercent: 60, Categories: map[string]float64{"strategy": 25}}}
	bus := &fakeBus{}
	svc := newTestService(repo, scores, fakeCodes{7: "strategy"}, fakeResources{}, bus)

	categoryID := int64(7)
	resp, err := svc.Create(context.Background(), transport.CreateActionRequest{
		Email:      "user@example.com",
		Type:       transport.TypeCategory,
		CategoryID: &categoryID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.CategoryCode != "strategy" {
		t.Fatalf("category code = %q", resp.CategoryCode)
	}
	// 25% in the strategy category classifies as stage 1.
	if resp.Stage != 1 {
		t.Fatalf("stage = %d, want pinned from category percent", resp.Stage)
	}
	if resp.Status != transport.StatusNotAssigned {
		t.Fatalf("status = %q, want user creations to start Not Assigned", resp.Status)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	created, ok := bus.published[0].(events.ActionCreated)
	if !ok || created.Source != "user" {
		t.Fatalf("unexpected event %+v", bus.published[0])
	}
}

func TestCreateCategoryActionWithUnknownCategoryIsValidation(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})

	categoryID := int64(99)
	_, err := svc.Create(context.Background(), transport.CreateActionRequest{
		Email:      "user@example.com",
		Type:       transport.TypeCategory,
		CategoryID: &categoryID,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error for unknown category", err)
	}
}

func TestCreateQuestionActionRequiresCodeAndStage(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})

	_, err := svc.Create(context.Background(), transport.CreateActionRequest{
		Email: "user@example.com",
		Type:  transport.TypeQuestion,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error without question code", err)
	}

	code := "q1"
	_, err = svc.Create(context.Background(), transport.CreateActionRequest{
		Email:        "user@example.com",
		Type:         transport.TypeQuestion,
		QuestionCode: &code,
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error without stage", err)
	}
}

func TestCreatePropagatesConflictFromRepository(t *testing.T) {
	repo := newFakeRepo()
	repo.createFn = func(repository.CreateParams) (repository.Action, error) {
		return repository.Action{}, apperr.Conflict("action already exists")
	}
	svc := newTestService(repo, &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})

	code := "q1"
	stageNum := 2
	_, err := svc.Create(context.Background(), transport.CreateActionRequest{
		Email:        "user@example.com",
		Type:         transport.TypeQuestion,
		QuestionCode: &code,
		Stage:        &stageNum,
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("got %v, want conflict", err)
	}
}

func TestListDerivesAndPersistsStatusChanges(t *testing.T) {
	repo := newFakeRepo()
	repo.actions[1] = repository.Action{
		ID: 1, Email: "user@example.com", Type: transport.TypeQuestion,
		Stage: 1, ListOrder: 1, Status: transport.StatusActive,
	}
	repo.nextID = 2
	// 80% drifts away from stage 1.
	scores := &fakeScores{snap: ScoreSnapshot{Found: true, TotalPercent: 80}}
	bus := &fakeBus{}
	svc := newTestService(repo, scores, fakeCodes{}, fakeResources{}, bus)

	resp, err := svc.List(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("total = %d", resp.Total)
	}
	if resp.Items[0].Status != transport.StatusStageChanged {
		t.Fatalf("status = %q, want derived Stage Changed", resp.Items[0].Status)
	}
	if repo.actions[1].Status != transport.StatusStageChanged {
		t.Fatalf("stored status = %q, want the derivation persisted", repo.actions[1].Status)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want a status-change event", len(bus.published))
	}
}

func TestListWithoutSubmissionLeavesStatusesAlone(t *testing.T) {
	repo := newFakeRepo()
	repo.actions[1] = repository.Action{
		ID: 1, Email: "user@example.com", Type: transport.TypeQuestion,
		Stage: 3, ListOrder: 1, Status: transport.StatusActive,
	}
	repo.nextID = 2
	svc := newTestService(repo, &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})

	resp, err := svc.List(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Items[0].Status != transport.StatusActive {
		t.Fatalf("status = %q, want unchanged without scores", resp.Items[0].Status)
	}
}

func TestListRejectsInvalidEmail(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})
	if _, err := svc.List(context.Background(), "not-an-email"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestSetStatusRejectsSystemDerivedValues(t *testing.T) {
	repo := newFakeRepo()
	repo.actions[1] = repository.Action{ID: 1, Email: "user@example.com", Status: transport.StatusActive}
	repo.nextID = 2
	svc := newTestService(repo, &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})

	for _, status := range []string{transport.StatusStageChanged, transport.StatusOverdue, transport.StatusPostponed} {
		err := svc.SetStatus(context.Background(), 1, transport.SetStatusRequest{Status: status})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("status %q: got %v, want validation rejection", status, err)
		}
	}
}

func TestSetStatusAcceptsOpenStrings(t *testing.T) {
	repo := newFakeRepo()
	repo.actions[1] = repository.Action{ID: 1, Email: "user@example.com", Status: transport.StatusActive}
	repo.nextID = 2
	bus := &fakeBus{}
	svc := newTestService(repo, &fakeScores{}, fakeCodes{}, fakeResources{}, bus)

	if err := svc.SetStatus(context.Background(), 1, transport.SetStatusRequest{Status: "Waiting on vendor"}); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if repo.actions[1].Status != "Waiting on vendor" {
		t.Fatalf("stored status = %q", repo.actions[1].Status)
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want a status-change event", len(bus.published))
	}
}

func TestSetPostponeDateWritesDateAndStatusTogether(t *testing.T) {
	repo := newFakeRepo()
	repo.actions[1] = repository.Action{ID: 1, Email: "user@example.com", Status: transport.StatusActive}
	repo.nextID = 2
	svc := newTestService(repo, &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})

	until := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.SetPostponeDate(context.Background(), 1, transport.SetPostponeRequest{PostponeDate: until}); err != nil {
		t.Fatalf("postpone: %v", err)
	}

	got := repo.actions[1]
	if got.Status != transport.StatusPostponed {
		t.Fatalf("status = %q", got.Status)
	}
	if got.PostponeDate == nil || !got.PostponeDate.Equal(until) {
		t.Fatalf("postpone date = %v", got.PostponeDate)
	}
}

func TestRemoveMissingActionIsNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})
	if err := svc.Remove(context.Background(), 42); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("got %v, want not found", err)
	}
}

func TestReorderValidatesBatch(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeScores{}, fakeCodes{}, fakeResources{}, &fakeBus{})

	err := svc.Reorder(context.Background(), transport.ReorderRequest{Email: "user@example.com"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error for empty batch", err)
	}
}
