package recommendation

import (
	"context"
	"testing"

	"compass_backend/platform/apperr"
)

// fakeReader serves fixed content keyed by (code, stage).
type fakeReader struct {
	categories map[string]*Recommendation
	questions  map[string]*QuestionPlan
}

func key(code string, stage int) string {
	return code + "#" + string(rune('0'+stage))
}

func (f *fakeReader) GetCategory(_ context.Context, code string, stage int) (*Recommendation, error) {
	return f.categories[key(code, stage)], nil
}

func (f *fakeReader) GetQuestion(_ context.Context, code string, stage int) (*QuestionPlan, error) {
	return f.questions[key(code, stage)], nil
}

func (f *fakeReader) HasQuestionResource(_ context.Context, code string, stage int) (bool, error) {
	plan := f.questions[key(code, stage)]
	return plan != nil && plan.ResourceURL != "", nil
}

func TestResolveCategoryReturnsNilForUnauthoredContent(t *testing.T) {
	svc := NewService(&fakeReader{categories: map[string]*Recommendation{
		key("strategy", 1): {CategoryCode: "strategy", Stage: 1, Title: "Start here"},
	}})

	rec, err := svc.ResolveCategory(context.Background(), "strategy", 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec == nil || rec.Title != "Start here" {
		t.Fatalf("got %+v", rec)
	}

	rec, err = svc.ResolveCategory(context.Background(), "strategy", 4)
	if err != nil {
		t.Fatalf("resolve unauthored: %v", err)
	}
	if rec != nil {
		t.Fatalf("got %+v, want nil for an unauthored (code, stage)", rec)
	}
}

func TestResolveCategoryRequiresCode(t *testing.T) {
	svc := NewService(&fakeReader{})
	if _, err := svc.ResolveCategory(context.Background(), "", 1); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestResolveQuestionRequiresCode(t *testing.T) {
	svc := NewService(&fakeReader{})
	if _, err := svc.ResolveQuestion(context.Background(), "", 1); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("got %v, want validation error", err)
	}
}

func TestHasQuestionResourceEmptyCodeIsFalse(t *testing.T) {
	svc := NewService(&fakeReader{})
	available, err := svc.HasQuestionResource(context.Background(), "", 1)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if available {
		t.Fatal("empty code must never report a resource")
	}
}

func TestHasQuestionResourceFollowsResourceURL(t *testing.T) {
	svc := NewService(&fakeReader{questions: map[string]*QuestionPlan{
		key("q1", 1): {QuestionCode: "q1", Stage: 1, ResourceURL: "https://example.com/guide"},
		key("q2", 1): {QuestionCode: "q2", Stage: 1},
	}})

	available, err := svc.HasQuestionResource(context.Background(), "q1", 1)
	if err != nil || !available {
		t.Fatalf("q1: got (%v, %v), want available", available, err)
	}
	available, err = svc.HasQuestionResource(context.Background(), "q2", 1)
	if err != nil || available {
		t.Fatalf("q2: got (%v, %v), want unavailable without a resource url", available, err)
	}
}
