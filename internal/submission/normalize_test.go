package submission

import (
	"testing"
	"time"
)

func TestNormalizeCoercesFieldsAndLowercasesEmail(t *testing.T) {
	raw := []byte(`{
		"id": "ext-123",
		"result_key": "rk-abc",
		"email": "  User@Example.COM ",
		"finished_at": "2026-03-01T10:00:00Z",
		"total_actual": "42.5",
		"total_percent": 61,
		"total_tier": "Silver",
		"company_size": "11-50",
		"country": "NL"
	}`)

	n := Normalize(raw, "assessment-1")

	if n.ExternalID != "ext-123" {
		t.Fatalf("external id = %q", n.ExternalID)
	}
	if n.Email != "user@example.com" {
		t.Fatalf("email = %q, want lowercased and trimmed", n.Email)
	}
	if n.AssessmentID != "assessment-1" {
		t.Fatalf("assessment id = %q", n.AssessmentID)
	}
	if n.TotalActual != 42.5 {
		t.Fatalf("total actual = %v, want string coerced to 42.5", n.TotalActual)
	}
	if n.TotalPercent != 61 {
		t.Fatalf("total percent = %v", n.TotalPercent)
	}
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !n.FinishedAt.Equal(want) {
		t.Fatalf("finished at = %v, want %v", n.FinishedAt, want)
	}
}

func TestNormalizeDefaultsMissingFields(t *testing.T) {
	before := time.Now().UTC()
	n := Normalize([]byte(`{}`), "a")
	after := time.Now().UTC()

	if n.ExternalID != "" || n.Email != "" || n.TotalPercent != 0 {
		t.Fatalf("expected zero defaults, got %+v", n)
	}
	if n.FinishedAt.Before(before) || n.FinishedAt.After(after) {
		t.Fatalf("finished at should default to now, got %v", n.FinishedAt)
	}
	if len(n.CategoryScores) != 0 || len(n.Questions) != 0 {
		t.Fatalf("expected no children, got %+v", n)
	}
}

func TestNormalizeSurvivesMalformedJSON(t *testing.T) {
	n := Normalize([]byte(`not json at all`), "a")
	if n.AssessmentID != "a" {
		t.Fatalf("assessment id = %q", n.AssessmentID)
	}
	if n.ExternalID != "" {
		t.Fatalf("expected empty external id, got %q", n.ExternalID)
	}
}

func TestNormalizeDropsCategoryScoresWithoutCode(t *testing.T) {
	raw := []byte(`{
		"category_scores": [
			{"category_id": "strategy", "title": "Strategy", "percent": 55, "tier": "Mid"},
			{"code": "data", "title": "Data", "percent": 31},
			{"title": "Orphan", "percent": 99}
		]
	}`)

	n := Normalize(raw, "a")

	if len(n.CategoryScores) != 2 {
		t.Fatalf("got %d scores, want 2 (codeless score dropped)", len(n.CategoryScores))
	}
	if n.CategoryScores[0].Code != "strategy" || n.CategoryScores[1].Code != "data" {
		t.Fatalf("unexpected codes: %+v", n.CategoryScores)
	}
}

func TestNormalizeDropsBlankAnswersButKeepsQuestion(t *testing.T) {
	raw := []byte(`{
		"quiz_questions": [
			{"code": "q1", "label": "First", "answers": ["yes", "  ", ""]},
			{"code": "q2", "label": "Second", "answers": []}
		]
	}`)

	n := Normalize(raw, "a")

	if len(n.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(n.Questions))
	}
	if len(n.Questions[0].Answers) != 1 || n.Questions[0].Answers[0] != "yes" {
		t.Fatalf("q1 answers = %v, want only the non-blank one", n.Questions[0].Answers)
	}
	if len(n.Questions[1].Answers) != 0 {
		t.Fatalf("q2 answers = %v, want none", n.Questions[1].Answers)
	}
}

func TestNormalizeParsesAlternateTimestampLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01 10:30:00", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		n := Normalize([]byte(`{"finished_at": "`+tc.in+`"}`), "a")
		if !n.FinishedAt.Equal(tc.want) {
			t.Fatalf("finished_at %q parsed to %v, want %v", tc.in, n.FinishedAt, tc.want)
		}
	}
}

func TestNormalizeCoercesNumericExternalID(t *testing.T) {
	n := Normalize([]byte(`{"id": 98765}`), "a")
	if n.ExternalID != "98765" {
		t.Fatalf("external id = %q, want numeric id rendered as string", n.ExternalID)
	}
}
