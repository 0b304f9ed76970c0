// Package submission provides the assessment-submission bounded context.
// It ingests third-party webhook payloads, normalizes them into canonical
// records, and persists them with full child replacement.
package submission

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// NormalizedSubmission is the canonical form of one inbound submission.
type NormalizedSubmission struct {
	ExternalID     string
	ResultKey      string
	Email          string
	AssessmentID   string
	FinishedAt     time.Time
	TotalActual    float64
	TotalPercent   float64
	TotalTier      string
	CompanySize    string
	Country        string
	CategoryScores []CategoryScore
	Questions      []Question
}

// CategoryScore is one category-level score within a submission.
type CategoryScore struct {
	Code    string
	Title   string
	Percent float64
	Tier    string
}

// Question is one answered question within a submission.
type Question struct {
	Code    string
	Label   string
	Answers []string
}

// finishedAtLayouts are the timestamp formats the vendor has been observed
// sending.
var finishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw webhook payload into a canonical submission.
// It is pure and performs no I/O. Malformed or missing fields are replaced
// with safe defaults: strings become "", numbers become 0, finished_at
// becomes now. Category scores without a resolvable category code are
// dropped, as are blank answers.
func Normalize(raw []byte, assessmentID string) NormalizedSubmission {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		payload = map[string]interface{}{}
	}

	n := NormalizedSubmission{
		ExternalID:   asString(payload["id"]),
		ResultKey:    asString(payload["result_key"]),
		Email:        strings.TrimSpace(strings.ToLower(asString(payload["email"]))),
		AssessmentID: assessmentID,
		FinishedAt:   asTime(payload["finished_at"]),
		TotalActual:  asFloat(payload["total_actual"]),
		TotalPercent: asFloat(payload["total_percent"]),
		TotalTier:    asString(payload["total_tier"]),
		CompanySize:  asString(payload["company_size"]),
		Country:      asString(payload["country"]),
	}

	n.CategoryScores = normalizeCategoryScores(asList(payload["category_scores"]))
	n.Questions = normalizeQuestions(asList(payload["quiz_questions"]))

	return n
}

func normalizeCategoryScores(items []interface{}) []CategoryScore {
	scores := make([]CategoryScore, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		code := asString(entry["category_id"])
		if code == "" {
			code = asString(entry["code"])
		}
		// A category score with no identifiable category is meaningless
		// and must not be persisted.
		if code == "" {
			continue
		}

		scores = append(scores, CategoryScore{
			Code:    code,
			Title:   asString(entry["title"]),
			Percent: asFloat(entry["percent"]),
			Tier:    asString(entry["tier"]),
		})
	}
	return scores
}

func normalizeQuestions(items []interface{}) []Question {
	questions := make([]Question, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		q := Question{
			Code:  asString(entry["code"]),
			Label: asString(entry["label"]),
		}

		for _, a := range asList(entry["answers"]) {
			answer := strings.TrimSpace(asString(a))
			if answer == "" {
				continue
			}
			q.Answers = append(q.Answers, answer)
		}

		questions = append(questions, q)
	}
	return questions
}

// asString coerces a payload value to a string, defaulting to "".
func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// asFloat coerces a payload value to a float64, defaulting to 0.
func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// asTime coerces a payload value to a timestamp, defaulting to now.
func asTime(v interface{}) time.Time {
	s := asString(v)
	if s != "" {
		for _, layout := range finishedAtLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Now().UTC()
}

// asList coerces a payload value to a list, defaulting to empty.
func asList(v interface{}) []interface{} {
	if items, ok := v.([]interface{}); ok {
		return items
	}
	return nil
}
