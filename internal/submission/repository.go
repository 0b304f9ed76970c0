package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"compass_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionNotFoundMessage = "submission not found"

const upsertSubmissionQuery = `
	INSERT INTO submissions (external_id, result_key, email, assessment_id, finished_at,
		total_actual, total_percent, total_tier, company_size, country)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (external_id) DO UPDATE SET
		result_key = EXCLUDED.result_key,
		email = EXCLUDED.email,
		assessment_id = EXCLUDED.assessment_id,
		finished_at = EXCLUDED.finished_at,
		total_actual = EXCLUDED.total_actual,
		total_percent = EXCLUDED.total_percent,
		total_tier = EXCLUDED.total_tier,
		company_size = EXCLUDED.company_size,
		country = EXCLUDED.country,
		updated_at = now()
	RETURNING id, (xmax <> 0) AS replaced`

const latestSubmissionQuery = `
	SELECT id, total_percent
	FROM submissions
	WHERE email = $1
	ORDER BY finished_at DESC, id DESC
	LIMIT 1`

// Submission is one persisted assessment attempt.
type Submission struct {
	ID           int64
	ExternalID   string
	ResultKey    string
	Email        string
	AssessmentID string
	FinishedAt   time.Time
	TotalActual  float64
	TotalPercent float64
	TotalTier    string
	CompanySize  string
	Country      string
}

// Detail is a submission with its child rows, as served to readers.
type Detail struct {
	Submission
	CategoryScores []CategoryScore
	Questions      []Question
}

// LatestScores captures the scoring state of a user's most recent submission.
type LatestScores struct {
	SubmissionID int64
	TotalPercent float64
	Categories   map[string]float64 // category code -> percent
}

// Repository provides data access for submissions and their children.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new submission repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Persist upserts the submission keyed on external_id and fully replaces its
// children (category scores, questions, answers) in a single transaction.
// The returned bool reports whether an existing row was overwritten.
func (r *Repository) Persist(ctx context.Context, n NormalizedSubmission) (int64, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin persist submission: %w", err)
	}
	defer tx.Rollback(ctx)

	var submissionID int64
	var replaced bool
	err = tx.QueryRow(ctx, upsertSubmissionQuery,
		n.ExternalID, n.ResultKey, n.Email, n.AssessmentID, n.FinishedAt,
		n.TotalActual, n.TotalPercent, n.TotalTier, n.CompanySize, n.Country,
	).Scan(&submissionID, &replaced)
	if err != nil {
		return 0, false, fmt.Errorf("upsert submission: %w", err)
	}
	if submissionID == 0 {
		// The unique-key upsert always resolves a row; an empty id means the
		// store broke an invariant, not a retryable condition.
		return 0, false, apperr.Internal("submission id unresolvable after upsert").WithOp("Persist")
	}

	// Children are replaced wholesale, never merged. Deleting questions
	// cascades to their answers.
	if _, err := tx.Exec(ctx, `DELETE FROM submission_category_scores WHERE submission_id = $1`, submissionID); err != nil {
		return 0, false, fmt.Errorf("delete category scores: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM submission_questions WHERE submission_id = $1`, submissionID); err != nil {
		return 0, false, fmt.Errorf("delete questions: %w", err)
	}

	for _, score := range n.CategoryScores {
		var categoryID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO categories (code, title) VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET title = EXCLUDED.title
			RETURNING id
		`, score.Code, score.Title).Scan(&categoryID)
		if err != nil {
			return 0, false, fmt.Errorf("upsert category %s: %w", score.Code, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO submission_category_scores (submission_id, category_id, percent, tier)
			VALUES ($1, $2, $3, $4)
		`, submissionID, categoryID, score.Percent, score.Tier); err != nil {
			return 0, false, fmt.Errorf("insert category score %s: %w", score.Code, err)
		}
	}

	for position, q := range n.Questions {
		var questionID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO submission_questions (submission_id, code, label, position)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, submissionID, q.Code, q.Label, position).Scan(&questionID)
		if err != nil {
			return 0, false, fmt.Errorf("insert question %s: %w", q.Code, err)
		}

		for _, answer := range q.Answers {
			if _, err := tx.Exec(ctx, `
				INSERT INTO submission_answers (question_id, value) VALUES ($1, $2)
			`, questionID, answer); err != nil {
				return 0, false, fmt.Errorf("insert answer for %s: %w", q.Code, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("commit persist submission: %w", err)
	}

	return submissionID, replaced, nil
}

// GetByResultKey retrieves a submission and its children by public lookup token.
func (r *Repository) GetByResultKey(ctx context.Context, resultKey string) (Detail, error) {
	var d Detail
	err := r.pool.QueryRow(ctx, `
		SELECT id, external_id, result_key, email, assessment_id, finished_at,
			total_actual, total_percent, total_tier, company_size, country
		FROM submissions
		WHERE result_key = $1
		ORDER BY finished_at DESC, id DESC
		LIMIT 1
	`, resultKey).Scan(
		&d.ID, &d.ExternalID, &d.ResultKey, &d.Email, &d.AssessmentID, &d.FinishedAt,
		&d.TotalActual, &d.TotalPercent, &d.TotalTier, &d.CompanySize, &d.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, apperr.NotFound(submissionNotFoundMessage)
		}
		return Detail{}, fmt.Errorf("get submission by result key: %w", err)
	}

	if d.CategoryScores, err = r.categoryScores(ctx, d.ID); err != nil {
		return Detail{}, err
	}
	if d.Questions, err = r.questions(ctx, d.ID); err != nil {
		return Detail{}, err
	}

	return d, nil
}

// LatestScores returns the scoring state of the user's most recent
// submission, determined by finished_at descending with id as tie-break.
func (r *Repository) LatestScores(ctx context.Context, email string) (LatestScores, error) {
	var latest LatestScores
	err := r.pool.QueryRow(ctx, latestSubmissionQuery, email).Scan(&latest.SubmissionID, &latest.TotalPercent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LatestScores{}, apperr.NotFound(submissionNotFoundMessage)
		}
		return LatestScores{}, fmt.Errorf("latest submission for %s: %w", email, err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.code, s.percent
		FROM submission_category_scores s
		JOIN categories c ON c.id = s.category_id
		WHERE s.submission_id = $1
	`, latest.SubmissionID)
	if err != nil {
		return LatestScores{}, fmt.Errorf("latest category scores: %w", err)
	}
	defer rows.Close()

	latest.Categories = map[string]float64{}
	for rows.Next() {
		var code string
		var percent float64
		if err := rows.Scan(&code, &percent); err != nil {
			return LatestScores{}, err
		}
		latest.Categories[code] = percent
	}
	return latest, rows.Err()
}

// LatestQuestionCodes returns the question codes answered in the user's most
// recent submission, in question order.
func (r *Repository) LatestQuestionCodes(ctx context.Context, email string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT q.code
		FROM submission_questions q
		WHERE q.submission_id = (
			SELECT id FROM submissions WHERE email = $1
			ORDER BY finished_at DESC, id DESC LIMIT 1
		) AND q.code <> ''
		ORDER BY q.position ASC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("latest question codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// CategoryCodeByID resolves a category dictionary id to its stable code.
func (r *Repository) CategoryCodeByID(ctx context.Context, categoryID int64) (string, error) {
	var code string
	err := r.pool.QueryRow(ctx, `SELECT code FROM categories WHERE id = $1`, categoryID).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("category not found")
		}
		return "", fmt.Errorf("category code by id: %w", err)
	}
	return code, nil
}

func (r *Repository) categoryScores(ctx context.Context, submissionID int64) ([]CategoryScore, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.code, c.title, s.percent, s.tier
		FROM submission_category_scores s
		JOIN categories c ON c.id = s.category_id
		WHERE s.submission_id = $1
		ORDER BY c.code ASC
	`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("category scores: %w", err)
	}
	defer rows.Close()

	var scores []CategoryScore
	for rows.Next() {
		var s CategoryScore
		if err := rows.Scan(&s.Code, &s.Title, &s.Percent, &s.Tier); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *Repository) questions(ctx context.Context, submissionID int64) ([]Question, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT q.id, q.code, q.label
		FROM submission_questions q
		WHERE q.submission_id = $1
		ORDER BY q.position ASC
	`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("questions: %w", err)
	}
	defer rows.Close()

	type row struct {
		id int64
		q  Question
	}
	var ordered []row
	for rows.Next() {
		var item row
		if err := rows.Scan(&item.id, &item.q.Code, &item.q.Label); err != nil {
			return nil, err
		}
		ordered = append(ordered, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range ordered {
		answers, err := r.answers(ctx, ordered[i].id)
		if err != nil {
			return nil, err
		}
		ordered[i].q.Answers = answers
	}

	questions := make([]Question, 0, len(ordered))
	for _, item := range ordered {
		questions = append(questions, item.q)
	}
	return questions, nil
}

func (r *Repository) answers(ctx context.Context, questionID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT value FROM submission_answers WHERE question_id = $1 ORDER BY id ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("answers: %w", err)
	}
	defer rows.Close()

	var answers []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		answers = append(answers, v)
	}
	return answers, rows.Err()
}
