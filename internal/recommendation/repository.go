// Package recommendation provides lookups of authored guidance content
// keyed by (code, stage). Content is immutable at runtime; absence of a row
// is a normal outcome, not an error.
package recommendation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Recommendation is category-level guidance for one maturity stage.
type Recommendation struct {
	CategoryCode string `json:"categoryCode"`
	Stage        int    `json:"stage"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

// QuestionPlan is question-level guidance for one maturity stage.
type QuestionPlan struct {
	QuestionCode string `json:"questionCode"`
	Stage        int    `json:"stage"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	ResourceURL  string `json:"resourceUrl"`
}

// Repository provides data access for authored guidance content.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new recommendation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetCategory returns the recommendation for (code, stage), or nil when no
// content is authored for that combination.
func (r *Repository) GetCategory(ctx context.Context, code string, stage int) (*Recommendation, error) {
	var rec Recommendation
	err := r.pool.QueryRow(ctx, `
		SELECT category_code, stage, title, body
		FROM recommendations
		WHERE category_code = $1 AND stage = $2
	`, code, stage).Scan(&rec.CategoryCode, &rec.Stage, &rec.Title, &rec.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category recommendation: %w", err)
	}
	return &rec, nil
}

// GetQuestion returns the plan for (code, stage), or nil when no content is
// authored for that combination.
func (r *Repository) GetQuestion(ctx context.Context, code string, stage int) (*QuestionPlan, error) {
	var plan QuestionPlan
	err := r.pool.QueryRow(ctx, `
		SELECT question_code, stage, title, body, resource_url
		FROM question_plans
		WHERE question_code = $1 AND stage = $2
	`, code, stage).Scan(&plan.QuestionCode, &plan.Stage, &plan.Title, &plan.Body, &plan.ResourceURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get question plan: %w", err)
	}
	return &plan, nil
}

// HasQuestionResource reports whether at least one plan with a resource
// exists for (code, stage). Consumed by the system recommender pass.
func (r *Repository) HasQuestionResource(ctx context.Context, code string, stage int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM question_plans
			WHERE question_code = $1 AND stage = $2 AND resource_url <> ''
		)
	`, code, stage).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("question resource availability: %w", err)
	}
	return exists, nil
}
