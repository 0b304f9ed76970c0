// Package benchmark provides read-only peer aggregation of submission scores.
// It consumes the ingestion store's data and produces averages; it never
// writes.
package benchmark

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter narrows the peer group. Empty fields match everything.
type Filter struct {
	CompanySize string
	Country     string
}

// CategoryAverage is the peer average for one category.
type CategoryAverage struct {
	Code           string  `json:"code"`
	Title          string  `json:"title"`
	AveragePercent float64 `json:"averagePercent"`
}

// Repository provides aggregate queries over submissions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new benchmark repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// OverallAverage returns the average total percent and the sample size for
// the filtered peer group.
func (r *Repository) OverallAverage(ctx context.Context, f Filter) (float64, int, error) {
	var avg float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(total_percent), 0), COUNT(*)
		FROM submissions
		WHERE ($1 = '' OR company_size = $1)
			AND ($2 = '' OR country = $2)
	`, f.CompanySize, f.Country).Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("overall average: %w", err)
	}
	return avg, count, nil
}

// CategoryAverages returns per-category average percents for the filtered
// peer group, ordered by category code.
func (r *Repository) CategoryAverages(ctx context.Context, f Filter) ([]CategoryAverage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.code, c.title, COALESCE(AVG(scs.percent), 0)
		FROM submission_category_scores scs
		JOIN categories c ON c.id = scs.category_id
		JOIN submissions s ON s.id = scs.submission_id
		WHERE ($1 = '' OR s.company_size = $1)
			AND ($2 = '' OR s.country = $2)
		GROUP BY c.code, c.title
		ORDER BY c.code ASC
	`, f.CompanySize, f.Country)
	if err != nil {
		return nil, fmt.Errorf("category averages: %w", err)
	}
	defer rows.Close()

	var averages []CategoryAverage
	for rows.Next() {
		var a CategoryAverage
		if err := rows.Scan(&a.Code, &a.Title, &a.AveragePercent); err != nil {
			return nil, err
		}
		averages = append(averages, a)
	}
	return averages, rows.Err()
}
