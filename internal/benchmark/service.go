package benchmark

import (
	"context"

	"compass_backend/internal/stage"

	"golang.org/x/sync/errgroup"
)

// Aggregator is the query surface the service depends on.
// Satisfied by *Repository.
type Aggregator interface {
	OverallAverage(ctx context.Context, f Filter) (float64, int, error)
	CategoryAverages(ctx context.Context, f Filter) ([]CategoryAverage, error)
}

// Report is the peer-benchmark view for one filter.
type Report struct {
	CompanySize    string            `json:"companySize,omitempty"`
	Country        string            `json:"country,omitempty"`
	SampleSize     int               `json:"sampleSize"`
	AveragePercent float64           `json:"averagePercent"`
	AverageStage   int               `json:"averageStage"`
	StageName      string            `json:"stageName"`
	Categories     []CategoryAverage `json:"categories"`
}

// Service computes peer-benchmark reports.
type Service struct {
	agg Aggregator
}

// NewService creates a new benchmark service.
func NewService(agg Aggregator) *Service {
	return &Service{agg: agg}
}

// Report builds the benchmark report for a filter. The overall and
// per-category aggregates are independent queries and run concurrently.
func (s *Service) Report(ctx context.Context, f Filter) (Report, error) {
	var (
		avg        float64
		count      int
		categories []CategoryAverage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		avg, count, err = s.agg.OverallAverage(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.agg.CategoryAverages(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	st := stage.Classify(avg)
	if categories == nil {
		categories = []CategoryAverage{}
	}

	return Report{
		CompanySize:    f.CompanySize,
		Country:        f.Country,
		SampleSize:     count,
		AveragePercent: avg,
		AverageStage:   st.Stage,
		StageName:      st.Name,
		Categories:     categories,
	}, nil
}
