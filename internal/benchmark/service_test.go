package benchmark

import (
	"context"
	"errors"
	"testing"
)

type fakeAggregator struct {
	avg        float64
	count      int
	categories []CategoryAverage
	err        error
}

func (f *fakeAggregator) OverallAverage(context.Context, Filter) (float64, int, error) {
	return f.avg, f.count, f.err
}

func (f *fakeAggregator) CategoryAverages(context.Context, Filter) ([]CategoryAverage, error) {
	return f.categories, f.err
}

func TestReportClassifiesAverageIntoStage(t *testing.T) {
	svc := NewService(&fakeAggregator{
		avg:   62.5,
		count: 14,
		categories: []CategoryAverage{
			{Code: "data", Title: "Data", AveragePercent: 40},
		},
	})

	report, err := svc.Report(context.Background(), Filter{CompanySize: "11-50"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.SampleSize != 14 || report.AveragePercent != 62.5 {
		t.Fatalf("got %+v", report)
	}
	// 62.5% falls in the Scaling band.
	if report.AverageStage != 3 || report.StageName != "Scaling" {
		t.Fatalf("stage = %d %q", report.AverageStage, report.StageName)
	}
	if len(report.Categories) != 1 {
		t.Fatalf("categories = %+v", report.Categories)
	}
}

func TestReportEmptyPeerGroupIsStageZero(t *testing.T) {
	svc := NewService(&fakeAggregator{})

	report, err := svc.Report(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.SampleSize != 0 || report.AverageStage != 0 {
		t.Fatalf("got %+v, want empty group to classify as stage 0", report)
	}
	if report.Categories == nil {
		t.Fatal("categories must serialize as an empty list, not null")
	}
}

func TestReportPropagatesAggregateErrors(t *testing.T) {
	svc := NewService(&fakeAggregator{err: errors.New("boom")})
	if _, err := svc.Report(context.Background(), Filter{}); err == nil {
		t.Fatal("expected error from aggregator")
	}
}
