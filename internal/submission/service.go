package submission

import (
	"context"
	"time"

	"compass_backend/internal/events"
	"compass_backend/internal/recommendation"
	"compass_backend/internal/stage"
	"compass_backend/platform/apperr"
	"compass_backend/platform/logger"
)

// Store is the persistence surface the service depends on.
// Satisfied by *Repository.
type Store interface {
	Persist(ctx context.Context, n NormalizedSubmission) (int64, bool, error)
	GetByResultKey(ctx context.Context, resultKey string) (Detail, error)
}

// CategoryResolver looks up authored guidance for a category at a stage.
// Satisfied by recommendation.Service. A nil result is a normal outcome
// meaning no content was authored for that combination.
type CategoryResolver interface {
	ResolveCategory(ctx context.Context, code string, stageNum int) (*recommendation.Recommendation, error)
}

// IngestResult reports the outcome of one webhook ingest.
type IngestResult struct {
	SubmissionID int64 `json:"submissionId"`
	Replaced     bool  `json:"replaced"`
}

// CategoryResult is one category score enriched with its stage and guidance.
type CategoryResult struct {
	Code           string                         `json:"code"`
	Title          string                         `json:"title"`
	Percent        float64                        `json:"percent"`
	Tier           string                         `json:"tier"`
	Stage          int                            `json:"stage"`
	StageName      string                         `json:"stageName"`
	Recommendation *recommendation.Recommendation `json:"recommendation,omitempty"`
}

// ResultResponse is the scored view of a submission served to readers.
type ResultResponse struct {
	SubmissionID int64            `json:"submissionId"`
	Email        string           `json:"email"`
	AssessmentID string           `json:"assessmentId"`
	FinishedAt   time.Time        `json:"finishedAt"`
	TotalPercent float64          `json:"totalPercent"`
	TotalTier    string           `json:"totalTier"`
	Stage        int              `json:"stage"`
	StageName    string           `json:"stageName"`
	Categories   []CategoryResult `json:"categories"`
	Questions    []Question       `json:"questions"`
}

// Service orchestrates submission ingestion and scored reads.
type Service struct {
	store    Store
	resolver CategoryResolver
	bus      events.Bus
	log      *logger.Logger
}

// NewService creates a new submission service.
func NewService(store Store, resolver CategoryResolver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, resolver: resolver, bus: bus, log: log}
}

// Ingest normalizes and persists a raw webhook payload. On success the
// SubmissionIngested event is published; its subscribers (payload archival,
// recommender dispatch) are best-effort and cannot affect the persisted row.
func (s *Service) Ingest(ctx context.Context, raw []byte, assessmentID string) (IngestResult, error) {
	if assessmentID == "" {
		return IngestResult{}, apperr.BadRequest("assessmentId is required")
	}

	normalized := Normalize(raw, assessmentID)

	submissionID, replaced, err := s.store.Persist(ctx, normalized)
	if err != nil {
		return IngestResult{}, err
	}

	s.log.WithContext(ctx).IngestEvent(normalized.ExternalID, submissionID, assessmentID, replaced)

	s.bus.Publish(ctx, events.SubmissionIngested{
		BaseEvent:    events.NewBaseEvent(),
		SubmissionID: submissionID,
		ExternalID:   normalized.ExternalID,
		Email:        normalized.Email,
		AssessmentID: assessmentID,
		RawPayload:   raw,
	})

	return IngestResult{SubmissionID: submissionID, Replaced: replaced}, nil
}

// GetResult serves a submission by its public result key, classified against
// the maturity model and enriched with per-category guidance where authored.
func (s *Service) GetResult(ctx context.Context, resultKey string) (ResultResponse, error) {
	if resultKey == "" {
		return ResultResponse{}, apperr.BadRequest("resultKey is required")
	}

	detail, err := s.store.GetByResultKey(ctx, resultKey)
	if err != nil {
		return ResultResponse{}, err
	}

	overall := stage.Classify(detail.TotalPercent)
	resp := ResultResponse{
		SubmissionID: detail.ID,
		Email:        detail.Email,
		AssessmentID: detail.AssessmentID,
		FinishedAt:   detail.FinishedAt,
		TotalPercent: detail.TotalPercent,
		TotalTier:    detail.TotalTier,
		Stage:        overall.Stage,
		StageName:    overall.Name,
		Questions:    detail.Questions,
	}

	for _, score := range detail.CategoryScores {
		st := stage.Classify(score.Percent)
		result := CategoryResult{
			Code:      score.Code,
			Title:     score.Title,
			Percent:   score.Percent,
			Tier:      score.Tier,
			Stage:     st.Stage,
			StageName: st.Name,
		}

		// Absent guidance is a legitimate state; the affordance is simply
		// suppressed in the response.
		rec, err := s.resolver.ResolveCategory(ctx, score.Code, st.Stage)
		if err != nil {
			return ResultResponse{}, err
		}
		result.Recommendation = rec

		resp.Categories = append(resp.Categories, result)
	}

	return resp, nil
}
