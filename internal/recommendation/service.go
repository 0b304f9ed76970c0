package recommendation

import (
	"context"

	"compass_backend/platform/apperr"
)

// ContentReader is the lookup surface the service depends on.
// Satisfied by *Repository.
type ContentReader interface {
	GetCategory(ctx context.Context, code string, stage int) (*Recommendation, error)
	GetQuestion(ctx context.Context, code string, stage int) (*QuestionPlan, error)
	HasQuestionResource(ctx context.Context, code string, stage int) (bool, error)
}

// Service resolves authored guidance content. Lookups are pure reads.
type Service struct {
	reader ContentReader
}

// NewService creates a new recommendation service.
func NewService(reader ContentReader) *Service {
	return &Service{reader: reader}
}

// ResolveCategory looks up category guidance. A nil result with nil error
// means no content is authored for that (code, stage); callers treat it as a
// legitimate state and suppress the related affordance.
func (s *Service) ResolveCategory(ctx context.Context, code string, stage int) (*Recommendation, error) {
	if code == "" {
		return nil, apperr.Validation("category code is required")
	}
	return s.reader.GetCategory(ctx, code, stage)
}

// ResolveQuestion looks up question guidance; nil means nothing authored.
func (s *Service) ResolveQuestion(ctx context.Context, code string, stage int) (*QuestionPlan, error) {
	if code == "" {
		return nil, apperr.Validation("question code is required")
	}
	return s.reader.GetQuestion(ctx, code, stage)
}

// HasQuestionResource reports resource availability for (code, stage).
func (s *Service) HasQuestionResource(ctx context.Context, code string, stage int) (bool, error) {
	if code == "" {
		return false, nil
	}
	return s.reader.HasQuestionResource(ctx, code, stage)
}
