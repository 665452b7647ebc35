package port

import (
	"context"

	"github.com/google/uuid"

	"regintel/internal/domain"
)

// SpanRepository abstracts persistence of ingested text spans.
type SpanRepository interface {
	Create(ctx context.Context, span *domain.Span) error
	CreateBatch(ctx context.Context, spans []domain.Span) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Span, error)
}
