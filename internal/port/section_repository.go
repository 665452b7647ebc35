package port

import (
	"context"

	"github.com/google/uuid"

	"regintel/internal/domain"
)

// SectionRepository abstracts persistence of ingested document sections.
type SectionRepository interface {
	Create(ctx context.Context, section *domain.Section) error
	CreateBatch(ctx context.Context, sections []domain.Section) error
	// ListByDocument returns a document's sections ordered by page_start,
	// then heading level.
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Section, error)
}
