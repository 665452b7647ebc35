package port

import (
	"context"

	"github.com/google/uuid"

	"regintel/internal/domain"
)

// DocumentRepository abstracts persistence of registered documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByISIN(ctx context.Context, isin string) ([]domain.Document, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	// UpdateStorageLocation records where the source file was archived.
	UpdateStorageLocation(ctx context.Context, id uuid.UUID, bucket, key string) error
	// ClaimUnprocessed atomically claims up to limit unprocessed documents
	// for extraction, so concurrent workers never pick up the same document.
	ClaimUnprocessed(ctx context.Context, limit int) ([]domain.Document, error)
}
