package port

import (
	"context"

	"github.com/google/uuid"

	"regintel/internal/domain"
)

// RetrievalResult pairs a section with its relevance score for one query.
// Ephemeral; produced per query, never persisted.
type RetrievalResult struct {
	Section domain.Section
	Score   float64
}

// Retriever ranks a single document's sections by relevance to a query.
type Retriever interface {
	// Build indexes a document's sections, replacing any prior index for
	// that document. Indexing nothing is a no-op.
	Build(documentID uuid.UUID, sections []domain.Section)
	// Query returns up to topK results ordered by descending score, ties
	// broken by original section order. Unknown or empty documents yield an
	// empty result. Documents not yet built are built lazily from the
	// section store.
	Query(ctx context.Context, documentID uuid.UUID, query string, topK int) ([]RetrievalResult, error)
	// QueryKeywords joins keywords into a single query string.
	QueryKeywords(ctx context.Context, documentID uuid.UUID, keywords []string, topK int) ([]RetrievalResult, error)
}
