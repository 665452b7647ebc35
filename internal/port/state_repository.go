package port

import (
	"context"

	"github.com/google/uuid"

	"regintel/internal/domain"
)

// StateRepository abstracts persistence of built SFDR states.
type StateRepository interface {
	Create(ctx context.Context, state *domain.SFDRState) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SFDRState, error)
	ListByISIN(ctx context.Context, isin string) ([]domain.SFDRState, error)
}
