package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"regintel/internal/domain"
	"regintel/internal/port"
)

type spanRepo struct {
	db *sqlx.DB
}

// NewSpanRepo creates a new PostgreSQL-backed SpanRepository.
func NewSpanRepo(db *sqlx.DB) port.SpanRepository {
	return &spanRepo{db: db}
}

const insertSpanQuery = `INSERT INTO spans (
	id, document_id, section_id, page_number, start_char, end_char, text, created_at
) VALUES (
	:id, :document_id, :section_id, :page_number, :start_char, :end_char, :text, :created_at
)`

func (r *spanRepo) Create(ctx context.Context, span *domain.Span) error {
	span.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, insertSpanQuery, span); err != nil {
		return fmt.Errorf("spanRepo.Create: %w", err)
	}
	return nil
}

func (r *spanRepo) CreateBatch(ctx context.Context, spans []domain.Span) error {
	if len(spans) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range spans {
		spans[i].CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("spanRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, insertSpanQuery, spans); err != nil {
		return fmt.Errorf("spanRepo.CreateBatch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("spanRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *spanRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Span, error) {
	var spans []domain.Span
	err := r.db.SelectContext(ctx, &spans,
		"SELECT * FROM spans WHERE document_id = $1 ORDER BY page_number, start_char", documentID)
	if err != nil {
		return nil, fmt.Errorf("spanRepo.ListByDocument: %w", err)
	}
	return spans, nil
}
