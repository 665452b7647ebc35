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

type sectionRepo struct {
	db *sqlx.DB
}

// NewSectionRepo creates a new PostgreSQL-backed SectionRepository.
func NewSectionRepo(db *sqlx.DB) port.SectionRepository {
	return &sectionRepo{db: db}
}

const insertSectionQuery = `INSERT INTO sections (
	id, document_id, title, level, page_start, page_end, text, parent_section_id, created_at
) VALUES (
	:id, :document_id, :title, :level, :page_start, :page_end, :text, :parent_section_id, :created_at
)`

func (r *sectionRepo) Create(ctx context.Context, section *domain.Section) error {
	section.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, insertSectionQuery, section); err != nil {
		return fmt.Errorf("sectionRepo.Create: %w", err)
	}
	return nil
}

func (r *sectionRepo) CreateBatch(ctx context.Context, sections []domain.Section) error {
	if len(sections) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range sections {
		sections[i].CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sectionRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, insertSectionQuery, sections); err != nil {
		return fmt.Errorf("sectionRepo.CreateBatch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sectionRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *sectionRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.Section, error) {
	var sections []domain.Section
	err := r.db.SelectContext(ctx, &sections,
		"SELECT * FROM sections WHERE document_id = $1 ORDER BY page_start, level", documentID)
	if err != nil {
		return nil, fmt.Errorf("sectionRepo.ListByDocument: %w", err)
	}
	return sections, nil
}
