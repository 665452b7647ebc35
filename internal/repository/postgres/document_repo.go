package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"regintel/internal/domain"
	"regintel/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	doc.CreatedAt = time.Now().UTC()

	query := `INSERT INTO documents (
		id, isin, document_type, version, checksum,
		source_url, s3_bucket, s3_key,
		total_pages, processed, metadata, created_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11, $12
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.ISIN, doc.DocumentType, doc.Version, doc.Checksum,
		doc.SourceURL, doc.S3Bucket, doc.S3Key,
		doc.TotalPages, doc.Processed, doc.Metadata, doc.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDocumentAlreadyExists
		}
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByISIN(ctx context.Context, isin string) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE isin = $1 ORDER BY created_at DESC", isin)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByISIN: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET processed = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("documentRepo.MarkProcessed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) UpdateStorageLocation(ctx context.Context, id uuid.UUID, bucket, key string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET s3_bucket = $2, s3_key = $3 WHERE id = $1", id, bucket, key)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateStorageLocation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) ClaimUnprocessed(ctx context.Context, limit int) ([]domain.Document, error) {
	// SKIP LOCKED keeps concurrent queue workers from claiming the same
	// document. Claimed documents are flipped to processed immediately;
	// extraction failures still yield a (low confidence) state, so there is
	// no retry lifecycle to track.
	query := `UPDATE documents SET processed = TRUE
		WHERE id IN (
			SELECT id FROM documents
			WHERE processed = FALSE
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT $1
		)
		RETURNING *`

	var docs []domain.Document
	if err := r.db.SelectContext(ctx, &docs, query, limit); err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimUnprocessed: %w", err)
	}
	return docs, nil
}
