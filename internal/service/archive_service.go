package service

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"regintel/internal/config"
	"regintel/internal/domain"
	"regintel/internal/port"
)

// ArchiveService stores source document files next to their ingested
// sections so auditors can pull the original evidence.
type ArchiveService interface {
	ArchiveSource(ctx context.Context, documentID uuid.UUID, body io.Reader, filename, contentType string) (*domain.Document, error)
	GetSourceURL(ctx context.Context, documentID uuid.UUID) (string, error)
	DeleteSource(ctx context.Context, documentID uuid.UUID) error
}

type archiveService struct {
	docRepo port.DocumentRepository
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewArchiveService creates a new ArchiveService implementation.
func NewArchiveService(docRepo port.DocumentRepository, storage port.ObjectStorage, cfg *config.S3Config) ArchiveService {
	return &archiveService{
		docRepo: docRepo,
		storage: storage,
		cfg:     cfg,
	}
}

func (s *archiveService) ArchiveSource(ctx context.Context, documentID uuid.UUID, body io.Reader, filename, contentType string) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("documents/%s/%s/%s", doc.ISIN, doc.ID, filename)

	log.Printf("archiveService: uploading source for document %s to s3://%s/%s", doc.ID, s.cfg.Bucket, key)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        body,
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("uploading source file: %w", err)
	}

	if err := s.docRepo.UpdateStorageLocation(ctx, doc.ID, s.cfg.Bucket, key); err != nil {
		return nil, fmt.Errorf("recording storage location: %w", err)
	}
	doc.S3Bucket = s.cfg.Bucket
	doc.S3Key = key
	return doc, nil
}

func (s *archiveService) GetSourceURL(ctx context.Context, documentID uuid.UUID) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.S3Key == "" {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, doc.S3Bucket, doc.S3Key, s.cfg.PresignExpiry)
}

func (s *archiveService) DeleteSource(ctx context.Context, documentID uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.S3Key == "" {
		return domain.ErrNotFound
	}

	log.Printf("archiveService: deleting source for document %s from s3://%s/%s", doc.ID, doc.S3Bucket, doc.S3Key)

	if err := s.storage.Delete(ctx, doc.S3Bucket, doc.S3Key); err != nil {
		return fmt.Errorf("deleting from storage: %w", err)
	}
	return s.docRepo.UpdateStorageLocation(ctx, doc.ID, "", "")
}
