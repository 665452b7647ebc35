package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"regintel/internal/controller"
	"regintel/internal/domain"
	"regintel/internal/export"
	"regintel/internal/port"
)

// SectionInput is one ingested section as delivered by the upstream
// document segmentation step.
type SectionInput struct {
	Title           string     `json:"title"`
	Level           int        `json:"level"`
	PageStart       int        `json:"page_start"`
	PageEnd         *int       `json:"page_end,omitempty"`
	Text            string     `json:"text"`
	ParentSectionID *uuid.UUID `json:"parent_section_id,omitempty"`
}

// SpanInput is one ingested text span for fine-grained citations.
type SpanInput struct {
	PageNumber int    `json:"page_number"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
	Text       string `json:"text"`
}

// IngestDocumentInput is the DTO for registering a document together with
// its pre-segmented sections and spans.
type IngestDocumentInput struct {
	ISIN         string          `json:"isin"`
	DocumentType string          `json:"document_type"`
	Version      string          `json:"version"`
	Checksum     string          `json:"checksum"`
	SourceURL    string          `json:"source_url"`
	S3Bucket     string          `json:"s3_bucket"`
	S3Key        string          `json:"s3_key"`
	TotalPages   int             `json:"total_pages"`
	Metadata     json.RawMessage `json:"metadata"`
	Sections     []SectionInput  `json:"sections"`
	Spans        []SpanInput     `json:"spans"`
}

// ExtractionService defines the document ingestion and extraction contract.
type ExtractionService interface {
	IngestDocument(ctx context.Context, input *IngestDocumentInput) (*domain.Document, error)
	ExtractDocument(ctx context.Context, documentID uuid.UUID) (*export.Record, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListDocumentsByISIN(ctx context.Context, isin string) ([]domain.Document, error)
	ListSections(ctx context.Context, documentID uuid.UUID) ([]domain.Section, error)
	GetState(ctx context.Context, id uuid.UUID) (*domain.SFDRState, error)
	ListStatesByISIN(ctx context.Context, isin string) ([]domain.SFDRState, error)
}

type extractionService struct {
	docRepo     port.DocumentRepository
	sectionRepo port.SectionRepository
	spanRepo    port.SpanRepository
	stateRepo   port.StateRepository
	retriever   port.Retriever
	builder     *controller.StateBuilder
	workerName  string
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	docRepo port.DocumentRepository,
	sectionRepo port.SectionRepository,
	spanRepo port.SpanRepository,
	stateRepo port.StateRepository,
	retriever port.Retriever,
	builder *controller.StateBuilder,
	workerName string,
) ExtractionService {
	return &extractionService{
		docRepo:     docRepo,
		sectionRepo: sectionRepo,
		spanRepo:    spanRepo,
		stateRepo:   stateRepo,
		retriever:   retriever,
		builder:     builder,
		workerName:  workerName,
	}
}

// IngestDocument registers a document and persists its sections and spans.
// The document stays unprocessed until the extraction worker or an explicit
// extract request picks it up.
func (s *extractionService) IngestDocument(ctx context.Context, input *IngestDocumentInput) (*domain.Document, error) {
	docType := domain.DocumentType(input.DocumentType)
	if !domain.AllowedDocumentTypes[docType] {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDocumentType, input.DocumentType)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:           uuid.New(),
		ISIN:         input.ISIN,
		DocumentType: docType,
		Version:      input.Version,
		Checksum:     input.Checksum,
		SourceURL:    input.SourceURL,
		S3Bucket:     input.S3Bucket,
		S3Key:        input.S3Key,
		TotalPages:   input.TotalPages,
		Metadata:     input.Metadata,
		CreatedAt:    now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	sections := make([]domain.Section, 0, len(input.Sections))
	for _, in := range input.Sections {
		sections = append(sections, domain.Section{
			ID:              uuid.New(),
			DocumentID:      doc.ID,
			Title:           in.Title,
			Level:           in.Level,
			PageStart:       in.PageStart,
			PageEnd:         in.PageEnd,
			Text:            in.Text,
			ParentSectionID: in.ParentSectionID,
			CreatedAt:       now,
		})
	}
	if err := s.sectionRepo.CreateBatch(ctx, sections); err != nil {
		return nil, fmt.Errorf("creating sections: %w", err)
	}

	spans := make([]domain.Span, 0, len(input.Spans))
	for _, in := range input.Spans {
		spans = append(spans, domain.Span{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			PageNumber: in.PageNumber,
			StartChar:  in.StartChar,
			EndChar:    in.EndChar,
			Text:       in.Text,
			CreatedAt:  now,
		})
	}
	if err := s.spanRepo.CreateBatch(ctx, spans); err != nil {
		return nil, fmt.Errorf("creating spans: %w", err)
	}

	// Prime the in-memory index so the first query does not hit the store.
	s.retriever.Build(doc.ID, sections)

	log.Printf("extractionService: ingested document %s (isin=%s, sections=%d, spans=%d)",
		doc.ID, doc.ISIN, len(sections), len(spans))
	return doc, nil
}

// ExtractDocument runs the full extraction pipeline for one document and
// persists the resulting state. The document is marked processed even when
// fields came back missing; a reprocessing request ingests a new version.
func (s *extractionService) ExtractDocument(ctx context.Context, documentID uuid.UUID) (*export.Record, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	state, err := s.builder.BuildState(ctx, doc.ID, doc.ISIN, doc.Version)
	if err != nil {
		return nil, fmt.Errorf("building state for document %s: %w", doc.ID, err)
	}

	if err := s.stateRepo.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("persisting state: %w", err)
	}
	if err := s.docRepo.MarkProcessed(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("marking document processed: %w", err)
	}

	log.Printf("extractionService: extracted document %s (state=%s, confidence=%.2f, missing=%v)",
		doc.ID, state.ID, state.Confidence, state.MissingFields)

	return &export.Record{
		State: state,
		Metadata: export.Metadata{
			DocumentID:   doc.ID,
			ISIN:         doc.ISIN,
			DocumentType: string(doc.DocumentType),
			Worker:       s.workerName,
		},
	}, nil
}

func (s *extractionService) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

func (s *extractionService) ListDocumentsByISIN(ctx context.Context, isin string) ([]domain.Document, error) {
	return s.docRepo.ListByISIN(ctx, isin)
}

func (s *extractionService) ListSections(ctx context.Context, documentID uuid.UUID) ([]domain.Section, error) {
	if _, err := s.docRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.sectionRepo.ListByDocument(ctx, documentID)
}

func (s *extractionService) GetState(ctx context.Context, id uuid.UUID) (*domain.SFDRState, error) {
	return s.stateRepo.GetByID(ctx, id)
}

func (s *extractionService) ListStatesByISIN(ctx context.Context, isin string) ([]domain.SFDRState, error) {
	return s.stateRepo.ListByISIN(ctx, isin)
}
