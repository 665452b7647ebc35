package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document represents a regulatory document (prospectus, annual report,
// SFDR annex). Sections and spans are produced by an external ingestion step.
type Document struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	ISIN         string          `db:"isin" json:"isin"`
	DocumentType DocumentType    `db:"document_type" json:"document_type"`
	Version      string          `db:"version" json:"version"`
	Checksum     string          `db:"checksum" json:"checksum"`
	SourceURL    string          `db:"source_url" json:"source_url"`
	S3Bucket     string          `db:"s3_bucket" json:"s3_bucket,omitempty"`
	S3Key        string          `db:"s3_key" json:"s3_key,omitempty"`
	TotalPages   int             `db:"total_pages" json:"total_pages"`
	Processed    bool            `db:"processed" json:"processed"`
	Metadata     json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Section is a titled, leveled chunk of document text with a starting page.
// Immutable once ingested; ordering within a document is by page then level.
type Section struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	DocumentID      uuid.UUID  `db:"document_id" json:"document_id"`
	Title           string     `db:"title" json:"title"`
	Level           int        `db:"level" json:"level"`
	PageStart       int        `db:"page_start" json:"page_start"`
	PageEnd         *int       `db:"page_end" json:"page_end,omitempty"`
	Text            string     `db:"text" json:"text"`
	ParentSectionID *uuid.UUID `db:"parent_section_id" json:"parent_section_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Span is a character range within a document page, used for fine-grained
// citations.
type Span struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	DocumentID uuid.UUID  `db:"document_id" json:"document_id"`
	SectionID  *uuid.UUID `db:"section_id" json:"section_id,omitempty"`
	PageNumber int        `db:"page_number" json:"page_number"`
	StartChar  int        `db:"start_char" json:"start_char"`
	EndChar    int        `db:"end_char" json:"end_char"`
	Text       string     `db:"text" json:"text"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// citationSnippetLen caps the evidence snippet carried on a citation.
const citationSnippetLen = 200

// Citation points from an extracted value back to its source evidence.
type Citation struct {
	DocumentID  uuid.UUID  `json:"document_id"`
	PageNumber  int        `json:"page_number"`
	SpanID      *uuid.UUID `json:"span_id,omitempty"`
	StartChar   *int       `json:"start_char,omitempty"`
	EndChar     *int       `json:"end_char,omitempty"`
	TextSnippet string     `json:"text_snippet"`
}

// NewCitation builds a Citation, rejecting page numbers below 1.
func NewCitation(documentID uuid.UUID, pageNumber int, snippet string) (Citation, error) {
	if pageNumber < 1 {
		return Citation{}, ErrInvalidPageNumber
	}
	return Citation{
		DocumentID:  documentID,
		PageNumber:  pageNumber,
		TextSnippet: snippet,
	}, nil
}

// CiteSection builds the canonical citation for a section: its starting page
// and a bounded prefix of its text.
func CiteSection(s *Section) (Citation, error) {
	snippet := s.Text
	if len(snippet) > citationSnippetLen {
		if runes := []rune(snippet); len(runes) > citationSnippetLen {
			snippet = string(runes[:citationSnippetLen])
		}
	}
	return NewCitation(s.DocumentID, s.PageStart, snippet)
}

func validateConfidence(c float64) error {
	if c < 0.0 || c > 1.0 {
		return ErrConfidenceOutOfRange
	}
	return nil
}

// ArticleClassification is the extracted SFDR article with confidence and
// the model's reasoning.
type ArticleClassification struct {
	Article    Article    `json:"article"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
	Citations  []Citation `json:"citations,omitempty"`
}

// NewArticleClassification builds an ArticleClassification, validating the
// article value and confidence range.
func NewArticleClassification(article Article, confidence float64, reasoning string, citations []Citation) (*ArticleClassification, error) {
	if !AllowedArticles[article] {
		return nil, ErrInvalidArticle
	}
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	return &ArticleClassification{
		Article:    article,
		Confidence: confidence,
		Reasoning:  reasoning,
		Citations:  citations,
	}, nil
}

// DefinitionField is the sustainable investment definition disclosure.
type DefinitionField struct {
	Present    bool       `json:"present"`
	Text       *string    `json:"text,omitempty"`
	Confidence float64    `json:"confidence"`
	Citations  []Citation `json:"citations,omitempty"`
}

// NewDefinitionField builds a DefinitionField, validating the confidence range.
func NewDefinitionField(present bool, text *string, confidence float64, citations []Citation) (*DefinitionField, error) {
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	return &DefinitionField{
		Present:    present,
		Text:       text,
		Confidence: confidence,
		Citations:  citations,
	}, nil
}

// DNSHField is the Do No Significant Harm disclosure.
type DNSHField struct {
	Present    bool         `json:"present"`
	Coverage   DNSHCoverage `json:"coverage"`
	Confidence float64      `json:"confidence"`
	Citations  []Citation   `json:"citations,omitempty"`
}

// NewDNSHField builds a DNSHField, validating the confidence range.
func NewDNSHField(present bool, coverage DNSHCoverage, confidence float64, citations []Citation) (*DNSHField, error) {
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	return &DNSHField{
		Present:    present,
		Coverage:   coverage,
		Confidence: confidence,
		Citations:  citations,
	}, nil
}

// PAIField is the Principal Adverse Impact disclosure. A nil ratio means the
// document does not state one; it is distinct from a stated ratio of zero.
type PAIField struct {
	MandatoryCoverageRatio *float64   `json:"mandatory_coverage_ratio"`
	Confidence             float64    `json:"confidence"`
	Citations              []Citation `json:"citations,omitempty"`
}

// NewPAIField builds a PAIField, validating the confidence and ratio ranges.
func NewPAIField(ratio *float64, confidence float64, citations []Citation) (*PAIField, error) {
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}
	if ratio != nil && (*ratio < 0.0 || *ratio > 1.0) {
		return nil, ErrRatioOutOfRange
	}
	return &PAIField{
		MandatoryCoverageRatio: ratio,
		Confidence:             confidence,
		Citations:              citations,
	}, nil
}

// SFDRState is the aggregate extraction result for one document version.
// Immutable once built; persisted keyed by ID.
type SFDRState struct {
	ID             uuid.UUID        `json:"state_id"`
	FundISIN       string           `json:"fund_isin"`
	DocVersion     string           `json:"doc_version"`
	ClaimedArticle *Article         `json:"claimed_article"`
	Definition     *DefinitionField `json:"sustainable_investment_definition"`
	DNSH           *DNSHField       `json:"dnsh"`
	PAI            *PAIField        `json:"pai"`
	MissingFields  []string         `json:"missing_fields"`
	Confidence     float64          `json:"confidence"`
	Documents      []uuid.UUID      `json:"documents"`
	CreatedAt      time.Time        `json:"created_at"`
}
