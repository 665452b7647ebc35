// Package controller drives the field extractors for one document and
// assembles the aggregate SFDR state.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"regintel/internal/config"
	"regintel/internal/domain"
	"regintel/internal/extractor"
	"regintel/internal/port"
)

// The builder depends on the strategies through their extraction methods so
// tests can substitute synthetic extractor outputs.

// ArticleExtractor classifies the claimed SFDR article.
type ArticleExtractor interface {
	Extract(ctx context.Context, documentID uuid.UUID) (*domain.ArticleClassification, error)
}

// DefinitionExtractor extracts the sustainable investment definition.
type DefinitionExtractor interface {
	Extract(ctx context.Context, documentID uuid.UUID) (*domain.DefinitionField, error)
}

// DNSHExtractor extracts the DNSH disclosure.
type DNSHExtractor interface {
	Extract(ctx context.Context, documentID uuid.UUID) (*domain.DNSHField, error)
}

// PAIExtractor extracts the PAI disclosure.
type PAIExtractor interface {
	Extract(ctx context.Context, documentID uuid.UUID) (*domain.PAIField, error)
}

// StateBuilder fills an SFDR state field by field: retrieval to find
// relevant sections, the LLM worker for structured extraction, and the
// extraction contracts for output shape.
type StateBuilder struct {
	article    ArticleExtractor
	definition DefinitionExtractor
	dnsh       DNSHExtractor
	pai        PAIExtractor
}

// NewStateBuilder creates a StateBuilder from explicit strategies.
func NewStateBuilder(article ArticleExtractor, definition DefinitionExtractor, dnsh DNSHExtractor, pai PAIExtractor) *StateBuilder {
	return &StateBuilder{
		article:    article,
		definition: definition,
		dnsh:       dnsh,
		pai:        pai,
	}
}

// NewDefaultStateBuilder wires the four standard strategies over a shared
// retriever and worker.
func NewDefaultStateBuilder(retriever port.Retriever, worker port.LLMWorker, cfg config.ExtractionConfig) *StateBuilder {
	return NewStateBuilder(
		extractor.NewArticleExtractor(retriever, worker, cfg),
		extractor.NewDefinitionExtractor(retriever, worker, cfg),
		extractor.NewDNSHExtractor(retriever, worker, cfg),
		extractor.NewPAIExtractor(retriever, worker, cfg),
	)
}

// BuildState runs every field extractor for the document and assembles the
// aggregate record. Individual extraction failures degrade to missing
// fields; the returned state is always complete. Each field is attempted
// exactly once per invocation.
func (b *StateBuilder) BuildState(ctx context.Context, documentID uuid.UUID, isin, docVersion string) (*domain.SFDRState, error) {
	article, err := b.article.Extract(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("extracting article classification: %w", err)
	}
	definition, err := b.definition.Extract(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("extracting definition: %w", err)
	}
	dnsh, err := b.dnsh.Extract(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("extracting dnsh: %w", err)
	}
	pai, err := b.pai.Extract(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("extracting pai: %w", err)
	}

	missing := []string{}
	if article == nil {
		missing = append(missing, domain.FieldClaimedArticle)
	}
	if definition == nil || !definition.Present {
		missing = append(missing, domain.FieldDefinition)
	}
	if dnsh == nil || !dnsh.Present {
		missing = append(missing, domain.FieldDNSH)
	}
	if pai == nil || pai.MandatoryCoverageRatio == nil {
		missing = append(missing, domain.FieldPAI)
	}

	// The article contributes 0.0 when classification failed; every other
	// field contributes only when the extractor produced a value, even a
	// negative one ("not present" still carries its confidence).
	articleConf := 0.0
	var claimedArticle *domain.Article
	if article != nil {
		articleConf = article.Confidence
		a := article.Article
		claimedArticle = &a
	}
	confidences := []float64{articleConf}
	if definition != nil {
		confidences = append(confidences, definition.Confidence)
	}
	if dnsh != nil {
		confidences = append(confidences, dnsh.Confidence)
	}
	if pai != nil {
		confidences = append(confidences, pai.Confidence)
	}

	overall := 0.0
	if len(confidences) > 0 {
		sum := 0.0
		for _, c := range confidences {
			sum += c
		}
		overall = sum / float64(len(confidences))
	}

	return &domain.SFDRState{
		ID:             uuid.New(),
		FundISIN:       isin,
		DocVersion:     docVersion,
		ClaimedArticle: claimedArticle,
		Definition:     definition,
		DNSH:           dnsh,
		PAI:            pai,
		MissingFields:  missing,
		Confidence:     overall,
		Documents:      []uuid.UUID{documentID},
		CreatedAt:      time.Now().UTC(),
	}, nil
}
