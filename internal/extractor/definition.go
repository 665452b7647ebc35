package extractor

import (
	"context"
	"log"

	"github.com/google/uuid"

	"regintel/internal/config"
	"regintel/internal/contract"
	"regintel/internal/domain"
	"regintel/internal/port"
)

const definitionQuery = "sustainable investment definition environmentally socially"

// DefinitionExtractor extracts the sustainable investment definition.
type DefinitionExtractor struct {
	retriever port.Retriever
	worker    port.LLMWorker
	cfg       config.ExtractionConfig
}

// NewDefinitionExtractor creates the definition extraction strategy.
func NewDefinitionExtractor(retriever port.Retriever, worker port.LLMWorker, cfg config.ExtractionConfig) *DefinitionExtractor {
	return &DefinitionExtractor{retriever: retriever, worker: worker, cfg: cfg}
}

// Extract returns the definition field, or nil when no sections are
// retrieved or the model invocation fails.
func (e *DefinitionExtractor) Extract(ctx context.Context, documentID uuid.UUID) (*domain.DefinitionField, error) {
	results, err := e.retriever.Query(ctx, documentID, definitionQuery, e.cfg.FieldTopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	prompt := contract.ExtractDefinition.BuildPrompt(buildFieldContext(results, e.cfg))
	raw, err := e.worker.GenerateJSON(ctx, generateInput(prompt))
	if err != nil {
		log.Printf("extractor.Definition: model invocation failed for %s: %v", documentID, err)
		return nil, nil
	}

	resp, err := contract.ExtractDefinition.ValidateResponse(raw)
	if err != nil {
		log.Printf("extractor.Definition: %v", err)
		return nil, nil
	}

	present := resp.Bool("definition_present")

	var text *string
	if present {
		if s, ok := resp.String("definition_text"); ok {
			text = &s
		}
	}

	confidence, err := resp.Confidence()
	if err != nil {
		log.Printf("extractor.Definition: %v", err)
		return nil, nil
	}

	top := &results[0].Section
	citation, err := domain.NewCitation(documentID, resp.Page(top.PageStart), prefix(top.Text, 200))
	if err != nil {
		log.Printf("extractor.Definition: citation for %s: %v", documentID, err)
		return nil, nil
	}

	return domain.NewDefinitionField(present, text, confidence, []domain.Citation{citation})
}
