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

const paiQuery = "principal adverse impacts PAI sustainability indicators"

// PAIExtractor extracts the Principal Adverse Impact disclosure.
type PAIExtractor struct {
	retriever port.Retriever
	worker    port.LLMWorker
	cfg       config.ExtractionConfig
}

// NewPAIExtractor creates the PAI extraction strategy.
func NewPAIExtractor(retriever port.Retriever, worker port.LLMWorker, cfg config.ExtractionConfig) *PAIExtractor {
	return &PAIExtractor{retriever: retriever, worker: worker, cfg: cfg}
}

// Extract returns the PAI field, or nil when no sections are retrieved or
// the model invocation fails. A returned field may still carry a nil ratio:
// the document discusses PAIs without stating a coverage ratio.
func (e *PAIExtractor) Extract(ctx context.Context, documentID uuid.UUID) (*domain.PAIField, error) {
	results, err := e.retriever.Query(ctx, documentID, paiQuery, e.cfg.FieldTopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	prompt := contract.ExtractPAI.BuildPrompt(buildFieldContext(results, e.cfg))
	raw, err := e.worker.GenerateJSON(ctx, generateInput(prompt))
	if err != nil {
		log.Printf("extractor.PAI: model invocation failed for %s: %v", documentID, err)
		return nil, nil
	}

	resp, err := contract.ExtractPAI.ValidateResponse(raw)
	if err != nil {
		log.Printf("extractor.PAI: %v", err)
		return nil, nil
	}

	ratio, err := resp.Ratio("mandatory_coverage_ratio")
	if err != nil {
		log.Printf("extractor.PAI: %v", err)
		return nil, nil
	}

	confidence, err := resp.Confidence()
	if err != nil {
		log.Printf("extractor.PAI: %v", err)
		return nil, nil
	}

	top := &results[0].Section
	citation, err := domain.NewCitation(documentID, resp.Page(top.PageStart), prefix(top.Text, 200))
	if err != nil {
		log.Printf("extractor.PAI: citation for %s: %v", documentID, err)
		return nil, nil
	}

	return domain.NewPAIField(ratio, confidence, []domain.Citation{citation})
}
