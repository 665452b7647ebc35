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

const dnshQuery = "do no significant harm DNSH environmental objectives"

// dnshDefaultConfidence is the neutral prior attached to the not-present
// default: DNSH disclosure is commonly implicit, so absence of evidence is a
// weak negative rather than a hard failure.
const dnshDefaultConfidence = 0.5

// DNSHExtractor extracts the Do No Significant Harm disclosure.
type DNSHExtractor struct {
	retriever port.Retriever
	worker    port.LLMWorker
	cfg       config.ExtractionConfig
}

// NewDNSHExtractor creates the DNSH extraction strategy.
func NewDNSHExtractor(retriever port.Retriever, worker port.LLMWorker, cfg config.ExtractionConfig) *DNSHExtractor {
	return &DNSHExtractor{retriever: retriever, worker: worker, cfg: cfg}
}

func dnshDefault() (*domain.DNSHField, error) {
	return domain.NewDNSHField(false, domain.DNSHCoverageNone, dnshDefaultConfidence, nil)
}

// Extract returns the DNSH field. Unlike the other strategies it never
// returns nil on a retrieval miss or invocation failure: it degrades to a
// not-present field with the neutral default confidence.
func (e *DNSHExtractor) Extract(ctx context.Context, documentID uuid.UUID) (*domain.DNSHField, error) {
	results, err := e.retriever.Query(ctx, documentID, dnshQuery, e.cfg.FieldTopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return dnshDefault()
	}

	prompt := contract.ExtractDNSH.BuildPrompt(buildFieldContext(results, e.cfg))
	raw, err := e.worker.GenerateJSON(ctx, generateInput(prompt))
	if err != nil {
		log.Printf("extractor.DNSH: model invocation failed for %s: %v", documentID, err)
		return dnshDefault()
	}

	resp, err := contract.ExtractDNSH.ValidateResponse(raw)
	if err != nil {
		log.Printf("extractor.DNSH: %v", err)
		return dnshDefault()
	}

	present := resp.Bool("dnsh_present")

	coverageStr, _ := resp.String("coverage")
	coverage := domain.DNSHCoverageFromString(coverageStr)

	confidence, err := resp.Confidence()
	if err != nil {
		log.Printf("extractor.DNSH: %v", err)
		return dnshDefault()
	}

	top := &results[0].Section
	citation, err := domain.NewCitation(documentID, resp.Page(top.PageStart), prefix(top.Text, 200))
	if err != nil {
		log.Printf("extractor.DNSH: citation for %s: %v", documentID, err)
		return dnshDefault()
	}

	return domain.NewDNSHField(present, coverage, confidence, []domain.Citation{citation})
}
