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

const articleQuery = "SFDR article 6 8 9 classification disclosure"

// ArticleExtractor classifies the SFDR article a fund claims.
type ArticleExtractor struct {
	retriever port.Retriever
	worker    port.LLMWorker
	cfg       config.ExtractionConfig
}

// NewArticleExtractor creates the article classification strategy.
func NewArticleExtractor(retriever port.Retriever, worker port.LLMWorker, cfg config.ExtractionConfig) *ArticleExtractor {
	return &ArticleExtractor{retriever: retriever, worker: worker, cfg: cfg}
}

// Extract returns the classified article, or nil when the document yields no
// evidence or the model invocation fails. A nil classification carries an
// implicit confidence of 0.0 toward the aggregate.
func (e *ArticleExtractor) Extract(ctx context.Context, documentID uuid.UUID) (*domain.ArticleClassification, error) {
	results, err := e.retriever.Query(ctx, documentID, articleQuery, e.cfg.ArticleTopK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	prompt := contract.ClassifyArticle.BuildPrompt(buildArticleContext(results, e.cfg))
	raw, err := e.worker.GenerateJSON(ctx, generateInput(prompt))
	if err != nil {
		log.Printf("extractor.Article: model invocation failed for %s: %v", documentID, err)
		return nil, nil
	}

	resp, err := contract.ClassifyArticle.ValidateResponse(raw)
	if err != nil {
		log.Printf("extractor.Article: %v", err)
		return nil, nil
	}

	articleStr, ok := resp.String("article")
	if !ok || !domain.AllowedArticles[domain.Article(articleStr)] {
		log.Printf("extractor.Article: unrecognized article %q for %s", articleStr, documentID)
		return nil, nil
	}

	confidence, err := resp.Confidence()
	if err != nil {
		log.Printf("extractor.Article: %v", err)
		return nil, nil
	}

	reasoning, _ := resp.String("reasoning")

	citation, err := domain.CiteSection(&results[0].Section)
	if err != nil {
		log.Printf("extractor.Article: citation for %s: %v", documentID, err)
		return nil, nil
	}

	return domain.NewArticleClassification(domain.Article(articleStr), confidence, reasoning, []domain.Citation{citation})
}
