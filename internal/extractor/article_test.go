package extractor_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"regintel/internal/config"
	"regintel/internal/domain"
	"regintel/internal/extractor"
	"regintel/internal/port"
	"regintel/mocks"
)

func testExtractionConfig() config.ExtractionConfig {
	return config.ExtractionConfig{
		ArticleTopK:        3,
		FieldTopK:          5,
		ArticleWindowChars: 500,
		FieldWindowChars:   800,
		ContextSections:    3,
	}
}

func retrievalResults(docID uuid.UUID, pageStart int, texts ...string) []port.RetrievalResult {
	results := make([]port.RetrievalResult, 0, len(texts))
	for i, text := range texts {
		results = append(results, port.RetrievalResult{
			Section: domain.Section{
				ID:         uuid.New(),
				DocumentID: docID,
				Level:      1,
				PageStart:  pageStart + i,
				Text:       text,
			},
			Score: float64(len(texts) - i),
		})
	}
	return results
}

func TestArticleExtract_Success(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 3, "The fund promotes environmental characteristics under Article 8 of SFDR.")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.AnythingOfType("port.GenerateInput")).Return(map[string]any{
		"article":    "8",
		"confidence": 0.9,
		"reasoning":  "explicit article 8 statement",
	}, nil)

	e := extractor.NewArticleExtractor(retriever, worker, testExtractionConfig())
	ac, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.NotNil(t, ac)
	assert.Equal(t, domain.Article8, ac.Article)
	assert.Equal(t, 0.9, ac.Confidence)
	assert.Equal(t, "explicit article 8 statement", ac.Reasoning)
	assert.Len(t, ac.Citations, 1)
	assert.Equal(t, 3, ac.Citations[0].PageNumber)
	assert.Equal(t, results[0].Section.Text, ac.Citations[0].TextSnippet)
}

func TestArticleExtract_ContextWindowCutOnRuneBoundary(t *testing.T) {
	docID := uuid.New()
	// The 500th character of the section is a multi-byte rune; the context
	// window must end with it intact and exclude everything after it.
	text := strings.Repeat("x", 499) + "€" + strings.Repeat("y", 50)
	results := retrievalResults(docID, 3, text)

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return(results, nil)

	var prompt string
	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.AnythingOfType("port.GenerateInput")).Run(func(args mock.Arguments) {
		prompt = args.Get(1).(port.GenerateInput).Prompt
	}).Return(map[string]any{
		"article":    "8",
		"confidence": 0.9,
	}, nil)

	e := extractor.NewArticleExtractor(retriever, worker, testExtractionConfig())
	_, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("x", 499)+"€")
	assert.NotContains(t, prompt, strings.Repeat("y", 50))
}

func TestArticleExtract_ZeroRetrievalYieldsNil(t *testing.T) {
	docID := uuid.New()
	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return([]port.RetrievalResult{}, nil)

	worker := &mocks.MockLLMWorker{}

	e := extractor.NewArticleExtractor(retriever, worker, testExtractionConfig())
	ac, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.Nil(t, ac)
	worker.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything)
}

func TestArticleExtract_InvocationFailureYieldsNil(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 1, "some disclosure text")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(nil, errors.New("connection timeout"))

	e := extractor.NewArticleExtractor(retriever, worker, testExtractionConfig())
	ac, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.Nil(t, ac)
}

func TestArticleExtract_UnrecognizedArticleYieldsNil(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 1, "some disclosure text")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(map[string]any{
		"article":    "7",
		"confidence": 0.9,
	}, nil)

	e := extractor.NewArticleExtractor(retriever, worker, testExtractionConfig())
	ac, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.Nil(t, ac)
}

func TestArticleExtract_OutOfRangeConfidencePropagates(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 1, "some disclosure text")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(map[string]any{
		"article":    "6",
		"confidence": 1.7,
	}, nil)

	e := extractor.NewArticleExtractor(retriever, worker, testExtractionConfig())
	ac, err := e.Extract(context.Background(), docID)

	assert.ErrorIs(t, err, domain.ErrConfidenceOutOfRange)
	assert.Nil(t, ac)
}

func TestArticleExtract_RetrieverErrorPropagates(t *testing.T) {
	docID := uuid.New()
	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return(nil, errors.New("store down"))

	e := extractor.NewArticleExtractor(retriever, &mocks.MockLLMWorker{}, testExtractionConfig())
	_, err := e.Extract(context.Background(), docID)

	assert.Error(t, err)
}

func TestArticleExtract_AbsentConfidenceDefaultsNeutral(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 2, "article 9 sustainable objective fund")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 3).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(map[string]any{
		"article": "9",
	}, nil)

	e := extractor.NewArticleExtractor(retriever, worker, testExtractionConfig())
	ac, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.NotNil(t, ac)
	assert.Equal(t, 0.5, ac.Confidence)
}
