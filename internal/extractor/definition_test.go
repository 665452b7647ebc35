package extractor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"regintel/internal/extractor"
	"regintel/internal/port"
	"regintel/mocks"
)

func TestDefinitionExtract_Success(t *testing.T) {
	docID := uuid.New()
	sectionText := "Sustainable investment means an investment in an economic activity that contributes to an environmental objective. " + strings.Repeat("x", 300)
	results := retrievalResults(docID, 8, sectionText)

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 5).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(map[string]any{
		"definition_present": "true",
		"definition_text":    "Sustainable investment means an investment in an economic activity that contributes to an environmental objective.",
		"page_number":        8.0,
		"confidence":         0.9,
	}, nil)

	e := extractor.NewDefinitionExtractor(retriever, worker, testExtractionConfig())
	field, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.NotNil(t, field)
	assert.True(t, field.Present)
	assert.NotNil(t, field.Text)
	assert.Contains(t, *field.Text, "Sustainable investment means")
	assert.Equal(t, 0.9, field.Confidence)
	assert.Len(t, field.Citations, 1)
	assert.Equal(t, 8, field.Citations[0].PageNumber)
	assert.Len(t, field.Citations[0].TextSnippet, 200)
}

func TestDefinitionExtract_NotPresentDropsText(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 2, "general fund information")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 5).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(map[string]any{
		"definition_present": "false",
		"definition_text":    "spurious text the model hallucinated",
		"confidence":         0.6,
	}, nil)

	e := extractor.NewDefinitionExtractor(retriever, worker, testExtractionConfig())
	field, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.NotNil(t, field)
	assert.False(t, field.Present)
	assert.Nil(t, field.Text)
}

func TestDefinitionExtract_UnparseablePageFallsBackToSection(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 11, "definition section text")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 5).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(map[string]any{
		"definition_present": "true",
		"definition_text":    "the definition",
		"page_number":        "around the middle",
		"confidence":         0.8,
	}, nil)

	e := extractor.NewDefinitionExtractor(retriever, worker, testExtractionConfig())
	field, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.NotNil(t, field)
	assert.Equal(t, 11, field.Citations[0].PageNumber)
}

func TestDefinitionExtract_ZeroRetrievalYieldsNil(t *testing.T) {
	docID := uuid.New()
	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 5).Return([]port.RetrievalResult{}, nil)

	e := extractor.NewDefinitionExtractor(retriever, &mocks.MockLLMWorker{}, testExtractionConfig())
	field, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.Nil(t, field)
}

func TestDefinitionExtract_InvocationFailureYieldsNil(t *testing.T) {
	docID := uuid.New()
	results := retrievalResults(docID, 1, "definition section text")

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), 5).Return(results, nil)

	worker := &mocks.MockLLMWorker{}
	worker.On("GenerateJSON", mock.Anything, mock.Anything).Return(nil, errors.New("model unavailable"))

	e := extractor.NewDefinitionExtractor(retriever, worker, testExtractionConfig())
	field, err := e.Extract(context.Background(), docID)

	assert.NoError(t, err)
	assert.Nil(t, field)
}
