package controller_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"regintel/internal/config"
	"regintel/internal/controller"
	"regintel/internal/domain"
	"regintel/internal/port"
	"regintel/mocks"
)

type stubArticle struct {
	result *domain.ArticleClassification
	err    error
}

func (s stubArticle) Extract(context.Context, uuid.UUID) (*domain.ArticleClassification, error) {
	return s.result, s.err
}

type stubDefinition struct {
	result *domain.DefinitionField
	err    error
}

func (s stubDefinition) Extract(context.Context, uuid.UUID) (*domain.DefinitionField, error) {
	return s.result, s.err
}

type stubDNSH struct {
	result *domain.DNSHField
	err    error
}

func (s stubDNSH) Extract(context.Context, uuid.UUID) (*domain.DNSHField, error) {
	return s.result, s.err
}

type stubPAI struct {
	result *domain.PAIField
	err    error
}

func (s stubPAI) Extract(context.Context, uuid.UUID) (*domain.PAIField, error) {
	return s.result, s.err
}

func mustArticle(t *testing.T, article domain.Article, confidence float64) *domain.ArticleClassification {
	t.Helper()
	ac, err := domain.NewArticleClassification(article, confidence, "", nil)
	assert.NoError(t, err)
	return ac
}

func TestBuildState_AllFieldsExtracted(t *testing.T) {
	docID := uuid.New()
	text := "sustainable investment means..."
	definition, _ := domain.NewDefinitionField(true, &text, 0.9, nil)
	dnsh, _ := domain.NewDNSHField(true, domain.DNSHCoveragePartial, 0.7, nil)
	ratio := 0.64
	pai, _ := domain.NewPAIField(&ratio, 0.8, nil)

	builder := controller.NewStateBuilder(
		stubArticle{result: mustArticle(t, domain.Article8, 0.9)},
		stubDefinition{result: definition},
		stubDNSH{result: dnsh},
		stubPAI{result: pai},
	)

	state, err := builder.BuildState(context.Background(), docID, "LU0123456789", "2024-01")
	assert.NoError(t, err)
	assert.NotNil(t, state)
	assert.Equal(t, "LU0123456789", state.FundISIN)
	assert.Equal(t, "2024-01", state.DocVersion)
	assert.Equal(t, domain.Article8, *state.ClaimedArticle)
	assert.Empty(t, state.MissingFields)
	// Mean of 0.9, 0.9, 0.7, 0.8.
	assert.InDelta(t, 0.825, state.Confidence, 1e-9)
	assert.Equal(t, []uuid.UUID{docID}, state.Documents)
}

func TestBuildState_EmptyDocumentScenario(t *testing.T) {
	// A document with no sections: every retrieval misses, DNSH degrades to
	// its not-present default, everything else is absent.
	docID := uuid.New()

	retriever := &mocks.MockRetriever{}
	retriever.On("Query", mock.Anything, docID, mock.AnythingOfType("string"), mock.AnythingOfType("int")).
		Return([]port.RetrievalResult{}, nil)

	worker := &mocks.MockLLMWorker{}

	builder := controller.NewDefaultStateBuilder(retriever, worker, config.ExtractionConfig{
		ArticleTopK:        3,
		FieldTopK:          5,
		ArticleWindowChars: 500,
		FieldWindowChars:   800,
		ContextSections:    3,
	})

	state, err := builder.BuildState(context.Background(), docID, "LU0000000000", "v1")
	assert.NoError(t, err)

	assert.Nil(t, state.ClaimedArticle)
	assert.Nil(t, state.Definition)
	assert.NotNil(t, state.DNSH)
	assert.False(t, state.DNSH.Present)
	assert.Equal(t, 0.5, state.DNSH.Confidence)
	assert.Nil(t, state.PAI)

	assert.ElementsMatch(t, []string{
		domain.FieldClaimedArticle,
		domain.FieldDefinition,
		domain.FieldDNSH,
		domain.FieldPAI,
	}, state.MissingFields)

	// Article contributes 0.0, DNSH default contributes 0.5.
	assert.InDelta(t, 0.25, state.Confidence, 1e-9)
	worker.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything)
}

func TestBuildState_NotPresentFieldsCountAsMissingButScored(t *testing.T) {
	definition, _ := domain.NewDefinitionField(false, nil, 0.6, nil)
	dnsh, _ := domain.NewDNSHField(false, domain.DNSHCoverageNone, 0.5, nil)
	pai, _ := domain.NewPAIField(nil, 0.4, nil)

	builder := controller.NewStateBuilder(
		stubArticle{result: mustArticle(t, domain.Article6, 0.8)},
		stubDefinition{result: definition},
		stubDNSH{result: dnsh},
		stubPAI{result: pai},
	)

	state, err := builder.BuildState(context.Background(), uuid.New(), "IE0000000000", "v2")
	assert.NoError(t, err)

	assert.ElementsMatch(t, []string{
		domain.FieldDefinition,
		domain.FieldDNSH,
		domain.FieldPAI,
	}, state.MissingFields)

	// All four confidences count: (0.8 + 0.6 + 0.5 + 0.4) / 4.
	assert.InDelta(t, 0.575, state.Confidence, 1e-9)
}

func TestBuildState_ConfidenceWithinBounds(t *testing.T) {
	definition, _ := domain.NewDefinitionField(true, nil, 1.0, nil)
	dnsh, _ := domain.NewDNSHField(true, domain.DNSHCoverageFull, 1.0, nil)
	ratio := 1.0
	pai, _ := domain.NewPAIField(&ratio, 1.0, nil)

	builder := controller.NewStateBuilder(
		stubArticle{result: mustArticle(t, domain.Article9, 1.0)},
		stubDefinition{result: definition},
		stubDNSH{result: dnsh},
		stubPAI{result: pai},
	)

	state, err := builder.BuildState(context.Background(), uuid.New(), "FR0000000000", "v1")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, state.Confidence, 0.0)
	assert.LessOrEqual(t, state.Confidence, 1.0)
	assert.Equal(t, 1.0, state.Confidence)
}

func TestBuildState_ExtractorErrorPropagates(t *testing.T) {
	builder := controller.NewStateBuilder(
		stubArticle{err: errors.New("section store unavailable")},
		stubDefinition{},
		stubDNSH{},
		stubPAI{},
	)

	state, err := builder.BuildState(context.Background(), uuid.New(), "LU0123456789", "v1")
	assert.Error(t, err)
	assert.Nil(t, state)
}

func TestBuildState_MissingFieldsNeverNil(t *testing.T) {
	definition, _ := domain.NewDefinitionField(true, nil, 0.9, nil)
	dnsh, _ := domain.NewDNSHField(true, domain.DNSHCoverageFull, 0.9, nil)
	ratio := 0.5
	pai, _ := domain.NewPAIField(&ratio, 0.9, nil)

	builder := controller.NewStateBuilder(
		stubArticle{result: mustArticle(t, domain.Article8, 0.9)},
		stubDefinition{result: definition},
		stubDNSH{result: dnsh},
		stubPAI{result: pai},
	)

	state, err := builder.BuildState(context.Background(), uuid.New(), "LU0123456789", "v1")
	assert.NoError(t, err)
	assert.NotNil(t, state.MissingFields)
	assert.Empty(t, state.MissingFields)
}
