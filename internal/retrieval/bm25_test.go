package retrieval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"regintel/internal/domain"
	"regintel/internal/retrieval"
	"regintel/mocks"
)

func makeSections(docID uuid.UUID, texts ...string) []domain.Section {
	sections := make([]domain.Section, 0, len(texts))
	for i, text := range texts {
		sections = append(sections, domain.Section{
			ID:         uuid.New(),
			DocumentID: docID,
			Title:      "section",
			Level:      1,
			PageStart:  i + 1,
			Text:       text,
		})
	}
	return sections
}

func TestQuery_RanksMatchingSectionFirst(t *testing.T) {
	docID := uuid.New()
	sections := makeSections(docID,
		"the fund invests in diversified global equities",
		"do no significant harm principle applies to sustainable investments",
		"fee schedule and share class information",
	)

	idx := retrieval.NewBM25Index(&mocks.MockSectionRepo{})
	idx.Build(docID, sections)

	results, err := idx.Query(context.Background(), docID, "do no significant harm", 3)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, sections[1].ID, results[0].Section.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestQuery_IsIdempotent(t *testing.T) {
	docID := uuid.New()
	sections := makeSections(docID,
		"sustainable investment definition for the purposes of SFDR",
		"principal adverse impacts on sustainability factors",
		"general risk warnings",
	)

	idx := retrieval.NewBM25Index(&mocks.MockSectionRepo{})
	idx.Build(docID, sections)

	first, err := idx.Query(context.Background(), docID, "sustainable investment definition", 2)
	assert.NoError(t, err)
	second, err := idx.Query(context.Background(), docID, "sustainable investment definition", 2)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestQuery_TiesKeepOriginalOrder(t *testing.T) {
	docID := uuid.New()
	// Identical texts score identically for any query.
	sections := makeSections(docID,
		"identical section text here",
		"identical section text here",
		"identical section text here",
	)

	idx := retrieval.NewBM25Index(&mocks.MockSectionRepo{})
	idx.Build(docID, sections)

	results, err := idx.Query(context.Background(), docID, "identical text", 3)
	assert.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, sections[0].ID, results[0].Section.ID)
	assert.Equal(t, sections[1].ID, results[1].Section.ID)
	assert.Equal(t, sections[2].ID, results[2].Section.ID)
}

func TestQuery_TopKLargerThanSections(t *testing.T) {
	docID := uuid.New()
	sections := makeSections(docID, "alpha", "beta")

	idx := retrieval.NewBM25Index(&mocks.MockSectionRepo{})
	idx.Build(docID, sections)

	results, err := idx.Query(context.Background(), docID, "alpha", 10)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQuery_NonPositiveTopK(t *testing.T) {
	docID := uuid.New()
	idx := retrieval.NewBM25Index(&mocks.MockSectionRepo{})
	idx.Build(docID, makeSections(docID, "some text"))

	results, err := idx.Query(context.Background(), docID, "some", 0)
	assert.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Query(context.Background(), docID, "some", -1)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_UnknownDocumentBuiltLazily(t *testing.T) {
	docID := uuid.New()
	sections := makeSections(docID, "lazy built section about taxonomy alignment")

	repo := &mocks.MockSectionRepo{}
	repo.On("ListByDocument", context.Background(), docID).Return(sections, nil).Once()

	idx := retrieval.NewBM25Index(repo)

	results, err := idx.Query(context.Background(), docID, "taxonomy alignment", 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	// A second query must hit the cached index, not the store.
	results, err = idx.Query(context.Background(), docID, "taxonomy alignment", 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	repo.AssertExpectations(t)
}

func TestQuery_EmptyDocumentYieldsEmpty(t *testing.T) {
	docID := uuid.New()
	repo := &mocks.MockSectionRepo{}
	repo.On("ListByDocument", context.Background(), docID).Return([]domain.Section{}, nil)

	idx := retrieval.NewBM25Index(repo)

	results, err := idx.Query(context.Background(), docID, "anything", 5)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuery_StoreErrorPropagates(t *testing.T) {
	docID := uuid.New()
	repo := &mocks.MockSectionRepo{}
	repo.On("ListByDocument", context.Background(), docID).Return(nil, errors.New("connection refused"))

	idx := retrieval.NewBM25Index(repo)

	_, err := idx.Query(context.Background(), docID, "anything", 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loading sections")
}

func TestBuild_ReplacesPriorIndex(t *testing.T) {
	docID := uuid.New()
	idx := retrieval.NewBM25Index(&mocks.MockSectionRepo{})

	idx.Build(docID, makeSections(docID, "old content about fees"))
	replacement := makeSections(docID, "new content about climate indicators")
	idx.Build(docID, replacement)

	results, err := idx.Query(context.Background(), docID, "climate indicators", 5)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, replacement[0].ID, results[0].Section.ID)
}

func TestQueryKeywords_JoinsTerms(t *testing.T) {
	docID := uuid.New()
	sections := makeSections(docID,
		"principal adverse impact statement with mandatory indicators",
		"fund manager biography",
	)

	idx := retrieval.NewBM25Index(&mocks.MockSectionRepo{})
	idx.Build(docID, sections)

	results, err := idx.QueryKeywords(context.Background(), docID, []string{"principal", "adverse", "impact"}, 1)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, sections[0].ID, results[0].Section.ID)
}
