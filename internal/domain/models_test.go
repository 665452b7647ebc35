package domain_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"regintel/internal/domain"
)

func TestNewCitation_RejectsInvalidPage(t *testing.T) {
	_, err := domain.NewCitation(uuid.New(), 0, "snippet")
	assert.ErrorIs(t, err, domain.ErrInvalidPageNumber)

	_, err = domain.NewCitation(uuid.New(), -3, "snippet")
	assert.ErrorIs(t, err, domain.ErrInvalidPageNumber)
}

func TestCiteSection_UsesPageStartAndBoundedSnippet(t *testing.T) {
	docID := uuid.New()
	section := &domain.Section{
		ID:         uuid.New(),
		DocumentID: docID,
		Title:      "Sustainability-related disclosures",
		PageStart:  8,
		Text:       strings.Repeat("a", 500),
	}

	citation, err := domain.CiteSection(section)
	assert.NoError(t, err)
	assert.Equal(t, docID, citation.DocumentID)
	assert.Equal(t, 8, citation.PageNumber)
	assert.Len(t, citation.TextSnippet, 200)
	assert.Equal(t, section.Text[:200], citation.TextSnippet)
}

func TestCiteSection_MultiByteTextCutOnRuneBoundary(t *testing.T) {
	// The 200th character is a multi-byte rune; the snippet must keep it
	// whole rather than cutting mid-encoding.
	text := strings.Repeat("a", 199) + "€" + strings.Repeat("b", 100)
	section := &domain.Section{
		DocumentID: uuid.New(),
		PageStart:  5,
		Text:       text,
	}

	citation, err := domain.CiteSection(section)
	assert.NoError(t, err)
	assert.True(t, utf8.ValidString(citation.TextSnippet))
	assert.Equal(t, strings.Repeat("a", 199)+"€", citation.TextSnippet)
	assert.Equal(t, 200, utf8.RuneCountInString(citation.TextSnippet))
}

func TestCiteSection_ShortTextKeptWhole(t *testing.T) {
	section := &domain.Section{
		DocumentID: uuid.New(),
		PageStart:  1,
		Text:       "short disclosure text",
	}

	citation, err := domain.CiteSection(section)
	assert.NoError(t, err)
	assert.Equal(t, "short disclosure text", citation.TextSnippet)
}

func TestNewArticleClassification_Validation(t *testing.T) {
	ac, err := domain.NewArticleClassification(domain.Article8, 0.9, "explicit article 8 statement", nil)
	assert.NoError(t, err)
	assert.Equal(t, domain.Article8, ac.Article)
	assert.Equal(t, 0.9, ac.Confidence)

	_, err = domain.NewArticleClassification(domain.Article("7"), 0.9, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArticle)

	_, err = domain.NewArticleClassification(domain.Article6, 1.5, "", nil)
	assert.ErrorIs(t, err, domain.ErrConfidenceOutOfRange)

	_, err = domain.NewArticleClassification(domain.Article6, -0.1, "", nil)
	assert.ErrorIs(t, err, domain.ErrConfidenceOutOfRange)
}

func TestNewArticleClassification_BoundsInclusive(t *testing.T) {
	_, err := domain.NewArticleClassification(domain.Article9, 0.0, "", nil)
	assert.NoError(t, err)

	_, err = domain.NewArticleClassification(domain.Article9, 1.0, "", nil)
	assert.NoError(t, err)
}

func TestNewDefinitionField_Validation(t *testing.T) {
	text := "Sustainable investment means an investment in an economic activity..."
	field, err := domain.NewDefinitionField(true, &text, 0.85, nil)
	assert.NoError(t, err)
	assert.True(t, field.Present)
	assert.Equal(t, &text, field.Text)

	_, err = domain.NewDefinitionField(true, &text, 1.01, nil)
	assert.ErrorIs(t, err, domain.ErrConfidenceOutOfRange)
}

func TestNewDNSHField_Validation(t *testing.T) {
	field, err := domain.NewDNSHField(true, domain.DNSHCoveragePartial, 0.7, nil)
	assert.NoError(t, err)
	assert.Equal(t, domain.DNSHCoveragePartial, field.Coverage)

	_, err = domain.NewDNSHField(false, domain.DNSHCoverageNone, -0.5, nil)
	assert.ErrorIs(t, err, domain.ErrConfidenceOutOfRange)
}

func TestNewPAIField_RatioValidation(t *testing.T) {
	ratio := 0.64
	field, err := domain.NewPAIField(&ratio, 0.8, nil)
	assert.NoError(t, err)
	assert.Equal(t, &ratio, field.MandatoryCoverageRatio)

	bad := 1.2
	_, err = domain.NewPAIField(&bad, 0.8, nil)
	assert.ErrorIs(t, err, domain.ErrRatioOutOfRange)

	negative := -0.2
	_, err = domain.NewPAIField(&negative, 0.8, nil)
	assert.ErrorIs(t, err, domain.ErrRatioOutOfRange)
}

func TestNewPAIField_NilRatioIsValid(t *testing.T) {
	field, err := domain.NewPAIField(nil, 0.6, nil)
	assert.NoError(t, err)
	assert.Nil(t, field.MandatoryCoverageRatio)
}

func TestNewPAIField_ZeroRatioDistinctFromNil(t *testing.T) {
	zero := 0.0
	field, err := domain.NewPAIField(&zero, 0.6, nil)
	assert.NoError(t, err)
	assert.NotNil(t, field.MandatoryCoverageRatio)
	assert.Equal(t, 0.0, *field.MandatoryCoverageRatio)
}
